package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "corpuscrawl"

	// DefaultCrawlDelay is the minimum gap between the end of one request
	// and the start of the next.
	DefaultCrawlDelay = 1 * time.Second

	// DefaultTimeout bounds a single request including redirects.
	DefaultTimeout = 20 * time.Second

	// DefaultMaxRetries is the number of retries after a transient failure.
	DefaultMaxRetries = 2

	// DefaultMaxRedirects is the redirect hop limit.
	DefaultMaxRedirects = 10

	// DefaultMaxBodySize limits the response body read per page.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultMinWords is the visible word count below which a page is low quality.
	DefaultMinWords = 50

	// DefaultCheckpointEvery is the number of processed pages between checkpoints.
	DefaultCheckpointEvery = 50

	// DefaultOutputDir receives the corpus artifacts.
	DefaultOutputDir = "corpus"

	// DefaultStateFileName is the checkpoint file name inside the output
	// directory. Artifact names never start with a dot.
	DefaultStateFileName = ".crawler_state.json"

	// DefaultUserAgent identifies corpuscrawl in HTTP requests.
	DefaultUserAgent = "corpuscrawl/1.0 (+https://github.com/nao1215/corpuscrawl)"

	// DefaultRedisKey is the key holding the checkpoint in the redis backend.
	DefaultRedisKey = "corpuscrawl:checkpoint"
)

// StateBackend selects where checkpoints are stored.
type StateBackend string

const (
	// BackendFile stores the checkpoint as a JSON file.
	BackendFile StateBackend = "file"
	// BackendSQLite stores the checkpoint in the SQLite index database.
	BackendSQLite StateBackend = "sqlite"
	// BackendRedis stores the checkpoint under a Redis key.
	BackendRedis StateBackend = "redis"
)

// Reference target used when no configuration file names one.
var (
	DefaultSeeds = []string{
		"https://www.lakeheadu.ca",
		"https://www.lakeheadu.ca/programs",
		"https://www.lakeheadu.ca/programs/departments/computer-science",
		"https://www.lakeheadu.ca/future-students",
		"https://www.lakeheadu.ca/student-life",
		"https://www.lakeheadu.ca/studentcentral",
		"https://csdc.lakeheadu.ca/Catalog/ViewCatalog.aspx",
		"https://lusu.ca",
	}
	DefaultSitemaps = []string{
		"https://www.lakeheadu.ca/sitemap.xml",
		"https://csdc.lakeheadu.ca/sitemap.xml",
		"https://lusu.ca/sitemap.xml",
	}
	DefaultHosts = []string{"lakeheadu.ca", "lusu.ca"}
)

// Config holds all configuration options for corpuscrawl. It is populated
// from defaults, then the YAML file, then CLI flags, and passed through the
// application rather than kept in global state.
type Config struct {
	// Seeds are the URLs the crawl starts from.
	Seeds []string

	// Sitemaps are fetched at startup; their page URLs are enqueued.
	Sitemaps []string

	// Hosts restricts the crawl to these hosts and their subdomains.
	// Empty means the hosts of the seeds.
	Hosts []string

	// HighPriority and MediumPriority override the tier keyword lists.
	// Nil keeps the built-in lists.
	HighPriority   []string
	MediumPriority []string

	// ExcludeExtensions and ExcludePaths override the scope exclusions.
	// Nil keeps the built-in lists.
	ExcludeExtensions []string
	ExcludePaths      []string

	// Headers are added to every request.
	Headers map[string]string

	// Cookie is sent with every request.
	Cookie string

	// OutputDir receives the corpus artifacts and, by default, the checkpoint.
	OutputDir string

	// StateFile overrides the checkpoint path for the file backend.
	StateFile string

	// StateBackend selects the checkpoint store.
	StateBackend StateBackend

	// RedisAddr and RedisKey configure the redis backend.
	RedisAddr string
	RedisKey  string

	// DBDir is the directory of the SQLite index database.
	// Empty means the XDG data directory.
	DBDir string

	// Format is the artifact format: markdown, json or both.
	Format string

	// Resume loads the last checkpoint instead of starting fresh.
	Resume bool

	// MaxPages is the page budget for this run. 0 means unlimited.
	MaxPages int

	// CrawlDelay is the politeness delay between requests.
	CrawlDelay time.Duration

	// Timeout bounds a single request.
	Timeout time.Duration

	// MaxRetries is the retry count for transient failures.
	MaxRetries int

	// MaxRedirects is the redirect hop limit.
	MaxRedirects int

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64

	// MinWords is the quality threshold.
	MinWords int

	// CheckpointEvery is the number of pages between checkpoints.
	CheckpointEvery int

	// RespectRobots enables robots.txt checks.
	RespectRobots bool

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// ProxyURL routes requests through a socks5 or http proxy.
	ProxyURL string

	// MetricsAddr serves Prometheus metrics when set.
	MetricsAddr string

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches the log output to JSON.
	LogJSON bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .corpuscrawl in the current directory
	// and then in the user's home directory.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values targeting the
// reference site.
func NewConfig() *Config {
	return &Config{
		Seeds:           append([]string(nil), DefaultSeeds...),
		Sitemaps:        append([]string(nil), DefaultSitemaps...),
		Hosts:           append([]string(nil), DefaultHosts...),
		OutputDir:       DefaultOutputDir,
		StateBackend:    BackendFile,
		RedisKey:        DefaultRedisKey,
		Format:          "markdown",
		CrawlDelay:      DefaultCrawlDelay,
		Timeout:         DefaultTimeout,
		MaxRetries:      DefaultMaxRetries,
		MaxRedirects:    DefaultMaxRedirects,
		MaxBodySize:     DefaultMaxBodySize,
		MinWords:        DefaultMinWords,
		CheckpointEvery: DefaultCheckpointEvery,
		RespectRobots:   true,
		UserAgent:       DefaultUserAgent,
	}
}

// Apply overlays the non-empty fields of a configuration file.
func (c *Config) Apply(f *File) {
	if f == nil {
		return
	}
	if len(f.Seeds) > 0 {
		c.Seeds = f.Seeds
	}
	if f.Sitemaps != nil {
		c.Sitemaps = f.Sitemaps
	}
	if len(f.Hosts) > 0 {
		c.Hosts = f.Hosts
	}
	if len(f.Priority.High) > 0 {
		c.HighPriority = f.Priority.High
	}
	if len(f.Priority.Medium) > 0 {
		c.MediumPriority = f.Priority.Medium
	}
	if f.Exclude.Extensions != nil {
		c.ExcludeExtensions = f.Exclude.Extensions
	}
	if f.Exclude.Paths != nil {
		c.ExcludePaths = f.Exclude.Paths
	}
	if len(f.Headers) > 0 {
		c.Headers = f.Headers
	}
	if f.Cookie != "" {
		c.Cookie = f.Cookie
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.RespectRobots != nil {
		c.RespectRobots = *f.RespectRobots
	}
	if f.MinWords != nil {
		c.MinWords = *f.MinWords
	}
}

// StatePath returns the checkpoint file used by the file backend.
func (c *Config) StatePath() string {
	if c.StateFile != "" {
		return c.StateFile
	}
	return filepath.Join(c.OutputDir, DefaultStateFileName)
}

// DatabaseDir returns the directory of the SQLite index database.
func (c *Config) DatabaseDir() string {
	if c.DBDir != "" {
		return c.DBDir
	}
	return XDGDataDir()
}

// ScopeHosts returns the configured hosts, or the seed hosts when none
// are configured.
func (c *Config) ScopeHosts() []string {
	if len(c.Hosts) > 0 {
		return c.Hosts
	}
	var hosts []string
	seen := make(map[string]bool)
	for _, s := range c.Seeds {
		u, err := url.Parse(s)
		if err != nil || u.Hostname() == "" {
			continue
		}
		h := strings.ToLower(u.Hostname())
		if !seen[h] {
			seen[h] = true
			hosts = append(hosts, h)
		}
	}
	return hosts
}

// PrimaryHost is the host of the first seed. Artifacts from other hosts
// are prefixed with their host name.
func (c *Config) PrimaryHost() string {
	for _, s := range c.Seeds {
		if u, err := url.Parse(s); err == nil && u.Hostname() != "" {
			return strings.ToLower(u.Hostname())
		}
	}
	return ""
}

// XDGDataDir returns the XDG data directory for corpuscrawl.
// On Linux: ~/.local/share/corpuscrawl
// On macOS: ~/Library/Application Support/corpuscrawl
// On Windows: %LOCALAPPDATA%\corpuscrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for corpuscrawl.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 && len(c.Sitemaps) == 0 {
		return ErrNoSeeds
	}
	for _, s := range append(append([]string(nil), c.Seeds...), c.Sitemaps...) {
		if !isHTTPURL(s) {
			return fmt.Errorf("%w: %q", ErrInvalidSeed, s)
		}
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}
	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}
	if c.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}
	if c.MaxRedirects <= 0 {
		return ErrInvalidMaxRedirects
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.MinWords < 0 {
		return ErrInvalidMinWords
	}
	if c.CheckpointEvery <= 0 {
		return ErrInvalidCheckpointEvery
	}

	switch c.StateBackend {
	case BackendFile, BackendSQLite:
	case BackendRedis:
		if c.RedisAddr == "" {
			return ErrMissingRedisAddr
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStateBackend, c.StateBackend)
	}

	switch c.Format {
	case "markdown", "json", "both":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Format)
	}

	return nil
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
