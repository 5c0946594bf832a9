package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default CrawlDelay is 1 second", func(t *testing.T) {
		t.Parallel()
		if cfg.CrawlDelay != time.Second {
			t.Errorf("expected CrawlDelay to be 1s, got %v", cfg.CrawlDelay)
		}
	})

	t.Run("default Timeout is 20 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 20*time.Second {
			t.Errorf("expected Timeout to be 20s, got %v", cfg.Timeout)
		}
	})

	t.Run("default retry and redirect limits", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxRetries != 2 || cfg.MaxRedirects != 10 {
			t.Errorf("expected retries 2 and redirects 10, got %d and %d", cfg.MaxRetries, cfg.MaxRedirects)
		}
	})

	t.Run("default quality and checkpoint cadence", func(t *testing.T) {
		t.Parallel()
		if cfg.MinWords != 50 || cfg.CheckpointEvery != 50 {
			t.Errorf("expected min words 50 and checkpoint every 50, got %d and %d", cfg.MinWords, cfg.CheckpointEvery)
		}
	})

	t.Run("default MaxPages is unlimited", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxPages != 0 {
			t.Errorf("expected MaxPages to be 0, got %d", cfg.MaxPages)
		}
	})

	t.Run("default state backend is file", func(t *testing.T) {
		t.Parallel()
		if cfg.StateBackend != BackendFile {
			t.Errorf("expected file backend, got %q", cfg.StateBackend)
		}
		if cfg.StatePath() != filepath.Join("corpus", ".crawler_state.json") {
			t.Errorf("unexpected state path %q", cfg.StatePath())
		}
	})

	t.Run("robots are respected", func(t *testing.T) {
		t.Parallel()
		if !cfg.RespectRobots {
			t.Error("expected RespectRobots to be true")
		}
	})

	t.Run("default config is valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected defaults to validate, got %v", err)
		}
	})
}

// TestConfigValidate tests the Validate method with one broken rule per case.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"no seeds or sitemaps", func(c *Config) { c.Seeds = nil; c.Sitemaps = nil }, ErrNoSeeds},
		{"sitemaps only", func(c *Config) { c.Seeds = nil }, nil},
		{"relative seed", func(c *Config) { c.Seeds = []string{"/faq"} }, ErrInvalidSeed},
		{"ftp sitemap", func(c *Config) { c.Sitemaps = []string{"ftp://example.edu/sitemap.xml"} }, ErrInvalidSeed},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"negative delay", func(c *Config) { c.CrawlDelay = -time.Second }, ErrInvalidCrawlDelay},
		{"zero delay", func(c *Config) { c.CrawlDelay = 0 }, nil},
		{"negative max pages", func(c *Config) { c.MaxPages = -1 }, ErrInvalidMaxPages},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }, ErrInvalidMaxRetries},
		{"zero redirects", func(c *Config) { c.MaxRedirects = 0 }, ErrInvalidMaxRedirects},
		{"negative body size", func(c *Config) { c.MaxBodySize = -1 }, ErrInvalidMaxBodySize},
		{"negative min words", func(c *Config) { c.MinWords = -1 }, ErrInvalidMinWords},
		{"zero checkpoint cadence", func(c *Config) { c.CheckpointEvery = 0 }, ErrInvalidCheckpointEvery},
		{"unknown backend", func(c *Config) { c.StateBackend = "s3" }, ErrInvalidStateBackend},
		{"redis without addr", func(c *Config) { c.StateBackend = BackendRedis }, ErrMissingRedisAddr},
		{"redis with addr", func(c *Config) { c.StateBackend = BackendRedis; c.RedisAddr = "localhost:6379" }, nil},
		{"sqlite backend", func(c *Config) { c.StateBackend = BackendSQLite }, nil},
		{"unknown format", func(c *Config) { c.Format = "xml" }, ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected nil, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigApply(t *testing.T) {
	t.Parallel()

	robots := false
	minWords := 10
	cfg := NewConfig()
	cfg.Apply(&File{
		Seeds:         []string{"https://example.edu/"},
		Sitemaps:      []string{},
		Hosts:         []string{"example.edu"},
		Priority:      PriorityConfig{High: []string{"/faq"}},
		Exclude:       ExcludeConfig{Paths: []string{"/private"}},
		Headers:       map[string]string{"X-Test": "1"},
		Cookie:        "session=abc",
		RespectRobots: &robots,
		MinWords:      &minWords,
	})

	if len(cfg.Seeds) != 1 || cfg.Seeds[0] != "https://example.edu/" {
		t.Errorf("Seeds = %v", cfg.Seeds)
	}
	if len(cfg.Sitemaps) != 0 {
		t.Errorf("an explicit empty sitemap list should disable sitemaps, got %v", cfg.Sitemaps)
	}
	if cfg.HighPriority[0] != "/faq" || cfg.MediumPriority != nil {
		t.Errorf("priority = %v / %v", cfg.HighPriority, cfg.MediumPriority)
	}
	if cfg.ExcludeExtensions != nil || cfg.ExcludePaths[0] != "/private" {
		t.Errorf("exclude = %v / %v", cfg.ExcludeExtensions, cfg.ExcludePaths)
	}
	if cfg.Cookie != "session=abc" || cfg.Headers["X-Test"] != "1" {
		t.Errorf("request customisation not applied: %+v", cfg)
	}
	if cfg.RespectRobots || cfg.MinWords != 10 {
		t.Errorf("RespectRobots = %v, MinWords = %d", cfg.RespectRobots, cfg.MinWords)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("UserAgent = %q, unset fields keep defaults", cfg.UserAgent)
	}

	cfg.Apply(nil)
}

func TestConfigHosts(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.Hosts = nil
	cfg.Seeds = []string{"https://WWW.Example.edu/a", "https://www.example.edu/b", "https://lib.example.edu/"}

	if got := strings.Join(cfg.ScopeHosts(), ","); got != "www.example.edu,lib.example.edu" {
		t.Errorf("ScopeHosts() = %q", got)
	}
	if got := cfg.PrimaryHost(); got != "www.example.edu" {
		t.Errorf("PrimaryHost() = %q", got)
	}

	cfg.Hosts = []string{"example.edu"}
	if got := strings.Join(cfg.ScopeHosts(), ","); got != "example.edu" {
		t.Errorf("ScopeHosts() = %q", got)
	}
}

func TestConfigPaths(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.OutputDir = "out"
	if cfg.StatePath() != filepath.Join("out", DefaultStateFileName) {
		t.Errorf("StatePath() = %q", cfg.StatePath())
	}
	cfg.StateFile = "/tmp/state.json"
	if cfg.StatePath() != "/tmp/state.json" {
		t.Errorf("StatePath() = %q", cfg.StatePath())
	}

	if cfg.DatabaseDir() != XDGDataDir() {
		t.Errorf("DatabaseDir() = %q, want XDG data dir", cfg.DatabaseDir())
	}
	cfg.DBDir = "db"
	if cfg.DatabaseDir() != "db" {
		t.Errorf("DatabaseDir() = %q", cfg.DatabaseDir())
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads valid YAML", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `
seeds:
  - https://example.edu/
hosts:
  - example.edu
priority:
  high:
    - /faq
  medium:
    - /services
exclude:
  extensions: [".pdf"]
headers:
  X-Custom: value
cookie: "a=b"
respect_robots: false
min_words: 25
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(f.Seeds) != 1 || f.Hosts[0] != "example.edu" {
			t.Errorf("unexpected target: %+v", f)
		}
		if f.Priority.High[0] != "/faq" || f.Priority.Medium[0] != "/services" {
			t.Errorf("unexpected priority: %+v", f.Priority)
		}
		if f.Exclude.Extensions[0] != ".pdf" || f.Exclude.Paths != nil {
			t.Errorf("unexpected exclude: %+v", f.Exclude)
		}
		if f.Headers["X-Custom"] != "value" || f.Cookie != "a=b" {
			t.Errorf("unexpected request settings: %+v", f)
		}
		if f.RespectRobots == nil || *f.RespectRobots {
			t.Error("expected respect_robots false")
		}
		if f.MinWords == nil || *f.MinWords != 25 {
			t.Error("expected min_words 25")
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid YAML returns error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("seeds: [unclosed"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestLoadConfigFile_Strict(t *testing.T) {
	t.Setenv("CORPUSCRAWL_TEST_SESSION", "s3cr3t")

	dir := t.TempDir()

	t.Run("unknown key is rejected", func(t *testing.T) {
		path := filepath.Join(dir, "typo.yaml")
		if err := os.WriteFile(path, []byte("min-words: 10\n"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected an error for an unknown key")
		}
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yaml")
		if err := os.WriteFile(path, nil, 0600); err != nil {
			t.Fatal(err)
		}
		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(f.Seeds) != 0 {
			t.Errorf("Seeds = %v", f.Seeds)
		}
	})

	t.Run("environment references are expanded", func(t *testing.T) {
		path := filepath.Join(dir, "env.yaml")
		content := "cookie: session=${CORPUSCRAWL_TEST_SESSION}\nheaders:\n  X-Token: $CORPUSCRAWL_TEST_SESSION\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Cookie != "session=s3cr3t" || f.Headers["X-Token"] != "s3cr3t" {
			t.Errorf("Cookie = %q, Headers = %v", f.Cookie, f.Headers)
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("seeds: []"), 0600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
	})

	t.Run("directory is not a config file", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(t.TempDir()); got != "" {
			t.Errorf("expected empty path, got %s", got)
		}
	})

	t.Run("explicit missing path", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "nope")); got != "" {
			t.Errorf("expected empty path, got %s", got)
		}
	})
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if !strings.HasSuffix(XDGDataDir(), AppName) {
		t.Errorf("XDGDataDir() = %q, want suffix %q", XDGDataDir(), AppName)
	}
	if !strings.HasSuffix(XDGConfigDir(), AppName) {
		t.Errorf("XDGConfigDir() = %q, want suffix %q", XDGConfigDir(), AppName)
	}
}
