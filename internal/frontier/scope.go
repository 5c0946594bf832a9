package frontier

import (
	"net/url"
	"strings"
)

// DefaultExcludedExtensions are file types that are never fetched.
var DefaultExcludedExtensions = []string{
	".pdf", ".doc", ".docx", ".xls", ".xlsx",
	".zip", ".rar", ".tar", ".gz",
	".mp3", ".mp4", ".avi",
	".jpg", ".jpeg", ".png", ".gif", ".svg", ".ico",
}

// DefaultExcludedPaths are path fragments of account and admin pages.
var DefaultExcludedPaths = []string{
	"/login", "/logout", "/signin", "/signout", "/admin", "/user/password",
}

// Scope decides whether a URL belongs to the crawl target.
type Scope struct {
	hosts        []string
	excludedExts []string
	excludedPath []string
}

// ScopeOption configures a Scope.
type ScopeOption func(*Scope)

// WithExcludedExtensions replaces the default excluded extensions.
func WithExcludedExtensions(exts []string) ScopeOption {
	return func(s *Scope) {
		s.excludedExts = lowerAll(exts)
	}
}

// WithExcludedPaths replaces the default excluded path fragments.
func WithExcludedPaths(paths []string) ScopeOption {
	return func(s *Scope) {
		s.excludedPath = lowerAll(paths)
	}
}

// NewScope creates a Scope restricted to hosts and their subdomains.
// An empty host list admits any host.
func NewScope(hosts []string, opts ...ScopeOption) *Scope {
	s := &Scope{
		excludedExts: DefaultExcludedExtensions,
		excludedPath: DefaultExcludedPaths,
	}
	for _, h := range hosts {
		h = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(h)), ".")
		if h != "" {
			s.hosts = append(s.hosts, h)
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hosts returns the configured hosts.
func (s *Scope) Hosts() []string {
	return append([]string(nil), s.hosts...)
}

// Allows reports whether u is an http(s) URL on an allowed host whose
// path is not excluded.
func (s *Scope) Allows(u *url.URL) bool {
	if u == nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	if !s.allowsHost(strings.ToLower(u.Hostname())) {
		return false
	}
	p := strings.ToLower(u.Path)
	for _, ext := range s.excludedExts {
		if strings.HasSuffix(p, ext) {
			return false
		}
	}
	for _, frag := range s.excludedPath {
		if strings.Contains(p, frag) {
			return false
		}
	}
	return true
}

// AllowsString is Allows for a raw URL. Unparseable URLs are rejected.
func (s *Scope) AllowsString(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return s.Allows(u)
}

func (s *Scope) allowsHost(host string) bool {
	if host == "" {
		return false
	}
	if len(s.hosts) == 0 {
		return true
	}
	for _, h := range s.hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}
