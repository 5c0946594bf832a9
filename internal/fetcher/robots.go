package fetcher

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// Getter retrieves a URL without content-type restrictions.
type Getter interface {
	Get(ctx context.Context, rawURL string) (*Response, error)
}

// Robots caches robots.txt policies per origin.
// A robots.txt that cannot be fetched or parsed allows everything.
type Robots struct {
	getter Getter
	agent  string
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]*robotstxt.RobotsData
}

// NewRobots creates a Robots reading policies through getter for agent.
func NewRobots(getter Getter, agent string, logger *slog.Logger) *Robots {
	if logger == nil {
		logger = slog.Default()
	}
	return &Robots{
		getter: getter,
		agent:  agent,
		logger: logger,
		cache:  make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether rawURL may be crawled.
func (r *Robots) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	data := r.load(ctx, u)
	if data == nil {
		return true
	}
	target := u.EscapedPath()
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}
	return data.TestAgent(target, r.agent)
}

// Sitemaps returns the Sitemap directives of the robots.txt for rawURL's origin.
func (r *Robots) Sitemaps(ctx context.Context, rawURL string) []string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	data := r.load(ctx, u)
	if data == nil {
		return nil
	}
	return append([]string(nil), data.Sitemaps...)
}

func (r *Robots) load(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	origin := u.Scheme + "://" + u.Host

	r.mu.Lock()
	data, ok := r.cache[origin]
	r.mu.Unlock()
	if ok {
		return data
	}

	resp, err := r.getter.Get(ctx, origin+"/robots.txt")
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		r.logger.Debug("robots.txt unavailable, allowing all", "origin", origin, "error", err)
	} else {
		data, err = robotstxt.FromBytes(resp.Body)
		if err != nil {
			r.logger.Debug("robots.txt unparseable, allowing all", "origin", origin, "error", err)
			data = nil
		}
	}

	r.mu.Lock()
	r.cache[origin] = data
	r.mu.Unlock()
	return data
}
