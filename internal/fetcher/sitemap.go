package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/antchfx/xmlquery"
	"golang.org/x/sync/errgroup"
)

// DefaultSitemapDepth bounds sitemap-index recursion.
const DefaultSitemapDepth = 3

const (
	urlLocExpr     = "//*[local-name()='url']/*[local-name()='loc']"
	sitemapLocExpr = "//*[local-name()='sitemap']/*[local-name()='loc']"
)

// SitemapReader collects page URLs from XML sitemaps and sitemap indexes.
type SitemapReader struct {
	getter      Getter
	logger      *slog.Logger
	maxDepth    int
	concurrency int
}

// SitemapOption configures a SitemapReader.
type SitemapOption func(*SitemapReader)

// WithSitemapDepth sets the maximum sitemap-index nesting.
func WithSitemapDepth(depth int) SitemapOption {
	return func(r *SitemapReader) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// WithSitemapConcurrency sets how many sitemaps are requested at once.
// Requests still pass through the fetcher's shared limiter.
func WithSitemapConcurrency(n int) SitemapOption {
	return func(r *SitemapReader) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithSitemapLogger sets the logger.
func WithSitemapLogger(logger *slog.Logger) SitemapOption {
	return func(r *SitemapReader) {
		r.logger = logger
	}
}

// NewSitemapReader creates a SitemapReader.
func NewSitemapReader(getter Getter, opts ...SitemapOption) *SitemapReader {
	r := &SitemapReader{
		getter:      getter,
		maxDepth:    DefaultSitemapDepth,
		concurrency: 2,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Read fetches every sitemap in sitemapURLs and returns the page URLs
// they list, in discovery order without duplicates. Sitemaps that fail
// to load are logged and skipped; an error is returned only when ctx is
// cancelled.
func (r *SitemapReader) Read(ctx context.Context, sitemapURLs []string) ([]string, error) {
	var (
		pages []string
		seen  = make(map[string]bool)
		done  = make(map[string]bool)
	)

	level := dedupe(sitemapURLs)
	for depth := 0; depth < r.maxDepth && len(level) > 0; depth++ {
		var next []string

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.concurrency)

		results := make([]Sitemap, len(level))
		for i, sm := range level {
			done[sm] = true
			g.Go(func() error {
				res, err := r.readOne(gctx, sm)
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					r.logger.Warn("sitemap unavailable", "url", sm, "error", err)
					return nil
				}
				results[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return pages, err
		}

		for _, res := range results {
			for _, p := range res.Pages {
				if !seen[p] {
					seen[p] = true
					pages = append(pages, p)
				}
			}
			for _, child := range res.Children {
				if !done[child] {
					next = append(next, child)
				}
			}
		}
		level = dedupe(next)
	}
	return pages, nil
}

// Sitemap is the content of one sitemap document.
type Sitemap struct {
	// Pages are the <url><loc> entries of a urlset.
	Pages []string
	// Children are the <sitemap><loc> entries of a sitemap index.
	Children []string
}

func (r *SitemapReader) readOne(ctx context.Context, sitemapURL string) (Sitemap, error) {
	resp, err := r.getter.Get(ctx, sitemapURL)
	if err != nil {
		return Sitemap{}, err
	}
	return ParseSitemap(resp.Body)
}

// ParseSitemap extracts page locations and nested sitemap locations
// from a urlset or sitemapindex document.
func ParseSitemap(body []byte) (Sitemap, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return Sitemap{}, fmt.Errorf("parse sitemap: %w", err)
	}

	pageNodes, err := xmlquery.QueryAll(doc, urlLocExpr)
	if err != nil {
		return Sitemap{}, err
	}
	childNodes, err := xmlquery.QueryAll(doc, sitemapLocExpr)
	if err != nil {
		return Sitemap{}, err
	}

	var res Sitemap
	for _, n := range pageNodes {
		if loc := strings.TrimSpace(n.InnerText()); loc != "" {
			res.Pages = append(res.Pages, loc)
		}
	}
	for _, n := range childNodes {
		if loc := strings.TrimSpace(n.InnerText()); loc != "" {
			res.Children = append(res.Children, loc)
		}
	}
	return res, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
