package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultUserAgent identifies the crawler in server logs.
	DefaultUserAgent = "corpuscrawl/1.0 (+https://github.com/nao1215/corpuscrawl)"

	// DefaultMaxBodySize caps the bytes read from one response.
	DefaultMaxBodySize int64 = 5 * 1024 * 1024

	// DefaultMaxRetries is the number of extra attempts for transient failures.
	DefaultMaxRetries = 2
)

const acceptHTML = "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5"

// Response is a successful fetch.
type Response struct {
	// URL is the requested URL.
	URL string
	// FinalURL is the URL after redirects.
	FinalURL    string
	StatusCode  int
	ContentType string
	Body        []byte
	Duration    time.Duration
}

// Fetcher performs rate-limited HTTP GET requests.
type Fetcher struct {
	client      *http.Client
	limiter     Limiter
	userAgent   string
	maxBodySize int64
	maxRetries  int
	logger      *slog.Logger
	observe     func(time.Duration)
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLimiter sets the shared request limiter.
func WithLimiter(l Limiter) Option {
	return func(f *Fetcher) {
		f.limiter = l
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the response body size limit.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// WithMaxRetries sets the number of retries for transient failures.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) {
		if n >= 0 {
			f.maxRetries = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithObserver registers a callback receiving the duration of every
// completed HTTP exchange.
func WithObserver(fn func(time.Duration)) Option {
	return func(f *Fetcher) {
		f.observe = fn
	}
}

// New creates a Fetcher. Without WithLimiter it never waits between requests.
func New(client *http.Client, opts ...Option) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	f := &Fetcher{
		client:      client,
		limiter:     NewNopLimiter(),
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		maxRetries:  DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Fetch retrieves an HTML page. Non-HTML responses fail with FailureNotHTML.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	return f.fetch(ctx, rawURL, true)
}

// Get retrieves any content type. It is used for robots.txt and sitemaps.
func (f *Fetcher) Get(ctx context.Context, rawURL string) (*Response, error) {
	return f.fetch(ctx, rawURL, false)
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string, htmlOnly bool) (*Response, error) {
	for attempt := 1; ; attempt++ {
		resp, err := f.do(ctx, rawURL, htmlOnly)
		if err == nil {
			return resp, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		var fe *FetchError
		if !errors.As(err, &fe) {
			return nil, err
		}
		fe.Attempts = attempt
		if fe.Kind != FailureTransient || attempt > f.maxRetries {
			return nil, fe
		}
		f.logger.Debug("retrying fetch",
			"url", rawURL,
			"attempt", attempt,
			"error", fe.Err,
		)
	}
}

// do performs a single attempt.
func (f *Fetcher) do(ctx context.Context, rawURL string, htmlOnly bool) (*Response, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	defer f.limiter.Done()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{Kind: FailureClient, URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", acceptHTML)
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &FetchError{Kind: FailureTransient, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if err := classifyStatus(rawURL, resp.StatusCode); err != nil {
		f.observed(start)
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	if htmlOnly && contentType != "" && !isHTML(contentType) {
		f.observed(start)
		return nil, &FetchError{
			Kind:       FailureNotHTML,
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %s", ErrNotHTML, contentType),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	f.observed(start)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &FetchError{Kind: FailureTransient, URL: rawURL, StatusCode: resp.StatusCode, Err: err}
	}

	if htmlOnly && contentType == "" {
		contentType = http.DetectContentType(body)
		if !isHTML(contentType) {
			return nil, &FetchError{
				Kind:       FailureNotHTML,
				URL:        rawURL,
				StatusCode: resp.StatusCode,
				Err:        fmt.Errorf("%w: sniffed %s", ErrNotHTML, contentType),
			}
		}
	}

	return &Response{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        body,
		Duration:    time.Since(start),
	}, nil
}

func (f *Fetcher) observed(start time.Time) {
	if f.observe != nil {
		f.observe(time.Since(start))
	}
}

// classifyStatus maps a non-2xx status to a FetchError.
func classifyStatus(rawURL string, status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status >= 500, status == http.StatusTooManyRequests, status == http.StatusRequestTimeout:
		return &FetchError{
			Kind:       FailureTransient,
			URL:        rawURL,
			StatusCode: status,
			Err:        fmt.Errorf("%w: %s", ErrServerError, http.StatusText(status)),
		}
	default:
		return &FetchError{
			Kind:       FailureClient,
			URL:        rawURL,
			StatusCode: status,
			Err:        fmt.Errorf("%w: %s", ErrClientError, http.StatusText(status)),
		}
	}
}

// isHTML reports whether a Content-Type header denotes HTML.
func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
