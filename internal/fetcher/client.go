package fetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"golang.org/x/net/proxy"
)

// ClientOptions configures the HTTP client used by a Fetcher.
type ClientOptions struct {
	// Timeout bounds a whole request including redirects and body read.
	Timeout time.Duration

	// MaxRedirects is the redirect hop limit. Exceeding it is a transient failure.
	MaxRedirects int

	// ProxyURL routes requests through a proxy. Supported schemes are
	// socks5, socks5h, http and https. Empty means a direct connection.
	ProxyURL string

	// Headers are added to every request unless already set.
	Headers map[string]string

	// Cookie is sent as the Cookie header unless already set.
	Cookie string
}

// NewHTTPClient creates an HTTP client with pooled connections, a cookie
// jar, a redirect hop limit and optional proxy and header injection.
func NewHTTPClient(opts ClientOptions) (*http.Client, error) {
	transport := &http.Transport{
		Proxy:                 nil,
		MaxIdleConns:          10,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   opts.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	if opts.ProxyURL != "" {
		if err := configureProxy(transport, opts.ProxyURL); err != nil {
			return nil, err
		}
	}

	var rt http.RoundTripper = transport
	if len(opts.Headers) > 0 || opts.Cookie != "" {
		rt = &headerInjectingTransport{
			base:    transport,
			headers: opts.Headers,
			cookie:  opts.Cookie,
		}
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	maxRedirects := opts.MaxRedirects
	return &http.Client{
		Transport: rt,
		Timeout:   opts.Timeout,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("%w: %d hops", ErrRedirectLimit, len(via))
			}
			return nil
		},
	}, nil
}

// configureProxy installs a SOCKS5 dialer or an HTTP proxy on transport.
func configureProxy(transport *http.Transport, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidProxy, rawURL)
	}

	switch u.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(u)
		return nil
	case "socks5", "socks5h":
		dialer, err := proxy.FromURL(u, proxy.Direct)
		if err != nil {
			return fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
			return nil
		}
		transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
		return nil
	default:
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidProxy, u.Scheme)
	}
}

// headerInjectingTransport adds configured headers and cookie to requests.
type headerInjectingTransport struct {
	base    http.RoundTripper
	headers map[string]string
	cookie  string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	if t.cookie != "" && req.Header.Get("Cookie") == "" {
		req.Header.Set("Cookie", t.cookie)
	}
	return t.base.RoundTrip(req)
}
