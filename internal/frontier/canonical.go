package frontier

import (
	"fmt"
	"net"
	"net/url"
	"path"
	"slices"
	"strings"
)

// Canonicalize returns the canonical form of rawURL.
//
// The canonical form lowercases scheme and host, drops default ports,
// user info and the fragment, normalizes percent-encoding without
// decoding reserved characters, resolves dot segments, removes a trailing
// slash (the root path stays "/"), and sorts query parameters.
// Canonicalize is idempotent.
func Canonicalize(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", rawURL, err)
	}
	return CanonicalizeURL(u)
}

// CanonicalizeURL is Canonicalize for an already parsed URL.
// The argument is not modified.
func CanonicalizeURL(in *url.URL) (string, error) {
	u := *in

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, in.Scheme)
	}

	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" || u.Opaque != "" {
		return "", ErrNoHost
	}
	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		port = ""
	}
	switch {
	case port != "":
		u.Host = net.JoinHostPort(host, port)
	case strings.Contains(host, ":"):
		u.Host = "[" + host + "]"
	default:
		u.Host = host
	}

	u.User = nil
	u.Fragment = ""
	u.RawFragment = ""
	escaped := cleanPath(normalizeEscapes(u.EscapedPath()))
	unescaped, err := url.PathUnescape(escaped)
	if err != nil {
		return "", fmt.Errorf("path %q: %w", escaped, err)
	}
	u.Path = unescaped
	u.RawPath = escaped
	u.RawQuery = sortQuery(u.RawQuery)
	u.ForceQuery = false

	return u.String(), nil
}

// normalizeEscapes uppercases percent-encodings and decodes the ones
// that stand for unreserved characters. Reserved escapes such as %2F
// stay encoded so they keep their meaning.
func normalizeEscapes(p string) string {
	if !strings.Contains(p, "%") {
		return p
	}
	var b strings.Builder
	b.Grow(len(p))
	for i := 0; i < len(p); i++ {
		if p[i] != '%' || i+2 >= len(p) || !isHex(p[i+1]) || !isHex(p[i+2]) {
			b.WriteByte(p[i])
			continue
		}
		c := unhex(p[i+1])<<4 | unhex(p[i+2])
		if isUnreserved(c) {
			b.WriteByte(c)
		} else {
			b.WriteByte('%')
			b.WriteString(strings.ToUpper(p[i+1 : i+3]))
		}
		i += 2
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	default:
		return c - '0'
	}
}

func isUnreserved(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' ||
		c == '-' || c == '.' || c == '_' || c == '~'
}

// cleanPath resolves dot segments and drops the trailing slash.
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// sortQuery orders the raw key=value pairs and drops empty ones.
func sortQuery(raw string) string {
	if raw == "" {
		return ""
	}
	pairs := strings.FieldsFunc(raw, func(r rune) bool { return r == '&' })
	slices.Sort(pairs)
	return strings.Join(pairs, "&")
}
