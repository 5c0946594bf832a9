package report

import (
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// maxNameLen bounds an artifact name without its extension.
const maxNameLen = 100

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_\-/]`)

// Filename returns the filesystem-safe artifact name for rawURL, without
// extension. URLs on hosts other than primaryHost are prefixed with
// their host, and URLs with a query get a short digest suffix so that
// they do not collide with the bare path. A name that has to be
// truncated ends in a digest of the whole URL instead.
func Filename(rawURL, primaryHost string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return withDigest("index", rawURL, 4)
	}

	name := sanitize(strings.Trim(u.Path, "/"))
	if name == "" {
		name = "index"
	}
	if host := strings.ToLower(u.Hostname()); primaryHost != "" && host != "" && host != strings.ToLower(primaryHost) {
		name = sanitize(host) + "_" + name
	}

	var suffix string
	if u.RawQuery != "" {
		suffix = "_" + digest(u.RawQuery, 4)
	}
	if len(name)+len(suffix) > maxNameLen {
		return withDigest(name, rawURL, 4)
	}
	return name + suffix
}

// withDigest appends the first n bytes of the URL digest to name,
// shortening name so the result stays within maxNameLen.
func withDigest(name, rawURL string, n int) string {
	suffix := "_" + digest(rawURL, n)
	if len(name)+len(suffix) > maxNameLen {
		name = name[:maxNameLen-len(suffix)]
	}
	return name + suffix
}

func digest(s string, n int) string {
	sum := blake2b.Sum256([]byte(s))
	return hex.EncodeToString(sum[:n])
}

func sanitize(s string) string {
	return strings.ReplaceAll(unsafeNameChars.ReplaceAllString(s, "_"), "/", "_")
}
