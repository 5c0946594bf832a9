package frontier

import "errors"

var (
	// ErrUnsupportedScheme is returned when a URL is not http or https.
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")

	// ErrNoHost is returned when a URL has no host component.
	ErrNoHost = errors.New("URL has no host")

	// ErrInvalidEntry is returned by Restore when a snapshot entry is not
	// canonical or carries an unknown tier.
	ErrInvalidEntry = errors.New("invalid frontier entry")
)
