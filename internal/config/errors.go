package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoSeeds is returned when there is nothing to start crawling from.
	ErrNoSeeds = errors.New("no seeds specified: provide seed URLs or sitemaps")

	// ErrInvalidSeed is returned when a seed or sitemap is not an absolute http(s) URL.
	ErrInvalidSeed = errors.New("invalid seed: must be an absolute http or https URL")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidMaxPages is returned when the page budget is negative.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative (0 means unlimited)")

	// ErrInvalidMaxRetries is returned when the retry count is negative.
	ErrInvalidMaxRetries = errors.New("invalid max retries: must be non-negative")

	// ErrInvalidMaxRedirects is returned when the redirect limit is not positive.
	ErrInvalidMaxRedirects = errors.New("invalid max redirects: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidMinWords is returned when the quality threshold is negative.
	ErrInvalidMinWords = errors.New("invalid min words: must be non-negative")

	// ErrInvalidCheckpointEvery is returned when the checkpoint cadence is not positive.
	ErrInvalidCheckpointEvery = errors.New("invalid checkpoint interval: must be positive")

	// ErrInvalidStateBackend is returned for an unknown --state-backend.
	ErrInvalidStateBackend = errors.New("invalid state backend: must be file, sqlite or redis")

	// ErrMissingRedisAddr is returned when the redis backend has no address.
	ErrMissingRedisAddr = errors.New("redis state backend requires --redis-addr")

	// ErrInvalidFormat is returned for an unknown --format.
	ErrInvalidFormat = errors.New("invalid format: must be markdown, json or both")
)
