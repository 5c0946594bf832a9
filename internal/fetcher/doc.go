// Package fetcher retrieves single URLs politely and classifies failures.
//
// A Fetcher draws every request from one shared Limiter so the gap
// between the end of a request and the start of the next never drops
// below the configured interval, regardless of how many callers share
// it. Failures come back as *FetchError with one of three kinds:
//
//   - FailureTransient: timeouts, network errors, 5xx and redirect loops.
//     These are retried a bounded number of times.
//   - FailureClient: 4xx responses. Never retried.
//   - FailureNotHTML: the page is not HTML. A routing decision, not an error.
//
// Cancellation of the caller's context is never classified: the raw
// context error is returned so the caller can discard the attempt.
//
// The package also reads the two discovery sources that travel over the
// same limiter: robots.txt (Robots) and XML sitemaps (SitemapReader).
package fetcher
