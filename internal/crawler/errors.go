package crawler

import "errors"

var (
	// ErrInterrupted is returned by Run when the context is cancelled.
	// The state has been checkpointed and can be resumed.
	ErrInterrupted = errors.New("crawl interrupted")

	// ErrCheckpoint wraps a failure to load, save or clear crawl state.
	// It ends the run because resumability can no longer be guaranteed.
	ErrCheckpoint = errors.New("checkpoint failed")
)
