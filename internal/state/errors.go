package state

import "errors"

var (
	// ErrNoCheckpoint is returned by Store.Load when nothing was saved yet.
	ErrNoCheckpoint = errors.New("no checkpoint found")

	// ErrSchemaVersion is returned when a checkpoint was written by an
	// incompatible version.
	ErrSchemaVersion = errors.New("unsupported checkpoint schema version")

	// ErrCorruptCheckpoint is returned when a checkpoint cannot be decoded.
	ErrCorruptCheckpoint = errors.New("corrupt checkpoint")
)
