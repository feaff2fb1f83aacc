package services

import "errors"

var (
	// ErrNotInitialized means chat was requested before a successful Initialize.
	ErrNotInitialized = errors.New("system not initialized")

	// ErrNoDocuments means an index was requested but there is nothing to
	// build it from and no persisted index to fall back on.
	ErrNoDocuments = errors.New("no documents found to index")

	// ErrIndexCorrupt means a persisted index exists but could not be read.
	ErrIndexCorrupt = errors.New("persisted vector index is corrupt")
)
