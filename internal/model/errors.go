package model

import "errors"

var (
	// ErrUnknownSource means an item's source has no configured trust tier.
	// The item is dropped and logged, never retried by this engine.
	ErrUnknownSource = errors.New("unknown source")

	// ErrMalformedItem means an item is missing required fields for its
	// declared category. Dropped and logged.
	ErrMalformedItem = errors.New("malformed item")

	// ErrDuplicateCorroboration means a (claim, event, relation) link
	// already exists. Internal: callers treat it as a no-op.
	ErrDuplicateCorroboration = errors.New("duplicate corroboration")

	// ErrStaleWrite means a concurrent claim mutation was detected via the
	// version check. Retried once with a fresh read, then surfaced.
	ErrStaleWrite = errors.New("stale write conflict")

	// ErrInvalidTransition means a status change would violate the
	// monotonic lifecycle invariant. Rejected and logged, never silently
	// overwritten.
	ErrInvalidTransition = errors.New("invalid claim transition")
)
