package schema

import "errors"

// Error taxonomy for the response pipeline. Providers and stores wrap these
// sentinels so callers can decide between rejecting a request, degrading to
// a fallback response, or failing the turn.
var (
	// ErrInvalidInput marks missing or malformed caller input. Rejected
	// before any provider call, with no side effects.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProviderFailure marks an embedding or generation backend failure
	// (network, auth, quota, malformed response).
	ErrProviderFailure = errors.New("provider failure")

	// ErrPersistence marks an unavailable corpus or history store.
	ErrPersistence = errors.New("persistence failure")
)
