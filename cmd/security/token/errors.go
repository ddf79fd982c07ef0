package token

import "errors"

// Public, stable errors for callers.
var (
	// ErrInvalidToken is the single failure outcome of Verify. Bad signature,
	// malformed structure, expiry, and a non-parseable subject are all
	// deliberately indistinguishable.
	ErrInvalidToken = errors.New("invalid token")

	// ErrConfig reports invalid token-service configuration (missing or
	// too-short signing secret, non-positive TTL). Fatal at startup.
	ErrConfig = errors.New("invalid token configuration")
)
