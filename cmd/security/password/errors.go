package password

import "errors"

// ErrHash reports an internal hashing failure (e.g. the random source
// failing). It is an unrecoverable configuration/runtime problem, not a
// bad-credential outcome.
var ErrHash = errors.New("password hashing failed")

// errInvalidHash marks a malformed or unsupported stored hash during
// decoding. It never leaves this package: malformed hashes verify as false.
var errInvalidHash = errors.New("invalid password hash")
