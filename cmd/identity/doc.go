// Package identity holds globchat's domain records (users, channels,
// messages) and the persistence boundary over them.
//
// IDs are snowflakes generated by cmd/identity/ids. A UserID is the opaque
// identity every other subsystem (tokens, presence, auth gate) reads and
// compares; it is immutable once created and owned by the store.
//
// Two store implementations exist:
//   - MemoryStore for development and tests
//   - PostgresStore over a pgx pool for production
//
// "Not found" is a normal, non-error-class outcome (ErrNotFound sentinel),
// kept distinct from transport/database failures.
package identity
