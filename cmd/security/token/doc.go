// Package token issues and verifies the signed session tokens that bind a
// bearer to one user identity.
//
// Tokens are stateless JWTs (HS256) carrying {sub, iat, exp} and nothing
// else. Validity is determined purely by signature and timestamp against
// the caller's clock; there is no server-side session table and no
// revocation before expiry. That limitation is accepted deliberately: it
// keeps the service free of mutable state and therefore safe for unlimited
// concurrent calls without locking.
//
// Every structural, signature, expiry, or subject failure collapses into
// ErrInvalidToken so callers cannot tell (and cannot leak) which check
// failed.
package token
