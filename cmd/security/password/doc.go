// Package password implements credential hashing and verification for
// globchat.
//
// It produces Argon2id hashes in a PHC-like encoded string format:
// - A fresh random salt per hash
// - Algorithm parameters embedded in the encoded string
// - Constant-time digest comparison on verify
//
// Security notes:
// - Stored hash strings are untrusted input during Verify: malformed or
//   unsupported values verify as false, they never panic or error out.
// - Verification refuses hashes whose embedded parameters exceed sane
//   bounds, so attacker-controlled hash strings cannot drive pathological
//   resource usage.
// - The plaintext secret is never logged or stored.
package password
