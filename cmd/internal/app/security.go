package app

import (
	"errors"

	"globchat/cmd/security/password"
	"globchat/cmd/security/token"
)

// LoadSecurityConfig loads and validates the credential-hashing and
// token-signing configuration at startup.
//
// Fail-fast is intentional: a missing or short GLOBCHAT_JWT_SECRET must
// stop the process rather than let it run issuing forgeable tokens, and a
// typo in the Argon2 knobs must not silently weaken hashing.
func LoadSecurityConfig() (password.Config, token.Config, error) {
	hasher, err := password.FromEnv()
	if err != nil {
		return password.Config{}, token.Config{}, err
	}

	tokCfg, err := token.LoadConfigFromEnv()
	if errors.Is(err, token.ErrConfig) {
		return password.Config{}, token.Config{},
			errors.New("security policy: GLOBCHAT_JWT_SECRET must be set to at least 32 bytes")
	}
	if err != nil {
		return password.Config{}, token.Config{}, err
	}

	return hasher, tokCfg, nil
}
