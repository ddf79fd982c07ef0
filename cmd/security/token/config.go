package token

import (
	"os"
	"time"
)

// MinSecretBytes is the minimum signing secret length. 32 bytes is the
// recommended floor for HMAC-SHA256 keys; the key is measured in raw bytes.
const MinSecretBytes = 32

// Config defines runtime configuration for the token service.
type Config struct {
	// Secret is the symmetric HS256 signing key, known only to this process.
	// Loaded once at startup and never mutated.
	Secret []byte

	// TTL is the fixed lifetime of issued tokens.
	TTL time.Duration
}

// DefaultTTL is the session token lifetime.
const DefaultTTL = 8 * time.Hour

// LoadConfigFromEnv loads token configuration from environment variables.
//
// Required:
//   - GLOBCHAT_JWT_SECRET (min 32 bytes)
//
// Optional:
//   - GLOBCHAT_TOKEN_TTL (Go duration, default 8h)
//
// Returns ErrConfig if configuration is invalid; callers should treat that
// as fatal at startup rather than fall back to weaker settings.
func LoadConfigFromEnv() (Config, error) {
	cfg := Config{TTL: DefaultTTL}

	secret := os.Getenv("GLOBCHAT_JWT_SECRET")
	if len(secret) < MinSecretBytes {
		return Config{}, ErrConfig
	}
	cfg.Secret = []byte(secret)

	if v := os.Getenv("GLOBCHAT_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.TTL = d
	}

	return cfg, nil
}
