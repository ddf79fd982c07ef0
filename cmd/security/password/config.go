package password

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Argon2idParams controls Argon2id hashing cost.
// MemoryKiB is in KiB as required by argon2.IDKey.
type Argon2idParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Config is the single configuration surface for this package.
type Config struct {
	Params Argon2idParams
}

// DefaultConfig returns a strong baseline suitable for interactive logins.
func DefaultConfig() Config {
	// CPU-aware parallelism, clamped to [1..4] to keep resource usage
	// predictable in containers.
	threads := runtime.NumCPU()
	if threads <= 0 {
		threads = 1
	}
	if threads > 4 {
		threads = 4
	}

	return Config{
		Params: Argon2idParams{
			MemoryKiB:   64 * 1024, // 64 MiB
			Iterations:  3,
			Parallelism: uint8(threads), // #nosec G115 -- clamped to [1..4] above; safe conversion.
			SaltLength:  16,
			KeyLength:   32,
		},
	}
}

// FromEnv loads config from environment variables on top of DefaultConfig.
//
// Env surface:
// - GLOBCHAT_ARGON2_MEMORY_KIB
// - GLOBCHAT_ARGON2_ITERATIONS
// - GLOBCHAT_ARGON2_PARALLELISM
// - GLOBCHAT_ARGON2_SALT_LEN
// - GLOBCHAT_ARGON2_KEY_LEN
//
// Out-of-range values are a configuration error surfaced to the caller;
// the process should treat them as fatal at startup.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v, ok := os.LookupEnv("GLOBCHAT_ARGON2_MEMORY_KIB"); ok {
		u, err := atou32(v, 8*1024, 1024*1024) // 8 MiB .. 1 GiB
		if err != nil {
			return Config{}, fmt.Errorf("GLOBCHAT_ARGON2_MEMORY_KIB: %w", err)
		}
		cfg.Params.MemoryKiB = u
	}

	if v, ok := os.LookupEnv("GLOBCHAT_ARGON2_ITERATIONS"); ok {
		u, err := atou32(v, 1, 20)
		if err != nil {
			return Config{}, fmt.Errorf("GLOBCHAT_ARGON2_ITERATIONS: %w", err)
		}
		cfg.Params.Iterations = u
	}

	if v, ok := os.LookupEnv("GLOBCHAT_ARGON2_PARALLELISM"); ok {
		u, err := atou32(v, 1, 64)
		if err != nil {
			return Config{}, fmt.Errorf("GLOBCHAT_ARGON2_PARALLELISM: %w", err)
		}
		if u > 255 {
			return Config{}, fmt.Errorf("GLOBCHAT_ARGON2_PARALLELISM: out of range [1..255]")
		}
		cfg.Params.Parallelism = uint8(u)
	}

	if v, ok := os.LookupEnv("GLOBCHAT_ARGON2_SALT_LEN"); ok {
		u, err := atou32(v, 8, 64)
		if err != nil {
			return Config{}, fmt.Errorf("GLOBCHAT_ARGON2_SALT_LEN: %w", err)
		}
		cfg.Params.SaltLength = u
	}

	if v, ok := os.LookupEnv("GLOBCHAT_ARGON2_KEY_LEN"); ok {
		u, err := atou32(v, 16, 64)
		if err != nil {
			return Config{}, fmt.Errorf("GLOBCHAT_ARGON2_KEY_LEN: %w", err)
		}
		cfg.Params.KeyLength = u
	}

	return cfg, nil
}

func atou32(s string, minVal, maxVal uint32) (uint32, error) {
	s = strings.TrimSpace(s)
	u64, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not an unsigned integer")
	}

	u := uint32(u64)
	if u < minVal || u > maxVal {
		return 0, fmt.Errorf("out of range [%d..%d]", minVal, maxVal)
	}
	return u, nil
}
