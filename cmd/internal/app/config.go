package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogPretty bool

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// DatabaseURL empty means the in-memory store; anything else is a
	// Postgres connection string.
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// If true, /readyz returns 503 unless the DB is configured and reachable.
	ReadinessRequireDB bool

	// NodeID distinguishes ID-generator instances across processes.
	// Two live processes sharing a NodeID can mint colliding IDs.
	NodeID int64
}

// LoadConfig loads Config from environment variables with defaults.
//
// The token signing secret and Argon2 cost are deliberately not here: the
// security packages load their own config so their invariants are enforced
// next to the code that depends on them.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("GLOBCHAT_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("GLOBCHAT_LOG_LEVEL", "info"),
		LogPretty: EnvBool("GLOBCHAT_LOG_PRETTY", false),

		ReadHeaderTimeout: EnvDuration("GLOBCHAT_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("GLOBCHAT_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("GLOBCHAT_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("GLOBCHAT_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("GLOBCHAT_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("GLOBCHAT_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("GLOBCHAT_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("GLOBCHAT_DB_MIN_CONNS", 0),

		ReadinessRequireDB: EnvBool("GLOBCHAT_READINESS_REQUIRE_DB", false),

		NodeID: EnvInt64("GLOBCHAT_NODE_ID", 0),
	}
}
