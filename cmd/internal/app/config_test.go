package app

import (
	"testing"
	"time"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("GLOBCHAT_TEST_STR", "  hello  ")
	t.Setenv("GLOBCHAT_TEST_BOOL", "true")
	t.Setenv("GLOBCHAT_TEST_INT", "42")
	t.Setenv("GLOBCHAT_TEST_INT_BAD", "-3")
	t.Setenv("GLOBCHAT_TEST_DUR", "250ms")
	t.Setenv("GLOBCHAT_TEST_DUR_BAD", "soon")

	if got := EnvString("GLOBCHAT_TEST_STR", "def"); got != "hello" {
		t.Fatalf("EnvString = %q", got)
	}
	if got := EnvString("GLOBCHAT_TEST_MISSING", "def"); got != "def" {
		t.Fatalf("EnvString default = %q", got)
	}
	if !EnvBool("GLOBCHAT_TEST_BOOL", false) {
		t.Fatal("EnvBool should be true")
	}
	if got := EnvInt("GLOBCHAT_TEST_INT", 7); got != 42 {
		t.Fatalf("EnvInt = %d", got)
	}
	if got := EnvInt("GLOBCHAT_TEST_INT_BAD", 7); got != 7 {
		t.Fatalf("EnvInt negative should fall back, got %d", got)
	}
	if got := EnvInt64("GLOBCHAT_TEST_INT", 7); got != 42 {
		t.Fatalf("EnvInt64 = %d", got)
	}
	if got := EnvInt32("GLOBCHAT_TEST_INT", 7); got != 42 {
		t.Fatalf("EnvInt32 = %d", got)
	}
	if got := EnvDuration("GLOBCHAT_TEST_DUR", time.Second); got != 250*time.Millisecond {
		t.Fatalf("EnvDuration = %v", got)
	}
	if got := EnvDuration("GLOBCHAT_TEST_DUR_BAD", time.Second); got != time.Second {
		t.Fatalf("EnvDuration bad input should fall back, got %v", got)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"GLOBCHAT_HTTP_ADDR",
		"GLOBCHAT_LOG_LEVEL",
		"GLOBCHAT_DATABASE_URL",
		"GLOBCHAT_NODE_ID",
		"GLOBCHAT_HTTP_READ_HEADER_TIMEOUT",
		"GLOBCHAT_HTTP_IDLE_TIMEOUT",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	if cfg.HTTPAddr != "0.0.0.0:8080" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("DatabaseURL = %q, want in-memory default", cfg.DatabaseURL)
	}
	if cfg.NodeID != 0 {
		t.Fatalf("NodeID = %d", cfg.NodeID)
	}
	if cfg.ReadHeaderTimeout != 5*time.Second || cfg.IdleTimeout != 60*time.Second {
		t.Fatalf("unexpected timeouts: %+v", cfg)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("GLOBCHAT_HTTP_ADDR", "127.0.0.1:9999")
	t.Setenv("GLOBCHAT_NODE_ID", "512")
	t.Setenv("GLOBCHAT_READINESS_REQUIRE_DB", "true")

	cfg := LoadConfig()
	if cfg.HTTPAddr != "127.0.0.1:9999" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.NodeID != 512 {
		t.Fatalf("NodeID = %d", cfg.NodeID)
	}
	if !cfg.ReadinessRequireDB {
		t.Fatal("ReadinessRequireDB not applied")
	}
}
