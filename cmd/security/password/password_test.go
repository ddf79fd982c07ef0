package password

import (
	"strings"
	"testing"
)

// testConfig keeps hashing cheap in tests while staying within bounds.
func testConfig() Config {
	return Config{
		Params: Argon2idParams{
			MemoryKiB:   16 * 1024,
			Iterations:  1,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		},
	}
}

func TestHashVerify_Roundtrip(t *testing.T) {
	cfg := testConfig()

	for _, secret := range []string{"pw1", "correct horse battery staple", "päßwörd", ""} {
		hash, err := cfg.Hash(secret)
		if err != nil {
			t.Fatalf("Hash(%q): %v", secret, err)
		}
		if !strings.HasPrefix(hash, "$argon2id$v=19$") {
			t.Fatalf("unexpected encoding: %q", hash)
		}
		if strings.Contains(hash, secret) && secret != "" {
			t.Fatalf("hash leaks plaintext: %q", hash)
		}
		if !cfg.Verify(hash, secret) {
			t.Fatalf("Verify rejected its own hash for %q", secret)
		}
		if cfg.Verify(hash, secret+"x") {
			t.Fatalf("Verify accepted wrong secret for %q", secret)
		}
	}
}

func TestHash_SaltIsRandom(t *testing.T) {
	cfg := testConfig()

	a, err := cfg.Hash("same-secret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := cfg.Hash("same-secret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a == b {
		t.Fatalf("two hashes of the same secret are identical; salt not random")
	}
	if !cfg.Verify(a, "same-secret") || !cfg.Verify(b, "same-secret") {
		t.Fatalf("both hashes must verify")
	}
}

func TestVerify_MalformedIsFalseNotPanic(t *testing.T) {
	cfg := testConfig()

	malformed := []string{
		"",
		"not-a-hash",
		"$argon2id$v=19$m=16384,t=1,p=1$onlyfourparts",
		"$argon2i$v=19$m=16384,t=1,p=1$c2FsdHNhbHQ$aGFzaGhhc2g",   // wrong algorithm
		"$argon2id$v=18$m=16384,t=1,p=1$c2FsdHNhbHQ$aGFzaGhhc2g",  // wrong version
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdHNhbHQ$aGFzaGhhc2g",      // zero memory
		"$argon2id$v=19$m=16384,t=1,p=1$!!notb64!!$aGFzaGhhc2g",   // bad salt b64
		"$argon2id$v=19$m=16384,t=1,p=1$c2FsdHNhbHQ$!!notb64!!",   // bad hash b64
		"$argon2id$v=19$m=999999999,t=1,p=1$c2FsdHNhbHQ$aGFzaGhhc2g", // absurd memory
	}

	for _, h := range malformed {
		if cfg.Verify(h, "whatever") {
			t.Fatalf("malformed hash verified: %q", h)
		}
	}
}

func TestVerify_RejectsOversizedParams(t *testing.T) {
	small := testConfig()

	big := small
	big.Params.MemoryKiB = small.Params.MemoryKiB * 4

	hash, err := big.Hash("secret-value")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	// A hash demanding 4x our configured memory must be refused.
	if small.Verify(hash, "secret-value") {
		t.Fatalf("expected out-of-bounds hash to be refused")
	}
}
