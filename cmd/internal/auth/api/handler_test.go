package authapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"globchat/cmd/identity"
	"globchat/cmd/identity/ids"
	"globchat/cmd/internal/realtime"
	"globchat/cmd/security/password"
	"globchat/cmd/security/token"
)

type nullWriter struct{}

func (nullWriter) Write(p []byte) (int, error) { return len(p), nil }

type fixture struct {
	handler  *Handler
	store    *identity.MemoryStore
	presence *realtime.Presence
	tokens   *token.Service
	mux      *http.ServeMux
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := slog.New(slog.NewTextHandler(nullWriter{}, nil))
	store := identity.NewMemoryStore()
	presence := realtime.NewPresence()

	hasher := password.Config{
		Params: password.Argon2idParams{
			MemoryKiB:   16 * 1024,
			Iterations:  1,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		},
	}

	tokens, err := token.NewService(token.Config{
		Secret: []byte("0123456789abcdef0123456789abcdef"),
		TTL:    token.DefaultTTL,
	})
	if err != nil {
		t.Fatalf("token.NewService: %v", err)
	}

	gen, err := ids.NewSnowflake(1)
	if err != nil {
		t.Fatalf("ids.NewSnowflake: %v", err)
	}

	h := NewHandler(log, store, hasher, tokens, presence, gen, nil)
	mux := http.NewServeMux()
	h.Register(mux)

	return &fixture{handler: h, store: store, presence: presence, tokens: tokens, mux: mux}
}

func (f *fixture) post(t *testing.T, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	f.mux.ServeHTTP(rr, req)
	return rr
}

func (f *fixture) status(t *testing.T, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rr := httptest.NewRecorder()
	f.mux.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

func TestRegisterLoginScenario(t *testing.T) {
	f := newFixture(t)

	// Register alice.
	rr := f.post(t, "/auth/register", `{"username":"alice","password":"pw1"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("register status = %d body=%s", rr.Code, rr.Body.String())
	}
	var reg struct {
		Status string `json:"status"`
	}
	decodeBody(t, rr, &reg)
	if reg.Status != "success" {
		t.Fatalf("register status = %q, want success", reg.Status)
	}

	// Registering alice again, even with a different password, conflicts.
	rr = f.post(t, "/auth/register", `{"username":"alice","password":"pw2"}`)
	decodeBody(t, rr, &reg)
	if reg.Status != "user_exists" {
		t.Fatalf("second register status = %q, want user_exists", reg.Status)
	}

	// Wrong password.
	rr = f.post(t, "/auth/login", `{"username":"alice","password":"wrong"}`)
	var loginFail struct {
		Status string `json:"status"`
	}
	decodeBody(t, rr, &loginFail)
	if loginFail.Status != "invalid_password" {
		t.Fatalf("login status = %q, want invalid_password", loginFail.Status)
	}

	// Unknown user.
	rr = f.post(t, "/auth/login", `{"username":"nobody","password":"pw1"}`)
	decodeBody(t, rr, &loginFail)
	if loginFail.Status != "user_not_found" {
		t.Fatalf("login status = %q, want user_not_found", loginFail.Status)
	}

	// Correct login yields a token and records presence.
	rr = f.post(t, "/auth/login", `{"username":"alice","password":"pw1"}`)
	var loginOK struct {
		Status struct {
			LoggedIn struct {
				Token string `json:"token"`
			} `json:"logged_in"`
		} `json:"status"`
	}
	decodeBody(t, rr, &loginOK)
	tok := loginOK.Status.LoggedIn.Token
	if tok == "" {
		t.Fatalf("expected token in login response, got %s", rr.Body.String())
	}

	uid, err := f.tokens.Verify(tok, time.Now().UTC())
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if !f.presence.Contains(uid) {
		t.Fatalf("expected presence for %d after login", uid)
	}
}

func TestStatus(t *testing.T) {
	f := newFixture(t)

	// No token.
	rr := f.status(t, "")
	var next struct {
		Next json.RawMessage `json:"next"`
	}
	decodeBody(t, rr, &next)
	if string(next.Next) != `"login"` {
		t.Fatalf("next = %s, want \"login\"", next.Next)
	}

	// Garbage token.
	rr = f.status(t, "garbage")
	decodeBody(t, rr, &next)
	if string(next.Next) != `"login"` {
		t.Fatalf("next = %s, want \"login\"", next.Next)
	}

	// Valid token.
	uid := identity.UserID(314159)
	tok, err := f.tokens.Issue(uid, time.Now().UTC())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	rr = f.status(t, tok)
	var proceed struct {
		Next struct {
			Proceed struct {
				UID identity.UserID `json:"uid"`
			} `json:"proceed"`
		} `json:"next"`
	}
	decodeBody(t, rr, &proceed)
	if proceed.Next.Proceed.UID != uid {
		t.Fatalf("uid = %d, want %d", proceed.Next.Proceed.UID, uid)
	}
}

func TestRegister_BadRequests(t *testing.T) {
	f := newFixture(t)

	cases := map[string]string{
		"empty_body":       ``,
		"not_json":         `not json`,
		"missing_password": `{"username":"x"}`,
		"empty_username":   `{"username":"","password":"pw"}`,
		"unknown_field":    `{"username":"x","password":"pw","extra":1}`,
	}

	for name, body := range cases {
		rr := f.post(t, "/auth/register", body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400 (body %s)", name, rr.Code, rr.Body.String())
		}
	}
}

func TestRegister_ConcurrentSameUsername(t *testing.T) {
	f := newFixture(t)

	const racers = 8
	results := make(chan string, racers)

	for i := 0; i < racers; i++ {
		go func() {
			rr := f.post(t, "/auth/register", `{"username":"carol","password":"hunter2-long"}`)
			var reg struct {
				Status string `json:"status"`
			}
			_ = json.Unmarshal(rr.Body.Bytes(), &reg)
			results <- reg.Status
		}()
	}

	success := 0
	for i := 0; i < racers; i++ {
		if <-results == "success" {
			success++
		}
	}
	if success != 1 {
		t.Fatalf("%d concurrent registrations succeeded, want exactly 1", success)
	}
}
