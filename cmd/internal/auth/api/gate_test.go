package authapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"globchat/cmd/identity"
	"globchat/cmd/security/token"
)

// failingStore returns a non-NotFound error from every lookup.
type failingStore struct {
	identity.Store
}

func (failingStore) FindUserByID(ctx context.Context, id identity.UserID) (identity.User, error) {
	return identity.User{}, errors.New("backend unavailable")
}

func newGateFixture(t *testing.T) (*Gate, *identity.MemoryStore, *token.Service) {
	t.Helper()

	store := identity.NewMemoryStore()
	tokens, err := token.NewService(token.Config{
		Secret: []byte("0123456789abcdef0123456789abcdef"),
		TTL:    token.DefaultTTL,
	})
	if err != nil {
		t.Fatalf("token.NewService: %v", err)
	}
	return NewGate(tokens, store, nil), store, tokens
}

func gateRequest(t *testing.T, g *Gate, bearer string) (*httptest.ResponseRecorder, *identity.User) {
	t.Helper()

	var seen *identity.User
	h := g.Wrap(func(w http.ResponseWriter, r *http.Request, user identity.User) {
		seen = &user
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/info/user/1", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr, seen
}

func TestGate_RejectsBadTokens(t *testing.T) {
	g, _, tokens := newGateFixture(t)

	expired, err := tokens.Issue(identity.UserID(7), time.Now().UTC().Add(-9*time.Hour))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	cases := map[string]string{
		"missing":     "",
		"garbage":     "not-a-token",
		"expired":     expired,
		"wrong_parts": "a.b",
	}
	for name, tok := range cases {
		rr, seen := gateRequest(t, g, tok)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want 401", name, rr.Code)
		}
		if seen != nil {
			t.Fatalf("%s: handler ran behind a failed gate", name)
		}
	}
}

func TestGate_ValidTokenUnknownUser(t *testing.T) {
	g, _, tokens := newGateFixture(t)

	tok, err := tokens.Issue(identity.UserID(42), time.Now().UTC())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	rr, seen := gateRequest(t, g, tok)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for unknown user", rr.Code)
	}
	if seen != nil {
		t.Fatal("handler ran for a token naming no stored user")
	}
}

func TestGate_StoreFailureIsServerError(t *testing.T) {
	_, _, tokens := newGateFixture(t)
	g := NewGate(tokens, failingStore{}, nil)

	tok, err := tokens.Issue(identity.UserID(42), time.Now().UTC())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	rr, seen := gateRequest(t, g, tok)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 on store failure", rr.Code)
	}
	if seen != nil {
		t.Fatal("handler ran despite store failure")
	}
}

func TestGate_PassesKnownUser(t *testing.T) {
	g, store, tokens := newGateFixture(t)

	user := identity.User{
		ID:        identity.UserID(42),
		Username:  "alice",
		CreatedAt: time.Now().UTC(),
	}
	if err := store.InsertUser(context.Background(), user); err != nil {
		t.Fatalf("InsertUser: %v", err)
	}

	tok, err := tokens.Issue(user.ID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	rr, seen := gateRequest(t, g, tok)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if seen == nil || seen.ID != user.ID || seen.Username != "alice" {
		t.Fatalf("handler saw %+v, want the stored user", seen)
	}
}
