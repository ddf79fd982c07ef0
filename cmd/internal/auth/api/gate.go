package authapi

import (
	"net/http"
	"time"

	"globchat/cmd/identity"
	"globchat/cmd/internal/metrics"
	"globchat/cmd/security/token"
)

// Gate is the precondition check in front of authenticated handlers: it
// resolves a request's bearer token to a known user or rejects the request.
//
// All token failures (missing, empty, malformed, bad signature, expired)
// and a valid token naming a user absent from the store collapse into one
// generic 401; which check failed is deliberately not leaked. On any
// failure the wrapped handler is never invoked.
type Gate struct {
	tokens  *token.Service
	store   identity.Store
	metrics *metrics.Set
}

// NewGate constructs a Gate. m may be nil.
func NewGate(tokens *token.Service, store identity.Store, m *metrics.Set) *Gate {
	return &Gate{tokens: tokens, store: store, metrics: m}
}

// AuthedHandler is a handler that runs only behind a successful gate check.
type AuthedHandler func(w http.ResponseWriter, r *http.Request, user identity.User)

// Wrap turns an AuthedHandler into an http.HandlerFunc guarded by the gate.
func (g *Gate) Wrap(next AuthedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := bearerToken(r)
		if tok == "" {
			g.reject(w)
			return
		}

		uid, err := g.tokens.Verify(tok, time.Now().UTC())
		if err != nil {
			g.reject(w)
			return
		}

		user, err := g.store.FindUserByID(r.Context(), uid)
		if identity.IsNotFound(err) {
			// A valid token for a deleted/unknown user is unauthenticated,
			// not a not-found success.
			g.reject(w)
			return
		}
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
			return
		}

		next(w, r, user)
	}
}

func (g *Gate) reject(w http.ResponseWriter) {
	g.metrics.AuthFailure()
	WriteError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
}
