// Package authapi wires the credential endpoints (register, login, status)
// and the bearer-token auth gate to the identity store, credential hasher,
// token service, and presence registry.
package authapi

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"globchat/cmd/identity"
	"globchat/cmd/identity/ids"
	"globchat/cmd/internal/metrics"
	"globchat/cmd/internal/realtime"
	"globchat/cmd/security/password"
	"globchat/cmd/security/token"
)

const maxBodyBytes = 64 << 10

// Handler serves the credential endpoints.
type Handler struct {
	log      *slog.Logger
	store    identity.Store
	hasher   password.Config
	tokens   *token.Service
	presence *realtime.Presence
	ids      *ids.Snowflake
	metrics  *metrics.Set

	// dummyHash is verified when a login names an unknown user, so the
	// response time does not reveal whether the username exists.
	dummyHash string
}

// NewHandler constructs the auth handler. m may be nil.
func NewHandler(
	log *slog.Logger,
	store identity.Store,
	hasher password.Config,
	tokens *token.Service,
	presence *realtime.Presence,
	gen *ids.Snowflake,
	m *metrics.Set,
) *Handler {
	if log == nil {
		log = slog.Default()
	}

	h := &Handler{
		log:      log,
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		presence: presence,
		ids:      gen,
		metrics:  m,
	}

	if hash, err := hasher.Hash("dummy-password-for-timing-only"); err == nil {
		h.dummyHash = hash
	}

	return h
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/register", h.handleRegister)
	mux.HandleFunc("POST /auth/login", h.handleLogin)
	mux.HandleFunc("GET /auth/status", h.handleStatus)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		WriteError(w, http.StatusBadRequest, "invalid_request", "username and password are required")
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		h.log.Error("auth.register.hash.fail", "err", err)
		WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	u := identity.User{
		ID:           identity.UserID(h.ids.Next()),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	h.metrics.IDIssued()

	// The insert itself is the existence check: the store's uniqueness
	// guarantee makes concurrent registrations for one username race-free.
	switch err := h.store.InsertUser(r.Context(), u); {
	case err == nil:
		h.metrics.Registered()
		h.log.Info("auth.register.ok", "user_id", u.ID)
		WriteJSON(w, http.StatusOK, registerResponse{Status: registerStatusSuccess})
	case identity.IsConflict(err):
		WriteJSON(w, http.StatusOK, registerResponse{Status: registerStatusUserExists})
	default:
		h.log.Error("auth.register.store.fail", "err", err)
		WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		WriteError(w, http.StatusBadRequest, "invalid_request", "username and password are required")
		return
	}

	user, err := h.store.FindUserByUsername(r.Context(), username)
	if identity.IsNotFound(err) {
		// Timing resistance: burn a verify even though the user is missing.
		if h.dummyHash != "" {
			h.hasher.Verify(h.dummyHash, req.Password)
		}
		h.metrics.AuthFailure()
		WriteJSON(w, http.StatusOK, loginResponse{Status: loginStatusUserNotFound})
		return
	}
	if err != nil {
		h.log.Error("auth.login.store.fail", "err", err)
		WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	if !h.hasher.Verify(user.PasswordHash, req.Password) {
		h.metrics.AuthFailure()
		WriteJSON(w, http.StatusOK, loginResponse{Status: loginStatusInvalidPassword})
		return
	}

	tok, err := h.tokens.Issue(user.ID, time.Now().UTC())
	if err != nil {
		h.log.Error("auth.login.issue.fail", "err", err)
		WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	h.presence.Add(user.ID)
	h.metrics.AuthSuccess()
	h.log.Info("auth.login.ok", "user_id", user.ID)

	WriteJSON(w, http.StatusOK, loginResponse{
		Status: loginLoggedIn{LoggedIn: loginToken{Token: tok}},
	})
}

// handleStatus reports whether the presented bearer token is still good.
// No store lookup here: the endpoint answers "can this token proceed", and
// an absent or bad token is a normal "login" answer, not an error.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	tok := bearerToken(r)
	if tok == "" {
		WriteJSON(w, http.StatusOK, statusResponse{Next: statusNextLogin})
		return
	}

	uid, err := h.tokens.Verify(tok, time.Now().UTC())
	if err != nil {
		WriteJSON(w, http.StatusOK, statusResponse{Next: statusNextLogin})
		return
	}

	WriteJSON(w, http.StatusOK, statusResponse{Next: statusProceed{Proceed: statusUID{UID: uid}}})
}

// bearerToken extracts the token text from the Authorization header.
// Returns "" for a missing header, a non-bearer scheme, or an empty token.
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return ""
	}
	scheme, rest, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(rest)
}
