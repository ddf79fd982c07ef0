package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/coder/websocket"

	"globchat/cmd/identity"
	"globchat/cmd/identity/ids"
	"globchat/cmd/internal/metrics"
)

const (
	wsDefaultReadLimit    = 64 << 10 // 64 KiB per frame
	wsDefaultWriteTimeout = 5 * time.Second
)

// TokenVerifier resolves a bearer token to an identity.
type TokenVerifier interface {
	Verify(token string, now time.Time) (identity.UserID, error)
}

// UserFinder is the slice of the store the gateway needs to confirm a
// token's identity still exists.
type UserFinder interface {
	FindUserByID(ctx context.Context, id identity.UserID) (identity.User, error)
}

// Gateway is the websocket entrypoint. It upgrades requests, optionally
// binds an identity from a bearer token, and drives each connection
// through its lifecycle.
type Gateway struct {
	log      *slog.Logger
	presence *Presence
	verify   TokenVerifier
	users    UserFinder
	metrics  *metrics.Set

	// Dev-only knob: skip origin verification (GLOBCHAT_WS_DEV_INSECURE).
	devInsecure bool

	readLimit    int64
	writeTimeout time.Duration
}

// NewGateway constructs a gateway. verify and users may be nil, in which
// case every connection is anonymous; m may be nil to disable metrics.
func NewGateway(log *slog.Logger, presence *Presence, verify TokenVerifier, users UserFinder, m *metrics.Set) *Gateway {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	if presence == nil {
		presence = NewPresence()
	}

	g := &Gateway{
		log:          log,
		presence:     presence,
		verify:       verify,
		users:        users,
		metrics:      m,
		readLimit:    wsDefaultReadLimit,
		writeTimeout: wsDefaultWriteTimeout,
	}

	if v := strings.TrimSpace(os.Getenv("GLOBCHAT_WS_DEV_INSECURE")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			g.devInsecure = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("GLOBCHAT_WS_WRITE_TIMEOUT")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			g.writeTimeout = d
		}
	}

	return g
}

// ServeHTTP adapter so the gateway can be mounted as http.Handler.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.HandleWS(w, r)
}

// HandleWS upgrades an HTTP request and runs the connection lifecycle.
//
// A bearer token is optional on this endpoint: when present it must be
// valid and belong to a known user, binding that identity to the session
// for its lifetime; when absent the connection stays anonymous. A token
// that is present but bad is an authentication failure, not an anonymous
// success.
func (g *Gateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	bound, ok := g.authenticate(w, r)
	if !ok {
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: g.devInsecure,
	})
	if err != nil {
		// Upgrade failed: the connection was never opened, nothing to clean up.
		g.log.Info("ws.accept.fail", "err", err, "remote", r.RemoteAddr)
		return
	}

	conn.SetReadLimit(g.readLimit)

	sessionID, err := ids.NewULID(time.Now().UTC())
	if err != nil {
		_ = conn.Close(websocket.StatusInternalError, "session id")
		return
	}

	sess := &Session{
		ID:       sessionID,
		Remote:   r.RemoteAddr,
		conn:     conn,
		userID:   bound,
		presence: g.presence,
		metrics:  g.metrics,
		state:    stateUpgrading,
	}

	g.metrics.ConnOpened()
	if bound != nil {
		g.presence.Add(*bound)
	}

	// Exit guarantee: every path out of the loop below lands here exactly
	// once, releasing the conn and the presence entry.
	defer sess.finish(websocket.StatusNormalClosure, "bye")

	sess.setState(stateOpen)
	g.log.Info("ws.open", "session_id", sess.ID, "remote", sess.Remote, "authenticated", bound != nil)

	g.serve(r.Context(), sess)
}

// serve runs the Open-state message loop until a terminal transition.
// Ping/pong frames are answered by the websocket library itself, which is
// the "ignore and keep waiting" behavior for non-data frames.
func (g *Gateway) serve(ctx context.Context, sess *Session) {
	for {
		typ, data, err := sess.conn.Read(ctx)
		if err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				// Peer-initiated close: straight to Closed, nothing further
				// is sent (the library completes the close handshake).
				g.log.Info("ws.close.peer", "session_id", sess.ID, "status", int(status))
				sess.finish(websocket.StatusNormalClosure, "")
				return
			}
			// Abrupt disconnect or canceled context.
			g.log.Info("ws.close.abrupt", "session_id", sess.ID, "err", err)
			sess.finish(websocket.StatusAbnormalClosure, "read failed")
			return
		}

		switch typ {
		case websocket.MessageText:
			if err := g.handleText(ctx, sess, data); err != nil {
				// One failing message terminates only this connection. The
				// error was already reported to the peer best-effort.
				sess.setState(stateClosing)
				g.log.Info("ws.close.error", "session_id", sess.ID, "err", err)
				sess.finish(websocket.StatusProtocolError, "message handling failed")
				return
			}

		case websocket.MessageBinary:
			// Binary payloads are rejected unilaterally, regardless of peer
			// cooperation: structured error, then close.
			g.writeErr(ctx, sess, "binary messages not supported")
			sess.setState(stateClosing)
			sess.finish(websocket.StatusUnsupportedData, "binary messages not supported")
			return
		}
	}
}

// handleText decodes one structured payload and echoes an acknowledgment.
// On decode failure the error is reported once to the peer and returned so
// the loop terminates.
func (g *Gateway) handleText(ctx context.Context, sess *Session, data []byte) error {
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		g.writeErr(ctx, sess, "invalid JSON payload")
		return err
	}

	ack := ackMessage{Received: true, Echo: json.RawMessage(data)}
	if err := g.writeJSON(ctx, sess, ack); err != nil {
		// Send failure: the peer likely vanished mid-write; reporting to it
		// is pointless, terminate the loop.
		return err
	}
	return nil
}

// writeErr sends a structured error to the peer, best-effort.
func (g *Gateway) writeErr(ctx context.Context, sess *Session, msg string) {
	_ = g.writeJSON(ctx, sess, errMessage{Error: msg})
}

func (g *Gateway) writeJSON(parent context.Context, sess *Session, v any) error {
	ctx, cancel := context.WithTimeout(parent, g.writeTimeout)
	defer cancel()

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return sess.conn.Write(ctx, websocket.MessageText, b)
}

// authenticate resolves an optional bearer token. Returns (nil, true) for
// an anonymous connection, (id, true) for a bound one, and (nil, false)
// after writing a 401 when a presented token fails verification or names
// an unknown user.
func (g *Gateway) authenticate(w http.ResponseWriter, r *http.Request) (*identity.UserID, bool) {
	tok := bearerFromRequest(r)
	if tok == "" || g.verify == nil {
		return nil, true
	}

	uid, err := g.verify.Verify(tok, time.Now().UTC())
	if err != nil {
		g.metrics.AuthFailure()
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return nil, false
	}

	if g.users != nil {
		if _, err := g.users.FindUserByID(r.Context(), uid); err != nil {
			// A valid token for a deleted/unknown user is unauthenticated.
			g.metrics.AuthFailure()
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return nil, false
		}
	}

	return &uid, true
}

// bearerFromRequest extracts the token from the Authorization header or,
// for browser websocket clients that cannot set headers, from the "token"
// query parameter.
func bearerFromRequest(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h != "" {
		if strings.HasPrefix(h, "Bearer ") || strings.HasPrefix(h, "bearer ") {
			return strings.TrimSpace(h[len("Bearer "):])
		}
		return ""
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}
