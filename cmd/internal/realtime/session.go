package realtime

import (
	"sync"

	"github.com/coder/websocket"

	"globchat/cmd/identity"
	"globchat/cmd/internal/metrics"
)

// sessionState is the explicit lifecycle tag of one connection.
//
// Transitions: Upgrading → Open → Closing → Closed, with Closing skipped
// when the peer closes first. Closed is terminal.
type sessionState uint8

const (
	stateUpgrading sessionState = iota
	stateOpen
	stateClosing
	stateClosed
)

func (s sessionState) String() string {
	switch s {
	case stateUpgrading:
		return "upgrading"
	case stateOpen:
		return "open"
	case stateClosing:
		return "closing"
	case stateClosed:
		return "closed"
	}
	return "unknown"
}

// Session is the live state of one realtime connection: the socket handle,
// the peer address, and the bound identity when the transport was
// authenticated. It is owned exclusively by the gateway goroutine serving
// it; only finish() may be called from elsewhere.
type Session struct {
	ID     string
	Remote string

	conn     *websocket.Conn
	userID   *identity.UserID
	presence *Presence
	metrics  *metrics.Set

	mu    sync.Mutex
	state sessionState

	finishOnce sync.Once
}

func (s *Session) setState(next sessionState) {
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
}

// State returns the current lifecycle state.
func (s *Session) State() sessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// finish is the single scoped cleanup for every exit path: normal close,
// peer close, protocol error, abrupt disconnect, and forced shutdown. It is
// idempotent, so a forced shutdown racing a peer-initiated close converges
// on Closed with exactly one logical presence removal.
func (s *Session) finish(code websocket.StatusCode, reason string) {
	s.finishOnce.Do(func() {
		if s.userID != nil {
			s.presence.Remove(*s.userID)
		}
		_ = s.conn.Close(code, reason)
		s.setState(stateClosed)
		s.metrics.ConnClosed()
	})
}
