package realtime

import (
	"sync"

	"globchat/cmd/identity"
)

// Presence is the process-wide set of identities holding a live session.
//
// Concurrency guarantees:
//   - All mutations are serialized by one mutex.
//   - Add is idempotent: at most one entry per identity.
//   - Remove removes the identity entirely; racing removals collapse to one
//     logical removal.
type Presence struct {
	mu  sync.Mutex
	set map[identity.UserID]struct{}
}

// NewPresence constructs an empty registry.
func NewPresence() *Presence {
	return &Presence{set: make(map[identity.UserID]struct{})}
}

// Add records the identity as present. Duplicate adds are no-ops.
func (p *Presence) Add(id identity.UserID) {
	p.mu.Lock()
	p.set[id] = struct{}{}
	p.mu.Unlock()
}

// Remove clears the identity's presence. Removing an absent identity is a no-op.
func (p *Presence) Remove(id identity.UserID) {
	p.mu.Lock()
	delete(p.set, id)
	p.mu.Unlock()
}

// Contains reports whether the identity is currently present.
func (p *Presence) Contains(id identity.UserID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.set[id]
	return ok
}

// Len returns the number of present identities.
func (p *Presence) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.set)
}

// List returns a snapshot of present identities (order unspecified).
func (p *Presence) List() []identity.UserID {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]identity.UserID, 0, len(p.set))
	for id := range p.set {
		out = append(out, id)
	}
	return out
}
