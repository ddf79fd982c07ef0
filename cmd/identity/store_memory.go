package identity

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store for development and tests.
//
// One mutex serializes every operation, which makes the username
// check-and-insert in InsertUser atomic for free.
type MemoryStore struct {
	mu         sync.Mutex
	users      map[UserID]User
	byUsername map[string]UserID
	channels   map[ChannelID]Channel
	messages   []Message
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[UserID]User),
		byUsername: make(map[string]UserID),
		channels:   make(map[ChannelID]Channel),
	}
}

func (s *MemoryStore) FindUserByID(_ context.Context, id UserID) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) FindUserByUsername(_ context.Context, username string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byUsername[username]
	if !ok {
		return User{}, ErrNotFound
	}
	return s.users[id], nil
}

func (s *MemoryStore) InsertUser(_ context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUsername[u.Username]; taken {
		return ErrConflict
	}
	s.users[u.ID] = u
	s.byUsername[u.Username] = u.ID
	return nil
}

func (s *MemoryStore) FindChannelByID(_ context.Context, id ChannelID) (Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.channels[id]
	if !ok {
		return Channel{}, ErrNotFound
	}
	return c, nil
}

func (s *MemoryStore) InsertChannel(_ context.Context, c Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.channels[c.ID] = c
	return nil
}

func (s *MemoryStore) FindMessages(_ context.Context, q MessagesQuery) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, 0, 16)
	for _, m := range s.messages {
		if m.ChannelID != q.Channel {
			continue
		}
		if m.CreatedAt.Before(q.From) {
			continue
		}
		if q.To != nil && m.CreatedAt.After(*q.To) {
			continue
		}
		out = append(out, m)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *MemoryStore) InsertMessage(_ context.Context, m Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, m)
	return nil
}

func (s *MemoryStore) Close(_ context.Context) error { return nil }
