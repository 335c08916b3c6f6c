package reconcile_test

import (
	"context"
	"sync"

	"github.com/edgard/yugram/internal/database"
)

// memStore is an in-memory reconcile.Store that counts calls.
type memStore struct {
	mu       sync.Mutex
	chats    map[int64]database.Chat
	users    map[int64]database.User
	messages map[int64]database.Message
	finds    int
	saves    int
	err      error
}

func newMemStore() *memStore {
	return &memStore{
		chats:    make(map[int64]database.Chat),
		users:    make(map[int64]database.User),
		messages: make(map[int64]database.Message),
	}
}

func (s *memStore) calls() (finds, saves int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finds, s.saves
}

func find[T any](s *memStore, m map[int64]T, id int64) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finds++
	if s.err != nil {
		return nil, s.err
	}
	v, ok := m[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func save[T any](s *memStore, m map[int64]T, id int64, v *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.err != nil {
		return s.err
	}
	m[id] = *v
	return nil
}

func (s *memStore) FindChat(_ context.Context, id int64) (*database.Chat, error) {
	return find(s, s.chats, id)
}

func (s *memStore) SaveChat(_ context.Context, c *database.Chat) error {
	return save(s, s.chats, c.ID, c)
}

func (s *memStore) FindUser(_ context.Context, id int64) (*database.User, error) {
	return find(s, s.users, id)
}

func (s *memStore) SaveUser(_ context.Context, u *database.User) error {
	return save(s, s.users, u.ID, u)
}

func (s *memStore) FindMessage(_ context.Context, id int64) (*database.Message, error) {
	return find(s, s.messages, id)
}

func (s *memStore) SaveMessage(_ context.Context, m *database.Message) error {
	return save(s, s.messages, m.ID, m)
}
