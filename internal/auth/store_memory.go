package auth

import (
	"context"
	"sync"
)

type MemStore struct {
	mu      sync.RWMutex
	byEmail map[string]User
}

func NewMemStore() *MemStore {
	return &MemStore{byEmail: make(map[string]User)}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Create(ctx context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.byEmail[u.Email]; ok {
		if prev.Hash != "" {
			return ErrEmailExists
		}
		u.Address = prev.Address
	}
	s.byEmail[u.Email] = u
	return nil
}

func (s *MemStore) Get(ctx context.Context, email string) (User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byEmail[email]
	return u, ok, nil
}

func (s *MemStore) UpsertAddress(ctx context.Context, email string, addr Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byEmail[email]
	if !ok {
		u = User{Email: email}
	}
	u.Address = addr
	s.byEmail[email] = u
	return nil
}
