package cart

import (
	"context"
	"sync"
)

// Store keeps carts server side, keyed by session id.
// Load of an unknown session returns an empty cart.
type Store interface {
	Load(ctx context.Context, sid string) (Cart, error)
	Save(ctx context.Context, sid string, c Cart) error
	Clear(ctx context.Context, sid string) error
	Ping(ctx context.Context) error
}

type MemStore struct {
	mu sync.RWMutex
	m  map[string]Cart
}

func NewMemStore() *MemStore {
	return &MemStore{m: map[string]Cart{}}
}

func (s *MemStore) Load(ctx context.Context, sid string) (Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.m[sid]
	if !ok {
		return Cart{}, nil
	}
	return c.Clone(), nil
}

func (s *MemStore) Save(ctx context.Context, sid string, c Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(c) == 0 {
		delete(s.m, sid)
		return nil
	}
	s.m[sid] = c.Clone()
	return nil
}

func (s *MemStore) Clear(ctx context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, sid)
	return nil
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }
