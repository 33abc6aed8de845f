package catalog

import (
	"context"
	"sync"
)

type MemStore struct {
	mu sync.RWMutex
	m  map[string]Product
}

func NewMemStore() *MemStore {
	return &MemStore{m: map[string]Product{}}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) List(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p.clone())
	}
	sortByID(out)
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id string) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.m[id]
	return p.clone(), ok, nil
}

func (s *MemStore) Create(ctx context.Context, p Product) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]Product, 0, len(s.m))
	for _, existing := range s.m {
		all = append(all, existing)
	}
	p.ID = nextSequentialID(all)
	s.m[p.ID] = p.clone()
	return p, nil
}

func (s *MemStore) Update(ctx context.Context, p Product) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[p.ID]; !ok {
		return false, nil
	}
	s.m[p.ID] = p.clone()
	return true, nil
}

func (s *MemStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}

func (s *MemStore) Seed(ctx context.Context, ps []Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.m) > 0 {
		return nil
	}
	for _, p := range ps {
		s.m[p.ID] = p.clone()
	}
	return nil
}
