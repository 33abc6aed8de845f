package order

import (
	"context"
	"sync"
)

type MemStore struct {
	mu     sync.RWMutex
	orders []Order
	byID   map[string]int
}

func NewMemStore() *MemStore {
	return &MemStore{byID: map[string]int{}}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Insert(ctx context.Context, o Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[o.ID]; ok {
		return errDuplicateID
	}
	s.byID[o.ID] = len(s.orders)
	s.orders = append(s.orders, o.clone())
	return nil
}

func (s *MemStore) ListByUser(ctx context.Context, email string) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Order
	for _, o := range s.orders {
		if o.UserEmail == email {
			out = append(out, o.clone())
		}
	}
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id string) (Order, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return Order{}, false, nil
	}
	return s.orders[i].clone(), true, nil
}
