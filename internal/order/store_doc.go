package order

import (
	"context"
	"time"

	"FreshBasket/internal/docstore"
)

// DocStore appends orders to one "orders" document.
type DocStore struct {
	doc *docstore.Collection[[]Order]
}

func NewDocStore(b docstore.Backend, timeout time.Duration) *DocStore {
	return &DocStore{doc: docstore.NewCollection[[]Order](b, "orders", timeout)}
}

func (s *DocStore) Ping(ctx context.Context) error {
	return s.doc.Ping(ctx)
}

func (s *DocStore) Insert(ctx context.Context, o Order) error {
	return s.doc.Update(ctx, func(orders *[]Order, _ bool) error {
		for _, existing := range *orders {
			if existing.ID == o.ID {
				return errDuplicateID
			}
		}
		*orders = append(*orders, o.clone())
		return nil
	})
}

func (s *DocStore) ListByUser(ctx context.Context, email string) ([]Order, error) {
	orders, _, err := s.doc.Load(ctx)
	if err != nil {
		return nil, err
	}

	var out []Order
	for _, o := range orders {
		if o.UserEmail == email {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *DocStore) Get(ctx context.Context, id string) (Order, bool, error) {
	orders, _, err := s.doc.Load(ctx)
	if err != nil {
		return Order{}, false, err
	}
	for _, o := range orders {
		if o.ID == id {
			return o, true, nil
		}
	}
	return Order{}, false, nil
}
