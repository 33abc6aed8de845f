package catalog

import (
	"context"
	"time"

	"FreshBasket/internal/docstore"
)

// DocStore keeps the whole catalog in one "products" document.
type DocStore struct {
	doc *docstore.Collection[[]Product]
}

func NewDocStore(b docstore.Backend, timeout time.Duration) *DocStore {
	return &DocStore{doc: docstore.NewCollection[[]Product](b, "products", timeout)}
}

func (s *DocStore) Ping(ctx context.Context) error {
	return s.doc.Ping(ctx)
}

func (s *DocStore) List(ctx context.Context) ([]Product, error) {
	ps, _, err := s.doc.Load(ctx)
	if err != nil {
		return nil, err
	}
	return cloneAll(ps), nil
}

func (s *DocStore) Get(ctx context.Context, id string) (Product, bool, error) {
	ps, _, err := s.doc.Load(ctx)
	if err != nil {
		return Product{}, false, err
	}
	for _, p := range ps {
		if p.ID == id {
			return p.clone(), true, nil
		}
	}
	return Product{}, false, nil
}

func (s *DocStore) Create(ctx context.Context, p Product) (Product, error) {
	err := s.doc.Update(ctx, func(ps *[]Product, _ bool) error {
		p.ID = nextSequentialID(*ps)
		*ps = append(*ps, p.clone())
		return nil
	})
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *DocStore) Update(ctx context.Context, p Product) (bool, error) {
	found := false
	err := s.doc.Update(ctx, func(ps *[]Product, _ bool) error {
		for i := range *ps {
			if (*ps)[i].ID == p.ID {
				(*ps)[i] = p.clone()
				found = true
				return nil
			}
		}
		return errNoChange
	})
	if err == errNoChange {
		return false, nil
	}
	return found, err
}

func (s *DocStore) Delete(ctx context.Context, id string) error {
	err := s.doc.Update(ctx, func(ps *[]Product, _ bool) error {
		kept := (*ps)[:0]
		removed := false
		for _, p := range *ps {
			if p.ID == id {
				removed = true
				continue
			}
			kept = append(kept, p)
		}
		if !removed {
			return errNoChange
		}
		*ps = kept
		return nil
	})
	if err == errNoChange {
		return nil
	}
	return err
}

func (s *DocStore) Seed(ctx context.Context, defaults []Product) error {
	err := s.doc.Update(ctx, func(ps *[]Product, _ bool) error {
		if len(*ps) > 0 {
			return errNoChange
		}
		*ps = cloneAll(defaults)
		return nil
	})
	if err == errNoChange {
		return nil
	}
	return err
}
