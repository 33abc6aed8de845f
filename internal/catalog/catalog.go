package catalog

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Store is the persistence port behind the catalog.
// Create assigns the id; Update reports whether the id existed; Delete of an unknown id is not an error.
type Store interface {
	Ping(ctx context.Context) error
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (Product, bool, error)
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, p Product) (bool, error)
	Delete(ctx context.Context, id string) error
	// Seed stores ps only if the catalog is empty.
	Seed(ctx context.Context, ps []Product) error
}

type Service struct {
	Store Store
	Log   *zap.Logger
}

func NewService(store Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{Store: store, Log: log}
}

// List returns every product ordered by id, seeding the defaults into an empty store.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	ps, err := s.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(ps) > 0 {
		sortByID(ps)
		return ps, nil
	}

	if err := s.Store.Seed(ctx, DefaultProducts()); err != nil {
		return nil, err
	}
	s.Log.Info("catalog seeded with default products")

	ps, err = s.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	sortByID(ps)
	return ps, nil
}

func (s *Service) Find(ctx context.Context, id string) (Product, error) {
	id = strings.TrimSpace(id)
	p, ok, err := s.Store.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if ok {
		return p, nil
	}

	// A miss on a never-seeded store goes through List, which seeds it.
	ps, err := s.List(ctx)
	if err != nil {
		return Product{}, err
	}
	for _, p := range ps {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrProductNotFound
}

// Search matches q case-insensitively against product names. A blank q lists everything.
func (s *Service) Search(ctx context.Context, q string) ([]Product, error) {
	ps, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return ps, nil
	}

	out := make([]Product, 0, len(ps))
	for _, p := range ps {
		if matches(p, q) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, in Input) (Product, error) {
	p, err := in.Parse()
	if err != nil {
		return Product{}, err
	}
	if err := s.seeded(ctx); err != nil {
		return Product{}, err
	}
	return s.Store.Create(ctx, p)
}

// Update overwrites every field of an existing product.
func (s *Service) Update(ctx context.Context, id string, in Input) (Product, error) {
	p, err := in.Parse()
	if err != nil {
		return Product{}, err
	}
	p.ID = strings.TrimSpace(id)
	if err := s.seeded(ctx); err != nil {
		return Product{}, err
	}

	found, err := s.Store.Update(ctx, p)
	if err != nil {
		return Product{}, err
	}
	if !found {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.seeded(ctx); err != nil {
		return err
	}
	return s.Store.Delete(ctx, strings.TrimSpace(id))
}

// seeded makes sure writes never land in a catalog that has not been seeded yet.
func (s *Service) seeded(ctx context.Context) error {
	_, err := s.List(ctx)
	return err
}

func (s *Service) Ping(ctx context.Context) error {
	return s.Store.Ping(ctx)
}
