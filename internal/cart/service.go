package cart

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"FreshBasket/internal/catalog"
	"FreshBasket/pkg/kit"
)

// Catalog is the slice of the product catalog a cart needs.
type Catalog interface {
	Find(ctx context.Context, id string) (catalog.Product, error)
	List(ctx context.Context) ([]catalog.Product, error)
}

// Service binds cart operations to a session id.
type Service struct {
	Store   Store
	Catalog Catalog
	Metrics *kit.Metrics
	Log     *zap.Logger
}

// View is a priced cart as handed to the presentation layer.
type View struct {
	Priced
	Count int `json:"count"`
}

func (s *Service) Load(ctx context.Context, sid string) (Cart, error) {
	return s.Store.Load(ctx, sid)
}

// Add puts qty more of product id into the session cart.
// An unknown product leaves the cart untouched.
func (s *Service) Add(ctx context.Context, sid, id string, qty decimal.Decimal) (int, error) {
	if !qty.IsPositive() {
		return 0, ErrInvalidQuantity
	}
	p, err := s.Catalog.Find(ctx, id)
	if err != nil {
		return 0, err
	}

	c, err := s.Store.Load(ctx, sid)
	if err != nil {
		return 0, err
	}
	if err := c.Add(p.ID, qty); err != nil {
		return 0, err
	}
	if err := s.Store.Save(ctx, sid, c); err != nil {
		return 0, err
	}

	s.Metrics.CartMutation("add")
	return c.Count(), nil
}

func (s *Service) SetQuantity(ctx context.Context, sid, id string, qty decimal.Decimal) (View, error) {
	c, err := s.Store.Load(ctx, sid)
	if err != nil {
		return View{}, err
	}
	c.SetQuantity(id, qty)
	if err := s.Store.Save(ctx, sid, c); err != nil {
		return View{}, err
	}

	s.Metrics.CartMutation("update")
	return s.price(ctx, c)
}

func (s *Service) Remove(ctx context.Context, sid, id string) (View, error) {
	c, err := s.Store.Load(ctx, sid)
	if err != nil {
		return View{}, err
	}
	c.Remove(id)
	if err := s.Store.Save(ctx, sid, c); err != nil {
		return View{}, err
	}

	s.Metrics.CartMutation("remove")
	return s.price(ctx, c)
}

func (s *Service) Count(ctx context.Context, sid string) (int, error) {
	c, err := s.Store.Load(ctx, sid)
	if err != nil {
		return 0, err
	}
	return c.Count(), nil
}

// View prices the session cart against the current catalog.
func (s *Service) View(ctx context.Context, sid string) (View, error) {
	c, err := s.Store.Load(ctx, sid)
	if err != nil {
		return View{}, err
	}
	return s.price(ctx, c)
}

func (s *Service) Clear(ctx context.Context, sid string) error {
	if err := s.Store.Clear(ctx, sid); err != nil {
		return err
	}
	s.Metrics.CartMutation("clear")
	return nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.Store.Ping(ctx)
}

func (s *Service) price(ctx context.Context, c Cart) (View, error) {
	products, err := s.Catalog.List(ctx)
	if err != nil {
		return View{}, err
	}
	return View{Priced: Price(c, products), Count: c.Count()}, nil
}
