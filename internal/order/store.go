package order

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"FreshBasket/internal/auth"
	"FreshBasket/internal/cart"
	"FreshBasket/pkg/apperr"
)

const DefaultPayment = "Cash on Delivery"

var ErrOrderNotFound = apperr.Kind(apperr.ErrNotFound, "order not found")

// errDuplicateID is returned by a Store when the order id is already taken.
var errDuplicateID = errors.New("duplicate order id")

// Order is immutable once stored. Items and Address are snapshots.
type Order struct {
	ID        string          `json:"order_id"`
	UserEmail string          `json:"user_email"`
	Date      time.Time       `json:"date"`
	Items     []cart.LineItem `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Address   auth.Address    `json:"address"`
	Payment   string          `json:"payment"`
}

type Store interface {
	Ping(ctx context.Context) error
	// Insert appends o, failing with errDuplicateID if o.ID exists.
	Insert(ctx context.Context, o Order) error
	// ListByUser returns the user's orders in insertion order.
	ListByUser(ctx context.Context, email string) ([]Order, error)
	Get(ctx context.Context, id string) (Order, bool, error)
}

func (o Order) clone() Order {
	o.Items = append([]cart.LineItem(nil), o.Items...)
	return o
}
