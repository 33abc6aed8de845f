// Package cart holds the per-session shopping cart and the pricing of a cart
// against the current catalog.
package cart

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"FreshBasket/pkg/apperr"
)

var ErrInvalidQuantity = apperr.Kind(apperr.ErrInvalidInput, "invalid quantity")

// Cart maps product id to a positive quantity. Lines at or below zero are never stored.
type Cart map[string]decimal.Decimal

// ParseQuantity reads a form or JSON quantity. Blank means one.
func ParseQuantity(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NewFromInt(1), nil
	}
	q, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidQuantity, raw)
	}
	return q, nil
}

// Add accumulates qty onto the line for id.
func (c Cart) Add(id string, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidQuantity, qty)
	}
	c[id] = c[id].Add(qty)
	return nil
}

// SetQuantity overwrites the line; zero or less removes it.
func (c Cart) SetQuantity(id string, qty decimal.Decimal) {
	if !qty.IsPositive() {
		delete(c, id)
		return
	}
	c[id] = qty
}

func (c Cart) Remove(id string) {
	delete(c, id)
}

// Count is the number of distinct lines, not units.
func (c Cart) Count() int {
	return len(c)
}

func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for id, q := range c {
		out[id] = q
	}
	return out
}
