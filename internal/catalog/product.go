package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"FreshBasket/pkg/apperr"
)

var (
	ErrProductNotFound = apperr.Kind(apperr.ErrNotFound, "product not found")
	ErrInvalidProduct  = apperr.Kind(apperr.ErrInvalidInput, "invalid product")
)

type Product struct {
	ID    string           `json:"id"`
	Name  string           `json:"name"`
	Price decimal.Decimal  `json:"price"`
	MRP   *decimal.Decimal `json:"mrp,omitempty"`
	Image string           `json:"image"`
}

// Input is the admin form for creating or editing a product.
// Prices arrive as text and are validated by Parse.
type Input struct {
	Name  string `json:"name"`
	Price string `json:"price"`
	MRP   string `json:"mrp"`
	Image string `json:"image"`
}

// Parse validates the form. A blank MRP falls back to the price.
func (in Input) Parse() (Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Product{}, invalid("name required")
	}

	price, err := parseAmount(in.Price)
	if err != nil {
		return Product{}, invalid("price: " + err.Error())
	}

	mrp := price
	if strings.TrimSpace(in.MRP) != "" {
		if mrp, err = parseAmount(in.MRP); err != nil {
			return Product{}, invalid("mrp: " + err.Error())
		}
	}

	return Product{
		Name:  name,
		Price: price,
		MRP:   &mrp,
		Image: strings.TrimSpace(in.Image),
	}, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, errNotANumber
	}
	if d.IsNegative() {
		return decimal.Decimal{}, errNegative
	}
	return d, nil
}

var (
	errNotANumber = errors.New("must be a number")
	errNegative   = errors.New("must not be negative")
)

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidProduct, msg)
}

func (p Product) clone() Product {
	if p.MRP != nil {
		mrp := *p.MRP
		p.MRP = &mrp
	}
	return p
}

func cloneAll(ps []Product) []Product {
	out := make([]Product, len(ps))
	for i, p := range ps {
		out[i] = p.clone()
	}
	return out
}

// sortByID orders numeric ids numerically ahead of opaque ids, which sort lexically.
func sortByID(ps []Product) {
	sort.SliceStable(ps, func(i, j int) bool { return LessID(ps[i].ID, ps[j].ID) })
}

// LessID is the catalog's id order.
func LessID(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

// nextSequentialID is max integer id + 1; opaque ids are ignored.
func nextSequentialID(ps []Product) string {
	var maxID int64
	for _, p := range ps {
		if n, err := strconv.ParseInt(p.ID, 10, 64); err == nil && n > maxID {
			maxID = n
		}
	}
	return strconv.FormatInt(maxID+1, 10)
}

func matches(p Product, q string) bool {
	return strings.Contains(strings.ToLower(p.Name), q)
}

// errNoChange aborts a document update that would not modify anything.
var errNoChange = errors.New("no change")
