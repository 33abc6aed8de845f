package cart

import (
	"sort"

	"github.com/shopspring/decimal"

	"FreshBasket/internal/catalog"
)

type LineItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type Priced struct {
	Items []LineItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// Price joins the cart against a catalog snapshot. Lines whose product is gone
// are dropped without error. Items come back in catalog id order.
func Price(c Cart, products []catalog.Product) Priced {
	byID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return catalog.LessID(ids[i], ids[j]) })

	out := Priced{Items: make([]LineItem, 0, len(ids)), Total: decimal.Zero}
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			continue
		}
		qty := c[id]
		sub := p.Price.Mul(qty)
		out.Items = append(out.Items, LineItem{
			ProductID: id,
			Name:      p.Name,
			Quantity:  qty,
			Price:     p.Price,
			Subtotal:  sub,
		})
		out.Total = out.Total.Add(sub)
	}
	return out
}
