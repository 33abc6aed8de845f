package order

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"FreshBasket/internal/auth"
	"FreshBasket/internal/cart"
	"FreshBasket/internal/notify"
	"FreshBasket/pkg/apperr"
	"FreshBasket/pkg/kit"
)

const confirmSubject = "FreshBasket Order Confirmed"

var (
	ErrEmptyCart         = apperr.Kind(apperr.ErrInvalidInput, "cart is empty")
	ErrIncompleteAddress = apperr.Kind(apperr.ErrInvalidInput, "name, phone, address and pincode are required")
)

// Notifier accepts a message for asynchronous delivery.
type Notifier interface {
	Notify(m notify.Message)
}

// Checkout turns a session cart into an order.
type Checkout struct {
	Carts    *cart.Service
	Users    *auth.Directory
	Orders   *Service
	Notifier Notifier
	Metrics  *kit.Metrics
	Log      *zap.Logger
}

// Summary is what the checkout page shows before the order is placed.
type Summary struct {
	cart.View
	Address auth.Address `json:"address"`
}

func (c *Checkout) Prepare(ctx context.Context, sess auth.Session) (Summary, error) {
	v, err := c.Carts.View(ctx, sess.SID)
	if err != nil {
		return Summary{}, err
	}
	addr, err := c.Users.GetAddress(ctx, sess.Email)
	if err != nil {
		return Summary{}, err
	}
	return Summary{View: v, Address: addr}, nil
}

// Place saves the address, writes the order, fires the notification and
// empties the cart, in that order. Notification and cart clearing failures
// do not fail a written order.
func (c *Checkout) Place(ctx context.Context, sess auth.Session, addr auth.Address, payment string) (o Order, err error) {
	ctx, span := kit.StartSpan(ctx, "checkout.place", attribute.String("session.id", sess.SID))
	defer func() { kit.EndSpan(span, err) }()

	if !complete(addr) {
		return Order{}, ErrIncompleteAddress
	}

	v, err := c.Carts.View(ctx, sess.SID)
	if err != nil {
		return Order{}, err
	}
	if len(v.Items) == 0 {
		return Order{}, ErrEmptyCart
	}

	if err := c.Users.UpdateAddress(ctx, sess.Email, addr); err != nil {
		return Order{}, err
	}

	o, err = c.Orders.Create(ctx, sess.Email, v.Items, v.Total, addr, payment)
	if err != nil {
		return Order{}, err
	}
	span.SetAttributes(attribute.String("order.id", o.ID))
	c.Metrics.OrderPlaced()
	c.Log.Info("order placed",
		zap.String("order_id", o.ID),
		zap.String("email", o.UserEmail),
		zap.String("total", o.Total.StringFixed(2)),
		zap.Int("items", len(o.Items)),
	)

	c.Notifier.Notify(confirmation(o))

	if err := c.Carts.Clear(ctx, sess.SID); err != nil {
		c.Log.Warn("cart not cleared after order", zap.Error(err), zap.String("order_id", o.ID))
	}
	return o, nil
}

func confirmation(o Order) notify.Message {
	name := strings.TrimSpace(o.Address.Name)
	if name == "" {
		name = o.UserEmail
	}
	return notify.Message{
		Subject: confirmSubject,
		Body:    fmt.Sprintf("New Order %s placed by %s for ₹%s", o.ID, name, o.Total.StringFixed(2)),
		OrderID: o.ID,
	}
}

func complete(a auth.Address) bool {
	for _, v := range []string{a.Name, a.Phone, a.Address, a.Pincode} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}
