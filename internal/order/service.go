package order

import (
	"context"
	"encoding/base32"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"FreshBasket/internal/auth"
	"FreshBasket/internal/cart"
	"FreshBasket/pkg/apperr"
)

const idAttempts = 5

var errNoUser = apperr.Kind(apperr.ErrInvalidInput, "order needs a user")

// 32 symbols without i, l, o, u: 8 characters carry 40 bits.
var idEncoding = base32.NewEncoding("0123456789abcdefghjkmnpqrstvwxyz").WithPadding(base32.NoPadding)

// NewID returns an 8-character order token.
func NewID() string {
	u := uuid.New()
	return idEncoding.EncodeToString(u[:5])
}

type Service struct {
	Store Store
	Log   *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewService(store Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{Store: store, Log: log, now: time.Now, newID: NewID}
}

// Create freezes items into a new order. total must equal the sum of subtotals.
func (s *Service) Create(ctx context.Context, email string, items []cart.LineItem, total decimal.Decimal, addr auth.Address, payment string) (Order, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return Order{}, errNoUser
	}

	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal)
	}
	if !sum.Equal(total) {
		return Order{}, fmt.Errorf("%w: total %s does not match items %s", apperr.ErrInvalidInput, total, sum)
	}

	if strings.TrimSpace(payment) == "" {
		payment = DefaultPayment
	}

	o := Order{
		UserEmail: email,
		Date:      s.now().UTC(),
		Items:     append([]cart.LineItem(nil), items...),
		Total:     total,
		Address:   addr,
		Payment:   payment,
	}

	for attempt := 0; attempt < idAttempts; attempt++ {
		o.ID = s.newID()
		err := s.Store.Insert(ctx, o)
		if err == nil {
			return o.clone(), nil
		}
		if !errors.Is(err, errDuplicateID) {
			return Order{}, err
		}
		s.Log.Warn("order id collision", zap.String("order_id", o.ID))
	}
	return Order{}, apperr.Unavailable("orders create", fmt.Errorf("no free order id after %d attempts", idAttempts))
}

// ListByUser returns newest first; orders with equal dates keep newest insertion first.
func (s *Service) ListByUser(ctx context.Context, email string) ([]Order, error) {
	orders, err := s.Store.ListByUser(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(orders)-1; i < j; i, j = i+1, j-1 {
		orders[i], orders[j] = orders[j], orders[i]
	}
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].Date.After(orders[j].Date) })
	return orders, nil
}

func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	o, ok, err := s.Store.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return Order{}, err
	}
	if !ok {
		return Order{}, ErrOrderNotFound
	}
	return o, nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.Store.Ping(ctx)
}
