package order

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"FreshBasket/internal/auth"
	"FreshBasket/internal/cart"
	"FreshBasket/internal/catalog"
	"FreshBasket/internal/notify"
	"FreshBasket/pkg/kit"
)

type captureNotifier struct {
	mu  sync.Mutex
	got []notify.Message
}

func (n *captureNotifier) Notify(m notify.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, m)
}

type failingOrders struct{ Store }

func (failingOrders) Insert(context.Context, Order) error { return errors.New("disk full") }

type checkoutFixture struct {
	checkout *Checkout
	notifier *captureNotifier
	metrics  *kit.Metrics
}

func newCheckout(t *testing.T, orders Store) checkoutFixture {
	t.Helper()

	cat := catalog.NewService(catalog.NewMemStore(), nil)
	users := auth.NewDirectory(auth.NewMemStore(), nil)
	users.Cost = bcrypt.MinCost
	metrics := kit.NewMetrics(prometheus.NewRegistry())
	n := &captureNotifier{}

	return checkoutFixture{
		checkout: &Checkout{
			Carts:    &cart.Service{Store: cart.NewMemStore(), Catalog: cat, Metrics: metrics},
			Users:    users,
			Orders:   NewService(orders, nil),
			Notifier: n,
			Metrics:  metrics,
			Log:      zap.NewNop(),
		},
		notifier: n,
		metrics:  metrics,
	}
}

var testAddr = auth.Address{Name: "Asha", Phone: "98450", Address: "12 Market Rd", Pincode: "560001", Taluk: "Hebbal"}

func TestCheckout_BananaPapaya(t *testing.T) {
	ctx := context.Background()
	f := newCheckout(t, NewMemStore())
	sess := auth.Session{SID: "s1", Email: "asha@example.com"}

	_, err := f.checkout.Carts.Add(ctx, sess.SID, "1", decimal.NewFromInt(2))
	require.NoError(t, err)
	_, err = f.checkout.Carts.Add(ctx, sess.SID, "2", decimal.NewFromInt(1))
	require.NoError(t, err)

	sum, err := f.checkout.Prepare(ctx, sess)
	require.NoError(t, err)
	assert.True(t, sum.Total.Equal(decimal.NewFromInt(160)))
	assert.Equal(t, auth.Address{}, sum.Address)

	o, err := f.checkout.Place(ctx, sess, testAddr, "")
	require.NoError(t, err)
	assert.True(t, o.Total.Equal(decimal.NewFromInt(160)))
	assert.Equal(t, DefaultPayment, o.Payment)
	assert.Equal(t, testAddr, o.Address)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "Banana", o.Items[0].Name)
	assert.True(t, o.Items[0].Subtotal.Equal(decimal.NewFromInt(80)))

	n, err := f.checkout.Carts.Count(ctx, sess.SID)
	require.NoError(t, err)
	assert.Zero(t, n, "cart is cleared")

	saved, err := f.checkout.Users.GetAddress(ctx, sess.Email)
	require.NoError(t, err)
	assert.Equal(t, testAddr, saved)

	list, err := f.checkout.Orders.ListByUser(ctx, sess.Email)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	assert.Equal(t, o.ID, list[0].ID)

	require.Len(t, f.notifier.got, 1)
	assert.Equal(t, "FreshBasket Order Confirmed", f.notifier.got[0].Subject)
	assert.Equal(t, "New Order "+o.ID+" placed by Asha for ₹160.00", f.notifier.got[0].Body)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.OrdersPlaced))
}

func TestCheckout_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newCheckout(t, NewMemStore())
	sess := auth.Session{SID: "s2", Email: "b@example.com"}

	_, err := f.checkout.Place(ctx, sess, testAddr, "")
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = f.checkout.Carts.Add(ctx, sess.SID, "3", decimal.NewFromInt(1))
	require.NoError(t, err)

	_, err = f.checkout.Place(ctx, sess, auth.Address{Name: "B"}, "")
	assert.ErrorIs(t, err, ErrIncompleteAddress)

	assert.Empty(t, f.notifier.got)
}

func TestCheckout_StoreFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	f := newCheckout(t, failingOrders{Store: NewMemStore()})
	sess := auth.Session{SID: "s3", Email: "c@example.com"}

	_, err := f.checkout.Carts.Add(ctx, sess.SID, "1", decimal.NewFromInt(1))
	require.NoError(t, err)

	_, err = f.checkout.Place(ctx, sess, testAddr, "")
	require.Error(t, err)

	n, err := f.checkout.Carts.Count(ctx, sess.SID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, f.notifier.got)
}

func TestCheckout_DeletedProductIsDropped(t *testing.T) {
	ctx := context.Background()
	f := newCheckout(t, NewMemStore())
	sess := auth.Session{SID: "s4", Email: "d@example.com"}

	_, err := f.checkout.Carts.Add(ctx, sess.SID, "1", decimal.NewFromInt(1))
	require.NoError(t, err)
	_, err = f.checkout.Carts.Add(ctx, sess.SID, "5", decimal.NewFromInt(2))
	require.NoError(t, err)

	cat := f.checkout.Carts.Catalog.(*catalog.Service)
	require.NoError(t, cat.Delete(ctx, "5"))

	o, err := f.checkout.Place(ctx, sess, testAddr, "")
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.True(t, o.Total.Equal(decimal.NewFromInt(40)))
}
