package auth

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"FreshBasket/internal/docstore"
	"FreshBasket/internal/sqldb"
	"FreshBasket/pkg/apperr"
)

func userStores(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	b, err := docstore.NewDirBackend(t.TempDir())
	require.NoError(t, err)

	db, err := sqldb.OpenSQLite(ctx, filepath.Join(t.TempDir(), "users.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	sqlStore := NewSQLStore(db)
	require.NoError(t, sqlStore.Migrate(ctx))

	return map[string]Store{
		"memory": NewMemStore(),
		"doc":    NewDocStore(b, time.Second),
		"sqlite": sqlStore,
	}
}

func newDirectory(s Store) *Directory {
	d := NewDirectory(s, nil)
	d.Cost = bcrypt.MinCost
	return d
}

func TestDirectory_SignupAndAuthenticate(t *testing.T) {
	for name, store := range userStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			d := newDirectory(store)

			_, err := d.Signup(ctx, "not-an-email", "pw")
			assert.ErrorIs(t, err, ErrInvalidEmail)
			assert.ErrorIs(t, err, apperr.ErrInvalidInput)

			_, err = d.Signup(ctx, "a@b.com", "")
			assert.ErrorIs(t, err, apperr.ErrInvalidInput)

			u, err := d.Signup(ctx, "  Alice@Example.COM ", "s3cret")
			require.NoError(t, err)
			assert.Equal(t, "alice@example.com", u.Email)

			_, err = d.Signup(ctx, "alice@example.com", "other")
			assert.ErrorIs(t, err, ErrEmailExists)
			assert.ErrorIs(t, err, apperr.ErrAlreadyExists)

			got, err := d.Authenticate(ctx, "ALICE@example.com", "s3cret")
			require.NoError(t, err)
			assert.Equal(t, "alice@example.com", got.Email)

			_, err = d.Authenticate(ctx, "alice@example.com", "wrong")
			assert.ErrorIs(t, err, ErrInvalidCredentials)

			_, err = d.Authenticate(ctx, "nobody@example.com", "s3cret")
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestDirectory_AddressUpsert(t *testing.T) {
	for name, store := range userStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			d := newDirectory(store)

			_, err := d.Signup(ctx, "bob@example.com", "pw")
			require.NoError(t, err)

			empty, err := d.GetAddress(ctx, "bob@example.com")
			require.NoError(t, err)
			assert.Equal(t, Address{}, empty)

			first := Address{Name: "Bob", Phone: "99", Address: "1 Main St", Pincode: "560001", Taluk: "North"}
			require.NoError(t, d.UpdateAddress(ctx, "bob@example.com", first))

			second := Address{Name: "Bob B", Address: "2 Side St"}
			require.NoError(t, d.UpdateAddress(ctx, "bob@example.com", second))

			got, err := d.GetAddress(ctx, "bob@example.com")
			require.NoError(t, err)
			assert.Equal(t, second, got, "address is fully overwritten")

			_, err = d.Authenticate(ctx, "bob@example.com", "pw")
			assert.NoError(t, err, "address update must keep the password")

			// Unknown email gets a passwordless record that cannot log in.
			require.NoError(t, d.UpdateAddress(ctx, "ghost@example.com", first))
			got, err = d.GetAddress(ctx, "ghost@example.com")
			require.NoError(t, err)
			assert.Equal(t, first, got)
			_, err = d.Authenticate(ctx, "ghost@example.com", "")
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestDirectory_SignupClaimsAddressOnlyRecord(t *testing.T) {
	for name, store := range userStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			d := newDirectory(store)

			saved := Address{Name: "Dev", Phone: "1", Address: "3 Lane", Pincode: "560002"}
			require.NoError(t, d.UpdateAddress(ctx, "dev@example.com", saved))

			_, err := d.Signup(ctx, "dev@example.com", "pw")
			require.NoError(t, err)

			_, err = d.Authenticate(ctx, "dev@example.com", "pw")
			assert.NoError(t, err)

			got, err := d.GetAddress(ctx, "dev@example.com")
			require.NoError(t, err)
			assert.Equal(t, saved, got, "signup keeps the saved address")

			_, err = d.Signup(ctx, "dev@example.com", "again")
			assert.ErrorIs(t, err, ErrEmailExists)
		})
	}
}

func TestDirectory_SignupPasswordTooLong(t *testing.T) {
	d := newDirectory(NewMemStore())

	_, err := d.Signup(context.Background(), "a@b.com", strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	assert.True(t, apperr.IsExpected(err))

	_, ok, err := d.Store.Get(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdmin_Verify(t *testing.T) {
	a, err := NewAdmin("admin", "letmein", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, a.Verify("admin", "letmein"))
	assert.ErrorIs(t, a.Verify("admin", "nope"), ErrInvalidCredentials)
	assert.ErrorIs(t, a.Verify("root", "letmein"), ErrInvalidCredentials)

	disabled, err := NewAdmin("admin", "", bcrypt.MinCost)
	require.NoError(t, err)
	assert.ErrorIs(t, disabled.Verify("admin", ""), ErrInvalidCredentials)
}
