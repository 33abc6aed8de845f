package catalog

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FreshBasket/internal/sqldb"
	"FreshBasket/pkg/apperr"
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewSQLStore(&sqldb.DB{SQL: db, Dialect: sqldb.Postgres, Timeout: time.Second}), mock
}

func TestSQLStore_CreateRetriesOnCollision(t *testing.T) {
	s, mock := newMockStore(t)
	insert := regexp.QuoteMeta("INSERT INTO products (id, name, price, mrp, image) VALUES ($1, $2, $3, $4, $5)")

	mock.ExpectExec(insert).
		WithArgs(sqlmock.AnyArg(), "Kiwi", sqlmock.AnyArg(), sqlmock.AnyArg(), "").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectExec(insert).
		WithArgs(sqlmock.AnyArg(), "Kiwi", sqlmock.AnyArg(), sqlmock.AnyArg(), "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	p, err := s.Create(context.Background(), Product{Name: "Kiwi", Price: decimal.NewFromInt(12)})
	require.NoError(t, err)
	assert.Len(t, p.ID, 8)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_UpdateMissingRow(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE products")).
		WithArgs("Ghost", sqlmock.AnyArg(), nil, "", "404").
		WillReturnResult(sqlmock.NewResult(0, 0))

	found, err := s.Update(context.Background(), Product{ID: "404", Name: "Ghost", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_GetNoRows(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WithArgs("7").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "mrp", "image"}))

	_, ok, err := s.Get(context.Background(), "7")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLStore_FailuresAreUnavailable(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, name, price, mrp, image").
		WillReturnError(errors.New("connection reset"))

	_, err := s.List(context.Background())
	assert.ErrorIs(t, err, apperr.ErrStorageUnavailable)
}

func TestSQLStore_SQLiteLifecycle(t *testing.T) {
	ctx := context.Background()
	db, err := sqldb.OpenSQLite(ctx, filepath.Join(t.TempDir(), "catalog.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := NewSQLStore(db)
	require.NoError(t, store.Migrate(ctx))
	svc := NewService(store, nil)

	ps, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, ps, 22)
	assert.Equal(t, "Banana", ps[0].Name)
	assert.True(t, ps[0].Price.Equal(decimal.NewFromInt(40)))
	assert.Nil(t, ps[0].MRP)

	// A second seed must not duplicate or fail.
	require.NoError(t, store.Seed(ctx, DefaultProducts()))

	created, err := svc.Create(ctx, Input{Name: "Kiwi", Price: "12.25", MRP: "15"})
	require.NoError(t, err)
	assert.Len(t, created.ID, 8)

	updated, err := svc.Update(ctx, created.ID, Input{Name: "Gold Kiwi", Price: "13"})
	require.NoError(t, err)
	assert.True(t, updated.MRP.Equal(decimal.NewFromInt(13)))

	got, err := svc.Find(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gold Kiwi", got.Name)

	require.NoError(t, svc.Delete(ctx, created.ID))
	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Find(ctx, created.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 22)
}

func TestScanProduct_NullMRP(t *testing.T) {
	assert.Equal(t, decimal.NullDecimal{}, nullMRP(nil))

	var row fakeRow = []any{"1", "Banana", "40", nil, ""}
	p, err := scanProduct(row)
	require.NoError(t, err)
	assert.Nil(t, p.MRP)
}

type fakeRow []any

func (r fakeRow) Scan(dest ...any) error {
	for i, d := range dest {
		switch d := d.(type) {
		case *string:
			*d = r[i].(string)
		case sql.Scanner:
			if err := d.Scan(r[i]); err != nil {
				return err
			}
		}
	}
	return nil
}
