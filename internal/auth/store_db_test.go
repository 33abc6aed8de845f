package auth

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
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

func TestSQLStore_CreateDuplicate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("a@b.com", "hash", sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := s.Create(context.Background(), User{Email: "a@b.com", Hash: "hash"})
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_CreateOnRegisteredEmail(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("WHERE users.pass_hash = ''")).
		WithArgs("a@b.com", "hash", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Create(context.Background(), User{Email: "a@b.com", Hash: "hash"})
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_UpsertAddressIsSingleStatement(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (email) DO UPDATE SET address = excluded.address")).
		WithArgs("a@b.com", `{"name":"A","phone":"","address":"x","pincode":"","taluk":""}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.UpsertAddress(context.Background(), "a@b.com", Address{Name: "A", Address: "x"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_GetScansAddress(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"email", "pass_hash", "address"}).
		AddRow("a@b.com", "h", []byte(`{"name":"A","pincode":"1"}`))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE email = $1")).WithArgs("a@b.com").WillReturnRows(rows)

	u, ok, err := s.Get(context.Background(), "a@b.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Address{Name: "A", Pincode: "1"}, u.Address)
}

func TestSQLStore_TimeoutIsUnavailable(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT email").WillReturnError(context.DeadlineExceeded)

	_, _, err := s.Get(context.Background(), "a@b.com")
	assert.ErrorIs(t, err, apperr.ErrStorageUnavailable)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
