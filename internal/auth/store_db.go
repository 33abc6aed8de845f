package auth

import (
	"context"
	"database/sql"
	"encoding/json"

	"FreshBasket/internal/sqldb"
	"FreshBasket/pkg/apperr"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	email     TEXT PRIMARY KEY,
	pass_hash TEXT NOT NULL DEFAULT '',
	address   {json} NOT NULL
)`

type SQLStore struct {
	db *sqldb.DB
}

func NewSQLStore(db *sqldb.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Migrate(ctx context.Context) error {
	return s.db.Migrate(ctx, schema)
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return apperr.Unavailable("users ping", s.db.Ping(ctx))
}

// Create also claims a passwordless record left behind by UpsertAddress.
func (s *SQLStore) Create(ctx context.Context, u User) error {
	addr, err := json.Marshal(u.Address)
	if err != nil {
		return err
	}

	var claimed int64
	err = s.db.WithTimeout(ctx, func(ctx context.Context) error {
		res, err := s.db.SQL.ExecContext(ctx, s.db.Q(`
			INSERT INTO users (email, pass_hash, address)
			VALUES (?, ?, ?)
			ON CONFLICT (email) DO UPDATE SET pass_hash = excluded.pass_hash
			WHERE users.pass_hash = ''
		`), u.Email, u.Hash, string(addr))
		if err != nil {
			return err
		}
		claimed, err = res.RowsAffected()
		return err
	})
	if sqldb.IsUniqueViolation(err) {
		return ErrEmailExists
	}
	if err != nil {
		return apperr.Unavailable("users create", err)
	}
	if claimed == 0 {
		return ErrEmailExists
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, email string) (User, bool, error) {
	var (
		u    User
		addr []byte
	)
	err := s.db.WithTimeout(ctx, func(ctx context.Context) error {
		return s.db.SQL.QueryRowContext(ctx, s.db.Q(`
			SELECT email, pass_hash, address
			FROM users
			WHERE email = ?
		`), email).Scan(&u.Email, &u.Hash, &addr)
	})
	if err == sql.ErrNoRows {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, apperr.Unavailable("users get", err)
	}

	if err := json.Unmarshal(addr, &u.Address); err != nil {
		return User{}, false, apperr.Unavailable("users decode address", err)
	}
	return u, true, nil
}

// UpsertAddress is a single INSERT ... ON CONFLICT, so it never races a signup.
func (s *SQLStore) UpsertAddress(ctx context.Context, email string, addr Address) error {
	raw, err := json.Marshal(addr)
	if err != nil {
		return err
	}

	err = s.db.WithTimeout(ctx, func(ctx context.Context) error {
		_, err := s.db.SQL.ExecContext(ctx, s.db.Q(`
			INSERT INTO users (email, pass_hash, address)
			VALUES (?, '', ?)
			ON CONFLICT (email) DO UPDATE SET address = excluded.address
		`), email, string(raw))
		return err
	})
	return apperr.Unavailable("users upsert address", err)
}
