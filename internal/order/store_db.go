package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"FreshBasket/internal/sqldb"
	"FreshBasket/pkg/apperr"
)

var schema = []string{`
CREATE TABLE IF NOT EXISTS orders (
	seq        {serial},
	order_id   TEXT NOT NULL UNIQUE,
	user_email TEXT NOT NULL,
	created_at BIGINT NOT NULL,
	items      {json} NOT NULL,
	total      {decimal} NOT NULL,
	address    {json} NOT NULL,
	payment    TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS orders_user_email_idx ON orders (user_email, seq)`,
}

const selectOrder = `
	SELECT order_id, user_email, created_at, items, total, address, payment
	FROM orders
`

// SQLStore keeps one row per order with items and address as JSON.
// seq records insertion order; created_at is unix nanoseconds.
type SQLStore struct {
	db *sqldb.DB
}

func NewSQLStore(db *sqldb.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Migrate(ctx context.Context) error {
	return s.db.Migrate(ctx, schema...)
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return apperr.Unavailable("orders ping", s.db.Ping(ctx))
}

func (s *SQLStore) Insert(ctx context.Context, o Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	addr, err := json.Marshal(o.Address)
	if err != nil {
		return fmt.Errorf("encode address: %w", err)
	}

	err = s.db.WithTimeout(ctx, func(ctx context.Context) error {
		_, err := s.db.SQL.ExecContext(ctx, s.db.Q(`
			INSERT INTO orders (order_id, user_email, created_at, items, total, address, payment)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`), o.ID, o.UserEmail, o.Date.UnixNano(), string(items), o.Total, string(addr), o.Payment)
		return err
	})
	if sqldb.IsUniqueViolation(err) {
		return errDuplicateID
	}
	return apperr.Unavailable("orders insert", err)
}

func (s *SQLStore) ListByUser(ctx context.Context, email string) ([]Order, error) {
	var out []Order

	err := s.db.WithTimeout(ctx, func(ctx context.Context) error {
		rows, err := s.db.SQL.QueryContext(ctx, s.db.Q(selectOrder+`
			WHERE user_email = ?
			ORDER BY seq ASC
		`), email)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			o, err := scanOrder(rows)
			if err != nil {
				return err
			}
			out = append(out, o)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, apperr.Unavailable("orders list", err)
	}
	return out, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (Order, bool, error) {
	var o Order

	err := s.db.WithTimeout(ctx, func(ctx context.Context) error {
		row := s.db.SQL.QueryRowContext(ctx, s.db.Q(selectOrder+`WHERE order_id = ?`), id)

		var err error
		o, err = scanOrder(row)
		return err
	})
	if err == sql.ErrNoRows {
		return Order{}, false, nil
	}
	if err != nil {
		return Order{}, false, apperr.Unavailable("orders get", err)
	}
	return o, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(sc scanner) (Order, error) {
	var (
		o           Order
		nanos       int64
		items, addr []byte
	)
	if err := sc.Scan(&o.ID, &o.UserEmail, &nanos, &items, &o.Total, &addr, &o.Payment); err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return Order{}, fmt.Errorf("decode items of %s: %w", o.ID, err)
	}
	if err := json.Unmarshal(addr, &o.Address); err != nil {
		return Order{}, fmt.Errorf("decode address of %s: %w", o.ID, err)
	}
	o.Date = time.Unix(0, nanos).UTC()
	return o, nil
}
