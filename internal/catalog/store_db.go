package catalog

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"FreshBasket/internal/sqldb"
	"FreshBasket/pkg/apperr"
)

const createAttempts = 3

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id    TEXT PRIMARY KEY,
	name  TEXT NOT NULL,
	price {decimal} NOT NULL,
	mrp   {decimal},
	image TEXT NOT NULL DEFAULT ''
)`

// SQLStore issues one statement per product, so concurrent admin edits never
// overwrite each other's rows. New ids are short random tokens.
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
	return apperr.Unavailable("products ping", s.db.Ping(ctx))
}

func (s *SQLStore) List(ctx context.Context) ([]Product, error) {
	var out []Product

	err := s.db.WithTimeout(ctx, func(ctx context.Context) error {
		rows, err := s.db.SQL.QueryContext(ctx, `
			SELECT id, name, price, mrp, image
			FROM products
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Product, 0, 32)
		for rows.Next() {
			p, err := scanProduct(rows)
			if err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, apperr.Unavailable("products list", err)
	}

	sortByID(out)
	return out, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (Product, bool, error) {
	var p Product

	err := s.db.WithTimeout(ctx, func(ctx context.Context) error {
		row := s.db.SQL.QueryRowContext(ctx, s.db.Q(`
			SELECT id, name, price, mrp, image
			FROM products
			WHERE id = ?
		`), id)

		var err error
		p, err = scanProduct(row)
		return err
	})

	if err == sql.ErrNoRows {
		return Product{}, false, nil
	}
	if err != nil {
		return Product{}, false, apperr.Unavailable("products get", err)
	}
	return p, true, nil
}

func (s *SQLStore) Create(ctx context.Context, p Product) (Product, error) {
	var err error
	for attempt := 0; attempt < createAttempts; attempt++ {
		p.ID = uuid.NewString()[:8]
		err = s.insert(ctx, p, false)
		if err == nil {
			return p, nil
		}
		if !sqldb.IsUniqueViolation(err) {
			break
		}
	}
	return Product{}, apperr.Unavailable("products create", err)
}

func (s *SQLStore) Update(ctx context.Context, p Product) (bool, error) {
	var n int64

	err := s.db.WithTimeout(ctx, func(ctx context.Context) error {
		res, err := s.db.SQL.ExecContext(ctx, s.db.Q(`
			UPDATE products
			SET name = ?, price = ?, mrp = ?, image = ?
			WHERE id = ?
		`), p.Name, p.Price, nullMRP(p.MRP), p.Image, p.ID)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return false, apperr.Unavailable("products update", err)
	}
	return n > 0, nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	err := s.db.WithTimeout(ctx, func(ctx context.Context) error {
		_, err := s.db.SQL.ExecContext(ctx, s.db.Q(`DELETE FROM products WHERE id = ?`), id)
		return err
	})
	return apperr.Unavailable("products delete", err)
}

// Seed inserts the defaults with ON CONFLICT DO NOTHING, so racing seeders converge.
func (s *SQLStore) Seed(ctx context.Context, ps []Product) error {
	for _, p := range ps {
		if err := s.insert(ctx, p, true); err != nil {
			return apperr.Unavailable("products seed", err)
		}
	}
	return nil
}

func (s *SQLStore) insert(ctx context.Context, p Product, ignoreConflict bool) error {
	q := `INSERT INTO products (id, name, price, mrp, image) VALUES (?, ?, ?, ?, ?)`
	if ignoreConflict {
		q += ` ON CONFLICT (id) DO NOTHING`
	}

	return s.db.WithTimeout(ctx, func(ctx context.Context) error {
		_, err := s.db.SQL.ExecContext(ctx, s.db.Q(q), p.ID, p.Name, p.Price, nullMRP(p.MRP), p.Image)
		return err
	})
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(sc scanner) (Product, error) {
	var (
		p   Product
		mrp decimal.NullDecimal
	)
	if err := sc.Scan(&p.ID, &p.Name, &p.Price, &mrp, &p.Image); err != nil {
		return Product{}, err
	}
	if mrp.Valid {
		v := mrp.Decimal
		p.MRP = &v
	}
	return p, nil
}

func nullMRP(mrp *decimal.Decimal) decimal.NullDecimal {
	if mrp == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *mrp, Valid: true}
}
