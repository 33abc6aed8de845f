// Package sqldb opens the relational backends (Postgres through pgx, SQLite through
// the pure-Go modernc driver) and smooths over their dialect differences.
//
// Queries are written once with "?" placeholders and rebound per dialect.
// Schemas use {serial}, {decimal} and {json} column-type markers.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.opentelemetry.io/otel/attribute"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"FreshBasket/pkg/kit"
)

const (
	pingTimeout  = 1 * time.Second
	pgUniqueCode = "23505"
)

type Dialect struct {
	Name       string
	Driver     string
	Positional bool // $1, $2 ... instead of ?
	Serial     string
	Decimal    string
	JSON       string
}

var (
	Postgres = Dialect{
		Name:       "postgres",
		Driver:     "pgx",
		Positional: true,
		Serial:     "BIGSERIAL PRIMARY KEY",
		Decimal:    "NUMERIC",
		JSON:       "JSONB",
	}
	SQLite = Dialect{
		Name:    "sqlite",
		Driver:  "sqlite",
		Serial:  "INTEGER PRIMARY KEY AUTOINCREMENT",
		Decimal: "TEXT",
		JSON:    "TEXT",
	}
)

type DB struct {
	SQL     *sql.DB
	Dialect Dialect
	Timeout time.Duration
}

// OpenPostgres connects through the pgx stdlib driver.
func OpenPostgres(ctx context.Context, dsn string, timeout time.Duration) (*DB, error) {
	db, err := sql.Open(Postgres.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)

	d := &DB{SQL: db, Dialect: Postgres, Timeout: timeout}
	if err := d.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

// OpenSQLite opens (or creates) the database file in WAL mode with a single writer connection.
func OpenSQLite(ctx context.Context, path string, timeout time.Duration) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open(SQLite.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	d := &DB{SQL: db, Dialect: SQLite, Timeout: timeout}
	if err := d.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) Close() error {
	return d.SQL.Close()
}

func (d *DB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return d.SQL.PingContext(ctx)
}

// Q rebinds "?" placeholders for the dialect.
func (d *DB) Q(query string) string {
	if !d.Dialect.Positional {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Migrate applies idempotent DDL after expanding the column-type markers.
func (d *DB) Migrate(ctx context.Context, stmts ...string) error {
	r := strings.NewReplacer(
		"{serial}", d.Dialect.Serial,
		"{decimal}", d.Dialect.Decimal,
		"{json}", d.Dialect.JSON,
	)
	for _, stmt := range stmts {
		if _, err := d.SQL.ExecContext(ctx, r.Replace(stmt)); err != nil {
			return fmt.Errorf("%s: migrate: %w", d.Dialect.Name, err)
		}
	}
	return nil
}

// WithTimeout bounds fn by the configured query timeout and traces it as one span.
func (d *DB) WithTimeout(parent context.Context, fn func(ctx context.Context) error) (err error) {
	ctx, span := kit.StartSpan(parent, "sqldb.query", attribute.String("db.system", d.Dialect.Name))
	defer func() { kit.EndSpan(span, err) }()

	ctx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()
	return fn(ctx)
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueCode
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
