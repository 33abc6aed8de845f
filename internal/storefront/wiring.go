package storefront

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"FreshBasket/internal/auth"
	"FreshBasket/internal/cart"
	"FreshBasket/internal/catalog"
	"FreshBasket/internal/config"
	"FreshBasket/internal/docstore"
	"FreshBasket/internal/notify"
	"FreshBasket/internal/order"
	"FreshBasket/internal/sqldb"
	"FreshBasket/pkg/kit"
)

// App is the wired storefront plus everything that must be released on shutdown.
type App struct {
	Deps       Deps
	Dispatcher *notify.Dispatcher

	closers []func() error
}

type stores struct {
	catalog catalog.Store
	users   auth.Store
	orders  order.Store
}

// Build opens the configured backends and assembles the services.
func Build(ctx context.Context, cfg config.Config, log *zap.Logger, metrics *kit.Metrics) (*App, error) {
	app := &App{}

	st, err := app.openStores(ctx, cfg, log)
	if err != nil {
		_ = app.Close(ctx)
		return nil, err
	}

	cartStore, err := app.openCartStore(cfg)
	if err != nil {
		_ = app.Close(ctx)
		return nil, err
	}

	var sink notify.Sink = notify.LogSink{Log: log}
	if cfg.Notify.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Notify.RedisAddr})
		app.closers = append(app.closers, client.Close)
		sink = notify.RedisSink{Client: client, Channel: cfg.Notify.Channel}
	}
	app.Dispatcher = notify.NewDispatcher(sink, cfg.Notify.Timeout, log, metrics)

	secret := cfg.Session.Secret
	if secret == "" && cfg.Dev {
		secret = uuid.NewString() + uuid.NewString()
		log.Warn("dev mode: using a random session secret")
	}

	admin, err := auth.NewAdmin(cfg.Admin.Username, cfg.Admin.Password, 0)
	if err != nil {
		_ = app.Close(ctx)
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	if cfg.Admin.Password == "" {
		log.Warn("ADMIN_PASSWORD not set: admin login disabled")
	}

	cat := catalog.NewService(st.catalog, log)
	carts := &cart.Service{Store: cartStore, Catalog: cat, Metrics: metrics, Log: log}
	users := auth.NewDirectory(st.users, log)
	orders := order.NewService(st.orders, log)

	app.Deps = Deps{
		Catalog: cat,
		Carts:   carts,
		Users:   users,
		Admin:   admin,
		Orders:  orders,
		Checkout: &order.Checkout{
			Carts:    carts,
			Users:    users,
			Orders:   orders,
			Notifier: app.Dispatcher,
			Metrics:  metrics,
			Log:      log,
		},
		Sessions: &auth.Sessions{
			Tokens: auth.NewTokenMaker(secret),
			TTL:    cfg.Session.TTL,
			Secure: cfg.Session.Secure,
			Log:    log,
		},
	}
	return app, nil
}

func (a *App) openStores(ctx context.Context, cfg config.Config, log *zap.Logger) (stores, error) {
	timeout := cfg.Storage.Timeout

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return stores{
			catalog: catalog.NewMemStore(),
			users:   auth.NewMemStore(),
			orders:  order.NewMemStore(),
		}, nil

	case config.BackendFile, config.BackendS3:
		var (
			b   docstore.Backend
			err error
		)
		if cfg.Storage.Backend == config.BackendFile {
			b, err = docstore.NewDirBackend(cfg.Storage.DataDir)
		} else {
			b, err = docstore.NewS3Backend(ctx, docstore.S3Config{
				Bucket:   cfg.Storage.S3.Bucket,
				Region:   cfg.Storage.S3.Region,
				Endpoint: cfg.Storage.S3.Endpoint,
				Prefix:   cfg.Storage.S3.Prefix,
			})
		}
		if err != nil {
			return stores{}, err
		}
		log.Info("document storage ready", zap.String("backend", cfg.Storage.Backend))
		return stores{
			catalog: catalog.NewDocStore(b, timeout),
			users:   auth.NewDocStore(b, timeout),
			orders:  order.NewDocStore(b, timeout),
		}, nil

	case config.BackendPostgres, config.BackendSQLite:
		var (
			db  *sqldb.DB
			err error
		)
		if cfg.Storage.Backend == config.BackendPostgres {
			db, err = sqldb.OpenPostgres(ctx, cfg.Storage.DatabaseURL, timeout)
		} else {
			db, err = sqldb.OpenSQLite(ctx, cfg.Storage.SQLitePath, timeout)
		}
		if err != nil {
			return stores{}, err
		}
		a.closers = append(a.closers, db.Close)

		cs, us, ords := catalog.NewSQLStore(db), auth.NewSQLStore(db), order.NewSQLStore(db)
		for _, m := range []interface{ Migrate(context.Context) error }{cs, us, ords} {
			if err := m.Migrate(ctx); err != nil {
				return stores{}, err
			}
		}
		log.Info("sql storage ready", zap.String("dialect", db.Dialect.Name))
		return stores{catalog: cs, users: us, orders: ords}, nil
	}

	return stores{}, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

func (a *App) openCartStore(cfg config.Config) (cart.Store, error) {
	switch cfg.Cart.Backend {
	case config.CartMemory:
		return cart.NewMemStore(), nil
	case config.CartRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.Cart.RedisAddr})
		a.closers = append(a.closers, client.Close)
		return cart.NewRedisStore(client, cfg.Cart.TTL), nil
	}
	return nil, fmt.Errorf("unknown cart backend %q", cfg.Cart.Backend)
}

// Close drains pending notifications and releases backend connections.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Dispatcher != nil {
		errs = append(errs, a.Dispatcher.Close(ctx))
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
