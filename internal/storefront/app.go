// Package storefront composes the catalog, cart, auth and order surfaces into
// the single HTTP handler the storefront binary serves.
package storefront

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"FreshBasket/internal/auth"
	"FreshBasket/internal/cart"
	"FreshBasket/internal/catalog"
	"FreshBasket/internal/order"
	"FreshBasket/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry
	Metrics  *kit.Metrics

	MetricsToken string
}

type Deps struct {
	Catalog  *catalog.Service
	Carts    *cart.Service
	Users    *auth.Directory
	Admin    *auth.Admin
	Orders   *order.Service
	Checkout *order.Checkout
	Sessions *auth.Sessions
}

const readyProbeTimeout = 700 * time.Millisecond

func NewHandler(deps Deps, httpDeps HTTPDeps) http.Handler {
	r := chi.NewRouter()
	setupMiddleware(r, httpDeps)
	setupMetrics(r, httpDeps)

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(deps, httpDeps.Log))

	r.Group(func(sr chi.Router) {
		sr.Use(deps.Sessions.Middleware)

		(&catalog.Server{Catalog: deps.Catalog, Log: httpDeps.Log}).Routes(sr)
		(&cart.Server{Carts: deps.Carts, Log: httpDeps.Log, SessionID: auth.SessionID}).Routes(sr)
		(&order.Server{Checkout: deps.Checkout, Orders: deps.Orders, Log: httpDeps.Log}).Routes(sr)
		(&auth.Server{
			Users:    deps.Users,
			Admin:    deps.Admin,
			Sessions: deps.Sessions,
			Log:      httpDeps.Log,
			OnLogout: deps.Carts.Clear,
		}).Routes(sr)

		sr.Route("/admin", func(ar chi.Router) {
			ar.Use(auth.RequireAdmin)
			(&catalog.Server{Catalog: deps.Catalog, Log: httpDeps.Log}).AdminRoutes(ar)
		})
	})

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer(deps.Log))
	r.Use(kit.Tracing)
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil || deps.Metrics == nil {
		return
	}

	r.Use(deps.Metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))
	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

type probe struct {
	name string
	ping func(context.Context) error
}

func readyz(deps Deps, log *zap.Logger) http.HandlerFunc {
	probes := []probe{
		{"catalog", deps.Catalog.Ping},
		{"cart", deps.Carts.Ping},
		{"users", deps.Users.Ping},
		{"orders", deps.Orders.Ping},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		for _, p := range probes {
			ctx, cancel := context.WithTimeout(r.Context(), readyProbeTimeout)
			err := p.ping(ctx)
			cancel()

			if err != nil {
				log.Warn("readyz failed: "+p.name, zap.Error(err))
				kit.WriteError(w, r, http.StatusServiceUnavailable, p.name+" not ready", nil)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}
