package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"FreshBasket/internal/config"
	"FreshBasket/internal/storefront"
	"FreshBasket/pkg/kit"
)

const drainTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		kit.NewLogger("storefront", "info").Fatal("load config failed", zap.Error(err))
	}

	service := cfg.Service
	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	shutdownTracer, err := kit.SetupTracer(ctx, service, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal("init tracer failed", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := kit.NewMetrics(reg)

	app, err := storefront.Build(ctx, cfg, log, metrics)
	if err != nil {
		log.Fatal("init storefront failed", zap.Error(err))
	}

	h := storefront.NewHandler(app.Deps, storefront.HTTPDeps{
		Log:          log,
		Service:      service,
		Registry:     reg,
		Metrics:      metrics,
		MetricsToken: cfg.MetricsToken,
	})

	serveErr := kit.RunHTTPServer(ctx, cfg.Addr(), h, log)

	dctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := app.Close(dctx); err != nil {
		log.Warn("close storefront", zap.Error(err))
	}
	if err := shutdownTracer(dctx); err != nil {
		log.Warn("tracer shutdown", zap.Error(err))
	}

	if serveErr != nil {
		log.Fatal("http server stopped", zap.Error(serveErr))
	}
}
