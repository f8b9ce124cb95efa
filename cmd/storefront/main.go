package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"StoreFront/internal/catalog"
	"StoreFront/internal/config"
	"StoreFront/pkg/kit"
)

const service = "storefront"

func main() {
	cfgPath := flag.String("config", "", "path to JSON config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := kit.NewLogger(kit.LogOptions{
		Service:    service,
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer func() { _ = log.Sync() }()

	reg := prometheus.NewRegistry()
	metrics := catalog.NewMetrics(reg)

	store := catalog.NewStore(cfg.Catalog.ExportPath, log, metrics)

	// Warm the snapshot in the background; concurrent first requests
	// attach to the same load.
	go func() { store.Snapshot(context.Background()) }()

	var limiter *kit.IPRateLimiter
	if cfg.RateLimit.Enabled {
		limiter = kit.NewIPRateLimiter(
			cfg.RateLimit.Limit,
			time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
		)
	}

	s := &catalog.Server{Store: store, Log: log, Metrics: metrics}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
		RateLimiter:    limiter,
	})

	shutdown := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
	if err := kit.RunHTTPServer(cfg.Server.Addr, h, log, shutdown); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
