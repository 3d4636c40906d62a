// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

// Package main is the entry point of the TerraMA2 analysis daemon.
//
// analysisd executes configured analyses over environmental data
// series: DCP (data collection platform) measurements, occurrence
// records and raster grids. Runs are queued through the admin API or
// the periodic scheduler, executed by a supervised worker pool, and
// their lifecycle is persisted to the run history store.
//
// Startup order:
//
//  1. Configuration (koanf: defaults, config.yaml, TERRAMA2_* env)
//  2. Logging (zerolog)
//  3. DuckDB database for tabular series access
//  4. Event bus, run-history store and its bus follower
//  5. Analysis service, scheduler and admin HTTP API
//  6. Supervisor tree (suture) running everything until SIGINT/SIGTERM
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/terrama2/terrama2/internal/analysis/runcontext"
	"github.com/terrama2/terrama2/internal/api"
	"github.com/terrama2/terrama2/internal/bus"
	"github.com/terrama2/terrama2/internal/config"
	"github.com/terrama2/terrama2/internal/dataaccess"
	"github.com/terrama2/terrama2/internal/logging"
	"github.com/terrama2/terrama2/internal/processlog"
	"github.com/terrama2/terrama2/internal/service"
	"github.com/terrama2/terrama2/internal/supervisor"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// historyFollower adapts the run-history bus subscription to
// suture.Service.
type historyFollower struct {
	store *processlog.Store
	bus   *bus.Bus
}

func (f historyFollower) Serve(ctx context.Context) error {
	return f.store.Follow(ctx, f.bus)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().Str("version", version).Msg("starting terrama2 analysisd")

	db, err := dataaccess.OpenDuckDB(cfg.Database.Path)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("failed to open database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing database")
		}
	}()

	accessors := dataaccess.NewAccessorRegistry()
	dataaccess.RegisterDuckDBAccessor(accessors, db)
	manager := dataaccess.NewMemoryDataManager()

	b := bus.New(cfg.Bus.Buffer, logging.Logger())
	defer func() {
		if err := b.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing bus")
		}
	}()

	history, err := processlog.Open(cfg.ProcessLog.Path, cfg.ProcessLog.Retention)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.ProcessLog.Path).Msg("failed to open run history store")
	}
	defer func() {
		if err := history.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing run history store")
		}
	}()

	svc := service.New(service.Config{
		Workers:      cfg.Service.Workers,
		ObjectFanout: cfg.Service.ObjectFanout,
		QueueDepth:   cfg.Service.QueueDepth,
	}, runcontext.NewRegistry(), manager, accessors, b)

	handler := api.NewHandler(svc, history, version)
	router := api.NewRouter(handler, api.RouterConfig{
		RateLimitRequests: cfg.Server.RateLimitRequests,
		RateLimitWindow:   cfg.Server.RateLimitWindow,
		RateLimitDisabled: cfg.Server.RateLimitDisabled,
	})
	server := api.NewServer(cfg.Server.Addr(), router, cfg.Server.Timeout)

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(historyFollower{store: history, bus: b})
	tree.AddAnalysisService(svc)
	tree.AddAnalysisService(service.NewScheduler(svc, cfg.Service.ScheduleInterval))
	tree.AddAPIService(server)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Int("workers", cfg.Service.Workers).
		Msg("analysisd ready")

	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		logging.Fatal().Err(err).Msg("supervisor tree failed")
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		logging.Warn().Int("count", len(report)).Msg("services missed the shutdown timeout")
	}
	logging.Info().Msg("analysisd stopped")
}
