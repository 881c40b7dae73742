package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"mesa-alloc/internal/adapter/catalog"
	"mesa-alloc/internal/adapter/natskv"
	"mesa-alloc/internal/adapter/postgres"
	"mesa-alloc/internal/adapter/usecase"
	"mesa-alloc/internal/config"
	"mesa-alloc/internal/config/configs"
	"mesa-alloc/internal/core/port"
	"mesa-alloc/internal/db"
	"mesa-alloc/internal/metrics"
	"mesa-alloc/internal/scheduler"
)

// app holds the wired components shared by serve and once.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	pool     *pgxpool.Pool
	nc       *nats.Conn
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	campaigns *postgres.CampaignRepository
	file      *catalog.File
	uc        *usecase.AllocationUseCase
	scheduler *scheduler.Scheduler
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.NewMetrics(a.registry)

	if cfg.Psql.RunMigrations {
		if err = db.Migrate(cfg.Psql.Addr.String()); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied successfully")
	}

	a.pool, err = db.NewPostgresPool(ctx, cfg.Psql)
	if err != nil {
		return nil, fmt.Errorf("database connection: %w", err)
	}
	a.campaigns = postgres.NewCampaignRepository(a.pool)

	if cfg.NATS.Enabled(cfg.Store.Backend) {
		a.nc, err = nats.Connect(cfg.NATS.URL, nats.Name("mesa-alloc"), nats.MaxReconnects(-1))
		if err != nil {
			return nil, fmt.Errorf("nats connection: %w", err)
		}
	}

	store, err := a.store(ctx)
	if err != nil {
		return nil, err
	}
	measures, err := a.measures()
	if err != nil {
		return nil, err
	}

	opts := []usecase.Option{
		usecase.WithMetrics(a.metrics),
		usecase.WithConflictRetries(cfg.Alloc.ConflictRetries),
	}
	if cfg.NATS.Publish {
		opts = append(opts, usecase.WithPublisher(natskv.NewPublisher(a.nc, cfg.NATS.SubjectPrefix, cfg.NATS.Timeout)))
	}
	a.uc = usecase.NewAllocationUseCase(store, a.campaigns, measures, cfg.Alloc.Params(), logger, opts...)
	a.scheduler = scheduler.New(a.uc, a.campaigns, cfg.Sched, logger, scheduler.WithMetrics(a.metrics))
	return a, nil
}

func (a *app) store(ctx context.Context) (port.AllocationStore, error) {
	switch a.cfg.Store.Backend {
	case configs.StorePostgres:
		return postgres.NewAllocationRepository(a.pool), nil
	case configs.StoreNATS:
		js, err := jetstream.New(a.nc)
		if err != nil {
			return nil, fmt.Errorf("jetstream: %w", err)
		}
		return natskv.NewStore(ctx, js, a.cfg.NATS.Bucket)
	default:
		return nil, fmt.Errorf("unknown store backend %q", a.cfg.Store.Backend)
	}
}

func (a *app) measures() (port.MeasureSource, error) {
	switch a.cfg.Catalog.Source {
	case configs.CatalogPostgres:
		return a.campaigns, nil
	case configs.CatalogFile:
		f, err := catalog.NewFile(a.cfg.Catalog.Path, a.logger)
		if err != nil {
			return nil, fmt.Errorf("measure catalog: %w", err)
		}
		if a.cfg.Catalog.Watch {
			a.file = f
		}
		return f, nil
	case configs.CatalogMemory:
		return catalog.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown measure catalog source %q", a.cfg.Catalog.Source)
	}
}

// Close releases connections in reverse order of creation.
func (a *app) Close() {
	if a.nc != nil {
		if err := a.nc.Drain(); err != nil {
			a.logger.Warn("nats drain", slog.Any("error", err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
