package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	httpadapter "mesa-alloc/internal/adapter/http"
	"mesa-alloc/internal/adapter/natskv"
	"mesa-alloc/internal/adapter/usecase"
	"mesa-alloc/internal/config"
	"mesa-alloc/internal/core/port"
	"mesa-alloc/internal/db"
	"mesa-alloc/internal/validation"
)

type ServeCmd struct{}

// Run serves until ctx is cancelled and then shuts every component down.
func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	validator, err := validation.New()
	if err != nil {
		return err
	}

	handler := httpadapter.NewHandler(a.uc, validator, a.registry, logger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: handler.Router(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		logger.Info("server gracefully stopped")
		return nil
	})
	g.Go(func() error {
		return a.scheduler.Run(gctx)
	})
	if cfg.NATS.Dispatch {
		d := natskv.NewDispatcher(a.nc, a.uc, validator, logger,
			cfg.NATS.SubjectPrefix, cfg.NATS.QueueGroup, cfg.NATS.Timeout)
		g.Go(func() error {
			return d.Run(gctx)
		})
	}
	if a.file != nil {
		g.Go(func() error {
			return a.file.Watch(gctx)
		})
	}
	return g.Wait()
}

type OnceCmd struct{}

// Run performs one sweep. Failed campaigns make the command fail.
func (c *OnceCmd) Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.scheduler.Sweep(ctx)
	if err != nil {
		return err
	}
	logger.Info("sweep finished",
		slog.Int("campaigns", res.Campaigns),
		slog.Int("completed", res.Completed),
		slog.Int("skipped", res.Skipped),
		slog.Int("terminal", res.Terminal),
		slog.Int("failed", res.Failed),
	)
	if res.Failed > 0 {
		return fmt.Errorf("%d of %d campaigns failed", res.Failed, res.Campaigns)
	}
	return nil
}

type SimulateCmd struct {
	Input  string `arg:"" default:"-" help:"Simulation request as JSON, - reads stdin."`
	Indent bool   `help:"Indent the JSON output."`
}

// Run uses the configured allocation parameters unless the request
// carries its own.
func (c *SimulateCmd) Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var (
		raw []byte
		err error
	)
	if c.Input == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(c.Input)
	}
	if err != nil {
		return err
	}

	validator, err := validation.New()
	if err != nil {
		return err
	}
	if err = validator.Validate(validation.SimulateRequest, raw); err != nil {
		return err
	}
	var req port.SimulateRequest
	if err = json.Unmarshal(raw, &req); err != nil {
		return err
	}

	// no store is read or written by a simulation
	uc := usecase.NewAllocationUseCase(nil, nil, nil, cfg.Alloc.Params(), logger)
	res, err := uc.Simulate(ctx, req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	if c.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(res)
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(cfg *config.Config, logger *slog.Logger) error {
	if err := db.Migrate(cfg.Psql.Addr.String()); err != nil {
		return err
	}
	logger.Info("migrations applied successfully")
	return nil
}

type SeedCmd struct{}

func (c *SeedCmd) Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	pool, err := db.NewPostgresPool(ctx, cfg.Psql)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err = db.Seed(ctx, pool); err != nil {
		return err
	}
	logger.Info("demo data seeded")
	return nil
}
