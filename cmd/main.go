package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"mesa-alloc/internal/config"
)

// CLI is the command tree of the mesa-alloc binary. Every command reads
// its configuration from the environment, see the config package.
type CLI struct {
	Serve    ServeCmd    `cmd:"" default:"1" help:"Run the HTTP API, the scheduler and the optional NATS dispatcher."`
	Once     OnceCmd     `cmd:"" help:"Run a single scheduler sweep over all active campaigns and exit."`
	Simulate SimulateCmd `cmd:"" help:"Run the allocation engine on a JSON request without touching any store."`
	Migrate  MigrateCmd  `cmd:"" help:"Apply database migrations."`
	Seed     SeedCmd     `cmd:"" help:"Insert demo campaigns, nodes and delivery."`
}

// main loads configuration and the logger, then dispatches to the
// selected command. SIGINT and SIGTERM cancel the command's context.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := newLogger(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	parser, err := kong.New(&CLI{},
		kong.Name("mesa-alloc"),
		kong.Description("Campaign budget allocation service."),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.Bind(&cfg, logger),
		kong.ConfigureHelp(kong.HelpOptions{
			Tree: true,
		}),
		kong.UsageOnError(),
	)
	if err != nil {
		logger.Error("failed to build command line", slog.Any("error", err))
		os.Exit(1)
	}

	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		parser.FatalIfErrorf(err)
	}

	if err = kctx.Run(); err != nil {
		logger.Error("command failed", slog.String("command", kctx.Command()), slog.Any("error", err))
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: cfg.Log.SlogLevel(), AddSource: cfg.Log.AddSource}
	switch cfg.Log.SlogFormat() {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler).With(slog.String("env", cfg.Env))
}
