package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CalixtheMattei/apple-store-500-analytics/internal/cli"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/config"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/db"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/httpapi"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/logging"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	connectTimeout := fs.Duration("connect-timeout", 15*time.Second, "Store connection timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), *connectTimeout)
	pool, err := db.NewPool(connectCtx, cfg)
	cancelConnect()
	if err != nil {
		logger.Error().Err(err).Msg("store connection failed")
		fmt.Fprintf(os.Stderr, "Failed to connect to store: %v\n", err)
		return 1
	}
	defer pool.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := httpapi.NewServer(pool, logger, httpapi.Options{
		Host: cfg.HTTPHost,
		Port: cfg.HTTPPort,
	})
	if err := server.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("monitoring API failed")
		fmt.Fprintf(os.Stderr, "Serve failed: %v\n", err)
		return 1
	}
	return 0
}
