package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/CalixtheMattei/apple-store-500-analytics/internal/cli"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/config"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/db"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/logging"
)

// runPipeline executes scrape, process and upload as one run. The stages
// stay independently idempotent: stopping between cohorts or re-running
// the whole thing cannot corrupt the store.
func runPipeline(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Minute, "Overall pipeline timeout")
	configPath := fs.String("config", "", "Scope configuration file (overrides RP_APPS_CONFIG)")
	skipScrape := fs.Bool("skip-scrape", false, "Process and upload existing raw batches only")

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
	if *configPath != "" {
		cfg.AppsConfigPath = *configPath
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if !*skipScrape {
		scope, err := config.LoadScopeConfig(cfg.AppsConfigPath)
		if err != nil {
			logger.Error().Err(err).Msg("scope configuration rejected")
			fmt.Fprintf(os.Stderr, "Invalid scope config: %v\n", err)
			return 1
		}
		if _, err := doScrape(ctx, cfg, scope, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Scrape failed: %v\n", err)
			return 1
		}
	}

	lookup, cleanup := resolveLookup(ctx, cfg, logger, false)
	manifest, err := doProcess(ctx, cfg, logger, lookup)
	cleanup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Processing failed: %v\n", err)
		return 1
	}
	printReportSummary(manifest)

	if !cfg.HasDatabase() {
		logger.Warn().Msg("DATABASE_URL not configured; skipping upload stage")
		return 0
	}
	if !manifest.Report.HasNewData {
		logger.Info().Msg("no cohort produced new reviews; upload will only persist the run report")
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("store connection failed")
		fmt.Fprintf(os.Stderr, "Failed to connect to store: %v\n", err)
		return 1
	}
	defer pool.Close()

	runUUID, err := doUpload(ctx, cfg, logger, pool, manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Upload failed: %v\n", err)
		return 1
	}

	fmt.Printf("run=%s uuid=%s partial_failure=%t\n", manifest.RunTime, runUUID, manifest.Report.PartialFailure)
	if manifest.Report.PartialFailure {
		return 1
	}
	return 0
}
