package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/CalixtheMattei/apple-store-500-analytics/internal/cli"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/config"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/db"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/globaltime"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/logging"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/pipeline"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/review"
)

func runProcess(args []string) int {
	fs := flag.NewFlagSet("process", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 10*time.Minute, "Overall processing timeout")
	full := fs.Bool("full", false, "Skip the existing-ID lookup and reprocess everything")

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

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	lookup, cleanup := resolveLookup(ctx, cfg, logger, *full)
	defer cleanup()

	manifest, err := doProcess(ctx, cfg, logger, lookup)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Processing failed: %v\n", err)
		return 1
	}

	printReportSummary(manifest)
	return 0
}

// resolveLookup opens the store for the existing-ID lookup. Missing
// credentials or an unreachable store are not fatal here: the pipeline
// degrades to full-reprocess mode and records that in metadata.
func resolveLookup(ctx context.Context, cfg *config.Config, logger zerolog.Logger, forceFull bool) (pipeline.Lookup, func()) {
	noop := func() {}

	if forceFull {
		logger.Warn().Msg("full reprocess requested; skipping existing-ID lookup")
		return nil, noop
	}
	if !cfg.HasDatabase() {
		logger.Warn().Msg("DATABASE_URL not configured; processing without existing-ID lookup")
		return nil, noop
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("store unreachable; processing without existing-ID lookup")
		return nil, noop
	}
	return pool, func() { _ = pool.Close() }
}

// doProcess runs every raw batch through the incremental pipeline and
// writes the processed record sets, per-cohort metadata and the run
// manifest. A manifest is produced even when there is nothing to do.
func doProcess(ctx context.Context, cfg *config.Config, logger zerolog.Logger, lookup pipeline.Lookup) (*pipeline.Manifest, error) {
	paths := resolveDataPaths(cfg)
	runTime := pipeline.RunTimestamp(globaltime.UTC())

	batches, err := pipeline.LoadRawBatches(paths.Raw)
	if err != nil {
		return nil, err
	}
	logger.Info().Int("batches", len(batches)).Str("raw_dir", paths.Raw).Msg("raw batches loaded")

	svc := pipeline.NewService(lookup, cfg.LookupPageSize, cfg.StoreTimeout, logger)
	report := review.NewRunReport(globaltime.UTC())
	manifest := &pipeline.Manifest{
		RunTime:     runTime,
		GeneratedAt: globaltime.UTC(),
		Report:      report,
	}

	for _, batch := range batches {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("processing interrupted: %w", err)
		}

		outcome := svc.ProcessBatch(ctx, batch.Scope, batch.Reviews)
		report.AddCohort(outcome.Result)

		cohort := pipeline.ManifestCohort{
			Scope:             outcome.Result.Scope,
			Status:            outcome.Result.Status,
			NewReviewsCleaned: outcome.Result.NewReviewsCleaned,
			Degraded:          outcome.Result.Degraded,
		}

		if len(outcome.Records) > 0 {
			recordsPath, err := pipeline.WriteCohortRecords(paths.Processed, outcome.Result.Scope, runTime, outcome.Records)
			if err != nil {
				return nil, err
			}
			cohort.RecordsFile = recordsPath
		}

		if _, err := pipeline.WriteCohortMetadata(paths.Metadata, outcome.Result, runTime); err != nil {
			return nil, err
		}

		manifest.Cohorts = append(manifest.Cohorts, cohort)
	}

	report.Finalize(globaltime.UTC())

	manifestPath, err := pipeline.WriteManifest(paths.Metadata, manifest)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("manifest", manifestPath).
		Int("cohorts", len(manifest.Cohorts)).
		Bool("has_new_data", report.HasNewData).
		Msg("run manifest written")

	return manifest, nil
}

func printReportSummary(manifest *pipeline.Manifest) {
	report := manifest.Report
	fmt.Printf(
		"process run=%s cohorts=%d new=%d skipped=%d existing_checked=%d has_new_data=%t degraded=%t\n",
		manifest.RunTime,
		len(manifest.Cohorts),
		report.NewReviewsCleaned,
		report.SkippedReviews,
		report.ExistingReviewsChecked,
		report.HasNewData,
		report.DegradedLookups,
	)
	for _, cohort := range manifest.Cohorts {
		fmt.Printf("  %s status=%s new=%d\n", cohort.Scope, cohort.Status, cohort.NewReviewsCleaned)
	}
}
