package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/CalixtheMattei/apple-store-500-analytics/internal/cli"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/config"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/db"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/loader"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/logging"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/pipeline"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/review"
)

func runUpload(args []string) int {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 10*time.Minute, "Overall upload timeout")
	manifestPath := fs.String("manifest", "", "Run manifest to load (defaults to the newest)")

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

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("store connection failed")
		fmt.Fprintf(os.Stderr, "Failed to connect to store: %v\n", err)
		return 1
	}
	defer pool.Close()

	manifest, err := loadManifestForUpload(cfg, strings.TrimSpace(*manifestPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load manifest: %v\n", err)
		return 1
	}

	runUUID, err := doUpload(ctx, cfg, logger, pool, manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Upload failed: %v\n", err)
		return 1
	}

	fmt.Printf(
		"upload run=%s uuid=%s uploaded=%d partial_failure=%t\n",
		manifest.RunTime,
		runUUID,
		manifest.Report.NewReviewsCleaned,
		manifest.Report.PartialFailure,
	)
	return 0
}

func loadManifestForUpload(cfg *config.Config, explicitPath string) (*pipeline.Manifest, error) {
	paths := resolveDataPaths(cfg)

	path := explicitPath
	if path == "" {
		latest, err := pipeline.LatestManifestPath(paths.Metadata)
		if err != nil {
			return nil, err
		}
		path = latest
	}
	return pipeline.LoadManifest(path)
}

// doUpload walks the manifest's cohorts, skips the empty ones without any
// store call, and chunk-upserts the rest. Chunk failures mark the run
// partially failed but never stop the remaining cohorts. The run report is
// persisted afterwards either way.
func doUpload(ctx context.Context, cfg *config.Config, logger zerolog.Logger, pool *db.Pool, manifest *pipeline.Manifest) (string, error) {
	if manifest == nil || manifest.Report == nil {
		return "", fmt.Errorf("manifest has no run report")
	}

	ld := loader.New(pool, cfg.UploadChunkSize, cfg.StoreTimeout, logger)

	for _, cohort := range manifest.Cohorts {
		if cohort.Status == review.StatusNoNewReviews || cohort.RecordsFile == "" {
			logger.Info().
				Str("scope", cohort.Scope.String()).
				Str("status", string(cohort.Status)).
				Msg("skipping cohort with no new reviews")
			continue
		}

		records, err := pipeline.LoadCohortRecords(cohort.RecordsFile)
		if err != nil {
			manifest.Report.PartialFailure = true
			logger.Error().
				Err(err).
				Str("scope", cohort.Scope.String()).
				Msg("cohort records unreadable; skipping")
			continue
		}

		if _, err := ld.LoadCohort(ctx, cohort.Scope, cohort.Status, records); err != nil {
			if errors.Is(err, loader.ErrUploadFailed) {
				manifest.Report.PartialFailure = true
				continue
			}
			return "", err
		}
	}

	_, runUUID, err := pool.SaveRunReport(ctx, manifest.Report)
	if err != nil {
		return "", fmt.Errorf("persist run report: %w", err)
	}

	logger.Info().
		Str("run_uuid", runUUID).
		Bool("partial_failure", manifest.Report.PartialFailure).
		Msg("run report persisted")
	return runUUID, nil
}
