package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/CalixtheMattei/apple-store-500-analytics/internal/appstore"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/cli"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/config"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/globaltime"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/logging"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/pipeline"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/review"
	scopeschema "github.com/CalixtheMattei/apple-store-500-analytics/schema"
)

type scrapeSummary struct {
	Timestamp           time.Time `json:"timestamp"`
	TotalReviewsFetched int       `json:"total_reviews_fetched"`
	AppsScraped         int       `json:"apps_scraped"`
	CountriesScraped    int       `json:"countries_scraped"`
	CohortsFailed       int       `json:"cohorts_failed"`
}

func runScrape(args []string) int {
	fs := flag.NewFlagSet("scrape", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 10*time.Minute, "Overall scrape timeout")
	configPath := fs.String("config", "", "Scope configuration file (overrides RP_APPS_CONFIG)")

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

	scope, err := config.LoadScopeConfig(cfg.AppsConfigPath)
	if err != nil {
		logger.Error().Err(err).Msg("scope configuration rejected")
		fmt.Fprintf(os.Stderr, "Invalid scope config: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	summary, err := doScrape(ctx, cfg, scope, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scrape failed: %v\n", err)
		return 1
	}

	fmt.Printf(
		"scrape fetched=%d apps=%d countries=%d failed_cohorts=%d\n",
		summary.TotalReviewsFetched,
		summary.AppsScraped,
		summary.CountriesScraped,
		summary.CohortsFailed,
	)
	return 0
}

// doScrape fetches every configured (app, country) cohort and writes one
// raw batch artifact per non-empty cohort. A cohort that fails is logged
// and skipped; the review source is not restartable mid-cohort, so there
// is no partial batch to keep.
func doScrape(ctx context.Context, cfg *config.Config, scope *scopeschema.ScopeConfig, logger zerolog.Logger) (scrapeSummary, error) {
	paths := resolveDataPaths(cfg)
	runTime := pipeline.RunTimestamp(globaltime.UTC())

	client := appstore.NewClient(appstore.Options{
		BaseURL: cfg.FeedBaseURL,
		Timeout: cfg.FeedTimeout,
		Delay:   time.Duration(scope.ScrapeDelaySeconds) * time.Second,
		Logger:  logger,
	})

	summary := scrapeSummary{
		Timestamp:        globaltime.UTC(),
		AppsScraped:      len(scope.Apps),
		CountriesScraped: len(scope.Countries),
	}

	for _, country := range scope.Countries {
		for _, target := range scope.Apps {
			if err := ctx.Err(); err != nil {
				return summary, fmt.Errorf("scrape interrupted: %w", err)
			}

			reviews, err := client.FetchReviews(ctx, appstore.FetchRequest{
				AppID:   target.ID,
				AppName: target.Name,
				Country: country,
				Source:  scope.Source,
			})
			if err != nil {
				summary.CohortsFailed++
				logger.Warn().
					Err(err).
					Str("app", target.Name).
					Str("country", country).
					Msg("cohort fetch failed; skipping")
				continue
			}
			if len(reviews) == 0 {
				logger.Info().
					Str("app", target.Name).
					Str("country", country).
					Msg("no reviews returned")
				continue
			}

			batch := pipeline.RawBatch{
				Scope: review.Scope{
					Source:  reviews[0].Source,
					AppName: reviews[0].AppName,
					Country: reviews[0].Country,
				},
				ScrapedAt: globaltime.UTC(),
				Reviews:   reviews,
			}
			path, err := pipeline.WriteRawBatch(paths.Raw, batch, runTime)
			if err != nil {
				return summary, err
			}

			summary.TotalReviewsFetched += len(reviews)
			logger.Info().
				Str("app", target.Name).
				Str("country", country).
				Int("reviews", len(reviews)).
				Str("file", path).
				Msg("raw batch written")
		}
	}

	if err := writeScrapeSummary(paths.Raw, runTime, summary); err != nil {
		return summary, err
	}
	return summary, nil
}

func writeScrapeSummary(rawDir, runTime string, summary scrapeSummary) error {
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		return fmt.Errorf("create raw dir %s: %w", rawDir, err)
	}

	path := filepath.Join(rawDir, "run_summary_"+runTime+".json")
	payload, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scrape summary: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write scrape summary %s: %w", path, err)
	}
	return nil
}
