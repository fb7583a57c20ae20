package db

import (
	"context"
	"fmt"
	"time"

	"github.com/CalixtheMattei/apple-store-500-analytics/internal/review"
)

const (
	RunStatusCompleted      = "completed"
	RunStatusPartialFailure = "partial_failure"
)

// SaveRunReport persists one run's metadata: the pipeline_runs row plus one
// cohort_results row per cohort. A report is written even when every cohort
// came back empty; silence is never an outcome.
func (p *Pool) SaveRunReport(ctx context.Context, report *review.RunReport) (int64, string, error) {
	if p == nil || p.gdb == nil {
		return 0, "", fmt.Errorf("database pool is not initialized")
	}
	if report == nil {
		return 0, "", fmt.Errorf("run report is nil")
	}

	status := RunStatusCompleted
	if report.PartialFailure {
		status = RunStatusPartialFailure
	}

	run := PipelineRun{
		StartedAt:              report.StartedAt.UTC(),
		FinishedAt:             nullableTime(report.FinishedAt),
		Status:                 status,
		CohortsProcessed:       len(report.Cohorts),
		TotalRaw:               report.TotalRaw,
		NewReviewsCleaned:      report.NewReviewsCleaned,
		SkippedReviews:         report.SkippedReviews,
		ExistingReviewsChecked: report.ExistingReviewsChecked,
		HasNewData:             report.HasNewData,
		DegradedLookups:        report.DegradedLookups,
		PartialFailure:         report.PartialFailure,
	}

	if err := p.gdb.WithContext(ctx).Create(&run).Error; err != nil {
		return 0, "", fmt.Errorf("insert pipeline run: %w", err)
	}

	if len(report.Cohorts) > 0 {
		rows := make([]CohortRecord, 0, len(report.Cohorts))
		for _, c := range report.Cohorts {
			rows = append(rows, CohortRecord{
				RunID:                  run.RunID,
				Source:                 c.Scope.Source,
				AppName:                c.Scope.AppName,
				Country:                c.Scope.Country,
				NRaw:                   c.NRaw,
				NNew:                   c.NNew,
				NExisting:              c.NExisting,
				NDuplicateInBatch:      c.NDuplicateInBatch,
				NMissingKey:            c.NMissingKey,
				ExistingReviewsChecked: c.ExistingReviewsChecked,
				NewReviewsCleaned:      c.NewReviewsCleaned,
				Status:                 string(c.Status),
				Degraded:               c.Degraded,
				CacheHit:               c.CacheHit,
				ProcessedAt:            c.ProcessedAt.UTC(),
			})
		}
		if err := p.gdb.WithContext(ctx).Create(&rows).Error; err != nil {
			return 0, "", fmt.Errorf("insert cohort results: %w", err)
		}
	}

	return run.RunID, run.RunUUID, nil
}

// RecentRuns returns the newest pipeline runs, most recent first.
func (p *Pool) RecentRuns(ctx context.Context, limit int) ([]PipelineRun, error) {
	if p == nil || p.gdb == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}
	if limit < 1 {
		limit = 25
	}

	var runs []PipelineRun
	err := p.gdb.WithContext(ctx).
		Order("started_at DESC, run_id DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	return runs, nil
}

// LatestRun returns the most recent pipeline run, or nil when the store has
// never recorded one.
func (p *Pool) LatestRun(ctx context.Context) (*PipelineRun, error) {
	runs, err := p.RecentRuns(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// CohortsForRun returns all cohort rows recorded for one run UUID.
func (p *Pool) CohortsForRun(ctx context.Context, runUUID string) ([]CohortRecord, error) {
	if p == nil || p.gdb == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}

	var run PipelineRun
	err := p.gdb.WithContext(ctx).Where("run_uuid = ?", runUUID).First(&run).Error
	if err != nil {
		return nil, fmt.Errorf("find run %s: %w", runUUID, err)
	}

	var cohorts []CohortRecord
	err = p.gdb.WithContext(ctx).
		Where("run_id = ?", run.RunID).
		Order("source, app_name, country").
		Find(&cohorts).Error
	if err != nil {
		return nil, fmt.Errorf("query cohorts for run %s: %w", runUUID, err)
	}
	return cohorts, nil
}

func nullableTime(value time.Time) *time.Time {
	if value.IsZero() {
		return nil
	}
	utc := value.UTC()
	return &utc
}
