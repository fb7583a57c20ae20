package review

import "time"

// Status classifies one cohort's outcome for a single run. It is recomputed
// fresh every run from counts alone; no state carries across runs.
type Status string

const (
	StatusNewDataset    Status = "new_dataset"
	StatusPartialUpdate Status = "partial_update"
	StatusNoNewReviews  Status = "no_new_reviews"
)

// Classify derives the cohort status from its counts.
func Classify(nNew, nExisting int) Status {
	switch {
	case nNew == 0:
		return StatusNoNewReviews
	case nExisting == 0:
		return StatusNewDataset
	default:
		return StatusPartialUpdate
	}
}

// CohortResult is the per-cohort metadata artifact: one record per
// (source, app, country) per run.
type CohortResult struct {
	Scope Scope `json:"scope"`

	NRaw                   int    `json:"n_raw"`
	NNew                   int    `json:"n_new"`
	NExisting              int    `json:"n_existing"`
	NDuplicateInBatch      int    `json:"n_duplicate_in_batch"`
	NMissingKey            int    `json:"n_missing_key"`
	ExistingReviewsChecked int    `json:"existing_reviews_checked"`
	NewReviewsCleaned      int    `json:"new_reviews_cleaned"`
	Status                 Status `json:"status"`

	// Degraded is set when the existing-ID lookup was unavailable and the
	// cohort fell back to full-reprocess mode with an empty ID set.
	Degraded bool `json:"degraded"`
	// CacheHit is set when the existing-ID set came from the per-run cache.
	CacheHit bool `json:"cache_hit"`

	ProcessedAt time.Time `json:"processed_at"`
}

// SkippedReviews counts every raw record excluded from the cohort's output.
func (c CohortResult) SkippedReviews() int {
	return c.NExisting + c.NDuplicateInBatch + c.NMissingKey
}

// RunReport aggregates all cohorts processed in one execution. It is
// created at run start, mutated by each cohort, and finalized once.
type RunReport struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Cohorts []CohortResult `json:"cohorts"`

	TotalRaw               int `json:"total_raw"`
	NewReviewsCleaned      int `json:"new_reviews_cleaned"`
	SkippedReviews         int `json:"skipped_reviews"`
	ExistingReviewsChecked int `json:"existing_reviews_checked"`

	// HasNewData is true when any cohort produced new rows. Downstream
	// consumers use it to decide whether to proceed at all.
	HasNewData bool `json:"has_new_data"`
	// DegradedLookups is true when any cohort processed without an
	// existing-ID set.
	DegradedLookups bool `json:"degraded_lookups"`
	// PartialFailure is true when at least one upload chunk failed; the
	// run stays safe to re-execute because upserts are idempotent.
	PartialFailure bool `json:"partial_failure"`
}

func NewRunReport(startedAt time.Time) *RunReport {
	return &RunReport{StartedAt: startedAt}
}

// AddCohort folds one cohort result into the report totals.
func (r *RunReport) AddCohort(c CohortResult) {
	if r == nil {
		return
	}
	r.Cohorts = append(r.Cohorts, c)
	r.TotalRaw += c.NRaw
	r.NewReviewsCleaned += c.NewReviewsCleaned
	r.SkippedReviews += c.SkippedReviews()
	r.ExistingReviewsChecked += c.ExistingReviewsChecked
	if c.Status != StatusNoNewReviews {
		r.HasNewData = true
	}
	if c.Degraded {
		r.DegradedLookups = true
	}
}

// Finalize stamps the end of the run.
func (r *RunReport) Finalize(finishedAt time.Time) {
	if r == nil {
		return
	}
	r.FinishedAt = finishedAt
}
