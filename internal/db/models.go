package db

import "time"

// CleanReview maps clean_reviews. The composite unique index is the upsert
// conflict target: no two rows may ever share
// (source, app_name, country, source_review_id).
type CleanReview struct {
	ReviewID       int64      `gorm:"column:review_id;primaryKey;autoIncrement"`
	Source         string     `gorm:"column:source;type:text;not null;uniqueIndex:ux_clean_reviews_identity,priority:1"`
	AppName        string     `gorm:"column:app_name;type:text;not null;uniqueIndex:ux_clean_reviews_identity,priority:2"`
	Country        string     `gorm:"column:country;type:text;not null;uniqueIndex:ux_clean_reviews_identity,priority:3"`
	SourceReviewID string     `gorm:"column:source_review_id;type:text;not null;uniqueIndex:ux_clean_reviews_identity,priority:4"`
	Rating         int        `gorm:"column:rating;type:smallint;not null"`
	Title          *string    `gorm:"column:title;type:text"`
	Content        string     `gorm:"column:content;type:text;not null"`
	CleanedContent string     `gorm:"column:cleaned_content;type:text;not null"`
	Language       string     `gorm:"column:language;type:text;not null;default:unknown"`
	ReviewDate     *time.Time `gorm:"column:review_date;type:date"`
	CreatedAt      time.Time  `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (CleanReview) TableName() string { return "clean_reviews" }

// PipelineRun maps pipeline_runs: one row per pipeline execution.
type PipelineRun struct {
	RunID                  int64      `gorm:"column:run_id;primaryKey;autoIncrement"`
	RunUUID                string     `gorm:"column:run_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	StartedAt              time.Time  `gorm:"column:started_at;type:timestamptz;not null"`
	FinishedAt             *time.Time `gorm:"column:finished_at;type:timestamptz"`
	Status                 string     `gorm:"column:status;type:text;not null;default:completed"`
	CohortsProcessed       int        `gorm:"column:cohorts_processed;type:integer;not null;default:0"`
	TotalRaw               int        `gorm:"column:total_raw;type:integer;not null;default:0"`
	NewReviewsCleaned      int        `gorm:"column:new_reviews_cleaned;type:integer;not null;default:0"`
	SkippedReviews         int        `gorm:"column:skipped_reviews;type:integer;not null;default:0"`
	ExistingReviewsChecked int        `gorm:"column:existing_reviews_checked;type:integer;not null;default:0"`
	HasNewData             bool       `gorm:"column:has_new_data;type:boolean;not null;default:false"`
	DegradedLookups        bool       `gorm:"column:degraded_lookups;type:boolean;not null;default:false"`
	PartialFailure         bool       `gorm:"column:partial_failure;type:boolean;not null;default:false"`
	CreatedAt              time.Time  `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (PipelineRun) TableName() string { return "pipeline_runs" }

// CohortRecord maps cohort_results: one row per cohort per run.
type CohortRecord struct {
	CohortResultID         int64     `gorm:"column:cohort_result_id;primaryKey;autoIncrement"`
	RunID                  int64     `gorm:"column:run_id;type:bigint;not null;index"`
	Source                 string    `gorm:"column:source;type:text;not null"`
	AppName                string    `gorm:"column:app_name;type:text;not null"`
	Country                string    `gorm:"column:country;type:text;not null"`
	NRaw                   int       `gorm:"column:n_raw;type:integer;not null;default:0"`
	NNew                   int       `gorm:"column:n_new;type:integer;not null;default:0"`
	NExisting              int       `gorm:"column:n_existing;type:integer;not null;default:0"`
	NDuplicateInBatch      int       `gorm:"column:n_duplicate_in_batch;type:integer;not null;default:0"`
	NMissingKey            int       `gorm:"column:n_missing_key;type:integer;not null;default:0"`
	ExistingReviewsChecked int       `gorm:"column:existing_reviews_checked;type:integer;not null;default:0"`
	NewReviewsCleaned      int       `gorm:"column:new_reviews_cleaned;type:integer;not null;default:0"`
	Status                 string    `gorm:"column:status;type:text;not null"`
	Degraded               bool      `gorm:"column:degraded;type:boolean;not null;default:false"`
	CacheHit               bool      `gorm:"column:cache_hit;type:boolean;not null;default:false"`
	ProcessedAt            time.Time `gorm:"column:processed_at;type:timestamptz;not null"`
	CreatedAt              time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (CohortRecord) TableName() string { return "cohort_results" }

func autoMigrateModels() []any {
	return []any{
		&CleanReview{},
		&PipelineRun{},
		&CohortRecord{},
	}
}
