package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/CalixtheMattei/apple-store-500-analytics/internal/config"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/review"
)

// ErrUploadFailed marks a cohort whose upload lost at least one chunk. The
// remaining chunks and cohorts still run; a re-execution is safe because
// the upsert conflict target makes the whole pipeline idempotent.
var ErrUploadFailed = errors.New("upload failed")

// Upserter is the keyed write surface of the persisted store.
type Upserter interface {
	UpsertCleanReviews(ctx context.Context, records []review.CanonicalReview) (int64, error)
}

// Loader writes canonical records to the store in bounded chunks.
type Loader struct {
	store     Upserter
	chunkSize int
	timeout   time.Duration
	logger    zerolog.Logger
}

func New(store Upserter, chunkSize int, timeout time.Duration, logger zerolog.Logger) *Loader {
	if chunkSize < 1 {
		chunkSize = config.DefaultUploadChunkSize
	}
	return &Loader{
		store:     store,
		chunkSize: chunkSize,
		timeout:   timeout,
		logger:    logger,
	}
}

// Stats reports one cohort's upload outcome.
type Stats struct {
	Chunks       int
	FailedChunks int
	Uploaded     int
	RowsAffected int64
}

// LoadCohort upserts one cohort's records. Cohorts with status
// no_new_reviews or an empty record set are skipped without touching the
// store at all. A failed chunk is logged with its key range and skipped;
// the error wraps ErrUploadFailed so the caller can mark the run partially
// failed without aborting other cohorts.
func (l *Loader) LoadCohort(ctx context.Context, scope review.Scope, status review.Status, records []review.CanonicalReview) (Stats, error) {
	if l == nil || l.store == nil {
		return Stats{}, fmt.Errorf("loader is not initialized")
	}

	if status == review.StatusNoNewReviews || len(records) == 0 {
		l.logger.Debug().
			Str("scope", scope.String()).
			Str("status", string(status)).
			Msg("nothing to upload; skipping store call")
		return Stats{}, nil
	}

	var stats Stats
	for offset := 0; offset < len(records); offset += l.chunkSize {
		end := min(offset+l.chunkSize, len(records))
		chunk := records[offset:end]
		stats.Chunks++

		affected, err := l.upsertChunk(ctx, chunk)
		if err != nil {
			stats.FailedChunks++
			l.logger.Error().
				Err(err).
				Str("scope", scope.String()).
				Int("chunk", stats.Chunks).
				Str("first_review_id", chunk[0].SourceReviewID).
				Str("last_review_id", chunk[len(chunk)-1].SourceReviewID).
				Msg("chunk upload failed; continuing")
			continue
		}

		stats.Uploaded += len(chunk)
		stats.RowsAffected += affected
	}

	l.logger.Info().
		Str("scope", scope.String()).
		Int("uploaded", stats.Uploaded).
		Int("chunks", stats.Chunks).
		Int("failed_chunks", stats.FailedChunks).
		Msg("cohort upload finished")

	if stats.FailedChunks > 0 {
		return stats, fmt.Errorf("%w: %d of %d chunks failed for %s", ErrUploadFailed, stats.FailedChunks, stats.Chunks, scope)
	}
	return stats, nil
}

func (l *Loader) upsertChunk(ctx context.Context, chunk []review.CanonicalReview) (int64, error) {
	chunkCtx := ctx
	if l.timeout > 0 {
		var cancel context.CancelFunc
		chunkCtx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	return l.store.UpsertCleanReviews(chunkCtx, chunk)
}
