package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/CalixtheMattei/apple-store-500-analytics/internal/cleaning"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/globaltime"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/review"
)

// ErrLookupUnavailable marks an existing-ID fetch that could not reach the
// store. It is never fatal to a run: the cohort degrades to full-reprocess
// mode with an empty ID set and the degradation is recorded in metadata.
var ErrLookupUnavailable = errors.New("existing-ID lookup unavailable")

// Lookup fetches the set of already-ingested review IDs for one scope.
type Lookup interface {
	ExistingReviewIDs(ctx context.Context, scope review.Scope, pageSize int) (map[string]struct{}, error)
}

// Service runs one cohort at a time through lookup, filter, normalization
// and classification. The existing-ID cache lives for exactly one Service
// lifetime, which is one run.
type Service struct {
	lookup     Lookup
	normalizer *cleaning.Normalizer
	pageSize   int
	timeout    time.Duration
	logger     zerolog.Logger

	cache map[review.Scope]cacheEntry
}

// cacheEntry holds one scope's resolved ID set. A non-nil err wraps
// ErrLookupUnavailable and marks the scope degraded for the rest of the run.
type cacheEntry struct {
	ids map[string]struct{}
	err error
}

// NewService builds a run-scoped pipeline service. A nil lookup means no
// store is configured; every cohort then processes in degraded mode.
func NewService(lookup Lookup, pageSize int, timeout time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		lookup:     lookup,
		normalizer: cleaning.NewNormalizer(),
		pageSize:   pageSize,
		timeout:    timeout,
		logger:     logger,
		cache:      make(map[review.Scope]cacheEntry),
	}
}

// CohortOutcome is the result of processing one raw batch: the canonical
// records ready for the loader plus the cohort's metadata.
type CohortOutcome struct {
	Result  review.CohortResult
	Records []review.CanonicalReview
}

// ProcessBatch takes one cohort's raw batch through the full sequence:
// existing-ID lookup (cached per run, degradable), filter, normalizer,
// classifier. Per-record anomalies are absorbed and counted; nothing here
// aborts the run.
func (s *Service) ProcessBatch(ctx context.Context, scope review.Scope, batch []review.RawReview) CohortOutcome {
	ids, cacheHit, degraded := s.existingIDs(ctx, scope)

	part := review.Filter(batch, ids)

	records := make([]review.CanonicalReview, 0, len(part.New))
	for _, raw := range part.New {
		canonical, err := s.normalizer.Normalize(raw)
		if err != nil {
			part.NMissingKey++
			part.NNew--
			s.logger.Warn().
				Err(err).
				Str("scope", scope.String()).
				Msg("dropping malformed review")
			continue
		}
		records = append(records, canonical)
	}

	result := review.CohortResult{
		Scope:                  scope,
		NRaw:                   len(batch),
		NNew:                   part.NNew,
		NExisting:              part.NExisting,
		NDuplicateInBatch:      part.NDuplicateInBatch,
		NMissingKey:            part.NMissingKey,
		ExistingReviewsChecked: len(ids),
		NewReviewsCleaned:      len(records),
		Status:                 review.Classify(part.NNew, part.NExisting),
		Degraded:               degraded,
		CacheHit:               cacheHit,
		ProcessedAt:            globaltime.UTC(),
	}

	s.logger.Info().
		Str("scope", scope.String()).
		Int("n_raw", result.NRaw).
		Int("n_new", result.NNew).
		Int("n_existing", result.NExisting).
		Int("n_duplicate_in_batch", result.NDuplicateInBatch).
		Str("status", string(result.Status)).
		Bool("degraded", degraded).
		Msg("cohort processed")

	return CohortOutcome{Result: result, Records: records}
}

// existingIDs resolves the existing-ID set for a scope, computing it at
// most once per run. Degraded lookups are cached too, so every batch of the
// same cohort sees a consistent view within the run.
func (s *Service) existingIDs(ctx context.Context, scope review.Scope) (map[string]struct{}, bool, bool) {
	if entry, ok := s.cache[scope]; ok {
		return entry.ids, true, entry.err != nil
	}

	entry := s.fetchExistingIDs(ctx, scope)
	s.cache[scope] = entry
	return entry.ids, false, entry.err != nil
}

func (s *Service) fetchExistingIDs(ctx context.Context, scope review.Scope) cacheEntry {
	if s.lookup == nil {
		err := fmt.Errorf("%w: no store configured", ErrLookupUnavailable)
		s.logger.Warn().
			Str("scope", scope.String()).
			Msg("no store configured; assuming no existing IDs")
		return cacheEntry{ids: map[string]struct{}{}, err: err}
	}

	lookupCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		lookupCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	ids, err := s.lookup.ExistingReviewIDs(lookupCtx, scope, s.pageSize)
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrLookupUnavailable, err)
		s.logger.Warn().
			Err(wrapped).
			Str("scope", scope.String()).
			Msg("falling back to full reprocess")
		return cacheEntry{ids: map[string]struct{}{}, err: wrapped}
	}

	s.logger.Debug().
		Str("scope", scope.String()).
		Int("existing_ids", len(ids)).
		Msg("existing IDs fetched")
	return cacheEntry{ids: ids}
}
