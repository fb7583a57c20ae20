package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm/clause"

	"github.com/CalixtheMattei/apple-store-500-analytics/internal/config"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/review"
)

// ExistingReviewIDs returns every source_review_id already stored for one
// (source, app_name, country) scope. Pages are fetched in a stable order
// until a short page signals the end; a scope the store has never seen
// yields an empty set, not an error.
func (p *Pool) ExistingReviewIDs(ctx context.Context, scope review.Scope, pageSize int) (map[string]struct{}, error) {
	if p == nil || p.gdb == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}

	source := strings.TrimSpace(scope.Source)
	appName := strings.TrimSpace(scope.AppName)
	country := strings.TrimSpace(scope.Country)
	if source == "" || appName == "" || country == "" {
		return nil, fmt.Errorf("scope requires source, app_name and country")
	}

	pageSize = clampPageSize(pageSize)

	const q = `
SELECT source_review_id
FROM clean_reviews
WHERE source = $1 AND app_name = $2 AND country = $3
ORDER BY source_review_id
LIMIT $4 OFFSET $5
`

	ids := make(map[string]struct{})
	offset := 0
	for {
		rows, err := p.Query(ctx, q, source, appName, country, pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("query existing review IDs: %w", err)
		}

		fetched := 0
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan existing review ID: %w", err)
			}
			ids[id] = struct{}{}
			fetched++
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("iterate existing review IDs: %w", err)
		}
		rows.Close()

		if fetched < pageSize {
			return ids, nil
		}
		offset += pageSize
	}
}

// UpsertCleanReviews writes canonical records using the composite key as
// conflict target. Existing rows get their mutable fields replaced (last
// write wins); the return value is the store's affected-row feedback.
func (p *Pool) UpsertCleanReviews(ctx context.Context, records []review.CanonicalReview) (int64, error) {
	if p == nil || p.gdb == nil {
		return 0, fmt.Errorf("database pool is not initialized")
	}
	if len(records) == 0 {
		return 0, nil
	}

	rows := make([]CleanReview, 0, len(records))
	for _, record := range records {
		key, err := record.Key()
		if err != nil {
			return 0, fmt.Errorf("record without natural key cannot be upserted: %w", err)
		}
		rows = append(rows, CleanReview{
			Source:         key.Source,
			AppName:        key.AppName,
			Country:        key.Country,
			SourceReviewID: key.SourceReviewID,
			Rating:         record.Rating,
			Title:          nullableString(record.Title),
			Content:        record.Content,
			CleanedContent: record.CleanedContent,
			Language:       record.Language,
			ReviewDate:     nullableDate(record.ReviewDate),
		})
	}

	res := p.gdb.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "source"},
			{Name: "app_name"},
			{Name: "country"},
			{Name: "source_review_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"rating",
			"title",
			"content",
			"cleaned_content",
			"language",
			"review_date",
			"updated_at",
		}),
	}).Create(&rows)
	if res.Error != nil {
		return 0, fmt.Errorf("upsert clean reviews: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func clampPageSize(pageSize int) int {
	if pageSize <= 0 {
		return config.DefaultLookupPageSize
	}
	if pageSize < config.MinLookupPageSize {
		return config.MinLookupPageSize
	}
	if pageSize > config.MaxLookupPageSize {
		return config.MaxLookupPageSize
	}
	return pageSize
}

func nullableString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &value
}

func nullableDate(value time.Time) *time.Time {
	if value.IsZero() {
		return nil
	}
	day := value.UTC().Truncate(24 * time.Hour)
	return &day
}
