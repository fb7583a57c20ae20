package db

import (
	"context"
	"testing"
	"time"

	"github.com/CalixtheMattei/apple-store-500-analytics/internal/config"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/review"
)

func TestClampPageSize(t *testing.T) {
	t.Parallel()

	if got := clampPageSize(0); got != config.DefaultLookupPageSize {
		t.Fatalf("expected the default for zero, got %d", got)
	}
	if got := clampPageSize(config.MinLookupPageSize - 1); got != config.MinLookupPageSize {
		t.Fatalf("expected the floor, got %d", got)
	}
	if got := clampPageSize(config.MaxLookupPageSize + 1); got != config.MaxLookupPageSize {
		t.Fatalf("expected the ceiling, got %d", got)
	}
	if got := clampPageSize(750); got != 750 {
		t.Fatalf("expected in-range values to pass through, got %d", got)
	}
}

func TestNullableString(t *testing.T) {
	t.Parallel()

	if got := nullableString("  "); got != nil {
		t.Fatalf("expected nil for blank input, got %q", *got)
	}
	value := "Great"
	got := nullableString(value)
	if got == nil || *got != value {
		t.Fatalf("unexpected result: %v", got)
	}
}

func TestNullableDate(t *testing.T) {
	t.Parallel()

	if got := nullableDate(time.Time{}); got != nil {
		t.Fatalf("expected nil for the zero time, got %v", *got)
	}

	ts := time.Date(2026, 8, 10, 16, 45, 12, 0, time.UTC)
	got := nullableDate(ts)
	if got == nil {
		t.Fatalf("expected a value for a real timestamp")
	}
	want := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected the date to be truncated to midnight UTC, got %v", got)
	}
}

func TestUpsertCleanReviews_UninitializedPool(t *testing.T) {
	t.Parallel()

	var pool *Pool
	scope := review.Scope{Source: "app_store", AppName: "MySpotty", Country: "fr"}
	if _, err := pool.UpsertCleanReviews(context.Background(), nil); err == nil {
		t.Fatalf("expected an error from a nil pool")
	}
	if _, err := pool.ExistingReviewIDs(context.Background(), scope, 1000); err == nil {
		t.Fatalf("expected an error from a nil pool")
	}
}
