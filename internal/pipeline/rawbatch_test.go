package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/CalixtheMattei/apple-store-500-analytics/internal/review"
)

func TestRawBatchRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	batch := RawBatch{
		Scope:     testScope(),
		ScrapedAt: time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC),
		Reviews:   []review.RawReview{rawReview("r-1", "Superbe")},
	}

	path, err := WriteRawBatch(dir, batch, "2026-08-20_14-30-05")
	if err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}
	if !strings.HasSuffix(path, "reviews_myspotty_fr_2026-08-20_14-30-05.json") {
		t.Fatalf("unexpected batch path: %q", path)
	}

	batches, err := LoadRawBatches(dir)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if len(batches) != 1 {
		t.Fatalf("expected one batch, got %d", len(batches))
	}
	if batches[0].Scope != batch.Scope {
		t.Fatalf("scope must travel inside the file, got %+v", batches[0].Scope)
	}
	if len(batches[0].Reviews) != 1 || batches[0].Reviews[0].SourceReviewID != "r-1" {
		t.Fatalf("unexpected reviews: %+v", batches[0].Reviews)
	}
}

func TestLoadRawBatches_MissingDirIsEmptyRun(t *testing.T) {
	t.Parallel()

	batches, err := LoadRawBatches(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if batches != nil {
		t.Fatalf("expected nil batches for a missing directory, got %+v", batches)
	}
}

func TestLoadRawBatches_IgnoresUnrelatedFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("unexpected setup error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "run_summary_2026.json"), []byte("{}"), 0o644); err != nil {
		t.Fatalf("unexpected setup error: %v", err)
	}

	batches, err := LoadRawBatches(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batches) != 0 {
		t.Fatalf("expected unrelated files to be skipped, got %d batches", len(batches))
	}
}

func TestSanitizeName(t *testing.T) {
	t.Parallel()

	if got := sanitizeName(" My Spotty/Beta "); got != "my-spotty-beta" {
		t.Fatalf("unexpected sanitized name: %q", got)
	}
	if got := sanitizeName("  "); got != "unknown" {
		t.Fatalf("expected blank name to sanitize to unknown, got %q", got)
	}
}
