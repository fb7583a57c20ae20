package pipeline

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/CalixtheMattei/apple-store-500-analytics/internal/review"
)

func TestRunTimestamp(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 8, 20, 14, 30, 5, 0, time.UTC)
	if got := RunTimestamp(ts); got != "2026-08-20_14-30-05" {
		t.Fatalf("unexpected run timestamp: %q", got)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	report := review.NewRunReport(time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC))
	report.AddCohort(review.CohortResult{
		Scope:             testScope(),
		NNew:              2,
		NewReviewsCleaned: 2,
		Status:            review.StatusNewDataset,
	})

	manifest := &Manifest{
		RunTime:     "2026-08-20_14-30-05",
		GeneratedAt: time.Date(2026, 8, 20, 14, 30, 5, 0, time.UTC),
		Report:      report,
		Cohorts: []ManifestCohort{{
			Scope:             testScope(),
			Status:            review.StatusNewDataset,
			NewReviewsCleaned: 2,
			RecordsFile:       filepath.Join(dir, "myspotty_fr_clean_2026-08-20_14-30-05.json"),
		}},
	}

	path, err := WriteManifest(dir, manifest)
	if err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}
	if !strings.HasSuffix(path, "manifest_2026-08-20_14-30-05.json") {
		t.Fatalf("unexpected manifest path: %q", path)
	}

	loaded, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if loaded.RunTime != manifest.RunTime {
		t.Fatalf("unexpected run time: %q", loaded.RunTime)
	}
	if loaded.Report == nil || !loaded.Report.HasNewData {
		t.Fatalf("report did not survive the round trip: %+v", loaded.Report)
	}
	if len(loaded.Cohorts) != 1 || loaded.Cohorts[0].Scope != testScope() {
		t.Fatalf("unexpected cohorts: %+v", loaded.Cohorts)
	}
}

func TestLatestManifestPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, runTime := range []string{"2026-08-19_10-00-00", "2026-08-20_09-00-00", "2026-08-20_08-00-00"} {
		if _, err := WriteManifest(dir, &Manifest{RunTime: runTime, Report: &review.RunReport{}}); err != nil {
			t.Fatalf("unexpected write error: %v", err)
		}
	}

	latest, err := LatestManifestPath(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(latest, "manifest_2026-08-20_09-00-00.json") {
		t.Fatalf("unexpected latest manifest: %q", latest)
	}
}

func TestLatestManifestPath_EmptyDir(t *testing.T) {
	t.Parallel()

	if _, err := LatestManifestPath(t.TempDir()); err == nil {
		t.Fatalf("expected an error for a directory without manifests")
	}
}

func TestCohortRecordsRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	records := []review.CanonicalReview{{
		Source:         "app_store",
		AppName:        "MySpotty",
		Country:        "fr",
		SourceReviewID: "r-1",
		Rating:         5,
		Content:        "Superbe",
		CleanedContent: "Superbe",
		Language:       "fr",
	}}

	path, err := WriteCohortRecords(dir, testScope(), "2026-08-20_14-30-05", records)
	if err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}
	if !strings.HasSuffix(path, "myspotty_fr_clean_2026-08-20_14-30-05.json") {
		t.Fatalf("unexpected records path: %q", path)
	}

	loaded, err := LoadCohortRecords(path)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if len(loaded) != 1 || loaded[0] != records[0] {
		t.Fatalf("records did not survive the round trip: %+v", loaded)
	}
}
