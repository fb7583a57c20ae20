package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/CalixtheMattei/apple-store-500-analytics/internal/review"
)

const rawBatchPrefix = "reviews_"

// RawBatch is the artifact the scraper hands to the processor: one cohort's
// raw reviews plus the scope they belong to. The scope travels inside the
// file, never in its name.
type RawBatch struct {
	Scope     review.Scope       `json:"scope"`
	ScrapedAt time.Time          `json:"scraped_at"`
	Reviews   []review.RawReview `json:"reviews"`
}

// WriteRawBatch writes one cohort's scraped reviews under rawDir and
// returns the file path.
func WriteRawBatch(rawDir string, batch RawBatch, runTime string) (string, error) {
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		return "", fmt.Errorf("create raw dir %s: %w", rawDir, err)
	}

	name := fmt.Sprintf("%s%s_%s_%s.json", rawBatchPrefix, sanitizeName(batch.Scope.AppName), batch.Scope.Country, runTime)
	path := filepath.Join(rawDir, name)

	payload, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal raw batch for %s: %w", batch.Scope, err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write raw batch %s: %w", path, err)
	}
	return path, nil
}

// LoadRawBatches reads every raw batch file under rawDir in a stable order.
// A missing directory is an empty run, not an error.
func LoadRawBatches(rawDir string) ([]RawBatch, error) {
	entries, err := os.ReadDir(rawDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read raw dir %s: %w", rawDir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, rawBatchPrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	batches := make([]RawBatch, 0, len(names))
	for _, name := range names {
		path := filepath.Join(rawDir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read raw batch %s: %w", path, err)
		}
		var batch RawBatch
		if err := json.Unmarshal(raw, &batch); err != nil {
			return nil, fmt.Errorf("decode raw batch %s: %w", path, err)
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

func sanitizeName(value string) string {
	cleaned := strings.TrimSpace(strings.ToLower(value))
	cleaned = strings.ReplaceAll(cleaned, " ", "-")
	cleaned = strings.ReplaceAll(cleaned, "/", "-")
	if cleaned == "" {
		return "unknown"
	}
	return cleaned
}
