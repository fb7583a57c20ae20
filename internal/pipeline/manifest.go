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

const manifestPrefix = "manifest_"

// Manifest is the explicit hand-off between processing and loading: it
// enumerates exactly the cohorts of one run and where their store-ready
// record sets live. The loader consumes this and nothing else — work is
// never inferred from file naming.
type Manifest struct {
	RunTime     string            `json:"run_time"`
	GeneratedAt time.Time         `json:"generated_at"`
	Report      *review.RunReport `json:"report"`
	Cohorts     []ManifestCohort  `json:"cohorts"`
}

// ManifestCohort points the loader at one cohort's record set. RecordsFile
// is empty when the cohort produced nothing to load.
type ManifestCohort struct {
	Scope             review.Scope  `json:"scope"`
	Status            review.Status `json:"status"`
	NewReviewsCleaned int           `json:"new_reviews_cleaned"`
	Degraded          bool          `json:"degraded"`
	RecordsFile       string        `json:"records_file,omitempty"`
}

// RunTimestamp formats a run identifier that sorts lexically by time.
func RunTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02_15-04-05")
}

// WriteManifest writes the run manifest under metaDir and returns its path.
func WriteManifest(metaDir string, m *Manifest) (string, error) {
	if m == nil {
		return "", fmt.Errorf("manifest is nil")
	}
	if err := os.MkdirAll(metaDir, 0o755); err != nil {
		return "", fmt.Errorf("create metadata dir %s: %w", metaDir, err)
	}

	path := filepath.Join(metaDir, manifestPrefix+m.RunTime+".json")
	payload, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write manifest %s: %w", path, err)
	}
	return path, nil
}

// LoadManifest reads one manifest file.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	return &m, nil
}

// LatestManifestPath returns the newest manifest under metaDir. Run
// timestamps sort lexically, so the newest is the greatest name.
func LatestManifestPath(metaDir string) (string, error) {
	entries, err := os.ReadDir(metaDir)
	if err != nil {
		return "", fmt.Errorf("read metadata dir %s: %w", metaDir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, manifestPrefix) && strings.HasSuffix(name, ".json") {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no manifest found under %s", metaDir)
	}
	sort.Strings(names)
	return filepath.Join(metaDir, names[len(names)-1]), nil
}

// WriteCohortRecords writes one cohort's canonical records under
// processedDir and returns the file path.
func WriteCohortRecords(processedDir string, scope review.Scope, runTime string, records []review.CanonicalReview) (string, error) {
	if err := os.MkdirAll(processedDir, 0o755); err != nil {
		return "", fmt.Errorf("create processed dir %s: %w", processedDir, err)
	}

	name := fmt.Sprintf("%s_%s_clean_%s.json", sanitizeName(scope.AppName), scope.Country, runTime)
	path := filepath.Join(processedDir, name)

	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal records for %s: %w", scope, err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write records %s: %w", path, err)
	}
	return path, nil
}

// LoadCohortRecords reads one cohort's canonical records.
func LoadCohortRecords(path string) ([]review.CanonicalReview, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records %s: %w", path, err)
	}
	var records []review.CanonicalReview
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode records %s: %w", path, err)
	}
	return records, nil
}

// WriteCohortMetadata writes the per-cohort metadata artifact.
func WriteCohortMetadata(metaDir string, result review.CohortResult, runTime string) (string, error) {
	if err := os.MkdirAll(metaDir, 0o755); err != nil {
		return "", fmt.Errorf("create metadata dir %s: %w", metaDir, err)
	}

	name := fmt.Sprintf("%s_%s_metadata_%s.json", sanitizeName(result.Scope.AppName), result.Scope.Country, runTime)
	path := filepath.Join(metaDir, name)

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal cohort metadata for %s: %w", result.Scope, err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write cohort metadata %s: %w", path, err)
	}
	return path, nil
}
