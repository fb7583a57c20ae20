package review

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultSource is assumed when a scraped record carries no source marker.
const DefaultSource = "app_store"

var (
	// ErrMissingKeyField marks a record whose natural key cannot be built.
	// Such records are dropped and counted, never ingested as new.
	ErrMissingKeyField = errors.New("missing key field")

	// ErrMalformedReview marks a record the source returned in an
	// unexpected shape that could not be absorbed with defaults.
	ErrMalformedReview = errors.New("malformed review")
)

// RawReview is one scraped review before cleaning. It is never persisted;
// it exists only between the review source and the normalizer.
type RawReview struct {
	Source         string    `json:"source"`
	AppName        string    `json:"app_name"`
	Country        string    `json:"country"`
	SourceReviewID string    `json:"source_review_id"`
	Rating         int       `json:"rating"`
	Title          string    `json:"title,omitempty"`
	Content        string    `json:"content"`
	ReviewDate     time.Time `json:"review_date"`
}

// CanonicalReview is the cleaned, schema-aligned record the loader writes.
// Content always holds the untouched original text; CleanedContent is never
// absent on an emitted record, though it may be empty.
type CanonicalReview struct {
	Source         string    `json:"source"`
	AppName        string    `json:"app_name"`
	Country        string    `json:"country"`
	SourceReviewID string    `json:"source_review_id"`
	Rating         int       `json:"rating"`
	Title          string    `json:"title,omitempty"`
	Content        string    `json:"content"`
	CleanedContent string    `json:"cleaned_content"`
	Language       string    `json:"language"`
	ReviewDate     time.Time `json:"review_date"`
}

// Scope identifies one cohort: all reviews for a (source, app, country)
// combination processed together.
type Scope struct {
	Source  string `json:"source"`
	AppName string `json:"app_name"`
	Country string `json:"country"`
}

func (s Scope) String() string {
	return fmt.Sprintf("%s/%s/%s", s.Source, s.AppName, s.Country)
}

// Key is the composite natural key that identifies a review everywhere:
// in raw batches, in the store, and in the existing-ID lookup. Two records
// with equal keys are the same logical review regardless of any other field.
type Key struct {
	Source         string
	AppName        string
	Country        string
	SourceReviewID string
}

func (k Key) Scope() Scope {
	return Scope{Source: k.Source, AppName: k.AppName, Country: k.Country}
}

// NewKey builds the composite key from its parts. The source defaults to
// app_store and the country is lowercased; the review ID is mandatory.
func NewKey(source, appName, country, sourceReviewID string) (Key, error) {
	id := strings.TrimSpace(sourceReviewID)
	if id == "" {
		return Key{}, fmt.Errorf("%w: source_review_id is empty", ErrMissingKeyField)
	}

	src := strings.TrimSpace(source)
	if src == "" {
		src = DefaultSource
	}

	return Key{
		Source:         src,
		AppName:        strings.TrimSpace(appName),
		Country:        strings.ToLower(strings.TrimSpace(country)),
		SourceReviewID: id,
	}, nil
}

// Key returns the composite key for a raw record.
func (r RawReview) Key() (Key, error) {
	return NewKey(r.Source, r.AppName, r.Country, r.SourceReviewID)
}

// Key returns the composite key for a canonical record.
func (c CanonicalReview) Key() (Key, error) {
	return NewKey(c.Source, c.AppName, c.Country, c.SourceReviewID)
}
