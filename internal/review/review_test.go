package review

import (
	"errors"
	"testing"
)

func TestNewKey_DefaultsAndNormalization(t *testing.T) {
	t.Parallel()

	key, err := NewKey("", "MySpotty", " FR ", " r-123 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key.Source != DefaultSource {
		t.Fatalf("expected default source, got %q", key.Source)
	}
	if key.Country != "fr" {
		t.Fatalf("expected lowercased country, got %q", key.Country)
	}
	if key.SourceReviewID != "r-123" {
		t.Fatalf("expected trimmed review ID, got %q", key.SourceReviewID)
	}
}

func TestNewKey_MissingReviewID(t *testing.T) {
	t.Parallel()

	_, err := NewKey("app_store", "MySpotty", "fr", "   ")
	if !errors.Is(err, ErrMissingKeyField) {
		t.Fatalf("expected ErrMissingKeyField, got %v", err)
	}
}

func TestKeyScope(t *testing.T) {
	t.Parallel()

	key, err := NewKey("app_store", "MySpotty", "us", "r-9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	scope := key.Scope()
	if scope.Source != "app_store" || scope.AppName != "MySpotty" || scope.Country != "us" {
		t.Fatalf("unexpected scope: %+v", scope)
	}
	if scope.String() != "app_store/MySpotty/us" {
		t.Fatalf("unexpected scope string: %q", scope.String())
	}
}

func TestRawAndCanonicalKeysAgree(t *testing.T) {
	t.Parallel()

	raw := RawReview{AppName: "MySpotty", Country: "GB", SourceReviewID: "r-7"}
	canonical := CanonicalReview{AppName: "MySpotty", Country: "gb", SourceReviewID: "r-7"}

	rawKey, err := raw.Key()
	if err != nil {
		t.Fatalf("unexpected raw key error: %v", err)
	}
	canonicalKey, err := canonical.Key()
	if err != nil {
		t.Fatalf("unexpected canonical key error: %v", err)
	}
	if rawKey != canonicalKey {
		t.Fatalf("keys disagree: raw=%+v canonical=%+v", rawKey, canonicalKey)
	}
}
