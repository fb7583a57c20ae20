package cleaning

import (
	"errors"
	"testing"
	"time"

	"github.com/CalixtheMattei/apple-store-500-analytics/internal/review"
)

func TestCleanText_StripsEmojiAndURLs(t *testing.T) {
	t.Parallel()

	if got := CleanText("Love it! 😍 http://x.co"); got != "Love it!" {
		t.Fatalf("unexpected cleaned text: %q", got)
	}
	if got := CleanText("check www.example.com   now"); got != "check now" {
		t.Fatalf("unexpected cleaned text: %q", got)
	}
	if got := CleanText("👍👍👍"); got != "" {
		t.Fatalf("expected emoji-only text to clean to empty, got %q", got)
	}
}

func TestCleanText_CollapsesWhitespace(t *testing.T) {
	t.Parallel()

	if got := CleanText("  too\n\nmany\t spaces  "); got != "too many spaces" {
		t.Fatalf("unexpected cleaned text: %q", got)
	}
}

func TestCleanText_KeepsCaseAndPunctuation(t *testing.T) {
	t.Parallel()

	if got := CleanText("Great App, 5/5!"); got != "Great App, 5/5!" {
		t.Fatalf("cleaning must not rewrite case or punctuation, got %q", got)
	}
}

func TestStripEmoji_CompositeSequences(t *testing.T) {
	t.Parallel()

	// family emoji built from joined code points, plus a keycap sequence
	if got := StripEmoji("ok 👨‍👩‍👧 1️⃣ done"); got != "ok  1 done" {
		t.Fatalf("unexpected stripped text: %q", got)
	}
}

func TestNormalize_PreservesOriginalContent(t *testing.T) {
	t.Parallel()

	n := &Normalizer{detect: func(string) string { return "en" }}
	raw := review.RawReview{
		AppName:        "MySpotty",
		Country:        "us",
		SourceReviewID: "r-1",
		Rating:         5,
		Title:          "Great",
		Content:        "Love it! 😍 http://x.co",
		ReviewDate:     time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}

	got, err := n.Normalize(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Content != raw.Content {
		t.Fatalf("original content must be preserved, got %q", got.Content)
	}
	if got.CleanedContent != "Love it!" {
		t.Fatalf("unexpected cleaned content: %q", got.CleanedContent)
	}
	if got.Language != "en" {
		t.Fatalf("unexpected language: %q", got.Language)
	}
	if got.SourceReviewID != "r-1" || got.Rating != 5 || got.Title != "Great" {
		t.Fatalf("identity fields must pass through untouched: %+v", got)
	}
}

func TestNormalize_CountryFallbackLanguage(t *testing.T) {
	t.Parallel()

	n := &Normalizer{detect: func(string) string { return "" }}
	got, err := n.Normalize(review.RawReview{
		AppName:        "MySpotty",
		Country:        "se",
		SourceReviewID: "r-2",
		Content:        "ok",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Language != "sv" {
		t.Fatalf("expected Swedish fallback for se storefront, got %q", got.Language)
	}
}

func TestNormalize_EmptyCleanedContentStillEmitted(t *testing.T) {
	t.Parallel()

	n := &Normalizer{detect: func(string) string { return "" }}
	got, err := n.Normalize(review.RawReview{
		AppName:        "MySpotty",
		Country:        "fr",
		SourceReviewID: "r-3",
		Content:        "😍😍",
	})
	if err != nil {
		t.Fatalf("expected emoji-only review to be emitted, got %v", err)
	}
	if got.CleanedContent != "" {
		t.Fatalf("expected empty cleaned content, got %q", got.CleanedContent)
	}
	if got.Language != "fr" {
		t.Fatalf("expected country fallback language, got %q", got.Language)
	}
}

func TestNormalize_RejectsMissingKey(t *testing.T) {
	t.Parallel()

	n := NewNormalizer()
	_, err := n.Normalize(review.RawReview{AppName: "MySpotty", Country: "fr"})
	if !errors.Is(err, review.ErrMalformedReview) {
		t.Fatalf("expected ErrMalformedReview, got %v", err)
	}
	if !errors.Is(err, review.ErrMissingKeyField) {
		t.Fatalf("expected the missing-key cause to be wrapped, got %v", err)
	}
}
