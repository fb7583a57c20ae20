package cleaning

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/CalixtheMattei/apple-store-500-analytics/internal/langdetect"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/language"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/review"
)

var (
	urlPattern        = regexp.MustCompile(`(?i)https?://\S+|www\.\S+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// emojiTable covers emoji and pictographic blocks plus the joiners and
// variation selectors used to compose them.
var emojiTable = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x200D, Hi: 0x200D, Stride: 1}, // zero-width joiner
		{Lo: 0x20E3, Hi: 0x20E3, Stride: 1}, // combining keycap
		{Lo: 0x2300, Hi: 0x23FF, Stride: 1}, // misc technical (watch, hourglass)
		{Lo: 0x2600, Hi: 0x27BF, Stride: 1}, // misc symbols, dingbats
		{Lo: 0x2B00, Hi: 0x2BFF, Stride: 1}, // misc symbols and arrows
		{Lo: 0xFE00, Hi: 0xFE0F, Stride: 1}, // variation selectors
	},
	R32: []unicode.Range32{
		{Lo: 0x1F000, Hi: 0x1FAFF, Stride: 1}, // emoji, pictographs, flags
	},
}

// Normalizer transforms one new raw review into its canonical, store-ready
// shape. It owns the text cleaning steps and the language decision.
type Normalizer struct {
	detect func(string) string
}

func NewNormalizer() *Normalizer {
	return &Normalizer{detect: langdetect.DetectISO6391}
}

// Normalize produces the canonical record for one raw review. Content is
// preserved verbatim; CleanedContent holds the normalized text, which may
// legitimately be empty — emptiness is a data-quality signal, not a reason
// to drop the record. The identity fields pass through untouched.
func (n *Normalizer) Normalize(raw review.RawReview) (review.CanonicalReview, error) {
	if n == nil {
		return review.CanonicalReview{}, fmt.Errorf("normalizer is not initialized")
	}
	if _, err := raw.Key(); err != nil {
		return review.CanonicalReview{}, fmt.Errorf("%w: %w", review.ErrMalformedReview, err)
	}

	cleaned := CleanText(raw.Content)

	detect := n.detect
	if detect == nil {
		detect = langdetect.DetectISO6391
	}
	lang := detect(cleaned)
	if lang == "" {
		lang = language.CountryDefault(raw.Country)
	}

	return review.CanonicalReview{
		Source:         raw.Source,
		AppName:        raw.AppName,
		Country:        raw.Country,
		SourceReviewID: raw.SourceReviewID,
		Rating:         raw.Rating,
		Title:          raw.Title,
		Content:        raw.Content,
		CleanedContent: cleaned,
		Language:       lang,
		ReviewDate:     raw.ReviewDate,
	}, nil
}

// CleanText applies the normalization steps in order: strip emoji and
// pictographs, strip URLs, apply NFKC, collapse runs of whitespace, trim.
func CleanText(text string) string {
	out := StripEmoji(text)
	out = StripURLs(out)
	out = norm.NFKC.String(out)
	out = whitespacePattern.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// StripEmoji removes emoji and pictographic symbols, including the
// zero-width joiners and variation selectors that glue sequences together.
func StripEmoji(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.Is(emojiTable, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// StripURLs removes http(s) and bare www URLs.
func StripURLs(text string) string {
	return urlPattern.ReplaceAllString(text, "")
}
