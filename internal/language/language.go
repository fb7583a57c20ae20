package language

import "strings"

// Unknown is the language assigned when detection fails and the country
// has no configured default.
const Unknown = "unknown"

// countryDefaults maps storefront countries to the language most reviews
// from that storefront are written in. Used as a fallback when detection
// returns nothing.
var countryDefaults = map[string]string{
	"fr": "fr",
	"us": "en",
	"gb": "en",
	"de": "de",
	"se": "sv",
	"es": "es",
	"it": "it",
	"ca": "en",
}

// CountryDefault returns the fallback language for a storefront country,
// or Unknown when the country is not configured.
func CountryDefault(country string) string {
	if lang, ok := countryDefaults[NormalizeCode(country)]; ok {
		return lang
	}
	return Unknown
}

// NormalizeCode returns the primary language or country subtag in lowercase
// (for example, "en" from "en-US"). Blank or non-alphabetic values
// normalize to the empty string.
func NormalizeCode(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}

	trimmed = strings.ReplaceAll(trimmed, "_", "-")
	if dash := strings.IndexByte(trimmed, '-'); dash >= 0 {
		trimmed = trimmed[:dash]
	}
	if !isAlphaLower(trimmed) {
		return ""
	}
	return trimmed
}

// IsCountryCode reports whether the value looks like an ISO 3166-1 alpha-2
// country code after normalization.
func IsCountryCode(raw string) bool {
	code := NormalizeCode(raw)
	return len(code) == 2
}

func isAlphaLower(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
