package language

import "testing"

func TestCountryDefault(t *testing.T) {
	t.Parallel()

	if got := CountryDefault("fr"); got != "fr" {
		t.Fatalf("unexpected default for fr: %q", got)
	}
	if got := CountryDefault(" SE "); got != "sv" {
		t.Fatalf("unexpected default for se: %q", got)
	}
	if got := CountryDefault("gb"); got != "en" {
		t.Fatalf("unexpected default for gb: %q", got)
	}
	if got := CountryDefault("jp"); got != Unknown {
		t.Fatalf("expected unknown for unconfigured country, got %q", got)
	}
	if got := CountryDefault(""); got != Unknown {
		t.Fatalf("expected unknown for blank country, got %q", got)
	}
}

func TestNormalizeCode(t *testing.T) {
	t.Parallel()

	if got := NormalizeCode(" EN-us "); got != "en" {
		t.Fatalf("unexpected normalized code: %q", got)
	}
	if got := NormalizeCode("fr_FR"); got != "fr" {
		t.Fatalf("unexpected normalized code: %q", got)
	}
	if got := NormalizeCode("12"); got != "" {
		t.Fatalf("expected numeric input to normalize to empty, got %q", got)
	}
	if got := NormalizeCode(" "); got != "" {
		t.Fatalf("expected blank input to normalize to empty, got %q", got)
	}
}

func TestIsCountryCode(t *testing.T) {
	t.Parallel()

	if !IsCountryCode("FR") {
		t.Fatalf("expected FR to be a country code")
	}
	if IsCountryCode("fra") {
		t.Fatalf("did not expect a three-letter code to pass")
	}
	if IsCountryCode("") {
		t.Fatalf("did not expect blank input to pass")
	}
}
