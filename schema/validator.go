package scopeschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/CalixtheMattei/apple-store-500-analytics/internal/language"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/review"
)

//go:embed apps_config.schema.json
var appsConfigSchemaJSON string

// AppTarget is one application to scrape.
type AppTarget struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// ScopeConfig enumerates the (app, country) pairs a run covers.
type ScopeConfig struct {
	Source             string      `json:"source,omitempty"`
	ScrapeDelaySeconds int         `json:"scrape_delay_seconds,omitempty"`
	Countries          []string    `json:"countries"`
	Apps               []AppTarget `json:"apps"`
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// ValidateScopeConfig checks a scope configuration document against the
// embedded schema plus semantic rules, and returns the parsed form with
// source and countries normalized.
func ValidateScopeConfig(payload json.RawMessage) (*ScopeConfig, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode scope config JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize scope config JSON: %w", err)
	}

	var cfg ScopeConfig
	if err := json.Unmarshal(normalized, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal scope config: %w", err)
	}

	if err := validateSemantics(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validateSemantics(cfg *ScopeConfig) error {
	if cfg == nil {
		return fmt.Errorf("scope config is nil")
	}

	cfg.Source = strings.TrimSpace(cfg.Source)
	if cfg.Source == "" {
		cfg.Source = review.DefaultSource
	}

	seenCountries := make(map[string]struct{}, len(cfg.Countries))
	for i, country := range cfg.Countries {
		code := language.NormalizeCode(country)
		if !language.IsCountryCode(code) {
			return fmt.Errorf("countries[%d]: %q is not a two-letter country code", i, country)
		}
		if _, dup := seenCountries[code]; dup {
			return fmt.Errorf("countries[%d]: %q is listed twice", i, country)
		}
		seenCountries[code] = struct{}{}
		cfg.Countries[i] = code
	}

	seenApps := make(map[string]struct{}, len(cfg.Apps))
	for i, app := range cfg.Apps {
		name := strings.TrimSpace(app.Name)
		if name == "" {
			return fmt.Errorf("apps[%d].name must not be empty", i)
		}
		if _, dup := seenApps[name]; dup {
			return fmt.Errorf("apps[%d].name %q is listed twice", i, name)
		}
		seenApps[name] = struct{}{}
		cfg.Apps[i].Name = name
		cfg.Apps[i].ID = strings.TrimSpace(app.ID)
		if cfg.Apps[i].ID == "" {
			return fmt.Errorf("apps[%d].id must not be empty", i)
		}
	}

	return nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		if err := compiler.AddResource("apps_config.schema.json", strings.NewReader(appsConfigSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("apps_config.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("scope config is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("scope config contains trailing content")
	}

	return value, nil
}
