package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	scopeschema "github.com/CalixtheMattei/apple-store-500-analytics/schema"
)

// LoadScopeConfig reads and validates the (app, country) scope file. Any
// problem here aborts the run before the first cohort is touched.
func LoadScopeConfig(path string) (*scopeschema.ScopeConfig, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("%w: scope config path is empty", ErrInvalid)
	}

	raw, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read scope config %s: %w", ErrInvalid, cleanPath, err)
	}

	cfg, err := scopeschema.ValidateScopeConfig(json.RawMessage(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, cleanPath, err)
	}
	return cfg, nil
}
