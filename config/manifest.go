// Package config loads the config.flowlang.json package manifest through
// the same four-step pipeline the teacher's config.go uses for plugin
// configuration: JSON decode to a raw map, apply struct-tag defaults,
// decode onto the typed struct, then validate.
package config

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	gojson "github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"
)

// Manifest is config.flowlang.json's schema (§6). The evaluator itself
// reads only TypeRequired; the rest locates the entry point and package
// aliases for the (out-of-scope) CLI and package manager.
type Manifest struct {
	Name         string            `json:"name" mapstructure:"name" validate:"required"`
	Version      string            `json:"version" mapstructure:"version"`
	Entry        string            `json:"entry" mapstructure:"entry" validate:"required"`
	Authors      []string          `json:"authors" mapstructure:"authors"`
	TypeRequired bool              `json:"type_required" mapstructure:"type_required" default:"false"`
	Packages     map[string]string `json:"packages" mapstructure:"packages"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	return v
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var rawMap map[string]any
	if err := gojson.Unmarshal(raw, &rawMap); err != nil {
		return nil, fmt.Errorf("parsing manifest json: %w", err)
	}

	m := &Manifest{}
	if err := defaults.Set(m); err != nil {
		return nil, fmt.Errorf("applying manifest defaults: %w", err)
	}

	if err := mapstructure.Decode(rawMap, m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}

	if err := validate.Struct(m); err != nil {
		return nil, fmt.Errorf("validating manifest: %w", err)
	}

	return m, nil
}
