// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package v0 provides the schema for v0 of the user config file for yangcheck
//
// v0 allows for breaking changes without a major version increase
package v0

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/invopop/jsonschema"
	"github.com/spf13/afero"
	"github.com/xeipuuv/gojsonschema"

	"github.com/defenseunicorns/yangcheck/config"
	"github.com/defenseunicorns/yangcheck/data"
)

// SchemaVersion is the current schema version for configs
const SchemaVersion = "v0"

// Config is the user configuration file for yangcheck
type Config struct {
	SchemaVersion string            `json:"schema-version"`
	LogLevel      config.LogLevel   `json:"log-level,omitempty"`
	WithDefaults  data.WithDefaults `json:"with-defaults,omitempty"`
	OutputFormat  data.Format       `json:"output-format,omitempty"`
}

// JSONSchemaExtend extends the JSON schema for a config
func (Config) JSONSchemaExtend(schema *jsonschema.Schema) {
	if schemaVersion, ok := schema.Properties.Get("schema-version"); ok && schemaVersion != nil {
		schemaVersion.Description = "Config schema version"
		schemaVersion.Enum = []any{SchemaVersion}
	}
}

// Default returns a valid config holding every default
func Default() *Config {
	return &Config{
		SchemaVersion: SchemaVersion,
		LogLevel:      config.DefaultLogLevel,
		WithDefaults:  data.DefaultWithDefaults,
		OutputFormat:  data.DefaultFormat,
	}
}

// LoadConfig reads and validates a config file
func LoadConfig(r io.Reader) (*Config, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var versioned config.Versioned
	if err := yaml.Unmarshal(b, &versioned); err != nil {
		return nil, err
	}

	switch version := versioned.SchemaVersion; version {
	case SchemaVersion:
		cfg := Default()
		if err := yaml.UnmarshalWithOptions(b, cfg, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		return cfg, Validate(cfg)
	default:
		return nil, fmt.Errorf("unsupported config schema version: expected %q, got %q", SchemaVersion, version)
	}
}

// LoadDefaultConfig loads the config from the default location
//
// If the file does not exist, the default config is returned
func LoadDefaultConfig() (*Config, error) {
	dir, err := config.DefaultDirectory()
	if err != nil {
		return nil, err
	}

	return LoadConfigFs(afero.NewBasePathFs(afero.NewOsFs(), dir))
}

// LoadConfigFs loads config.DefaultFileName from the base directory of fsys
//
// If the file does not exist, the default config is returned
func LoadConfigFs(fsys afero.Fs) (*Config, error) {
	f, err := fsys.Open(config.DefaultFileName)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg, err := LoadConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	return cfg, nil
}

// Every validation uses the same schema, so compute it once
var schemaOnce = sync.OnceValues(func() (string, error) {
	s := Schema()
	b, err := json.Marshal(s)
	return string(b), err
})

// Validate checks if a config adheres to the JSON schema
func Validate(cfg *Config) error {
	schema, err := schemaOnce()
	if err != nil {
		return err
	}

	schemaLoader := gojsonschema.NewStringLoader(schema)

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(cfg))
	if err != nil {
		return err
	}

	if result.Valid() {
		return nil
	}

	var resErr error
	for _, err := range result.Errors() {
		resErr = errors.Join(resErr, errors.New(err.String()))
	}

	return resErr
}

// Schema returns the JSON schema for the Config type
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true}
	return reflector.Reflect(&Config{})
}
