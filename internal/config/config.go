package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/grimaldi89/martechito/internal/faults"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (MARTECHITO_*). Nested keys use
// underscores: MARTECHITO_CHUNKING_SIZE -> chunking.size.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("MARTECHITO_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "MARTECHITO_")), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validStrategies is the set of recognized retrieval strategy values.
var validStrategies = map[string]bool{
	"threshold": true,
	"mmr":       true,
}

// Validate checks that every required setting is present and coherent.
// The returned error is a faults.ConfigError listing everything missing, so
// an operator can fix the whole set in one pass.
func (c *Config) Validate() error {
	var missing []string

	if c.Generation.Model == "" {
		missing = append(missing, "generation.model")
	}
	if c.Embedding.Model == "" {
		missing = append(missing, "embedding.model")
	}
	if c.EmbeddingDimensions() <= 0 {
		missing = append(missing, "embedding.dimensions")
	}
	if c.Index.Path == "" {
		missing = append(missing, "index.path")
	}
	if c.Index.Collection == "" {
		missing = append(missing, "index.collection")
	}
	if c.Chunking.Size <= 0 {
		missing = append(missing, "chunking.size")
	}
	if c.Chunking.Overlap < 0 {
		missing = append(missing, "chunking.overlap")
	}
	if c.Catalog.Path == "" {
		missing = append(missing, "catalog.path")
	}
	if c.Catalog.Dataset == "" {
		missing = append(missing, "catalog.dataset")
	}
	if c.Catalog.Table == "" {
		missing = append(missing, "catalog.table")
	}
	if c.ObjectStore.Project == "" {
		missing = append(missing, "objectstore.project")
	}

	if len(missing) > 0 {
		return &faults.ConfigError{Missing: missing}
	}

	if c.Chunking.Overlap >= c.Chunking.Size {
		return &faults.ConfigError{Reason: fmt.Sprintf(
			"chunking.overlap (%d) must be smaller than chunking.size (%d)",
			c.Chunking.Overlap, c.Chunking.Size)}
	}
	if !validStrategies[c.Retrieval.Strategy] {
		return &faults.ConfigError{Reason: fmt.Sprintf(
			"invalid retrieval.strategy %q: must be one of threshold, mmr", c.Retrieval.Strategy)}
	}
	if c.Retrieval.Threshold < 0 || c.Retrieval.Threshold > 1 {
		return &faults.ConfigError{Reason: "retrieval.threshold must be within [0,1]"}
	}
	if c.Retrieval.Lambda < 0 || c.Retrieval.Lambda > 1 {
		return &faults.ConfigError{Reason: "retrieval.lambda must be within [0,1]"}
	}

	return nil
}
