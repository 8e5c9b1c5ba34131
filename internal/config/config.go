// Package config loads a project's sodigy.json or sodigy.yaml manifest
// (spec §6's "Config file"): the macro and dependency name-to-source-path
// tables the orchestrator's module discovery consults. Grounded on
// internal/manifest's schema-versioned Load/Save shape, narrowed to the two
// top-level keys spec §6 names.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sodigy-lang/sodigy/internal/schema"
	"gopkg.in/yaml.v3"
)

// SchemaVersion tags the on-disk config format, the same versioning
// discipline internal/manifest.SchemaVersion uses.
const SchemaVersion = "sodigy.config/v1"

// Config is a project's sodigy.json/sodigy.yaml: macro and dependency
// names mapped to the source paths that satisfy them (spec §6's config
// table, its only two recognized keys).
type Config struct {
	Schema       string            `json:"schema" yaml:"schema"`
	Macros       map[string]string `json:"macros,omitempty" yaml:"macros,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// New returns an empty config stamped with the current schema version —
// what a project with no config file on disk behaves as.
func New() *Config {
	return &Config{
		Schema:       SchemaVersion,
		Macros:       map[string]string{},
		Dependencies: map[string]string{},
	}
}

// candidateNames is the search order Load tries within a project
// directory; spec §6 only names "sodigy.json or analogous", so a YAML
// sibling is accepted too, matching the teacher's go.mod carrying
// gopkg.in/yaml.v3 for exactly this kind of config.
var candidateNames = []string{"sodigy.json", "sodigy.yaml", "sodigy.yml"}

// Load searches dir for a recognized config file and parses it. A missing
// config file is not an error — spec §6 never states a project must carry
// one, so an absent file yields New()'s empty defaults.
func Load(dir string) (*Config, error) {
	for _, name := range candidateNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		return parse(path, data)
	}
	return New(), nil
}

// LoadFile parses a single config file at path, bypassing candidate-name
// search — for callers (tests, `sodigyc new`) that already know which file
// they mean.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return parse(path, data)
}

func parse(path string, data []byte) (*Config, error) {
	cfg := &Config{}
	var err error
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if cfg.Schema == "" {
		cfg.Schema = SchemaVersion
	}
	if !schema.Accepts(cfg.Schema, SchemaVersion) {
		return nil, fmt.Errorf("config: unsupported schema version %q (expected %s)", cfg.Schema, SchemaVersion)
	}
	if cfg.Macros == nil {
		cfg.Macros = map[string]string{}
	}
	if cfg.Dependencies == nil {
		cfg.Dependencies = map[string]string{}
	}
	return cfg, nil
}

// Save writes c to path as JSON or YAML, chosen by path's extension.
func (c *Config) Save(path string) error {
	var data []byte
	var err error
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("config: encoding %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ResolveDependency returns the source path configured for a dependency
// name, consulted by the orchestrator's module discovery (spec §4.5.3's
// AddModule messages) before it falls back to resolving an import
// relative to the importing file — spec §6 lists "dependency not found"
// as an IO/Build error precisely for the case this lookup misses.
func (c *Config) ResolveDependency(name string) (string, bool) {
	path, ok := c.Dependencies[name]
	return path, ok
}

// ResolveMacro returns the source path configured for a macro name.
func (c *Config) ResolveMacro(name string) (string, bool) {
	path, ok := c.Macros[name]
	return path, ok
}
