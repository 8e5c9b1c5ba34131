package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingConfigReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Schema != SchemaVersion {
		t.Errorf("Schema = %q, want %q", cfg.Schema, SchemaVersion)
	}
	if len(cfg.Macros) != 0 || len(cfg.Dependencies) != 0 {
		t.Errorf("expected empty tables for a missing config, got %+v", cfg)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sodigy.json")

	cfg := New()
	cfg.Macros["derive_eq"] = "macros/derive_eq.sdg"
	cfg.Dependencies["collections"] = "vendor/collections"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, want := loaded.Macros["derive_eq"], "macros/derive_eq.sdg"; got != want {
		t.Errorf("macro path = %q, want %q", got, want)
	}
	if got, want := loaded.Dependencies["collections"], "vendor/collections"; got != want {
		t.Errorf("dependency path = %q, want %q", got, want)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sodigy.yaml")

	cfg := New()
	cfg.Dependencies["json"] = "vendor/json"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	path2, ok := loaded.ResolveDependency("json")
	if !ok || path2 != "vendor/json" {
		t.Errorf("ResolveDependency(\"json\") = (%q, %v), want (\"vendor/json\", true)", path2, ok)
	}
}

func TestJSONPreferredOverYAML(t *testing.T) {
	dir := t.TempDir()
	jsonCfg := New()
	jsonCfg.Macros["from_json"] = "a.sdg"
	if err := jsonCfg.Save(filepath.Join(dir, "sodigy.json")); err != nil {
		t.Fatalf("Save json: %v", err)
	}
	yamlCfg := New()
	yamlCfg.Macros["from_yaml"] = "b.sdg"
	if err := yamlCfg.Save(filepath.Join(dir, "sodigy.yaml")); err != nil {
		t.Fatalf("Save yaml: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := loaded.ResolveMacro("from_json"); !ok {
		t.Error("expected sodigy.json to take precedence over sodigy.yaml")
	}
}

func TestLoadRejectsIncompatibleSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sodigy.json")
	bad := []byte(`{"schema": "sodigy.config/v2-incompatible", "macros": {}}`)
	if err := os.WriteFile(path, bad, 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected an incompatible schema version to be rejected")
	}
}
