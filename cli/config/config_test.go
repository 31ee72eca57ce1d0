package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFullConfig(t *testing.T) {
	yaml := `batches:
  count: 5

simulations:
  - type: classification
    from:
      format: openml
      id: 61
      md5_checksum: abc123
    seed: 7
    lazy: false
  - type: regression
    from:
      format: s3
      bucket: my-bucket
      key: data/housing.csv

cache:
  backend: disk
  dir: /tmp/banditbench-cache

api_keys:
  openml: ${TEST_OPENML_KEY:-default-key}
`
	path := writeTemp(t, yaml)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Batches.Count != 5 {
		t.Errorf("batches.count = %d, want 5", cfg.Batches.Count)
	}
	if len(cfg.Simulations) != 2 {
		t.Fatalf("got %d simulations, want 2", len(cfg.Simulations))
	}

	sim0 := cfg.Simulations[0]
	if sim0.Type != "classification" || sim0.From.Format != "openml" || sim0.From.ID != 61 {
		t.Errorf("simulation 0 = %+v, want classification/openml/61", sim0)
	}
	if sim0.Seed == nil || *sim0.Seed != 7 {
		t.Errorf("simulation 0 seed = %v, want 7", sim0.Seed)
	}
	if sim0.LazyOrDefault() != false {
		t.Errorf("simulation 0 lazy = %v, want false", sim0.LazyOrDefault())
	}

	sim1 := cfg.Simulations[1]
	if sim1.Type != "regression" || sim1.From.Format != "s3" || sim1.From.Bucket != "my-bucket" || sim1.From.Key != "data/housing.csv" {
		t.Errorf("simulation 1 = %+v, want regression/s3/my-bucket/data/housing.csv", sim1)
	}
	if sim1.LazyOrDefault() != true {
		t.Errorf("simulation 1 lazy default = %v, want true", sim1.LazyOrDefault())
	}

	if cfg.Cache.Backend != "disk" || cfg.Cache.Dir != "/tmp/banditbench-cache" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.APIKeys.OpenML != "default-key" {
		t.Errorf("api_keys.openml = %q, want default-key (env unset)", cfg.APIKeys.OpenML)
	}
}

func TestLoadEmptyConfig(t *testing.T) {
	path := writeTemp(t, "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Simulations) != 0 {
		t.Errorf("expected no simulations, got %d", len(cfg.Simulations))
	}
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/banditbench.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeTemp(t, "{{invalid yaml")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoadEnvExpansion(t *testing.T) {
	t.Setenv("TEST_OPENML_KEY", "expanded-key")

	yaml := `api_keys:
  openml: ${TEST_OPENML_KEY}
`
	path := writeTemp(t, yaml)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIKeys.OpenML != "expanded-key" {
		t.Errorf("api_keys.openml = %q, want expanded-key", cfg.APIKeys.OpenML)
	}
}

func TestLoadUnknownKeyRejected(t *testing.T) {
	yaml := `batches:
  count: 1
bogus_key: should_fail
`
	path := writeTemp(t, yaml)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unknown key, got nil")
	}
	if !strings.Contains(err.Error(), "bogus_key") {
		t.Errorf("error should mention the unknown key, got: %v", err)
	}
}

func TestValidateRejectsAmbiguousBatchPolicy(t *testing.T) {
	cfg := &Config{
		Batches:     BatchesConfig{Count: 2, Size: 5},
		Simulations: []SimulationConfig{{Type: "classification", From: SourceConfig{Format: "openml", ID: 1}}},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected a ConfigError for ambiguous batches, got nil")
	}
}

func TestValidateRejectsMissingSimulations(t *testing.T) {
	cfg := &Config{Batches: BatchesConfig{Count: 1}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected a ConfigError for missing simulations, got nil")
	}
}

func TestValidateRejectsUnknownSimulationType(t *testing.T) {
	cfg := &Config{
		Batches:     BatchesConfig{Count: 1},
		Simulations: []SimulationConfig{{Type: "clustering", From: SourceConfig{Format: "openml", ID: 1}}},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected a ConfigError for unknown simulation type, got nil")
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	cfg := &Config{
		Batches:     BatchesConfig{Count: 3},
		Simulations: []SimulationConfig{{Type: "classification", From: SourceConfig{Format: "openml", ID: 61}}},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// writeTemp writes content to a temp file and returns the path.
func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "banditbench.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}
