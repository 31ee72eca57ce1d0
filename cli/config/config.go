package config

import (
	"fmt"

	"github.com/arrowbench/banditbench/types"
)

// Config is a benchmark run's YAML configuration file, mirroring the
// batches/simulations shape of §6's JSON config (YAML is a superset of
// JSON, so the same shape round-trips through either encoding).
type Config struct {
	Batches     BatchesConfig      `yaml:"batches"`
	Simulations []SimulationConfig `yaml:"simulations"`
	Cache       CacheConfig        `yaml:"cache"`
	APIKeys     APIKeysConfig      `yaml:"api_keys"`
}

// BatchesConfig selects exactly one batching policy. Only one of Count,
// Size, or SizeList should be set; Validate rejects an ambiguous or empty
// selection.
type BatchesConfig struct {
	Count    int   `yaml:"count"`
	Size     int   `yaml:"size"`
	SizeList []int `yaml:"size_list"`
}

// SimulationConfig describes one environment to benchmark.
type SimulationConfig struct {
	Type string       `yaml:"type"` // "classification" | "regression"
	From SourceConfig `yaml:"from"`
	Seed *int64       `yaml:"seed,omitempty"`
	// Lazy defaults to true when unset.
	Lazy *bool `yaml:"lazy,omitempty"`
}

// SourceConfig names where a simulation's rows come from.
type SourceConfig struct {
	Format      string `yaml:"format"` // "openml" | "s3"
	ID          int    `yaml:"id"`
	MD5Checksum string `yaml:"md5_checksum,omitempty"`
	Bucket      string `yaml:"bucket,omitempty"`
	Key         string `yaml:"key,omitempty"`
}

// CacheConfig selects the Cacher backend for remote fetches.
type CacheConfig struct {
	Backend string `yaml:"backend"` // "null" | "memory" | "disk" | "redis"
	Dir     string `yaml:"dir,omitempty"`
	Addr    string `yaml:"addr,omitempty"`
}

// APIKeysConfig carries third-party API keys consumed by HTTP sources.
type APIKeysConfig struct {
	OpenML string `yaml:"openml,omitempty"`
}

// LazyOrDefault reports whether this simulation should load lazily,
// defaulting to true per §6.
func (s SimulationConfig) LazyOrDefault() bool {
	if s.Lazy == nil {
		return true
	}
	return *s.Lazy
}

// Validate checks the config is well-formed, returning a *types.ConfigError
// on the first problem found.
func (c *Config) Validate() *types.ConfigError {
	if err := c.Batches.validate(); err != nil {
		return err
	}
	if len(c.Simulations) == 0 {
		return &types.ConfigError{Kind: types.ConfigErrorMissingField, Msg: "simulations: at least one required"}
	}
	for i, sim := range c.Simulations {
		if err := sim.validate(i); err != nil {
			return err
		}
	}
	return nil
}

func (b BatchesConfig) validate() *types.ConfigError {
	set := 0
	if b.Count > 0 {
		set++
	}
	if b.Size > 0 {
		set++
	}
	if len(b.SizeList) > 0 {
		set++
	}
	if set == 0 {
		return &types.ConfigError{Kind: types.ConfigErrorMissingField, Msg: "batches: exactly one of count, size, size_list is required"}
	}
	if set > 1 {
		return &types.ConfigError{Kind: types.ConfigErrorMalformed, Msg: "batches: only one of count, size, size_list may be set"}
	}
	return nil
}

func (s SimulationConfig) validate(index int) *types.ConfigError {
	switch s.Type {
	case "classification", "regression":
	default:
		return &types.ConfigError{Kind: types.ConfigErrorUnknownType, Msg: fmt.Sprintf("simulations[%d]: unknown type %q", index, s.Type)}
	}
	switch s.From.Format {
	case "openml":
		if s.From.ID == 0 {
			return &types.ConfigError{Kind: types.ConfigErrorMissingField, Msg: fmt.Sprintf("simulations[%d]: from.id required for openml source", index)}
		}
	case "s3":
		if s.From.Bucket == "" || s.From.Key == "" {
			return &types.ConfigError{Kind: types.ConfigErrorMissingField, Msg: fmt.Sprintf("simulations[%d]: from.bucket and from.key required for s3 source", index)}
		}
	default:
		return &types.ConfigError{Kind: types.ConfigErrorUnknownType, Msg: fmt.Sprintf("simulations[%d]: unknown source format %q", index, s.From.Format)}
	}
	return nil
}
