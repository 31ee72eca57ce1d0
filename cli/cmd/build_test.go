package cmd

import (
	"testing"

	"github.com/arrowbench/banditbench/cli/config"
)

func TestBuildCacherDefaultsToNull(t *testing.T) {
	c, err := buildCacher(config.CacheConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c == nil {
		t.Fatal("expected a non-nil cacher")
	}
}

func TestBuildCacherMemory(t *testing.T) {
	c, err := buildCacher(config.CacheConfig{Backend: "memory"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c == nil {
		t.Fatal("expected a non-nil cacher")
	}
}

func TestBuildCacherDiskRequiresDir(t *testing.T) {
	if _, err := buildCacher(config.CacheConfig{Backend: "disk"}); err == nil {
		t.Fatal("expected error for disk backend with no dir")
	}
}

func TestBuildCacherUnknownBackend(t *testing.T) {
	if _, err := buildCacher(config.CacheConfig{Backend: "bogus"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestBuildCacherRedisRequiresAddr(t *testing.T) {
	if _, err := buildCacher(config.CacheConfig{Backend: "redis"}); err == nil {
		t.Fatal("expected error for redis backend with no addr")
	}
}

func TestBuildCacherRedis(t *testing.T) {
	c, err := buildCacher(config.CacheConfig{Backend: "redis", Addr: "localhost:6379"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c == nil {
		t.Fatal("expected a non-nil cacher")
	}
}

func TestBuildPolicyCount(t *testing.T) {
	p, err := buildPolicy(config.BatchesConfig{Count: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sizes := p.Sizes(9)
	if len(sizes) != 3 {
		t.Fatalf("got %d batches, want 3", len(sizes))
	}
}

func TestBuildPolicyMissingSelector(t *testing.T) {
	if _, err := buildPolicy(config.BatchesConfig{}); err == nil {
		t.Fatal("expected error for an empty batches config")
	}
}

func TestBuildEnvironmentUnsupportedFormat(t *testing.T) {
	sim := config.SimulationConfig{Type: "classification", From: config.SourceConfig{Format: "bogus"}}
	if _, err := buildEnvironment(sim, config.APIKeysConfig{}, nil); err == nil {
		t.Fatal("expected error for unsupported source format")
	}
}
