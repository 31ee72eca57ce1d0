package cmd

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/arrowbench/banditbench/bench"
	"github.com/arrowbench/banditbench/cache"
	"github.com/arrowbench/banditbench/cli/config"
	"github.com/arrowbench/banditbench/encode"
	"github.com/arrowbench/banditbench/environment"
	"github.com/arrowbench/banditbench/pipe"
	"github.com/arrowbench/banditbench/types"
)

// buildCacher constructs the Cacher a run's remote sources fetch through,
// per cli/config.CacheConfig.Backend.
func buildCacher(cfg config.CacheConfig) (cache.Cacher, error) {
	switch cfg.Backend {
	case "", "null":
		return cache.NewNullCacher(), nil
	case "memory":
		return cache.NewConcurrentCacher(cache.NewMemoryCacher()), nil
	case "disk":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("cache.dir required for disk backend")
		}
		disk, err := cache.NewDiskCacher(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("disk cacher: %w", err)
		}
		return cache.NewConcurrentCacher(disk), nil
	case "redis":
		if cfg.Addr == "" {
			return nil, fmt.Errorf("cache.addr required for redis backend")
		}
		client := redis.NewClient(&redis.Options{Addr: cfg.Addr})
		return cache.NewConcurrentCacher(cache.NewRedisCacher(client, "banditbench:cache:")), nil
	default:
		return nil, fmt.Errorf("unsupported cache.backend %q (want null, memory, disk, or redis)", cfg.Backend)
	}
}

// lazyTabular defers building its underlying source (the HTTP/S3 fetch)
// until the loop's first Read, per the simulation's lazy flag. A non-lazy
// simulation is built eagerly at config-load time instead, so a bad id or
// missing bucket fails before any learner runs.
type lazyTabular struct {
	kind  environment.TabularKind
	build func() (pipe.Source[encode.Structured], *types.EnvParams, error)

	built *environment.Tabular
}

var _ environment.Environment = (*lazyTabular)(nil)
var _ environment.Lazy = (*lazyTabular)(nil)

func (l *lazyTabular) Load() error {
	if l.built != nil {
		return nil
	}
	src, params, err := l.build()
	if err != nil {
		return err
	}
	l.built = environment.NewTabular(l.kind, src, params)
	return nil
}

func (l *lazyTabular) Unload() error {
	l.built = nil
	return nil
}

func (l *lazyTabular) Read() ([]types.Interaction, error) {
	if l.built == nil {
		if err := l.Load(); err != nil {
			return nil, err
		}
	}
	return l.built.Read()
}

func (l *lazyTabular) Rewards(queries []environment.RewardQuery) ([]float64, error) {
	return l.built.Rewards(queries)
}

func (l *lazyTabular) Params() *types.EnvParams {
	if l.built == nil {
		return types.NewEnvParams()
	}
	return l.built.Params()
}

// buildEnvironment constructs the Environment described by one
// SimulationConfig entry, wiring its source (openml or s3) through cacher.
func buildEnvironment(sim config.SimulationConfig, apiKeys config.APIKeysConfig, cacher cache.Cacher) (environment.Environment, error) {
	kind := environment.Classification
	if sim.Type == "regression" {
		kind = environment.Regression
	}

	var build func() (pipe.Source[encode.Structured], *types.EnvParams, error)
	switch sim.From.Format {
	case "openml":
		src := &environment.OpenMLSource{DataID: sim.From.ID, APIKey: apiKeys.OpenML, Cacher: cacher}
		build = func() (pipe.Source[encode.Structured], *types.EnvParams, error) {
			return src.Build(0, 0)
		}
	case "s3":
		src := &environment.S3Source{Bucket: sim.From.Bucket, Key: sim.From.Key, Cacher: cacher}
		build = func() (pipe.Source[encode.Structured], *types.EnvParams, error) {
			return src.Build(context.Background(), "")
		}
	default:
		return nil, fmt.Errorf("unsupported simulation source format %q", sim.From.Format)
	}

	lazy := &lazyTabular{kind: kind, build: build}
	if sim.LazyOrDefault() {
		return lazy, nil
	}
	if err := lazy.Load(); err != nil {
		return nil, err
	}
	return lazy, nil
}

// buildEnvironments builds every configured simulation in order, failing
// fast on the first construction error (a malformed config is a
// ConfigError, not a per-environment failure).
func buildEnvironments(cfg *config.Config, cacher cache.Cacher) ([]environment.Environment, error) {
	envs := make([]environment.Environment, 0, len(cfg.Simulations))
	for i, sim := range cfg.Simulations {
		env, err := buildEnvironment(sim, cfg.APIKeys, cacher)
		if err != nil {
			return nil, fmt.Errorf("simulations[%d]: %w", i, err)
		}
		envs = append(envs, env)
	}
	return envs, nil
}

// buildPolicy translates BatchesConfig into a bench.Policy, mirroring
// config.Validate's "exactly one of count/size/size_list" invariant.
func buildPolicy(cfg config.BatchesConfig) (bench.Policy, error) {
	switch {
	case cfg.Count > 0:
		return bench.Count(cfg.Count), nil
	case cfg.Size > 0:
		return bench.ConstantSize(cfg.Size), nil
	case len(cfg.SizeList) > 0:
		return bench.SizeSchedule(cfg.SizeList), nil
	default:
		return nil, fmt.Errorf("batches: exactly one of count, size, size_list is required")
	}
}
