// Package environment implements the two Environment kinds the benchmark
// loop drives: synthetic (lambda-driven LinearSynthetic/LocalSynthetic) and
// tabular (pipeline-driven, built from CSV/ARFF/Parquet rows fetched
// through a Cacher). Every Environment exposes Params for result tagging
// and Rewards for the loop's bulk batch-boundary reward fetch.
package environment

import "github.com/arrowbench/banditbench/types"

// RewardQuery identifies one (interaction, chosen-action-index) pair the
// loop wants a reward for, at a batch boundary.
type RewardQuery struct {
	Key    uint64
	Choice int
}

// Environment is a Source of Interactions. Read must be callable more than
// once and yield an equivalent stream under a fixed seed (determinism).
type Environment interface {
	// Read materializes the full interaction sequence for one pass.
	Read() ([]types.Interaction, error)
	// Rewards resolves rewards in bulk for the given (key, choice) pairs.
	Rewards(queries []RewardQuery) ([]float64, error)
	// Params is an ordered mapping of string->JSON scalar for result tagging.
	Params() *types.EnvParams
}

// Lazy is implemented by environments whose backing resource (e.g. a
// tabular pipeline fetching over HTTP) should be acquired around one
// evaluation pass and released afterward. The benchmark loop calls Load
// before Read and Unload in a finally-equivalent, whether or not the pass
// succeeded.
type Lazy interface {
	Load() error
	Unload() error
}
