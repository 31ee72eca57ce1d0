// Package worker implements the multiprocess-style fan-out runner (C9):
// bounded-concurrency goroutine workers, one per environment chunk, each
// driving bench.Loop independently; their Result records are merged and
// returned once every worker has finished.
package worker

import (
	"fmt"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/arrowbench/banditbench/bench"
	"github.com/arrowbench/banditbench/environment"
	"github.com/arrowbench/banditbench/learner"
	"github.com/arrowbench/banditbench/metrics"
	"github.com/arrowbench/banditbench/types"
)

// Chunk is one unit of work: a contiguous slice of environments (with their
// original indices) assigned to a single worker.
type Chunk struct {
	WorkerID     int
	EnvIndices   []uint32
	Environments []environment.Environment
}

// Config configures the fan-out runner. Workers is the number of concurrent
// worker goroutines (W in §4.9); W=1 degenerates to a single bench.Loop run.
type Config struct {
	Workers int
	Learners []learner.Factory
	Policy   bench.Policy
	Logger   bench.Logger
	Metrics  *metrics.Collector
}

// Run partitions environments into Workers chunks, runs §4.7's loop for
// each chunk on its own goroutine, and merges every emitted Result plus any
// WorkerError encountered. No ordering is promised between workers; within
// one worker, an environment's (learner, batch) order matches bench.Loop's.
func Run(cfg Config, envs []environment.Environment) ([]types.Result, []*types.WorkerError) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(envs) && len(envs) > 0 {
		workers = len(envs)
	}

	chunks := partition(envs, workers)

	var (
		mu      sync.Mutex
		results []types.Result
		errs    []*types.WorkerError
		wg      sync.WaitGroup
	)

	for _, chunk := range chunks {
		wg.Add(1)
		go func(c Chunk) {
			defer wg.Done()
			chunkResults, werr := runChunk(cfg, c)
			mu.Lock()
			defer mu.Unlock()
			results = append(results, chunkResults...)
			if werr != nil {
				errs = append(errs, werr)
			}
		}(chunk)
	}
	wg.Wait()

	return results, errs
}

// runChunk drives one worker's bench.Loop over its assigned environments,
// recovering a worker-local panic into an unexpected-exception WorkerError
// per §4.9 ("on worker-local unexpected exception the runner records
// 'unexpected exception' and continues").
func runChunk(cfg Config, chunk Chunk) (results []types.Result, werr *types.WorkerError) {
	defer func() {
		if r := recover(); r != nil {
			werr = &types.WorkerError{
				Kind:     types.WorkerErrorUnexpected,
				WorkerID: chunk.WorkerID,
				Err:      fmt.Errorf("panic: %v", r),
			}
		}
	}()

	loop := &bench.Loop{
		Environments: chunk.Environments,
		Learners:     cfg.Learners,
		Policy:       cfg.Policy,
		Logger:       cfg.Logger,
		Metrics:      cfg.Metrics,
	}

	raw := loop.Run()
	results = make([]types.Result, len(raw))
	for i, res := range raw {
		// bench.Loop numbers EnvIndex by position within the chunk; remap to
		// the original global index before this result leaves the worker.
		if int(res.EnvIndex) < len(chunk.EnvIndices) {
			res.EnvIndex = chunk.EnvIndices[res.EnvIndex]
		}
		// Route every result through msgpack marshal/unmarshal, mirroring a
		// real process boundary: a Result that cannot round-trip (e.g. a
		// learner smuggled a non-serializable value into a Stats field via
		// reflection) surfaces as a pickle-class WorkerError instead of a
		// panic escaping the worker.
		encoded, err := msgpack.Marshal(&res)
		if err != nil {
			werr = &types.WorkerError{
				Kind:     types.WorkerErrorUnserializable,
				WorkerID: chunk.WorkerID,
				Err:      err,
			}
			return results[:i], werr
		}
		var decoded types.Result
		if err := msgpack.Unmarshal(encoded, &decoded); err != nil {
			werr = &types.WorkerError{
				Kind:     types.WorkerErrorUnserializable,
				WorkerID: chunk.WorkerID,
				Err:      err,
			}
			return results[:i], werr
		}
		results[i] = decoded
	}
	return results, nil
}

// partition splits envs into at most n contiguous chunks, distributing the
// remainder across the first chunks one each.
func partition(envs []environment.Environment, n int) []Chunk {
	if len(envs) == 0 {
		return nil
	}
	if n > len(envs) {
		n = len(envs)
	}
	base := len(envs) / n
	rem := len(envs) % n

	chunks := make([]Chunk, 0, n)
	offset := 0
	for i := 0; i < n; i++ {
		size := base
		if i < rem {
			size++
		}
		if size == 0 {
			continue
		}
		indices := make([]uint32, size)
		chunkEnvs := make([]environment.Environment, size)
		for j := 0; j < size; j++ {
			indices[j] = uint32(offset + j)
			chunkEnvs[j] = envs[offset+j]
		}
		chunks = append(chunks, Chunk{WorkerID: i, EnvIndices: indices, Environments: chunkEnvs})
		offset += size
	}
	return chunks
}
