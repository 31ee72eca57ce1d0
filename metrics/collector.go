// Package metrics provides per-run metrics collection for the benchmark
// loop. The Collector accumulates counters during a single run; it is a
// leaf package with no internal dependencies.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all tracked counters.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Benchmark loop (C7)
	EnvironmentsEvaluated int64
	EnvironmentsFailed    int64
	BatchesEmitted        int64
	LearnerErrors         int64

	// Cache (C2)
	CacheHits   int64
	CacheMisses int64
	CacheErrors int64

	// Multiprocess runner (C9)
	WorkerErrorsUnexpected     int64
	WorkerErrorsUnserializable int64

	// Dimensions (informational, set at construction)
	RunID string
}

// Collector accumulates metrics during a single run.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	environmentsEvaluated int64
	environmentsFailed    int64
	batchesEmitted        int64
	learnerErrors         int64

	cacheHits   int64
	cacheMisses int64
	cacheErrors int64

	workerErrorsUnexpected     int64
	workerErrorsUnserializable int64

	runID string
}

// NewCollector creates a Collector tagged with the run's identity.
func NewCollector(runID string) *Collector {
	return &Collector{runID: runID}
}

// IncEnvironmentEvaluated records one environment whose interactions were
// read. One that fails to load or read is counted by IncEnvironmentFailed
// instead; one dropped later for a Rewards failure is counted by both.
func (c *Collector) IncEnvironmentEvaluated() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.environmentsEvaluated++
	c.mu.Unlock()
}

// IncEnvironmentFailed records an EnvironmentError that dropped an
// environment from the run.
func (c *Collector) IncEnvironmentFailed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.environmentsFailed++
	c.mu.Unlock()
}

// IncBatchEmitted records one emitted Result record.
func (c *Collector) IncBatchEmitted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.batchesEmitted++
	c.mu.Unlock()
}

// IncLearnerError records a LearnerError that abandoned an (env, learner) pair.
func (c *Collector) IncLearnerError() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.learnerErrors++
	c.mu.Unlock()
}

// IncCacheHit records a Cacher lookup that found its key already present.
func (c *Collector) IncCacheHit() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.cacheHits++
	c.mu.Unlock()
}

// IncCacheMiss records a Cacher lookup that had to populate its key.
func (c *Collector) IncCacheMiss() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.cacheMisses++
	c.mu.Unlock()
}

// IncCacheError records a CacheError (corrupt read or write failure).
func (c *Collector) IncCacheError() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.cacheErrors++
	c.mu.Unlock()
}

// IncWorkerErrorUnexpected records a worker-local unhandled panic.
func (c *Collector) IncWorkerErrorUnexpected() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.workerErrorsUnexpected++
	c.mu.Unlock()
}

// IncWorkerErrorUnserializable records a work item that could not cross
// the worker boundary.
func (c *Collector) IncWorkerErrorUnserializable() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.workerErrorsUnserializable++
	c.mu.Unlock()
}

// Snapshot returns an immutable point-in-time view of all metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		EnvironmentsEvaluated: c.environmentsEvaluated,
		EnvironmentsFailed:    c.environmentsFailed,
		BatchesEmitted:        c.batchesEmitted,
		LearnerErrors:         c.learnerErrors,

		CacheHits:   c.cacheHits,
		CacheMisses: c.cacheMisses,
		CacheErrors: c.cacheErrors,

		WorkerErrorsUnexpected:     c.workerErrorsUnexpected,
		WorkerErrorsUnserializable: c.workerErrorsUnserializable,

		RunID: c.runID,
	}
}
