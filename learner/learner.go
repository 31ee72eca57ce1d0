// Package learner defines the contract the benchmark loop drives: choose,
// learn, and an optional name. Learners are not required to be thread-safe;
// the loop uses one instance per (environment, learner-factory) pair.
package learner

import (
	"strconv"

	"github.com/arrowbench/banditbench/types"
)

// Learner is the interface the benchmark loop invokes.
type Learner interface {
	// Choose returns an index into actions. Must always return a valid index.
	Choose(key uint64, context types.Value, actions []types.Value) int
	// Learn updates internal state from one observed reward. May be a no-op.
	Learn(key uint64, context types.Value, action types.Value, reward float64)
}

// Named is implemented by learners that want to override the positional
// index used in Result.LearnerName. The loop never treats a Named failure
// (a panic) as a reason to fall back silently — if a caller's Named
// implementation can fail, it should return ("", false) instead of panicking.
type Named interface {
	Name() (string, bool)
}

// Factory creates a fresh Learner instance, one per (environment, learner)
// pair, so that a shared learner's state is never leaked across
// environments.
type Factory func() Learner

// ResolveName returns l's declared name via Named, or the positional index
// formatted as a string if l doesn't implement Named or declines to name
// itself.
func ResolveName(l Learner, index int) string {
	if n, ok := l.(Named); ok {
		if name, ok := n.Name(); ok {
			return name
		}
	}
	return strconv.Itoa(index)
}
