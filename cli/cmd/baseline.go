package cmd

import (
	"github.com/arrowbench/banditbench/learner"
	"github.com/arrowbench/banditbench/rng"
	"github.com/arrowbench/banditbench/types"
)

// randomLearner chooses uniformly at random and never updates; it exists
// only so the thin CLI driver has something to benchmark against out of
// the box. Concrete learner algorithms are outside this module's scope
// (spec.md Non-goals) — callers embedding this module supply their own
// learner.Factory values instead of this one.
type randomLearner struct {
	r *rng.Rand
}

func (l *randomLearner) Choose(key uint64, context types.Value, actions []types.Value) int {
	return l.r.RandInt(0, len(actions)-1)
}

func (l *randomLearner) Learn(key uint64, context types.Value, action types.Value, reward float64) {}

func (l *randomLearner) Name() (string, bool) { return "random", true }

// randomLearnerFactory returns a Factory producing a fresh randomLearner
// seeded from seed, one per (environment, learner) pair per §3's learner
// lifecycle.
func randomLearnerFactory(seed int64) learner.Factory {
	return func() learner.Learner {
		return &randomLearner{r: rng.New(seed)}
	}
}

// defaultLearners returns the baseline learner set the run command
// benchmarks when no other learner wiring is supplied.
func defaultLearners(seed int64) []learner.Factory {
	return []learner.Factory{randomLearnerFactory(seed)}
}
