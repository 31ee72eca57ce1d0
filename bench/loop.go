package bench

import (
	"fmt"
	"sort"

	"github.com/arrowbench/banditbench/environment"
	"github.com/arrowbench/banditbench/learner"
	"github.com/arrowbench/banditbench/metrics"
	"github.com/arrowbench/banditbench/stats"
	"github.com/arrowbench/banditbench/types"
)

// Logger is the minimal sink the loop logs failures through. *log.SugaredLogger
// satisfies this via its Errorf method.
type Logger interface {
	Errorf(template string, args ...any)
}

type nullLogger struct{}

func (nullLogger) Errorf(string, ...any) {}

// Loop drives every (environment, learner) pair per §4.7: it batches
// interactions under Policy, runs choose/learn in on-policy order, and
// emits one Result per batch while isolating failures to the pair (or
// environment) that produced them.
type Loop struct {
	Environments []environment.Environment
	Learners     []learner.Factory
	Policy       Policy
	Logger       Logger
	// Metrics is optional; a nil Collector absorbs every Inc call as a no-op.
	Metrics *metrics.Collector
}

func (l *Loop) logger() Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return nullLogger{}
}

// Run evaluates every (environment, learner) pair and returns every emitted
// Result. No ordering is guaranteed across pairs; within one pair, batch
// order matches interaction order.
func (l *Loop) Run() []types.Result {
	var results []types.Result

	for envIndex, env := range l.Environments {
		envResults, ok := l.runEnvironment(uint32(envIndex), env)
		if ok {
			results = append(results, envResults...)
		}
	}
	return results
}

func (l *Loop) runEnvironment(envIndex uint32, env environment.Environment) ([]types.Result, bool) {
	if lazy, ok := env.(environment.Lazy); ok {
		if err := lazy.Load(); err != nil {
			l.logger().Errorf("environment load failed env=%d err=%v", envIndex, err)
			l.Metrics.IncEnvironmentFailed()
			return nil, false
		}
		defer lazy.Unload()
	}

	interactions, err := env.Read()
	if err != nil {
		l.logger().Errorf("environment read failed env=%d err=%v", envIndex, err)
		l.Metrics.IncEnvironmentFailed()
		return nil, false
	}
	l.Metrics.IncEnvironmentEvaluated()

	batchSizes := l.Policy.Sizes(len(interactions))
	medianFeatureCount := medianInt(featureCounts(interactions))
	medianActionCount := medianInt(actionCounts(interactions))
	envParams := env.Params().Pairs()

	var results []types.Result
	for learnerIndex, factory := range l.Learners {
		learnerResults, envFailed := l.runPair(envIndex, uint32(learnerIndex), env, factory, interactions, batchSizes, medianFeatureCount, medianActionCount, envParams)
		results = append(results, learnerResults...)
		if envFailed {
			// Rewards() failing is an EnvironmentError: the whole environment
			// is dropped, so remaining learners for it are skipped too.
			l.Metrics.IncEnvironmentFailed()
			break
		}
	}
	return results, true
}

func (l *Loop) runPair(
	envIndex, learnerIndex uint32,
	env environment.Environment,
	factory learner.Factory,
	interactions []types.Interaction,
	batchSizes []int,
	medianFeatureCount, medianActionCount uint32,
	envParams []types.Param,
) (results []types.Result, envFailed bool) {
	lrn := factory()
	name := learner.ResolveName(lrn, int(learnerIndex))

	offset := 0
	for batchIndex, size := range batchSizes {
		if offset+size > len(interactions) {
			break
		}
		batch := interactions[offset : offset+size]
		offset += size

		observations, err := l.chooseBatch(lrn, batch)
		if err != nil {
			l.logger().Errorf("learner choose failed learner=%s env=%d batch=%d err=%v", name, envIndex, batchIndex, err)
			l.Metrics.IncLearnerError()
			return results, false
		}

		queries := make([]environment.RewardQuery, len(observations))
		for i, obs := range observations {
			queries[i] = environment.RewardQuery{Key: obs.Key, Choice: obs.Choice}
		}
		rewards, err := env.Rewards(queries)
		if err != nil {
			l.logger().Errorf("environment rewards failed env=%d batch=%d err=%v", envIndex, batchIndex, err)
			return results, true
		}

		if err := l.learnBatch(lrn, observations, rewards); err != nil {
			l.logger().Errorf("learner learn failed learner=%s env=%d batch=%d err=%v", name, envIndex, batchIndex, err)
			l.Metrics.IncLearnerError()
			return results, false
		}

		summary := stats.FromObservations(rewards)
		results = append(results, types.Result{
			LearnerName:        name,
			EnvIndex:           envIndex,
			BatchIndex:         uint32(batchIndex),
			InteractionCount:   uint32(len(interactions)),
			MedianFeatureCount: medianFeatureCount,
			MedianActionCount:  medianActionCount,
			Stats:              summary.ToTypes(),
			Params:             envParams,
		})
		l.Metrics.IncBatchEmitted()
	}
	return results, false
}

// chooseBatch calls choose for every interaction in the batch, in order,
// before any learn call — the on-policy ordering guarantee. A panicking
// learner produces a LearnerError scoped to this (env, learner) pair.
func (l *Loop) chooseBatch(lrn learner.Learner, batch []types.Interaction) (obs []types.Observation, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &types.LearnerError{Err: fmt.Errorf("choose panicked: %v", r)}
		}
	}()

	obs = make([]types.Observation, len(batch))
	for i, in := range batch {
		choice := lrn.Choose(in.Key, in.Context, in.Actions)
		if choice < 0 || choice >= len(in.Actions) {
			return nil, &types.LearnerError{Err: fmt.Errorf("choose returned out-of-range index %d for %d actions", choice, len(in.Actions))}
		}
		obs[i] = types.Observation{Key: in.Key, Context: in.Context, Action: in.Actions[choice], Choice: choice}
	}
	return obs, nil
}

// learnBatch calls learn for every observation in the batch, in order,
// after rewards have been resolved.
func (l *Loop) learnBatch(lrn learner.Learner, obs []types.Observation, rewards []float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &types.LearnerError{Err: fmt.Errorf("learn panicked: %v", r)}
		}
	}()

	for i, o := range obs {
		o.Reward = rewards[i]
		lrn.Learn(o.Key, o.Context, o.Action, o.Reward)
	}
	return nil
}

func featureCounts(interactions []types.Interaction) []int {
	out := make([]int, len(interactions))
	for i, in := range interactions {
		out[i] = in.FeatureCount()
	}
	return out
}

func actionCounts(interactions []types.Interaction) []int {
	out := make([]int, len(interactions))
	for i, in := range interactions {
		out[i] = in.ActionCount()
	}
	return out
}

func medianInt(xs []int) uint32 {
	if len(xs) == 0 {
		return 0
	}
	cp := make([]int, len(xs))
	copy(cp, xs)
	sort.Ints(cp)
	mid := len(cp) / 2
	if len(cp)%2 == 1 {
		return uint32(cp[mid])
	}
	return uint32((cp[mid-1] + cp[mid]) / 2)
}
