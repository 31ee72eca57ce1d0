package bench

import (
	"testing"

	"github.com/arrowbench/banditbench/environment"
	"github.com/arrowbench/banditbench/learner"
	"github.com/arrowbench/banditbench/types"
)

// fakeEnv yields n interactions with context(i)=i and a fixed action set;
// reward(key, choice) = the chosen action's numeric value.
type fakeEnv struct {
	n            int
	actionValues []float64
}

var _ environment.Environment = (*fakeEnv)(nil)

func (e *fakeEnv) Read() ([]types.Interaction, error) {
	actions := make([]types.Value, len(e.actionValues))
	for i, v := range e.actionValues {
		actions[i] = types.Number(v)
	}
	out := make([]types.Interaction, e.n)
	for i := 0; i < e.n; i++ {
		out[i] = types.Interaction{Key: uint64(i), Context: types.Number(float64(i)), Actions: actions}
	}
	return out, nil
}

func (e *fakeEnv) Rewards(queries []environment.RewardQuery) ([]float64, error) {
	out := make([]float64, len(queries))
	for i, q := range queries {
		out[i] = e.actionValues[q.Choice]
	}
	return out, nil
}

func (e *fakeEnv) Params() *types.EnvParams {
	return types.NewEnvParams().Set("n", e.n)
}

// modLearner chooses index = key mod 3, named "0", matching §8's LambdaLearner.
type modLearner struct{}

var _ learner.Learner = modLearner{}
var _ learner.Named = modLearner{}

func (modLearner) Choose(key uint64, _ types.Value, _ []types.Value) int { return int(key % 3) }
func (modLearner) Learn(uint64, types.Value, types.Value, float64)       {}
func (modLearner) Name() (string, bool)                                  { return "0", true }

func modLearnerFactory() learner.Learner { return modLearner{} }

func TestLoopScenario1FiftyInteractionsUnitBatches(t *testing.T) {
	loop := &Loop{
		Environments: []environment.Environment{&fakeEnv{n: 50, actionValues: []float64{0, 1, 2}}},
		Learners:     []learner.Factory{modLearnerFactory},
		Policy:       SizeSchedule{1, 1, 1, 1, 1},
	}
	results := loop.Run()
	if len(results) != 5 {
		t.Fatalf("got %d results, want 5", len(results))
	}
	wantRewards := []float64{0, 1, 2, 0, 1}
	for i, r := range results {
		if r.LearnerName != "0" || r.EnvIndex != 0 || r.BatchIndex != uint32(i) {
			t.Fatalf("result %d = %+v, want learner 0 env 0 batch %d", i, r, i)
		}
		if r.Stats.N != 1 {
			t.Fatalf("result %d stats.n = %d, want 1", i, r.Stats.N)
		}
		if r.Stats.Mean != wantRewards[i] {
			t.Fatalf("result %d reward = %v, want %v", i, r.Stats.Mean, wantRewards[i])
		}
	}
}

func TestLoopScenario2BatchCountOneMeansAllInOneBatch(t *testing.T) {
	loop := &Loop{
		Environments: []environment.Environment{&fakeEnv{n: 5, actionValues: []float64{0, 1, 2}}},
		Learners:     []learner.Factory{modLearnerFactory},
		Policy:       Count(1),
	}
	results := loop.Run()
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Stats.N != 5 {
		t.Fatalf("stats.n = %d, want 5", results[0].Stats.N)
	}
	if got, want := results[0].Stats.Mean, 0.8; got != want {
		t.Fatalf("stats.mean = %v, want %v", got, want)
	}
}

func TestLoopScenario3BatchCountTwoRemainderFirst(t *testing.T) {
	loop := &Loop{
		Environments: []environment.Environment{&fakeEnv{n: 5, actionValues: []float64{0, 1, 2}}},
		Learners:     []learner.Factory{modLearnerFactory},
		Policy:       Count(2),
	}
	results := loop.Run()
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Stats.N != 3 || results[1].Stats.N != 2 {
		t.Fatalf("batch sizes = {%d,%d}, want {3,2}", results[0].Stats.N, results[1].Stats.N)
	}
	if results[0].Stats.Mean != 1 { // rewards {0,1,2}
		t.Fatalf("batch 0 mean = %v, want 1", results[0].Stats.Mean)
	}
	if results[1].Stats.Mean != 0.5 { // rewards {0,1}
		t.Fatalf("batch 1 mean = %v, want 0.5", results[1].Stats.Mean)
	}
}

func TestLoopScenario4TwoEnvironments(t *testing.T) {
	loop := &Loop{
		Environments: []environment.Environment{
			&fakeEnv{n: 5, actionValues: []float64{0, 1, 2}},
			&fakeEnv{n: 5, actionValues: []float64{3, 4, 5, 6}},
		},
		Learners: []learner.Factory{modLearnerFactory},
		Policy:   SizeSchedule{1, 1, 1, 1, 1},
	}
	results := loop.Run()
	if len(results) != 10 {
		t.Fatalf("got %d results, want 10", len(results))
	}

	env0, env1 := results[:5], results[5:]
	wantEnv0 := []float64{0, 1, 2, 0, 1}
	wantEnv1 := []float64{3, 4, 5, 3, 4}
	for i, r := range env0 {
		if r.EnvIndex != 0 || r.Stats.Mean != wantEnv0[i] {
			t.Fatalf("env0 batch %d = %+v, want reward %v", i, r, wantEnv0[i])
		}
	}
	for i, r := range env1 {
		if r.EnvIndex != 1 || r.Stats.Mean != wantEnv1[i] {
			t.Fatalf("env1 batch %d = %+v, want reward %v", i, r, wantEnv1[i])
		}
	}
}

func TestLoopAbandonsPairOnLearnerPanic(t *testing.T) {
	panicky := func() learner.Learner { return panickyLearner{} }
	loop := &Loop{
		Environments: []environment.Environment{&fakeEnv{n: 5, actionValues: []float64{0, 1, 2}}},
		Learners:     []learner.Factory{panicky},
		Policy:       SizeSchedule{1, 1, 1, 1, 1},
	}
	results := loop.Run()
	if len(results) != 0 {
		t.Fatalf("got %d results, want 0 (first choose panics immediately)", len(results))
	}
}

func TestLoopAttachesEnvironmentParamsToEveryResult(t *testing.T) {
	loop := &Loop{
		Environments: []environment.Environment{&fakeEnv{n: 5, actionValues: []float64{0, 1, 2}}},
		Learners:     []learner.Factory{modLearnerFactory},
		Policy:       Count(2),
	}
	results := loop.Run()
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for i, r := range results {
		if len(r.Params) != 1 || r.Params[0].Key != "n" || r.Params[0].Value != 5 {
			t.Fatalf("result %d params = %+v, want [{n 5}]", i, r.Params)
		}
	}
}

type panickyLearner struct{}

func (panickyLearner) Choose(uint64, types.Value, []types.Value) int { panic("boom") }
func (panickyLearner) Learn(uint64, types.Value, types.Value, float64) {}
