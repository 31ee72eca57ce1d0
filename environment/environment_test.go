package environment

import (
	"testing"

	"github.com/arrowbench/banditbench/encode"
	"github.com/arrowbench/banditbench/pipe"
	"github.com/arrowbench/banditbench/types"
)

func TestLinearSyntheticRereadIsDeterministic(t *testing.T) {
	env := NewLinearSynthetic(20, 3, 2, 2, []string{"x", "a", "xa"}, 0.1, 7)

	first, err := env.Read()
	if err != nil {
		t.Fatalf("first Read: %v", err)
	}
	second, err := env.Read()
	if err != nil {
		t.Fatalf("second Read: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("interaction count changed across reads: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Context.Key() != second[i].Context.Key() {
			t.Fatalf("interaction %d context differs across reads", i)
		}
	}

	queries := make([]RewardQuery, len(second))
	for i, in := range second {
		queries[i] = RewardQuery{Key: in.Key, Choice: 0}
	}
	rewards, err := env.Rewards(queries)
	if err != nil {
		t.Fatalf("Rewards: %v", err)
	}
	for _, r := range rewards {
		if r < 0 || r > 1 {
			t.Fatalf("reward %v out of [0,1]", r)
		}
	}
}

func TestLinearSyntheticParamsRecordShape(t *testing.T) {
	env := NewLinearSynthetic(5, 2, 2, 2, []string{"x", "a"}, 0.0, 1)
	if _, err := env.Read(); err != nil {
		t.Fatalf("Read: %v", err)
	}
	params := env.Params()
	if _, ok := params.Values["type"]; !ok {
		t.Fatalf("params missing type key")
	}
	if params.Values["type"] != "LinearSynthetic" {
		t.Fatalf("params type = %v, want LinearSynthetic", params.Values["type"])
	}
}

func TestLocalSyntheticRewardTableIsFixedPerContext(t *testing.T) {
	env := NewLocalSynthetic(50, 3, 2, 2, 42)

	interactions, err := env.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	seenContext := make(map[string][]float64)
	for _, in := range interactions {
		queries := []RewardQuery{{Key: in.Key, Choice: 0}}
		rewards, err := env.Rewards(queries)
		if err != nil {
			t.Fatalf("Rewards: %v", err)
		}
		key := in.Context.Key()
		if prev, ok := seenContext[key]; ok {
			if prev[0] != rewards[0] {
				t.Fatalf("reward for context %s changed across interactions: %v vs %v", key, prev[0], rewards[0])
			}
		} else {
			seenContext[key] = rewards
		}
	}
}

func TestLocalSyntheticRereadIsDeterministic(t *testing.T) {
	env := NewLocalSynthetic(10, 3, 2, 2, 5)
	first, err := env.Read()
	if err != nil {
		t.Fatalf("first Read: %v", err)
	}
	second, err := env.Read()
	if err != nil {
		t.Fatalf("second Read: %v", err)
	}
	for i := range first {
		if first[i].Context.Key() != second[i].Context.Key() {
			t.Fatalf("interaction %d context differs across reads", i)
		}
	}
}

func rowsToStructuredSource(rows []encode.Structured) pipe.Source[encode.Structured] {
	return pipe.FromSlice(rows)
}

func structuredRow(feature float64, label string) encode.Structured {
	return encode.Structured{
		Features: encode.Row{Columns: []string{"x"}, Values: []types.Value{types.Number(feature)}},
		Label:    encode.Row{Columns: []string{"y"}, Values: []types.Value{types.String(label)}},
	}
}

func TestTabularClassificationReward(t *testing.T) {
	rows := []encode.Structured{
		structuredRow(1, "a"),
		structuredRow(2, "b"),
		structuredRow(3, "a"),
	}
	env := NewTabular(Classification, rowsToStructuredSource(rows), nil)

	interactions, err := env.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(interactions) != 3 {
		t.Fatalf("got %d interactions, want 3", len(interactions))
	}
	if len(interactions[0].Actions) != 2 {
		t.Fatalf("got %d actions, want 2 distinct labels", len(interactions[0].Actions))
	}

	var aIdx, bIdx int = -1, -1
	for i, a := range interactions[0].Actions {
		switch a.Str() {
		case "a":
			aIdx = i
		case "b":
			bIdx = i
		}
	}
	if aIdx < 0 || bIdx < 0 {
		t.Fatalf("expected both labels in action set")
	}

	rewards, err := env.Rewards([]RewardQuery{
		{Key: interactions[0].Key, Choice: aIdx},
		{Key: interactions[0].Key, Choice: bIdx},
	})
	if err != nil {
		t.Fatalf("Rewards: %v", err)
	}
	if rewards[0] != 1 {
		t.Fatalf("correct choice reward = %v, want 1", rewards[0])
	}
	if rewards[1] != 0 {
		t.Fatalf("incorrect choice reward = %v, want 0", rewards[1])
	}
}

func TestTabularRegressionRewardClipped(t *testing.T) {
	rows := []encode.Structured{
		{
			Features: encode.Row{Columns: []string{"x"}, Values: []types.Value{types.Number(1)}},
			Label:    encode.Row{Columns: []string{"y"}, Values: []types.Value{types.Number(0.5)}},
		},
	}
	env := NewTabular(Regression, rowsToStructuredSource(rows), nil)

	interactions, err := env.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	var exactIdx, farIdx int = -1, -1
	for i, a := range interactions[0].Actions {
		if a.Number() == 0.5 {
			exactIdx = i
		} else {
			farIdx = i
		}
	}
	if exactIdx < 0 {
		t.Fatalf("expected action set to include the label value")
	}

	rewards, err := env.Rewards([]RewardQuery{{Key: interactions[0].Key, Choice: exactIdx}})
	if err != nil {
		t.Fatalf("Rewards: %v", err)
	}
	if rewards[0] != 1 {
		t.Fatalf("exact match reward = %v, want 1", rewards[0])
	}

	if farIdx >= 0 {
		rewards, err := env.Rewards([]RewardQuery{{Key: interactions[0].Key, Choice: farIdx}})
		if err != nil {
			t.Fatalf("Rewards: %v", err)
		}
		if rewards[0] < 0 || rewards[0] > 1 {
			t.Fatalf("reward %v out of [0,1]", rewards[0])
		}
	}

	params := env.Params()
	if params.Values["reward_fn"] != "abs_error_clip" {
		t.Fatalf("params reward_fn = %v, want abs_error_clip", params.Values["reward_fn"])
	}
}
