package environment

import (
	"fmt"
	"math"

	"github.com/arrowbench/banditbench/encode"
	"github.com/arrowbench/banditbench/pipe"
	"github.com/arrowbench/banditbench/types"
)

// TabularKind selects how a Tabular environment's pipeline output is
// converted into interactions and scored.
type TabularKind int

const (
	// Classification: labels become the action set; reward = 1 iff the
	// chosen action matches the row's label, else 0.
	Classification TabularKind = iota
	// Regression: the action set is the distinct training label values;
	// reward = 1 - |y-a| clipped to [0,1].
	Regression
)

// Tabular is a pipeline-driven Environment: rows arrive from a
// encode.Structure-terminated pipe.Source[encode.Structured] (typically a
// CSV/ARFF/Parquet reader piped through Drop/Reservoir/Default/Encode),
// and are converted into Classification or Regression interactions.
type Tabular struct {
	Kind   TabularKind
	Source pipe.Source[encode.Structured]
	// BaseParams seeds this environment's result-tagging params (e.g. the
	// originating dataset id/source); Params() adds the reward_fn choice
	// for Regression on top.
	BaseParams *types.EnvParams

	labelByKey map[uint64]types.Value
	actions    []types.Value
	params     *types.EnvParams
}

var _ Environment = (*Tabular)(nil)

// NewTabular constructs a Tabular environment over src.
func NewTabular(kind TabularKind, src pipe.Source[encode.Structured], baseParams *types.EnvParams) *Tabular {
	return &Tabular{Kind: kind, Source: src, BaseParams: baseParams}
}

func (t *Tabular) Read() ([]types.Interaction, error) {
	structured, err := pipe.ToSlice(t.Source.Read())
	if err != nil {
		return nil, err
	}

	labelAlphabet := make([]types.Value, 0)
	seen := make(map[string]bool)
	for _, s := range structured {
		if v, ok := s.Label.Get(labelColumnName(s.Label)); ok {
			if !seen[v.Key()] {
				seen[v.Key()] = true
				labelAlphabet = append(labelAlphabet, v)
			}
		}
	}
	t.actions = labelAlphabet

	interactions := make([]types.Interaction, 0, len(structured))
	t.labelByKey = make(map[uint64]types.Value, len(structured))

	for i, s := range structured {
		context := rowToContext(s.Features)
		label, _ := s.Label.Get(labelColumnName(s.Label))

		key := uint64(i)
		interactions = append(interactions, types.Interaction{Key: key, Context: context, Actions: t.actions})
		t.labelByKey[key] = label
	}

	kindName := "Classification"
	rewardFn := ""
	if t.Kind == Regression {
		kindName = "Regression"
		rewardFn = "abs_error_clip"
	}

	params := types.NewEnvParams().Set("type", kindName)
	if t.BaseParams != nil {
		for _, k := range t.BaseParams.Keys {
			params.Set(k, t.BaseParams.Values[k])
		}
	}
	if rewardFn != "" {
		params.Set("reward_fn", rewardFn)
	}
	t.params = params

	return interactions, nil
}

func (t *Tabular) Rewards(queries []RewardQuery) ([]float64, error) {
	out := make([]float64, len(queries))
	for i, q := range queries {
		label, ok := t.labelByKey[q.Key]
		if !ok {
			return nil, fmt.Errorf("tabular: unknown interaction key %d", q.Key)
		}
		if q.Choice < 0 || q.Choice >= len(t.actions) {
			return nil, fmt.Errorf("tabular: choice %d out of range for key %d", q.Choice, q.Key)
		}
		chosen := t.actions[q.Choice]

		switch t.Kind {
		case Classification:
			if chosen.Equal(label) {
				out[i] = 1
			} else {
				out[i] = 0
			}
		case Regression:
			y := numericOf(label)
			a := numericOf(chosen)
			out[i] = math.Min(1, math.Max(0, 1-math.Abs(y-a)))
		}
	}
	return out, nil
}

func (t *Tabular) Params() *types.EnvParams { return t.params }

func labelColumnName(label encode.Row) string {
	if len(label.Columns) == 0 {
		return ""
	}
	return label.Columns[0]
}

func rowToContext(r encode.Row) types.Value {
	m := make(map[string]types.Value, len(r.Columns))
	for i, c := range r.Columns {
		m[c] = r.Values[i]
	}
	return types.Map(m)
}

func numericOf(v types.Value) float64 {
	if v.Kind() == types.KindNumber {
		return v.Number()
	}
	return 0
}
