package environment

import (
	"fmt"

	"github.com/arrowbench/banditbench/rng"
	"github.com/arrowbench/banditbench/types"
)

// LocalSynthetic draws a finite set of NContexts contexts once; reward is a
// table lookup (context, action) -> U[0,1] fixed at construction. Contexts
// are drawn with replacement per interaction.
type LocalSynthetic struct {
	NInteractions int
	NContexts     int
	NActions      int
	NContextPhi   int
	Seed          int64

	rewardsByKey map[uint64][]float64
	params       *types.EnvParams
}

var _ Environment = (*LocalSynthetic)(nil)

// NewLocalSynthetic constructs a LocalSynthetic with the given shape.
func NewLocalSynthetic(nInteractions, nContexts, nActions, nContextPhi int, seed int64) *LocalSynthetic {
	return &LocalSynthetic{
		NInteractions: nInteractions,
		NContexts:     nContexts,
		NActions:      nActions,
		NContextPhi:   nContextPhi,
		Seed:          seed,
	}
}

func (s *LocalSynthetic) Read() ([]types.Interaction, error) {
	r := rng.New(s.Seed)

	contexts := make([]types.Value, s.NContexts)
	for i := range contexts {
		features := r.Uniforms(s.NContextPhi)
		values := make([]types.Value, len(features))
		for j, f := range features {
			values[j] = types.Number(f)
		}
		contexts[i] = types.Tuple(values...)
	}

	actions := make([]types.Value, s.NActions)
	for a := range actions {
		actions[a] = types.Number(float64(a))
	}

	// rewardTable[contextIndex][actionIndex] is fixed at construction,
	// independent of which interactions later draw that context.
	rewardTable := make([][]float64, s.NContexts)
	for c := range rewardTable {
		rewardTable[c] = r.Uniforms(s.NActions)
	}

	interactions := make([]types.Interaction, s.NInteractions)
	s.rewardsByKey = make(map[uint64][]float64, s.NInteractions)

	for i := 0; i < s.NInteractions; i++ {
		ci := r.RandInt(0, s.NContexts-1)
		key := uint64(i)
		interactions[i] = types.Interaction{Key: key, Context: contexts[ci], Actions: actions}
		s.rewardsByKey[key] = rewardTable[ci]
	}

	s.params = types.NewEnvParams().
		Set("type", "LocalSynthetic").
		Set("n_contexts", s.NContexts).
		Set("n_A", s.NActions).
		Set("n_C_phi", s.NContextPhi).
		Set("seed", s.Seed)

	return interactions, nil
}

func (s *LocalSynthetic) Rewards(queries []RewardQuery) ([]float64, error) {
	out := make([]float64, len(queries))
	for i, q := range queries {
		rewards, ok := s.rewardsByKey[q.Key]
		if !ok {
			return nil, fmt.Errorf("local synthetic: unknown interaction key %d", q.Key)
		}
		if q.Choice < 0 || q.Choice >= len(rewards) {
			return nil, fmt.Errorf("local synthetic: choice %d out of range for key %d", q.Choice, q.Key)
		}
		out[i] = rewards[q.Choice]
	}
	return out, nil
}

func (s *LocalSynthetic) Params() *types.EnvParams { return s.params }
