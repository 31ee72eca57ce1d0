package environment

import (
	"fmt"
	"math"
	"strings"

	"github.com/arrowbench/banditbench/rng"
	"github.com/arrowbench/banditbench/types"
)

// LinearSynthetic draws context and action feature vectors from U[0,1] per
// interaction; a fixed weight vector (drawn once, normalized so Σw = 1)
// defines the reward as w·φ(x,a) + noise, clamped to [0,1]. φ is an
// interaction-term encoder parameterized by term shapes ("a", "xa", "x"...).
// Noise is uniform with variance RNoiseVar.
type LinearSynthetic struct {
	NInteractions int
	NActions      int
	NContextPhi   int // feature width of the context vector
	NActionPhi    int // feature width of each action's feature vector
	TermShapes    []string
	RNoiseVar     float64
	Seed          int64

	rewardsByKey map[uint64][]float64
	params       *types.EnvParams
}

var _ Environment = (*LinearSynthetic)(nil)

// NewLinearSynthetic constructs a LinearSynthetic with the given shape.
func NewLinearSynthetic(nInteractions, nActions, nContextPhi, nActionPhi int, termShapes []string, rNoiseVar float64, seed int64) *LinearSynthetic {
	return &LinearSynthetic{
		NInteractions: nInteractions,
		NActions:      nActions,
		NContextPhi:   nContextPhi,
		NActionPhi:    nActionPhi,
		TermShapes:    termShapes,
		RNoiseVar:     rNoiseVar,
		Seed:          seed,
	}
}

func (s *LinearSynthetic) featureWidth() int {
	width := 0
	for _, shape := range s.TermShapes {
		width += termWidth(shape, s.NContextPhi, s.NActionPhi)
	}
	return width
}

// termWidth returns the feature count contributed by one term shape: the
// product of the per-letter widths, e.g. "xa" contributes nC*nA features
// (one per context/action feature pair), "x" contributes nC, "a" contributes nA.
func termWidth(shape string, nC, nA int) int {
	width := 1
	for _, c := range shape {
		switch c {
		case 'x':
			width *= nC
		case 'a':
			width *= nA
		}
	}
	return width
}

// phi computes the interaction-term feature vector for one (context, action)
// pair, following TermShapes in order.
func phi(shapes []string, ctx, act []float64) []float64 {
	var out []float64
	for _, shape := range shapes {
		out = append(out, phiTerm(shape, ctx, act)...)
	}
	return out
}

func phiTerm(shape string, ctx, act []float64) []float64 {
	cur := []float64{1}
	for _, c := range shape {
		var src []float64
		switch c {
		case 'x':
			src = ctx
		case 'a':
			src = act
		default:
			continue
		}
		next := make([]float64, 0, len(cur)*len(src))
		for _, base := range cur {
			for _, v := range src {
				next = append(next, base*v)
			}
		}
		cur = next
	}
	return cur
}

func (s *LinearSynthetic) Read() ([]types.Interaction, error) {
	r := rng.New(s.Seed)
	width := s.featureWidth()

	weights := r.Uniforms(width)
	rng.Normalize(weights)

	interactions := make([]types.Interaction, s.NInteractions)
	s.rewardsByKey = make(map[uint64][]float64, s.NInteractions)

	for i := 0; i < s.NInteractions; i++ {
		ctxFeatures := r.Uniforms(s.NContextPhi)
		ctxValues := make([]types.Value, len(ctxFeatures))
		for j, f := range ctxFeatures {
			ctxValues[j] = types.Number(f)
		}
		context := types.Tuple(ctxValues...)

		actions := make([]types.Value, s.NActions)
		rewards := make([]float64, s.NActions)
		for a := 0; a < s.NActions; a++ {
			actFeatures := r.Uniforms(s.NActionPhi)
			actValues := make([]types.Value, len(actFeatures))
			for j, f := range actFeatures {
				actValues[j] = types.Number(f)
			}
			actions[a] = types.Tuple(actValues...)

			features := phi(s.TermShapes, ctxFeatures, actFeatures)
			var dot float64
			for j, w := range weights {
				if j < len(features) {
					dot += w * features[j]
				}
			}
			noise := (r.Uniform() - 0.5) * math.Sqrt(12) * math.Sqrt(math.Max(0, s.RNoiseVar))
			rewards[a] = rng.Clamp01(dot + noise)
		}

		key := uint64(i)
		interactions[i] = types.Interaction{Key: key, Context: context, Actions: actions}
		s.rewardsByKey[key] = rewards
	}

	s.params = types.NewEnvParams().
		Set("type", "LinearSynthetic").
		Set("n_A", s.NActions).
		Set("n_C_phi", s.NContextPhi).
		Set("n_A_phi", s.NActionPhi).
		Set("r_noise", s.RNoiseVar).
		Set("X", strings.Join(s.TermShapes, ",")).
		Set("seed", s.Seed)

	return interactions, nil
}

func (s *LinearSynthetic) Rewards(queries []RewardQuery) ([]float64, error) {
	out := make([]float64, len(queries))
	for i, q := range queries {
		rewards, ok := s.rewardsByKey[q.Key]
		if !ok {
			return nil, fmt.Errorf("linear synthetic: unknown interaction key %d", q.Key)
		}
		if q.Choice < 0 || q.Choice >= len(rewards) {
			return nil, fmt.Errorf("linear synthetic: choice %d out of range for key %d", q.Choice, q.Key)
		}
		out[i] = rewards[q.Choice]
	}
	return out, nil
}

func (s *LinearSynthetic) Params() *types.EnvParams { return s.params }
