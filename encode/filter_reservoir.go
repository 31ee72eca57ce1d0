package encode

import (
	"github.com/arrowbench/banditbench/pipe"
	"github.com/arrowbench/banditbench/rng"
)

// Reservoir is classic Algorithm R: produces at most K items from an
// unknown-length stream with uniform probability, deterministic under seed.
// Materializes the reservoir (size K) but streams the input without
// buffering it in full.
//
// KeepFirst, when true, forces the stream's first element into slot 0
// before reservoir-sampling the rest, used when callers want a stable
// "canonical" exemplar in the sample.
type Reservoir struct {
	K         int
	Seed      int64
	KeepFirst bool
}

var _ pipe.Filter[Row, Row] = Reservoir{}

func (res Reservoir) Apply(in pipe.Iter[Row]) pipe.Iter[Row] {
	if res.K <= 0 {
		return &sliceRowIter{}
	}
	r := rng.New(res.Seed)

	reservoir := make([]Row, 0, res.K)
	var first *Row
	count := 0

	for {
		row, ok, err := in.Next()
		if err != nil {
			return &errRowIter{err: err}
		}
		if !ok {
			break
		}

		if res.KeepFirst && count == 0 {
			cp := row
			first = &cp
			count++
			continue
		}

		idx := count
		if res.KeepFirst {
			idx--
		}

		if len(reservoir) < capForKeepFirst(res.K, res.KeepFirst) {
			reservoir = append(reservoir, row)
		} else {
			j := r.RandInt(0, idx)
			if j < len(reservoir) {
				reservoir[j] = row
			}
		}
		count++
	}

	out := reservoir
	if res.KeepFirst && first != nil {
		out = append([]Row{*first}, reservoir...)
		if len(out) > res.K {
			out = out[:res.K]
		}
	}

	return &sliceRowIter{items: out}
}

func capForKeepFirst(k int, keepFirst bool) int {
	if keepFirst && k > 0 {
		return k - 1
	}
	return k
}

type sliceRowIter struct {
	items []Row
	pos   int
}

func (s *sliceRowIter) Next() (Row, bool, error) {
	if s.pos >= len(s.items) {
		return Row{}, false, nil
	}
	v := s.items[s.pos]
	s.pos++
	return v, true, nil
}
