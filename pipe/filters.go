package pipe

import "github.com/arrowbench/banditbench/rng"

// Shuffle is a Filter[T,T] that materializes the full input and returns it
// permuted via Fisher-Yates under the given seed. Materialization is
// required because a uniform random permutation of an unknown-length
// stream cannot be produced lazily.
type Shuffle[T any] struct {
	Seed int64
}

var _ Filter[int, int] = Shuffle[int]{}

func (s Shuffle[T]) Apply(in Iter[T]) Iter[T] {
	items, err := ToSlice(in)
	if err != nil {
		return &errIter[T]{err: err}
	}
	rng.Shuffle(rng.New(s.Seed), items)
	return &sliceIter[T]{items: items}
}

// Take is a Filter[T,T] that passes through at most n elements, lazily.
type Take[T any] struct {
	N int
}

var _ Filter[int, int] = Take[int]{}

func (t Take[T]) Apply(in Iter[T]) Iter[T] {
	return &takeIter[T]{in: in, remaining: t.N}
}

type takeIter[T any] struct {
	in        Iter[T]
	remaining int
}

func (t *takeIter[T]) Next() (T, bool, error) {
	var zero T
	if t.remaining <= 0 {
		return zero, false, nil
	}
	v, ok, err := t.in.Next()
	if err != nil || !ok {
		return zero, false, err
	}
	t.remaining--
	return v, true, nil
}

type errIter[T any] struct {
	err error
}

func (e *errIter[T]) Next() (T, bool, error) {
	var zero T
	return zero, false, e.err
}
