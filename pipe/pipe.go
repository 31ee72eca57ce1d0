// Package pipe implements the streaming composition primitives that the
// readers, row filters, and environments in encode/ and environment/ build
// on: Source, Filter, and Sink. Composition preserves laziness — no stage
// materializes the full stream unless its own semantics require it (shuffle,
// reservoir sampling).
package pipe

// Iter is a pull-style iterator over a lazy sequence of T. Next returns the
// next element, a bool reporting whether an element was produced, and an
// error. Once Next returns ok=false, it must keep returning ok=false.
type Iter[T any] interface {
	Next() (value T, ok bool, err error)
}

// Source produces a lazy sequence of T. Read may be called more than once;
// re-reading a deterministic Source (e.g. one seeded by rng) must yield an
// equivalent sequence.
type Source[T any] interface {
	Read() Iter[T]
}

// Filter transforms a lazy sequence of I into a lazy sequence of O.
type Filter[I, O any] interface {
	Apply(Iter[I]) Iter[O]
}

// Sink consumes a lazy sequence of T to completion.
type Sink[T any] interface {
	Consume(Iter[T]) error
}

// SourceFunc adapts a Read function into a Source.
type SourceFunc[T any] func() Iter[T]

func (f SourceFunc[T]) Read() Iter[T] { return f() }

// FilterFunc adapts an Apply function into a Filter.
type FilterFunc[I, O any] func(Iter[I]) Iter[O]

func (f FilterFunc[I, O]) Apply(in Iter[I]) Iter[O] { return f(in) }

// sliceIter is the Iter implementation backing FromSlice and the
// eagerly-materializing Shuffle filter.
type sliceIter[T any] struct {
	items []T
	pos   int
}

func (s *sliceIter[T]) Next() (T, bool, error) {
	var zero T
	if s.pos >= len(s.items) {
		return zero, false, nil
	}
	v := s.items[s.pos]
	s.pos++
	return v, true, nil
}

// FromSlice builds a Source that replays items on every Read call.
func FromSlice[T any](items []T) Source[T] {
	return SourceFunc[T](func() Iter[T] {
		cp := make([]T, len(items))
		copy(cp, items)
		return &sliceIter[T]{items: cp}
	})
}

// ToSlice fully drains it into a slice.
func ToSlice[T any](it Iter[T]) ([]T, error) {
	var out []T
	for {
		v, ok, err := it.Next()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, v)
	}
}

// mapIter applies fn lazily to each element as it's pulled.
type mapIter[I, O any] struct {
	in Iter[I]
	fn func(I) (O, bool, error)
}

func (m *mapIter[I, O]) Next() (O, bool, error) {
	var zero O
	for {
		v, ok, err := m.in.Next()
		if err != nil {
			return zero, false, err
		}
		if !ok {
			return zero, false, nil
		}
		out, keep, err := m.fn(v)
		if err != nil {
			return zero, false, err
		}
		if !keep {
			continue
		}
		return out, true, nil
	}
}

// Map returns a Filter that applies fn to every element. Returning
// keep=false drops the element, the way Drop's row predicate works.
func Map[I, O any](fn func(I) (O, bool, error)) Filter[I, O] {
	return FilterFunc[I, O](func(in Iter[I]) Iter[O] {
		return &mapIter[I, O]{in: in, fn: fn}
	})
}

// Join composes a Source with a Filter into a new Source, lazily: Read
// re-invokes both stages from scratch every call.
func Join[I, O any](src Source[I], f Filter[I, O]) Source[O] {
	return SourceFunc[O](func() Iter[O] {
		return f.Apply(src.Read())
	})
}

// Drain composes a Source with a Sink.
func Drain[T any](src Source[T], sink Sink[T]) error {
	return sink.Consume(src.Read())
}
