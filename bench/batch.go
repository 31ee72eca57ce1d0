// Package bench implements the benchmark evaluation loop (§4.7): it drives
// each (environment, learner) pair through choose/learn in on-policy order,
// batches observations, folds reward statistics, and emits one Result per
// batch while isolating failures to the pair that produced them.
package bench

// Policy computes the batch-size schedule for an environment of n
// interactions. Exactly one policy is chosen per run.
type Policy interface {
	// Sizes returns the ordered batch sizes. Σ Sizes(n) may be < n (excess
	// interactions are dropped); it must never exceed n.
	Sizes(n int) []int
}

// Count partitions n interactions into K near-equal batches. The remainder
// r = n mod K is distributed by inserting one extra unit at index
// ⌊i·K/r⌋ for i in [0,r), which places extras at strictly increasing,
// distinct slots (since K/r > 1 whenever r < K) and, for K=2, r=1, puts the
// extra interaction in batch 0 — matching the frozen golden of §8 scenario 3.
type Count int

func (c Count) Sizes(n int) []int {
	k := int(c)
	if k <= 0 || n <= 0 {
		return nil
	}
	base := n / k
	r := n % k
	sizes := make([]int, k)
	for i := range sizes {
		sizes[i] = base
	}
	for i := 0; i < r; i++ {
		idx := i * k / r
		sizes[idx]++
	}
	return sizes
}

// ConstantSize produces ⌊n/S⌋ batches of size S; any remainder is dropped.
type ConstantSize int

func (s ConstantSize) Sizes(n int) []int {
	size := int(s)
	if size <= 0 || n <= 0 {
		return nil
	}
	count := n / size
	sizes := make([]int, count)
	for i := range sizes {
		sizes[i] = size
	}
	return sizes
}

// SizeSchedule is a literal batch-size schedule. Its sum need not equal n;
// once the remaining budget can't fund the next scheduled size, later
// entries are dropped (not just that one batch).
type SizeSchedule []int

func (s SizeSchedule) Sizes(n int) []int {
	var sizes []int
	remaining := n
	for _, size := range s {
		if size <= 0 || size > remaining {
			break
		}
		sizes = append(sizes, size)
		remaining -= size
	}
	return sizes
}

// SizeFunc calls fn(0), fn(1), … until the remaining budget can no longer
// fund the next call; that would-overflow batch is dropped and generation
// stops.
type SizeFunc func(i int) int

func (f SizeFunc) Sizes(n int) []int {
	var sizes []int
	remaining := n
	for i := 0; ; i++ {
		size := f(i)
		if size <= 0 || size > remaining {
			break
		}
		sizes = append(sizes, size)
		remaining -= size
	}
	return sizes
}
