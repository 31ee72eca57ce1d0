package rng

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

func TestUniformsGolden(t *testing.T) {
	// Frozen at first green run per spec §8 scenario 6. Do not change
	// without also changing every downstream golden that depends on it.
	want := []float64{
		8.381903179345562e-09,
		0.9777192836419859,
		0.3603235849741135,
	}

	r := New(0)
	got := r.Uniforms(3)

	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Fatalf("uniforms[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestUniformsDeterministicAcrossInstances(t *testing.T) {
	a := New(42).Uniforms(10)
	b := New(42).Uniforms(10)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("draw %d differs across identically seeded instances: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestRandIntInclusiveBounds(t *testing.T) {
	r := New(7)
	for i := 0; i < 10000; i++ {
		v := r.RandInt(3, 8)
		if v < 3 || v > 8 {
			t.Fatalf("randint(3,8) out of range: %d", v)
		}
	}
}

func TestRandIntClampsAtUpperBoundWhenUniformIsOne(t *testing.T) {
	// Exercise the clamp path directly: a draw of exactly 1.0 must map to
	// hi, not hi+1.
	r := New(0)
	// lcgA*536166110 + lcgC == lcgM-1 (mod lcgM), so the next draw is
	// exactly 1.0 and the unclamped value would be hi+1.
	r.state = 536166110
	if v := r.RandInt(0, 5); v != 5 {
		t.Fatalf("randint(0,5) at u == 1.0 = %d, want 5", v)
	}
	// The invariant also holds for the draws that follow.
	for i := 0; i < 1000; i++ {
		v := r.RandInt(0, 5)
		if v > 5 {
			t.Fatalf("randint(0,5) exceeded hi: %d", v)
		}
	}
}

func TestShuffleIsAPermutation(t *testing.T) {
	seq := []int{0, 1, 2, 3, 4, 5, 6, 7}
	orig := append([]int(nil), seq...)

	Shuffle(New(1), seq)

	seen := make(map[int]bool)
	for _, v := range seq {
		seen[v] = true
	}
	for _, v := range orig {
		if !seen[v] {
			t.Fatalf("shuffle lost element %d", v)
		}
	}
	if len(seq) != len(orig) {
		t.Fatalf("shuffle changed length")
	}
}

func TestShuffleDeterministic(t *testing.T) {
	a := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	b := append([]int(nil), a...)

	Shuffle(New(99), a)
	Shuffle(New(99), b)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("shuffle not deterministic at %d: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestChoice(t *testing.T) {
	seq := []string{"a", "b", "c"}
	r := New(3)
	for i := 0; i < 100; i++ {
		v := Choice(r, seq)
		found := false
		for _, s := range seq {
			if s == v {
				found = true
			}
		}
		if !found {
			t.Fatalf("choice returned value outside seq: %q", v)
		}
	}
}

func TestNormalizeSumsToOne(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	Normalize(xs)
	var sum float64
	for _, x := range xs {
		sum += x
	}
	if !almostEqual(sum, 1) {
		t.Fatalf("normalized sum = %v, want 1", sum)
	}
}

func TestClamp01(t *testing.T) {
	if Clamp01(1.5) != 1 {
		t.Fatalf("clamp01(1.5) != 1")
	}
	if Clamp01(-0.5) != 0 {
		t.Fatalf("clamp01(-0.5) != 0")
	}
	if Clamp01(0.3) != 0.3 {
		t.Fatalf("clamp01(0.3) changed value")
	}
}
