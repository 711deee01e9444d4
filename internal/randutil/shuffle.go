// Package randutil holds the shuffling used for vocabulary sampling and
// review ordering.
package randutil

import "math/rand/v2"

// Shuffle permutes s in place with Fisher–Yates. A nil rng uses the global
// source; tests pass a seeded one for reproducible order.
func Shuffle[T any](rng *rand.Rand, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		var j int
		if rng != nil {
			j = rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		s[i], s[j] = s[j], s[i]
	}
}

// Sample returns up to n elements of s in random order without modifying s.
// n <= 0 returns every element.
func Sample[T any](rng *rand.Rand, s []T, n int) []T {
	out := make([]T, len(s))
	copy(out, s)
	Shuffle(rng, out)
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// NewSeeded returns a deterministic source for the given seed.
func NewSeeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
