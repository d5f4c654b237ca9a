// Package randutil provides an injectable randomness source so callers
// that sample (e.g. quote selection) can be pinned in tests.
package randutil

import "math/rand"

// Source yields random indices. The zero-dependency production source
// wraps math/rand; tests substitute a deterministic implementation.
type Source interface {
	// Intn returns a uniform random int in [0, n). n must be positive.
	Intn(n int) int
}

type mathSource struct{}

func (mathSource) Intn(n int) int {
	return rand.Intn(n) //nolint:gosec // Sampling quotes does not need crypto randomness
}

// Default returns the math/rand backed source.
func Default() Source {
	return mathSource{}
}

// Sample returns up to k elements drawn without replacement from items,
// preserving the original order of the chosen elements. When k >= len
// the whole slice is returned as-is.
func Sample[T any](src Source, items []T, k int) []T {
	if k >= len(items) {
		return items
	}
	if k <= 0 {
		return nil
	}

	chosen := make(map[int]bool, k)
	for len(chosen) < k {
		chosen[src.Intn(len(items))] = true
	}

	out := make([]T, 0, k)
	for i, item := range items {
		if chosen[i] {
			out = append(out, item)
		}
	}
	return out
}
