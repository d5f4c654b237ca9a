package randutil

import (
	"reflect"
	"testing"
)

// seqSource returns predetermined values, cycling.
type seqSource struct {
	values []int
	i      int
}

func (s *seqSource) Intn(_ int) int {
	v := s.values[s.i%len(s.values)]
	s.i++
	return v
}

func TestSample(t *testing.T) {
	t.Parallel()

	items := []string{"a", "b", "c", "d", "e"}

	t.Run("k exceeds length returns all", func(t *testing.T) {
		t.Parallel()
		got := Sample(Default(), items, 10)
		if !reflect.DeepEqual(got, items) {
			t.Errorf("Sample() = %v", got)
		}
	})

	t.Run("k zero returns nil", func(t *testing.T) {
		t.Parallel()
		if got := Sample(Default(), items, 0); got != nil {
			t.Errorf("Sample() = %v, want nil", got)
		}
	})

	t.Run("deterministic source preserves order", func(t *testing.T) {
		t.Parallel()
		src := &seqSource{values: []int{4, 0, 4, 2}}
		got := Sample(src, items, 3)
		want := []string{"a", "c", "e"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Sample() = %v, want %v", got, want)
		}
	})

	t.Run("no duplicates", func(t *testing.T) {
		t.Parallel()
		got := Sample(Default(), items, 3)
		seen := map[string]bool{}
		for _, v := range got {
			if seen[v] {
				t.Fatalf("duplicate element %q in %v", v, got)
			}
			seen[v] = true
		}
		if len(got) != 3 {
			t.Errorf("Sample() returned %d elements, want 3", len(got))
		}
	})
}
