package pipeline

import (
	"slices"
	"sync/atomic"
	"testing"
)

func TestWorkers(t *testing.T) {
	tests := []struct{ n, want int }{
		{-4, DefaultWorkers}, {0, DefaultWorkers}, {1, 1}, {8, 8},
	}
	for _, tt := range tests {
		if got := Workers(tt.n); got != tt.want {
			t.Errorf("Workers(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestRange(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		n       int
	}{
		{"empty", 4, 0},
		{"single item", 4, 1},
		{"sequential", 1, 100},
		{"more workers than items", 16, 5},
		{"uneven chunks", 3, 100},
		{"invalid worker count", 0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			visits := make([]int32, tt.n)
			Range(tt.workers, tt.n, func(i int) {
				atomic.AddInt32(&visits[i], 1)
			})
			for i, v := range visits {
				if v != 1 {
					t.Errorf("index %d visited %d times", i, v)
				}
			}
		})
	}
}

func TestCollect(t *testing.T) {
	for _, workers := range []int{1, 3, 7} {
		// Even indices emit two items, odd ones none
		got := Collect(workers, 50, func(i int, out []int) []int {
			if i%2 == 0 {
				out = append(out, i, -i)
			}
			return out
		})

		if len(got) != 50 {
			t.Fatalf("workers %d: collected %d items, want 50", workers, len(got))
		}
		// Chunks are contiguous and concatenated in order
		for k := 0; k < len(got); k += 2 {
			if got[k] != k || got[k+1] != -k {
				t.Fatalf("workers %d: items %d-%d = %v, want [%d %d]", workers, k, k+1, got[k:k+2], k, -k)
			}
		}
	}

	if got := Collect(4, 0, func(i int, out []int) []int { return append(out, i) }); got != nil {
		t.Errorf("Collect over nothing = %v, want nil", got)
	}
}

func TestCollectState(t *testing.T) {
	var states atomic.Int32

	got := CollectState(4, 40,
		func() map[int]bool {
			states.Add(1)
			return make(map[int]bool)
		},
		func(i int, seen map[int]bool, out []int) []int {
			// The state is private to the worker
			if seen[i] {
				t.Errorf("index %d seen twice by one worker", i)
			}
			seen[i] = true
			return append(out, i)
		})

	if !slices.Equal(got, func() []int {
		want := make([]int, 40)
		for i := range want {
			want[i] = i
		}
		return want
	}()) {
		t.Errorf("CollectState = %v", got)
	}
	if n := states.Load(); n < 1 || n > 4 {
		t.Errorf("created %d states, want one per worker", n)
	}
}
