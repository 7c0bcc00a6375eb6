package proximity

import (
	"github.com/akmonengine/proximity/bounds"
	"github.com/akmonengine/proximity/internal/pipeline"
)

// bruteForce tests every pair of boxes, O(n·m)
type bruteForce struct{}

func (bruteForce) pairs(a, b []bounds.AABB, self bool, accept func(i, j int) bool, workers int) ([]pair, error) {
	if self {
		b = a
	}

	return pipeline.Collect(workers, len(a), func(i int, out []pair) []pair {
		start := 0
		if self {
			start = i + 1
		}
		for j := start; j < len(b); j++ {
			if a[i].Overlaps(b[j]) && accept(i, j) {
				out = append(out, pair{i, j})
			}
		}
		return out
	}), nil
}
