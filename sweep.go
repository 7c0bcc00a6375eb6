package proximity

import (
	"cmp"
	"slices"

	"github.com/akmonengine/proximity/bounds"
	"github.com/akmonengine/proximity/internal/pipeline"
)

// sweepAndPrune sorts every box by its minimum along the axis of largest spread,
// then scans forward from each box while the next minimums stay within its maximum.
type sweepAndPrune struct{}

type sweepItem struct {
	lo, hi float64
	box    int
	side   uint8
}

func (sweepAndPrune) pairs(a, b []bounds.AABB, self bool, accept func(i, j int) bool, workers int) ([]pair, error) {
	if self {
		b = a
	}
	if len(a) == 0 || len(b) == 0 {
		return nil, nil
	}

	axis := sweepAxis(a, b)

	items := make([]sweepItem, 0, len(a)+len(b))
	for i, box := range a {
		items = append(items, sweepItem{lo: box.Min[axis], hi: box.Max[axis], box: i, side: sideA})
	}
	if !self {
		for j, box := range b {
			items = append(items, sweepItem{lo: box.Min[axis], hi: box.Max[axis], box: j, side: sideB})
		}
	}
	slices.SortFunc(items, func(x, y sweepItem) int {
		return cmp.Or(cmp.Compare(x.lo, y.lo), cmp.Compare(x.side, y.side), cmp.Compare(x.box, y.box))
	})

	return pipeline.Collect(workers, len(items), func(k int, out []pair) []pair {
		current := items[k]

		for m := k + 1; m < len(items) && items[m].lo <= current.hi; m++ {
			next := items[m]
			if !self && next.side == current.side {
				continue
			}

			i, j := current.box, next.box
			if !self && current.side == sideB {
				i, j = j, i
			}
			if self && i > j {
				i, j = j, i
			}

			if a[i].Overlaps(b[j]) && accept(i, j) {
				out = append(out, pair{i, j})
			}
		}
		return out
	}), nil
}

// sweepAxis returns the axis along which box centers have the largest variance
func sweepAxis(lists ...[]bounds.AABB) int {
	var sum, sumSq [3]float64
	n := 0.0
	for _, list := range lists {
		for _, box := range list {
			c := box.Center()
			for axis := range 3 {
				sum[axis] += c[axis]
				sumSq[axis] += c[axis] * c[axis]
			}
			n++
		}
	}

	best, bestVariance := 0, -1.0
	for axis := range 3 {
		mean := sum[axis] / n
		variance := sumSq[axis]/n - mean*mean
		if variance > bestVariance {
			best, bestVariance = axis, variance
		}
	}
	return best
}
