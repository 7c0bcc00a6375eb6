package proximity

import (
	"fmt"
	"math"

	"github.com/akmonengine/proximity/bounds"
	"github.com/akmonengine/proximity/internal/pipeline"
	"github.com/dhconnelly/rtreego"
)

// rtreeIndex bulk-loads the b boxes into an R-tree and queries it once per a box.
// The tree only reports strictly intersecting rectangles, so every rectangle is grown by one ulp
// on each side and the inclusive overlap test is applied on the results.
type rtreeIndex struct {
	minChildren int
	maxChildren int
}

// rtreeEntry is a box stored in the tree
type rtreeEntry struct {
	index int
	rect  rtreego.Rect
}

func (e *rtreeEntry) Bounds() rtreego.Rect {
	return e.rect
}

func (rt rtreeIndex) pairs(a, b []bounds.AABB, self bool, accept func(i, j int) bool, workers int) ([]pair, error) {
	if self {
		b = a
	}
	if len(a) == 0 || len(b) == 0 {
		return nil, nil
	}

	entries := make([]rtreego.Spatial, len(b))
	for j, box := range b {
		rect, err := paddedRect(box)
		if err != nil {
			return nil, fmt.Errorf("rtree box %d: %w", j, err)
		}
		entries[j] = &rtreeEntry{index: j, rect: rect}
	}
	tree := rtreego.NewTree(3, rt.minChildren, rt.maxChildren, entries...)

	queries := make([]rtreego.Rect, len(a))
	if self {
		for i := range a {
			queries[i] = entries[i].Bounds()
		}
	} else {
		for i, box := range a {
			rect, err := paddedRect(box)
			if err != nil {
				return nil, fmt.Errorf("rtree query %d: %w", i, err)
			}
			queries[i] = rect
		}
	}

	// Searches only read the tree
	return pipeline.Collect(workers, len(a), func(i int, out []pair) []pair {
		for _, found := range tree.SearchIntersect(queries[i]) {
			j := found.(*rtreeEntry).index
			if self && j <= i {
				continue
			}
			if a[i].Overlaps(b[j]) && accept(i, j) {
				out = append(out, pair{i, j})
			}
		}
		return out
	}), nil
}

func paddedRect(box bounds.AABB) (rtreego.Rect, error) {
	lo := make(rtreego.Point, 3)
	hi := make(rtreego.Point, 3)
	for axis := range 3 {
		lo[axis] = math.Nextafter(box.Min[axis], math.Inf(-1))
		hi[axis] = math.Nextafter(box.Max[axis], math.Inf(1))
	}
	return rtreego.NewRectFromPoints(lo, hi)
}
