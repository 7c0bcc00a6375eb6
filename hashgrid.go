package proximity

import (
	"cmp"
	"math"
	"slices"

	"github.com/akmonengine/proximity/bounds"
	"github.com/akmonengine/proximity/internal/pipeline"
	"github.com/go-gl/mathgl/mgl64"
)

// maxCellsPerBox is the number of cells above which a box skips the grid and is tested against every other box
const maxCellsPerBox = 4096

const (
	sideA uint8 = iota
	sideB
)

// hashGrid sorts one (cell, box) item per covered cell, overlapping boxes then end up in the same runs.
// A pair is reported only from the cell holding the max of both box minimums, which both boxes cover.
type hashGrid struct {
	cellSize float64
}

type gridItem struct {
	key  CellKey
	box  int
	side uint8
}

type denseGrid struct {
	origin   mgl64.Vec3
	cellSize float64
}

func (g denseGrid) cell(p mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor((p.X() - g.origin.X()) / g.cellSize)),
		Y: int(math.Floor((p.Y() - g.origin.Y()) / g.cellSize)),
		Z: int(math.Floor((p.Z() - g.origin.Z()) / g.cellSize)),
	}
}

func (g denseGrid) cellCount(box bounds.AABB) float64 {
	lo, hi := g.cell(box.Min), g.cell(box.Max)
	return (float64(hi.X-lo.X) + 1) * (float64(hi.Y-lo.Y) + 1) * (float64(hi.Z-lo.Z) + 1)
}

func compareCellKey(a, b CellKey) int {
	return cmp.Or(
		cmp.Compare(a.Z, b.Z),
		cmp.Compare(a.Y, b.Y),
		cmp.Compare(a.X, b.X),
	)
}

func (hg hashGrid) pairs(a, b []bounds.AABB, self bool, accept func(i, j int) bool, workers int) ([]pair, error) {
	if self {
		b = a
	}
	if len(a) == 0 || len(b) == 0 {
		return nil, nil
	}

	scene, _ := bounds.Bounds(a, b)
	grid := denseGrid{origin: scene.Min, cellSize: hg.cellSize}
	if grid.cellSize <= 0 {
		grid.cellSize = medianExtent(a, b)
	}

	largeA := hg.largeBoxes(grid, a)
	largeB := largeA
	if !self {
		largeB = hg.largeBoxes(grid, b)
	}

	items := hg.items(grid, a, largeA, sideA, workers)
	if !self {
		items = append(items, hg.items(grid, b, largeB, sideB, workers)...)
	}
	slices.SortFunc(items, func(x, y gridItem) int {
		return cmp.Or(compareCellKey(x.key, y.key), cmp.Compare(x.side, y.side), cmp.Compare(x.box, y.box))
	})

	runs := cellRuns(items)
	found := pipeline.Collect(workers, len(runs), func(r int, out []pair) []pair {
		run := items[runs[r][0]:runs[r][1]]
		key := run[0].key

		// Items of a run are sorted by side: b items follow the a items
		firstB, _ := slices.BinarySearchFunc(run, sideB, func(it gridItem, s uint8) int {
			return cmp.Compare(it.side, s)
		})

		for x, itemA := range run[:firstB] {
			others := run[firstB:]
			if self {
				others = run[x+1:]
			}

			for _, itemB := range others {
				i, j := itemA.box, itemB.box
				boxA, boxB := a[i], b[j]
				if !boxA.Overlaps(boxB) {
					continue
				}
				if grid.cell(maxVec(boxA.Min, boxB.Min)) != key {
					continue
				}
				if self && i > j {
					i, j = j, i
				}
				if accept(i, j) {
					out = append(out, pair{i, j})
				}
			}
		}
		return out
	})

	// Large boxes are tested against the whole other side
	large := pipeline.Collect(workers, len(a), func(i int, out []pair) []pair {
		if largeA[i] {
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
		}

		start := 0
		if self {
			start = i + 1
		}
		for j := start; j < len(b); j++ {
			if largeB[j] && a[i].Overlaps(b[j]) && accept(i, j) {
				out = append(out, pair{i, j})
			}
		}
		return out
	})

	return append(found, large...), nil
}

func (hashGrid) largeBoxes(grid denseGrid, boxes []bounds.AABB) []bool {
	large := make([]bool, len(boxes))
	for i, box := range boxes {
		large[i] = grid.cellCount(box) > maxCellsPerBox
	}
	return large
}

func (hashGrid) items(grid denseGrid, boxes []bounds.AABB, large []bool, side uint8, workers int) []gridItem {
	return pipeline.Collect(workers, len(boxes), func(i int, out []gridItem) []gridItem {
		if large[i] {
			return out
		}

		lo, hi := grid.cell(boxes[i].Min), grid.cell(boxes[i].Max)
		for z := lo.Z; z <= hi.Z; z++ {
			for y := lo.Y; y <= hi.Y; y++ {
				for x := lo.X; x <= hi.X; x++ {
					out = append(out, gridItem{key: CellKey{x, y, z}, box: i, side: side})
				}
			}
		}
		return out
	})
}

// cellRuns returns the [start, end) ranges of items sharing a cell
func cellRuns(items []gridItem) [][2]int {
	var runs [][2]int
	for start := 0; start < len(items); {
		end := start + 1
		for end < len(items) && items[end].key == items[start].key {
			end++
		}
		runs = append(runs, [2]int{start, end})
		start = end
	}
	return runs
}

func medianExtent(lists ...[]bounds.AABB) float64 {
	var extents []float64
	for _, list := range lists {
		for _, box := range list {
			extents = append(extents, box.MaxExtent())
		}
	}
	if len(extents) == 0 {
		return 1
	}

	slices.Sort(extents)
	if median := extents[len(extents)/2]; median > 0 {
		return median
	}
	return averageExtent(lists...)
}

func maxVec(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])}
}
