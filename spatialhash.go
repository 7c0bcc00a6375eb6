package proximity

import (
	"math"
	"slices"

	"github.com/akmonengine/proximity/bounds"
	"github.com/akmonengine/proximity/internal/pipeline"
	"github.com/go-gl/mathgl/mgl64"
)

// ============================================================================
// Types
// ============================================================================

// CellKey - integer coordinates of a grid cell
type CellKey struct {
	X, Y, Z int
}

// Cell - indices of the boxes touching a hashed cell
type Cell struct {
	boxIndices []int
}

// SpatialGrid - uniform grid hashed into a fixed power-of-two table of cells.
// Distinct cells may share a bucket: this only adds pairs to test, never removes one.
type SpatialGrid struct {
	cellSize float64
	cells    []Cell
	cellMask int
}

// spatialHash is the broad-phase strategy backed by a SpatialGrid rebuilt for every query
type spatialHash struct {
	cellSize    float64
	bucketCount int
}

// ============================================================================
// Constructor
// ============================================================================

// NewSpatialGrid - creates a grid of the given cell size with numCells buckets, rounded up to a power of two
func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].boxIndices = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

// nextPowerOfTwo - rounds up to the next power of two
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	n++
	return n
}

// Insert - inserts a box index in every bucket of the cells covered by the box
func (sg *SpatialGrid) Insert(boxIndex int, box bounds.AABB) {
	if sg.coversAll(box) {
		for i := range sg.cells {
			sg.cells[i].boxIndices = append(sg.cells[i].boxIndices, boxIndex)
		}
		return
	}

	sg.forEachBucket(box, func(cellIdx int) {
		sg.cells[cellIdx].boxIndices = append(sg.cells[cellIdx].boxIndices, boxIndex)
	})
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].boxIndices = sg.cells[i].boxIndices[:0]
	}
}

// SortCells - sorts and deduplicates every bucket, a box may land twice in a bucket through hash collisions
func (sg *SpatialGrid) SortCells() {
	for i := range sg.cells {
		if len(sg.cells[i].boxIndices) > 1 {
			slices.Sort(sg.cells[i].boxIndices)
			sg.cells[i].boxIndices = slices.Compact(sg.cells[i].boxIndices)
		}
	}
}

// forEachBucket - calls fn with the bucket of every cell covered by the box
func (sg *SpatialGrid) forEachBucket(box bounds.AABB, fn func(cellIdx int)) {
	minCell := sg.worldToCell(box.Min)
	maxCell := sg.worldToCell(box.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				fn(sg.hashCell(CellKey{x, y, z}))
			}
		}
	}
}

// coversAll - true when the box spans more cells than there are buckets,
// visiting every bucket once is then cheaper than walking its cells
func (sg *SpatialGrid) coversAll(box bounds.AABB) bool {
	minCell := sg.worldToCell(box.Min)
	maxCell := sg.worldToCell(box.Max)

	count := 1.0
	count *= float64(maxCell.X-minCell.X) + 1
	count *= float64(maxCell.Y-minCell.Y) + 1
	count *= float64(maxCell.Z-minCell.Z) + 1

	return count > float64(len(sg.cells))
}

// worldToCell - converts a world position to cell coordinates
func (sg *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

// hashCell - hashes a cell to an index in the bucket table
func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}

// ============================================================================
// Pair finding
// ============================================================================

func (sh spatialHash) pairs(a, b []bounds.AABB, self bool, accept func(i, j int) bool, workers int) ([]pair, error) {
	if self {
		b = a
	}
	if len(a) == 0 || len(b) == 0 {
		return nil, nil
	}

	cellSize := sh.cellSize
	if cellSize <= 0 {
		cellSize = averageExtent(a, b)
	}

	grid := NewSpatialGrid(cellSize, sh.bucketCount)
	for j, box := range b {
		grid.Insert(j, box)
	}
	grid.SortCells()

	// seen[j] == i when b[j] was already tested against a[i]
	newSeen := func() []int {
		seen := make([]int, len(b))
		for k := range seen {
			seen[k] = -1
		}
		return seen
	}

	return pipeline.CollectState(workers, len(a), newSeen, func(i int, seen []int, out []pair) []pair {
		visit := func(cellIdx int) {
			for _, j := range grid.cells[cellIdx].boxIndices {
				// Avoid duplicates
				if (self && j <= i) || seen[j] == i {
					continue
				}
				seen[j] = i

				if a[i].Overlaps(b[j]) && accept(i, j) {
					out = append(out, pair{i, j})
				}
			}
		}

		if grid.coversAll(a[i]) {
			for cellIdx := range grid.cells {
				visit(cellIdx)
			}
		} else {
			grid.forEachBucket(a[i], visit)
		}
		return out
	}), nil
}

// averageExtent returns the mean of the largest side of every box, used as a cell size.
// Degenerate inputs (only points) fall back to the scene size, or 1.
func averageExtent(lists ...[]bounds.AABB) float64 {
	sum, count := 0.0, 0
	for _, list := range lists {
		for _, box := range list {
			sum += box.MaxExtent()
			count++
		}
	}

	if count > 0 && sum > 0 {
		return sum / float64(count)
	}
	if scene, ok := bounds.Bounds(lists...); ok && scene.MaxExtent() > 0 {
		return scene.MaxExtent()
	}
	return 1
}
