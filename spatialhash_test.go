package proximity

import (
	"testing"

	"github.com/akmonengine/proximity/bounds"
	"github.com/go-gl/mathgl/mgl64"
)

func TestWorldToCell(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)

	tests := []struct {
		name     string
		position mgl64.Vec3
		expected CellKey
	}{
		{"origin", mgl64.Vec3{0, 0, 0}, CellKey{0, 0, 0}},
		{"positive", mgl64.Vec3{1.5, 2.3, 3.7}, CellKey{1, 2, 3}},
		{"negative", mgl64.Vec3{-1.5, -2.3, -3.7}, CellKey{-2, -3, -4}},
		{"fractional", mgl64.Vec3{0.5, 0.5, 0.5}, CellKey{0, 0, 0}},
		{"large", mgl64.Vec3{100.7, -200.3, 50.1}, CellKey{100, -201, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := grid.worldToCell(tt.position)
			if result != tt.expected {
				t.Errorf("worldToCell(%v) = %v, want %v", tt.position, result, tt.expected)
			}
		})
	}
}

func TestHashCell(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16) // 16 buckets, mask = 15

	tests := []struct {
		name     string
		key      CellKey
		expected int
	}{
		{"origin", CellKey{0, 0, 0}, 0},
		{"simple", CellKey{1, 2, 3}, 6},
		{"negative", CellKey{-1, -2, -3}, 10},
		{"large", CellKey{100, 200, 300}, 8},
		{"mixed signs", CellKey{7, -3, 11}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := grid.hashCell(tt.key)
			if result < 0 || result >= len(grid.cells) {
				t.Errorf("hashCell(%v) = %d, out of range [0, %d)", tt.key, result, len(grid.cells))
			}
			if result != tt.expected {
				t.Errorf("hashCell(%v) = %d, want %d", tt.key, result, tt.expected)
			}
		})
	}
}

func TestHashCellDistribution(t *testing.T) {
	grid := NewSpatialGrid(1.0, 1024)

	counts := make([]int, len(grid.cells))
	for x := -40; x <= 40; x++ {
		for y := -40; y <= 40; y++ {
			for z := -40; z <= 40; z++ {
				key := CellKey{x, y, z}
				hash := grid.hashCell(key)
				if hash != grid.hashCell(key) {
					t.Fatalf("hashCell(%v) is not deterministic", key)
				}
				counts[hash]++
			}
		}
	}

	minCount, maxCount := counts[0], counts[0]
	for _, count := range counts {
		minCount = min(minCount, count)
		maxCount = max(maxCount, count)
	}
	avg := float64(81*81*81) / float64(len(counts))
	t.Logf("Hash distribution: min=%d, max=%d, avg=%.1f", minCount, maxCount, avg)

	if minCount == 0 {
		t.Errorf("some buckets are never hit")
	}
	if float64(maxCount) > 4*avg {
		t.Errorf("bucket load %d exceeds 4x the average %.1f", maxCount, avg)
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct{ n, expected int }{
		{-3, 1}, {0, 1}, {1, 1}, {2, 2}, {3, 4}, {1000, 1024}, {4096, 4096},
	}

	for _, tt := range tests {
		if got := nextPowerOfTwo(tt.n); got != tt.expected {
			t.Errorf("nextPowerOfTwo(%d) = %d, want %d", tt.n, got, tt.expected)
		}
	}
}

// Test helper functions

func createTestBox(center mgl64.Vec3, halfExtent float64) bounds.AABB {
	h := mgl64.Vec3{halfExtent, halfExtent, halfExtent}
	return bounds.AABB{Min: center.Sub(h), Max: center.Add(h)}
}

func bucketContains(grid *SpatialGrid, key CellKey, boxIndex int) bool {
	for _, idx := range grid.cells[grid.hashCell(key)].boxIndices {
		if idx == boxIndex {
			return true
		}
	}
	return false
}

// ============================================================================
// Insertion
// ============================================================================

func TestInsertSingleBox(t *testing.T) {
	grid := NewSpatialGrid(1.0, 64)
	box := createTestBox(mgl64.Vec3{0.5, 0.5, 0.5}, 0.25)

	grid.Insert(0, box)

	if !bucketContains(grid, CellKey{0, 0, 0}, 0) {
		t.Error("box should be in the bucket of cell (0,0,0)")
	}

	count := 0
	for _, cell := range grid.cells {
		count += len(cell.boxIndices)
	}
	if count != 1 {
		t.Errorf("a box inside one cell should be inserted once, got %d", count)
	}
}

func TestBoundaryCases(t *testing.T) {
	grid := NewSpatialGrid(1.0, 64)

	// Box exactly on the boundary between two cells
	box := createTestBox(mgl64.Vec3{1.0, 1.0, 1.0}, 0.5)
	grid.Insert(0, box)

	minCell := grid.worldToCell(box.Min)
	maxCell := grid.worldToCell(box.Max)

	if maxCell.X-minCell.X != 1 || maxCell.Y-minCell.Y != 1 || maxCell.Z-minCell.Z != 1 {
		t.Errorf("Expected box to span 2 cells in each dimension, got %d, %d, %d",
			maxCell.X-minCell.X, maxCell.Y-minCell.Y, maxCell.Z-minCell.Z)
	}
	if !bucketContains(grid, CellKey{0, 0, 0}, 0) || !bucketContains(grid, CellKey{1, 1, 1}, 0) {
		t.Error("box should be in both corner cells")
	}
}

func TestLargeBoxSpanningManyCells(t *testing.T) {
	grid := NewSpatialGrid(1.0, 4096)
	box := createTestBox(mgl64.Vec3{0, 0, 0}, 5.0)

	grid.Insert(0, box)

	minCell := grid.worldToCell(box.Min)
	maxCell := grid.worldToCell(box.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				if !bucketContains(grid, CellKey{x, y, z}, 0) {
					t.Fatalf("box missing from cell %v", CellKey{x, y, z})
				}
			}
		}
	}
}

func TestBoxCoveringEveryBucket(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	box := createTestBox(mgl64.Vec3{0, 0, 0}, 10.0)

	if !grid.coversAll(box) {
		t.Fatal("a box over 8000 cells should cover a 16 bucket table")
	}

	grid.Insert(3, box)
	for i, cell := range grid.cells {
		if len(cell.boxIndices) != 1 || cell.boxIndices[0] != 3 {
			t.Errorf("bucket %d = %v, want [3]", i, cell.boxIndices)
		}
	}
}

func TestSpatialGridClear(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	grid.Insert(0, createTestBox(mgl64.Vec3{0, 0, 0}, 2))
	grid.Insert(1, createTestBox(mgl64.Vec3{5, 5, 5}, 0.5))

	grid.Clear()

	for i, cell := range grid.cells {
		if len(cell.boxIndices) != 0 {
			t.Errorf("bucket %d should be empty after Clear, has %v", i, cell.boxIndices)
		}
	}
}

func TestSortCells(t *testing.T) {
	grid := NewSpatialGrid(1.0, 1)

	// A single bucket: every cell of every box collides into it
	grid.Insert(2, createTestBox(mgl64.Vec3{0, 0, 0}, 1))
	grid.Insert(0, createTestBox(mgl64.Vec3{3, 0, 0}, 1))
	grid.Insert(1, createTestBox(mgl64.Vec3{6, 0, 0}, 0.2))
	grid.SortCells()

	got := grid.cells[0].boxIndices
	want := []int{0, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("bucket = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bucket = %v, want %v", got, want)
		}
	}
}

// ============================================================================
// Pair finding
// ============================================================================

func TestSpatialHashPairsNoOverlap(t *testing.T) {
	boxes := []bounds.AABB{
		createTestBox(mgl64.Vec3{0, 0, 0}, 0.4),
		createTestBox(mgl64.Vec3{2, 0, 0}, 0.4),
		createTestBox(mgl64.Vec3{0, 2, 0}, 0.4),
	}

	pairs, err := spatialHash{cellSize: 1, bucketCount: 16}.pairs(boxes, nil, true, acceptAll, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 0 {
		t.Errorf("Expected no pair, got %v", pairs)
	}
}

func TestSpatialHashPairsWithOverlap(t *testing.T) {
	boxes := []bounds.AABB{
		createTestBox(mgl64.Vec3{0, 0, 0}, 0.6),
		createTestBox(mgl64.Vec3{1, 0, 0}, 0.6),
		createTestBox(mgl64.Vec3{10, 0, 0}, 0.6),
	}

	// Tiny table: hash collisions must not duplicate pairs
	pairs, err := spatialHash{cellSize: 0.5, bucketCount: 2}.pairs(boxes, nil, true, acceptAll, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 1 || pairs[0] != (pair{0, 1}) {
		t.Errorf("Expected exactly [{0 1}], got %v", pairs)
	}
}

func TestAverageExtent(t *testing.T) {
	boxes := []bounds.AABB{
		createTestBox(mgl64.Vec3{0, 0, 0}, 0.5),
		createTestBox(mgl64.Vec3{0, 0, 0}, 1.5),
	}
	if got := averageExtent(boxes); got != 2 {
		t.Errorf("averageExtent = %v, want 2", got)
	}

	points := []bounds.AABB{
		bounds.PointAABB(mgl64.Vec3{0, 0, 0}, 0, 0),
		bounds.PointAABB(mgl64.Vec3{4, 1, 0}, 0, 1),
	}
	if got := averageExtent(points); got != 4 {
		t.Errorf("averageExtent of points = %v, want the scene size 4", got)
	}

	if got := averageExtent(points[:1]); got != 1 {
		t.Errorf("averageExtent of one point = %v, want 1", got)
	}
}

func BenchmarkSpatialHashPairs(b *testing.B) {
	boxes := make([]bounds.AABB, 1000)
	for i := range boxes {
		pos := mgl64.Vec3{
			float64(i%10) * 2.0,
			float64((i/10)%10) * 2.0,
			float64((i/100)%10) * 2.0,
		}
		boxes[i] = createTestBox(pos, 0.4)
	}
	s := spatialHash{cellSize: 1.0, bucketCount: 1024}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.pairs(boxes, nil, true, acceptAll, 4); err != nil {
			b.Fatal(err)
		}
	}
}
