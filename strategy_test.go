package proximity

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/akmonengine/proximity/bounds"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper functions

// testStrategies returns every strategy available in this build, keyed by method
func testStrategies(t testing.TB) map[Method]strategy {
	t.Helper()
	strategies := map[Method]strategy{
		MethodBruteForce:    bruteForce{},
		MethodSpatialHash:   spatialHash{bucketCount: 256},
		MethodHashGrid:      hashGrid{},
		MethodSweepAndPrune: sweepAndPrune{},
		MethodRTree:         rtreeIndex{minChildren: 2, maxChildren: 8},
	}
	if gpuCompiled {
		if s, err := newGPUStrategy(); err == nil {
			strategies[MethodGPU] = s
		} else {
			t.Logf("gpu strategy skipped: %v", err)
		}
	}
	return strategies
}

// randomBoxes scatters n boxes of random sizes in a cube of the given side, plus one box spanning it all
func randomBoxes(rng *rand.Rand, n int, side float64) []bounds.AABB {
	boxes := make([]bounds.AABB, 0, n+1)
	for i := range n {
		c := mgl64.Vec3{rng.Float64() * side, rng.Float64() * side, rng.Float64() * side}
		h := mgl64.Vec3{rng.Float64() * 0.5, rng.Float64() * 0.5, rng.Float64() * 0.5}
		boxes = append(boxes, bounds.AABB{Min: c.Sub(h), Max: c.Add(h), ID: i})
	}
	boxes = append(boxes, bounds.AABB{Min: mgl64.Vec3{-1, -1, -1}, Max: mgl64.Vec3{side + 1, side + 1, side + 1}, ID: n})
	return boxes
}

// uniquePairs sorts and deduplicates strategy output
func uniquePairs(pairs []pair) []pair {
	return dedupe(slices.Clone(pairs), func(x, y pair) int {
		return cmp.Or(cmp.Compare(x.i, y.i), cmp.Compare(x.j, y.j))
	})
}

func acceptAll(i, j int) bool { return true }

func assertSameAsBruteForce(t *testing.T, s strategy, a, b []bounds.AABB, self bool, accept func(i, j int) bool, workers int) {
	t.Helper()

	want, err := bruteForce{}.pairs(a, b, self, accept, 1)
	require.NoError(t, err)
	got, err := s.pairs(a, b, self, accept, workers)
	require.NoError(t, err)

	for _, p := range got {
		if self {
			require.Less(t, p.i, p.j, "self pairs are ordered")
		}
	}
	assert.Equal(t, uniquePairs(want), uniquePairs(got))
}

// =============================================================================
// Strategy agreement
// =============================================================================

func TestStrategies_AgreeWithBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	a := randomBoxes(rng, 150, 6)
	b := randomBoxes(rng, 90, 6)

	// Rejects a third of the pairs, checked after the overlap test
	everyThird := func(i, j int) bool { return (i+j)%3 != 0 }

	for method, s := range testStrategies(t) {
		for _, workers := range []int{1, 4} {
			t.Run(method.String(), func(t *testing.T) {
				assertSameAsBruteForce(t, s, a, b, false, acceptAll, workers)
				assertSameAsBruteForce(t, s, a, nil, true, acceptAll, workers)
				assertSameAsBruteForce(t, s, a, b, false, everyThird, workers)
				assertSameAsBruteForce(t, s, a, nil, true, everyThird, workers)
			})
		}
	}
}

func TestStrategies_TouchingBoxes(t *testing.T) {
	// Faces, edges and corners touching exactly on cell boundaries
	boxes := []bounds.AABB{
		{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}},
		{Min: mgl64.Vec3{1, 0, 0}, Max: mgl64.Vec3{2, 1, 1}},
		{Min: mgl64.Vec3{2, 1, 0}, Max: mgl64.Vec3{3, 2, 1}},
		{Min: mgl64.Vec3{3, 2, 1}, Max: mgl64.Vec3{4, 3, 2}},
		{Min: mgl64.Vec3{5, 5, 5}, Max: mgl64.Vec3{6, 6, 6}},
	}
	want := []pair{{0, 1}, {1, 2}, {2, 3}}

	for method, s := range testStrategies(t) {
		t.Run(method.String(), func(t *testing.T) {
			got, err := s.pairs(boxes, nil, true, acceptAll, 2)
			require.NoError(t, err)
			assert.Equal(t, want, uniquePairs(got))
		})
	}
}

func TestStrategies_PointBoxes(t *testing.T) {
	// Zero-extent boxes, some coincident
	boxes := []bounds.AABB{
		bounds.PointAABB(mgl64.Vec3{0, 0, 0}, 0, 0),
		bounds.PointAABB(mgl64.Vec3{0, 0, 0}, 0, 1),
		bounds.PointAABB(mgl64.Vec3{1, 0, 0}, 0, 2),
		bounds.PointAABB(mgl64.Vec3{1, 0, 0}, 0, 3),
	}
	want := []pair{{0, 1}, {2, 3}}

	for method, s := range testStrategies(t) {
		t.Run(method.String(), func(t *testing.T) {
			got, err := s.pairs(boxes, nil, true, acceptAll, 1)
			require.NoError(t, err)
			assert.Equal(t, want, uniquePairs(got))
		})
	}
}

func TestStrategies_Empty(t *testing.T) {
	boxes := []bounds.AABB{{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}}}

	for method, s := range testStrategies(t) {
		t.Run(method.String(), func(t *testing.T) {
			got, err := s.pairs(nil, boxes, false, acceptAll, 1)
			require.NoError(t, err)
			assert.Empty(t, got)

			got, err = s.pairs(boxes, nil, false, acceptAll, 1)
			require.NoError(t, err)
			assert.Empty(t, got)

			got, err = s.pairs(boxes, nil, true, acceptAll, 1)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestStrategies_FixedCellSize(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	a := randomBoxes(rng, 80, 4)

	// Cells much smaller and much larger than the boxes
	for _, h := range []float64{0.05, 0.7, 50} {
		assertSameAsBruteForce(t, spatialHash{cellSize: h, bucketCount: 64}, a, nil, true, acceptAll, 3)
		assertSameAsBruteForce(t, hashGrid{cellSize: h}, a, nil, true, acceptAll, 3)
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkStrategies(b *testing.B) {
	rng := rand.New(rand.NewPCG(5, 6))
	boxes := randomBoxes(rng, 5000, 40)

	for method, s := range testStrategies(b) {
		b.Run(method.String(), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := s.pairs(boxes, nil, true, acceptAll, 4); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
