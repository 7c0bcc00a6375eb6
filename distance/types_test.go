package distance

import (
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestClassifyPointEdge(t *testing.T) {
	e0, e1 := mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 0, 0}

	tests := []struct {
		name string
		p    mgl64.Vec3
		want PointEdgeType
	}{
		{"before the first endpoint", mgl64.Vec3{-1, 1, 0}, P_E0},
		{"after the second endpoint", mgl64.Vec3{3, 0, 1}, P_E1},
		{"over the interior", mgl64.Vec3{1, 1, 1}, P_E},
		{"exactly over an endpoint", mgl64.Vec3{0, 1, 0}, P_E},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyPointEdge(tt.p, e0, e1))
		})
	}
}

func TestClassifyPointTriangle(t *testing.T) {
	t0, t1, t2 := mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}

	tests := []struct {
		name string
		p    mgl64.Vec3
		want PointTriangleType
	}{
		{"above the interior", mgl64.Vec3{0.25, 0.25, 1}, P_T},
		{"near the first corner", mgl64.Vec3{-1, -1, 0.5}, P_T0},
		{"near the second corner", mgl64.Vec3{2, -0.5, 0}, P_T1},
		{"near the third corner", mgl64.Vec3{-0.5, 2, 0}, P_T2},
		{"beside edge t0-t1", mgl64.Vec3{0.5, -1, 0.2}, P_TE0},
		{"beside edge t1-t2", mgl64.Vec3{1, 1, -0.3}, P_TE1},
		{"beside edge t2-t0", mgl64.Vec3{-1, 0.5, 0}, P_TE2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyPointTriangle(tt.p, t0, t1, t2))
		})
	}
}

func TestClassifyEdgeEdge(t *testing.T) {
	ea0, ea1 := mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{1, 0, 0}

	tests := []struct {
		name     string
		eb0, eb1 mgl64.Vec3
		want     EdgeEdgeType
	}{
		{"crossing interiors", mgl64.Vec3{0, -1, 1}, mgl64.Vec3{0, 1, 1}, EA_EB},
		{"b starts over the interior of a", mgl64.Vec3{0, 0, 1}, mgl64.Vec3{0, 0, 3}, EA_EB0},
		{"b ends over the interior of a", mgl64.Vec3{0.5, 0, 3}, mgl64.Vec3{0.5, 0, 1}, EA_EB1},
		{"b passes beyond the end of a", mgl64.Vec3{2, -1, 1}, mgl64.Vec3{2, 1, 1}, EA1_EB},
		{"b passes before the start of a", mgl64.Vec3{-2, -1, 1}, mgl64.Vec3{-2, 1, 1}, EA0_EB},
		{"endpoints closest", mgl64.Vec3{2, 1, 0}, mgl64.Vec3{3, 2, 0.5}, EA1_EB0},
		{"parallel overlapping", mgl64.Vec3{0.5, 1, 0}, mgl64.Vec3{3, 1, 0}, EA_EB0},
		{"parallel disjoint", mgl64.Vec3{2, 1, 0}, mgl64.Vec3{4, 1, 0}, EA1_EB0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyEdgeEdge(ea0, ea1, tt.eb0, tt.eb1))
		})
	}
}

func TestPointEdgeDistance(t *testing.T) {
	e0, e1 := mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 0, 0}

	tests := []struct {
		name string
		p    mgl64.Vec3
		want float64
	}{
		{"interior", mgl64.Vec3{1, 3, 0}, 9},
		{"first endpoint", mgl64.Vec3{-3, 4, 0}, 25},
		{"second endpoint", mgl64.Vec3{3, 0, 1}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PointEdgeDistance(tt.p, e0, e1, PE_AUTO), 1e-12)
		})
	}

	t.Run("endpoint gradient only touches the active points", func(t *testing.T) {
		g := PointEdgeDistanceGradient(mgl64.Vec3{-3, 4, 0}, e0, e1, PE_AUTO)
		assert.Equal(t, []float64{-6, 8, 0, 6, -8, 0, 0, 0, 0}, g.RawVector().Data)

		h := PointEdgeDistanceHessian(mgl64.Vec3{-3, 4, 0}, e0, e1, PE_AUTO)
		for i := 6; i < 9; i++ {
			for j := range 9 {
				assert.Equal(t, 0.0, h.At(i, j))
			}
		}
	})
}

func TestPointTriangleDistance(t *testing.T) {
	t0, t1, t2 := mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}

	tests := []struct {
		name string
		p    mgl64.Vec3
		want float64
	}{
		{"above the interior", mgl64.Vec3{0.25, 0.25, 2}, 4},
		{"beyond a corner", mgl64.Vec3{-1, -1, 0}, 2},
		{"beside the hypotenuse", mgl64.Vec3{1, 1, 0}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PointTriangleDistance(tt.p, t0, t1, t2, PT_AUTO), 1e-12)
		})
	}
}

func TestEdgeEdgeDistance(t *testing.T) {
	ea0, ea1 := mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{1, 0, 0}

	tests := []struct {
		name     string
		eb0, eb1 mgl64.Vec3
		want     float64
	}{
		{"crossing interiors", mgl64.Vec3{0, -1, 2}, mgl64.Vec3{0, 1, 2}, 4},
		{"parallel edges", mgl64.Vec3{-0.5, 0, 3}, mgl64.Vec3{0.5, 0, 3}, 9},
		{"endpoint to endpoint", mgl64.Vec3{2, 0, 0}, mgl64.Vec3{3, 0, 1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, EdgeEdgeDistance(ea0, ea1, tt.eb0, tt.eb1, EE_AUTO), 1e-12)
		})
	}
}

// The piecewise functions agree with brute-force sampling of the primitives
func TestPiecewiseDistance_Sampling(t *testing.T) {
	rng := rand.New(rand.NewPCG(21, 22))
	const samples = 200

	lerp := func(a, b mgl64.Vec3, s float64) mgl64.Vec3 {
		return a.Add(b.Sub(a).Mul(s))
	}

	t.Run("point-edge", func(t *testing.T) {
		for range 20 {
			x := randomPoints(rng, 3)
			best := PointPointDistance(x[0], x[1])
			for k := range samples + 1 {
				best = min(best, PointPointDistance(x[0], lerp(x[1], x[2], float64(k)/samples)))
			}
			got := PointEdgeDistance(x[0], x[1], x[2], PE_AUTO)
			assert.LessOrEqual(t, got, best+1e-12)
			assert.InDelta(t, best, got, 1e-3)
		}
	})

	t.Run("edge-edge", func(t *testing.T) {
		for range 20 {
			x := randomPoints(rng, 4)
			best := PointPointDistance(x[0], x[2])
			for i := range samples + 1 {
				pa := lerp(x[0], x[1], float64(i)/samples)
				for j := range samples + 1 {
					best = min(best, PointPointDistance(pa, lerp(x[2], x[3], float64(j)/samples)))
				}
			}
			got := EdgeEdgeDistance(x[0], x[1], x[2], x[3], EE_AUTO)
			assert.LessOrEqual(t, got, best+1e-9)
			assert.InDelta(t, best, got, 1e-3)
		}
	})
}

func TestPiecewiseDerivatives_FiniteDifference(t *testing.T) {
	rng := rand.New(rand.NewPCG(31, 32))

	for range 30 {
		x := randomPoints(rng, 4)

		pe := ClassifyPointEdge(x[0], x[1], x[2])
		pt := ClassifyPointTriangle(x[0], x[1], x[2], x[3])
		ee := ClassifyEdgeEdge(x[0], x[1], x[2], x[3])

		if longEdge(x[1], x[2]) {
			f := pairFunctions{
				name:     "point-edge " + pe.String(),
				points:   3,
				distance: func(x []mgl64.Vec3) float64 { return PointEdgeDistance(x[0], x[1], x[2], pe) },
				gradient: func(x []mgl64.Vec3) *mat.VecDense { return PointEdgeDistanceGradient(x[0], x[1], x[2], pe) },
				hessian:  func(x []mgl64.Vec3) *mat.SymDense { return PointEdgeDistanceHessian(x[0], x[1], x[2], pe) },
			}
			t.Run(f.name, func(t *testing.T) {
				assertGradientMatchesFiniteDifference(t, f, x[:3])
				assertHessianMatchesFiniteDifference(t, f, x[:3])
			})
		}

		if crossNotSmall(x[2].Sub(x[1]), x[3].Sub(x[1])) && longEdge(x[1], x[2]) && longEdge(x[2], x[3]) && longEdge(x[3], x[1]) {
			f := pairFunctions{
				name:     "point-triangle " + pt.String(),
				points:   4,
				distance: func(x []mgl64.Vec3) float64 { return PointTriangleDistance(x[0], x[1], x[2], x[3], pt) },
				gradient: func(x []mgl64.Vec3) *mat.VecDense { return PointTriangleDistanceGradient(x[0], x[1], x[2], x[3], pt) },
				hessian:  func(x []mgl64.Vec3) *mat.SymDense { return PointTriangleDistanceHessian(x[0], x[1], x[2], x[3], pt) },
			}
			t.Run(f.name, func(t *testing.T) {
				assertGradientMatchesFiniteDifference(t, f, x)
				assertHessianMatchesFiniteDifference(t, f, x)
			})
		}

		if crossNotSmall(x[1].Sub(x[0]), x[3].Sub(x[2])) && longEdge(x[0], x[1]) && longEdge(x[2], x[3]) {
			f := pairFunctions{
				name:     "edge-edge " + ee.String(),
				points:   4,
				distance: func(x []mgl64.Vec3) float64 { return EdgeEdgeDistance(x[0], x[1], x[2], x[3], ee) },
				gradient: func(x []mgl64.Vec3) *mat.VecDense { return EdgeEdgeDistanceGradient(x[0], x[1], x[2], x[3], ee) },
				hessian:  func(x []mgl64.Vec3) *mat.SymDense { return EdgeEdgeDistanceHessian(x[0], x[1], x[2], x[3], ee) },
			}
			t.Run(f.name, func(t *testing.T) {
				assertGradientMatchesFiniteDifference(t, f, x)
				assertHessianMatchesFiniteDifference(t, f, x)
			})
		}
	}
}
