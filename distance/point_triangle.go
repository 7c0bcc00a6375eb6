package distance

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// pointTriangleStencil returns the points of the active sub-pair and their positions in (p, t0, t1, t2)
func pointTriangleStencil(p, t0, t1, t2 mgl64.Vec3, dtype PointTriangleType) ([]mgl64.Vec3, []int) {
	switch dtype {
	case P_T0:
		return []mgl64.Vec3{p, t0}, []int{0, 1}
	case P_T1:
		return []mgl64.Vec3{p, t1}, []int{0, 2}
	case P_T2:
		return []mgl64.Vec3{p, t2}, []int{0, 3}
	case P_TE0:
		return []mgl64.Vec3{p, t0, t1}, []int{0, 1, 2}
	case P_TE1:
		return []mgl64.Vec3{p, t1, t2}, []int{0, 2, 3}
	case P_TE2:
		return []mgl64.Vec3{p, t2, t0}, []int{0, 3, 1}
	default:
		return []mgl64.Vec3{p, t0, t1, t2}, []int{0, 1, 2, 3}
	}
}

// PointTriangleDistance returns the squared distance from p to the triangle (t0, t1, t2).
// dtype selects the active feature, PT_AUTO classifies it.
func PointTriangleDistance(p, t0, t1, t2 mgl64.Vec3, dtype PointTriangleType) float64 {
	if dtype == PT_AUTO {
		dtype = ClassifyPointTriangle(p, t0, t1, t2)
	}

	x, _ := pointTriangleStencil(p, t0, t1, t2, dtype)
	switch len(x) {
	case 2:
		return PointPointDistance(x[0], x[1])
	case 3:
		return PointLineDistance(x[0], x[1], x[2])
	default:
		return PointPlaneDistance(p, t0, t1, t2)
	}
}

// PointTriangleDistanceGradient returns the gradient over (p, t0, t1, t2)
func PointTriangleDistanceGradient(p, t0, t1, t2 mgl64.Vec3, dtype PointTriangleType) *mat.VecDense {
	if dtype == PT_AUTO {
		dtype = ClassifyPointTriangle(p, t0, t1, t2)
	}

	x, indices := pointTriangleStencil(p, t0, t1, t2, dtype)
	g := mat.NewVecDense(12, nil)
	switch len(x) {
	case 2:
		scatterGradient(g, PointPointDistanceGradient(x[0], x[1]), indices)
	case 3:
		scatterGradient(g, PointLineDistanceGradient(x[0], x[1], x[2]), indices)
	default:
		return PointPlaneDistanceGradient(p, t0, t1, t2)
	}
	return g
}

// PointTriangleDistanceHessian returns the Hessian over (p, t0, t1, t2)
func PointTriangleDistanceHessian(p, t0, t1, t2 mgl64.Vec3, dtype PointTriangleType) *mat.SymDense {
	if dtype == PT_AUTO {
		dtype = ClassifyPointTriangle(p, t0, t1, t2)
	}

	x, indices := pointTriangleStencil(p, t0, t1, t2, dtype)
	h := mat.NewSymDense(12, nil)
	switch len(x) {
	case 2:
		scatterHessian(h, PointPointDistanceHessian(x[0], x[1]), indices)
	case 3:
		scatterHessian(h, PointLineDistanceHessian(x[0], x[1], x[2]), indices)
	default:
		return PointPlaneDistanceHessian(p, t0, t1, t2)
	}
	return h
}
