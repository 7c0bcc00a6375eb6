package distance

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// edgeEdgeStencil returns the points of the active sub-pair and their positions in (ea0, ea1, eb0, eb1).
// Point-edge sub-pairs list the point first.
func edgeEdgeStencil(ea0, ea1, eb0, eb1 mgl64.Vec3, dtype EdgeEdgeType) ([]mgl64.Vec3, []int) {
	switch dtype {
	case EA0_EB0:
		return []mgl64.Vec3{ea0, eb0}, []int{0, 2}
	case EA0_EB1:
		return []mgl64.Vec3{ea0, eb1}, []int{0, 3}
	case EA1_EB0:
		return []mgl64.Vec3{ea1, eb0}, []int{1, 2}
	case EA1_EB1:
		return []mgl64.Vec3{ea1, eb1}, []int{1, 3}
	case EA_EB0:
		return []mgl64.Vec3{eb0, ea0, ea1}, []int{2, 0, 1}
	case EA_EB1:
		return []mgl64.Vec3{eb1, ea0, ea1}, []int{3, 0, 1}
	case EA0_EB:
		return []mgl64.Vec3{ea0, eb0, eb1}, []int{0, 2, 3}
	case EA1_EB:
		return []mgl64.Vec3{ea1, eb0, eb1}, []int{1, 2, 3}
	default:
		return []mgl64.Vec3{ea0, ea1, eb0, eb1}, []int{0, 1, 2, 3}
	}
}

// EdgeEdgeDistance returns the squared distance between segments (ea0, ea1) and (eb0, eb1).
// dtype selects the active features, EE_AUTO classifies them.
func EdgeEdgeDistance(ea0, ea1, eb0, eb1 mgl64.Vec3, dtype EdgeEdgeType) float64 {
	if dtype == EE_AUTO {
		dtype = ClassifyEdgeEdge(ea0, ea1, eb0, eb1)
	}

	x, _ := edgeEdgeStencil(ea0, ea1, eb0, eb1, dtype)
	switch len(x) {
	case 2:
		return PointPointDistance(x[0], x[1])
	case 3:
		return PointLineDistance(x[0], x[1], x[2])
	default:
		return LineLineDistance(ea0, ea1, eb0, eb1)
	}
}

// EdgeEdgeDistanceGradient returns the gradient over (ea0, ea1, eb0, eb1)
func EdgeEdgeDistanceGradient(ea0, ea1, eb0, eb1 mgl64.Vec3, dtype EdgeEdgeType) *mat.VecDense {
	if dtype == EE_AUTO {
		dtype = ClassifyEdgeEdge(ea0, ea1, eb0, eb1)
	}

	x, indices := edgeEdgeStencil(ea0, ea1, eb0, eb1, dtype)
	g := mat.NewVecDense(12, nil)
	switch len(x) {
	case 2:
		scatterGradient(g, PointPointDistanceGradient(x[0], x[1]), indices)
	case 3:
		scatterGradient(g, PointLineDistanceGradient(x[0], x[1], x[2]), indices)
	default:
		return LineLineDistanceGradient(ea0, ea1, eb0, eb1)
	}
	return g
}

// EdgeEdgeDistanceHessian returns the Hessian over (ea0, ea1, eb0, eb1)
func EdgeEdgeDistanceHessian(ea0, ea1, eb0, eb1 mgl64.Vec3, dtype EdgeEdgeType) *mat.SymDense {
	if dtype == EE_AUTO {
		dtype = ClassifyEdgeEdge(ea0, ea1, eb0, eb1)
	}

	x, indices := edgeEdgeStencil(ea0, ea1, eb0, eb1, dtype)
	h := mat.NewSymDense(12, nil)
	switch len(x) {
	case 2:
		scatterHessian(h, PointPointDistanceHessian(x[0], x[1]), indices)
	case 3:
		scatterHessian(h, PointLineDistanceHessian(x[0], x[1], x[2]), indices)
	default:
		return LineLineDistanceHessian(ea0, ea1, eb0, eb1)
	}
	return h
}
