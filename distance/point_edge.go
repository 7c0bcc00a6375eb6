package distance

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// PointEdgeDistance returns the squared distance from p to the segment (e0, e1).
// dtype selects the active feature, PE_AUTO classifies it.
func PointEdgeDistance(p, e0, e1 mgl64.Vec3, dtype PointEdgeType) float64 {
	if dtype == PE_AUTO {
		dtype = ClassifyPointEdge(p, e0, e1)
	}

	switch dtype {
	case P_E0:
		return PointPointDistance(p, e0)
	case P_E1:
		return PointPointDistance(p, e1)
	default:
		return PointLineDistance(p, e0, e1)
	}
}

// PointEdgeDistanceGradient returns the gradient over (p, e0, e1)
func PointEdgeDistanceGradient(p, e0, e1 mgl64.Vec3, dtype PointEdgeType) *mat.VecDense {
	if dtype == PE_AUTO {
		dtype = ClassifyPointEdge(p, e0, e1)
	}

	g := mat.NewVecDense(9, nil)
	switch dtype {
	case P_E0:
		scatterGradient(g, PointPointDistanceGradient(p, e0), []int{0, 1})
	case P_E1:
		scatterGradient(g, PointPointDistanceGradient(p, e1), []int{0, 2})
	default:
		return PointLineDistanceGradient(p, e0, e1)
	}
	return g
}

// PointEdgeDistanceHessian returns the Hessian over (p, e0, e1)
func PointEdgeDistanceHessian(p, e0, e1 mgl64.Vec3, dtype PointEdgeType) *mat.SymDense {
	if dtype == PE_AUTO {
		dtype = ClassifyPointEdge(p, e0, e1)
	}

	h := mat.NewSymDense(9, nil)
	switch dtype {
	case P_E0:
		scatterHessian(h, PointPointDistanceHessian(p, e0), []int{0, 1})
	case P_E1:
		scatterHessian(h, PointPointDistanceHessian(p, e1), []int{0, 2})
	default:
		return PointLineDistanceHessian(p, e0, e1)
	}
	return h
}
