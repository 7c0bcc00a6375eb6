package distance

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// PointPointDistance returns ||p0 - p1||²
func PointPointDistance(p0, p1 mgl64.Vec3) float64 {
	return p0.Sub(p1).LenSqr()
}

// PointPointDistanceGradient returns the gradient over (p0, p1)
func PointPointDistanceGradient(p0, p1 mgl64.Vec3) *mat.VecDense {
	d := p0.Sub(p1).Mul(2)
	return mat.NewVecDense(6, flatten(d, d.Mul(-1)))
}

// PointPointDistanceHessian returns the constant Hessian over (p0, p1): [[2I, -2I], [-2I, 2I]]
func PointPointDistanceHessian(p0, p1 mgl64.Vec3) *mat.SymDense {
	h := mat.NewSymDense(6, nil)
	for axis := range 3 {
		h.SetSym(axis, axis, 2)
		h.SetSym(3+axis, 3+axis, 2)
		h.SetSym(axis, 3+axis, -2)
	}
	return h
}
