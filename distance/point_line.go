package distance

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// Weights of p, e0, e1 in a = e0 - p and b = e1 - p
var pointLineWeights = [3][4]float64{
	{-1, 1, 0},
	{-1, 0, 1},
}

// PointLineDistance returns the squared distance from p to the infinite line through e0 and e1:
// ||(e0-p)×(e1-p)||² / ||e1-e0||²
func PointLineDistance(p, e0, e1 mgl64.Vec3) float64 {
	return e0.Sub(p).Cross(e1.Sub(p)).LenSqr() / e1.Sub(e0).LenSqr()
}

// PointLineDistanceGradient returns the gradient over (p, e0, e1)
func PointLineDistanceGradient(p, e0, e1 mgl64.Vec3) *mat.VecDense {
	_, g, _ := pointLine(p, e0, e1)
	return g
}

// PointLineDistanceHessian returns the Hessian over (p, e0, e1)
func PointLineDistanceHessian(p, e0, e1 mgl64.Vec3) *mat.SymDense {
	_, _, h := pointLine(p, e0, e1)
	return h
}

func pointLine(p, e0, e1 mgl64.Vec3) (float64, *mat.VecDense, *mat.SymDense) {
	a, b := e0.Sub(p), e1.Sub(p)
	num := crossNormForm(a, b)

	// ||e1-e0||² = ||b-a||²
	e := b.Sub(a)
	identity := mgl64.Ident3().Mul(2)
	var den diffForm
	den.value = e.LenSqr()
	den.grad[0], den.grad[1] = e.Mul(-2), e.Mul(2)
	den.hess[0][0], den.hess[1][1] = identity, identity
	den.hess[0][1], den.hess[1][0] = identity.Mul(-1), identity.Mul(-1)

	f := ratio(&num, &den, 2)
	g, h := f.pull(&pointLineWeights, 2, 3)
	return f.value, g, h
}
