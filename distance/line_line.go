package distance

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// Weights of ea0, ea1, eb0, eb1 in w = eb0 - ea0, u = ea1 - ea0, v = eb1 - eb0
var lineLineWeights = [3][4]float64{
	{-1, 0, 1, 0},
	{-1, 1, 0, 0},
	{0, 0, -1, 1},
}

// LineLineDistance returns the squared distance between the infinite lines (ea0, ea1) and (eb0, eb1):
// ((eb0-ea0)·n)² / ||n||² with n = (ea1-ea0)×(eb1-eb0). Parallel lines make n vanish.
func LineLineDistance(ea0, ea1, eb0, eb1 mgl64.Vec3) float64 {
	n := ea1.Sub(ea0).Cross(eb1.Sub(eb0))
	d := eb0.Sub(ea0).Dot(n)
	return d * d / n.LenSqr()
}

// LineLineDistanceGradient returns the gradient over (ea0, ea1, eb0, eb1)
func LineLineDistanceGradient(ea0, ea1, eb0, eb1 mgl64.Vec3) *mat.VecDense {
	_, g, _ := lineLine(ea0, ea1, eb0, eb1)
	return g
}

// LineLineDistanceHessian returns the Hessian over (ea0, ea1, eb0, eb1)
func LineLineDistanceHessian(ea0, ea1, eb0, eb1 mgl64.Vec3) *mat.SymDense {
	_, _, h := lineLine(ea0, ea1, eb0, eb1)
	return h
}

func lineLine(ea0, ea1, eb0, eb1 mgl64.Vec3) (float64, *mat.VecDense, *mat.SymDense) {
	return tripleRatio(eb0.Sub(ea0), ea1.Sub(ea0), eb1.Sub(eb0), &lineLineWeights, 4)
}
