package distance

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// Weights of p, t0, t1, t2 in w = p - t0, u = t1 - t0, v = t2 - t0
var pointPlaneWeights = [3][4]float64{
	{1, -1, 0, 0},
	{0, -1, 1, 0},
	{0, -1, 0, 1},
}

// PointPlaneDistance returns the squared distance from p to the plane through t0, t1 and t2:
// ((p-t0)·n)² / ||n||² with n = (t1-t0)×(t2-t0)
func PointPlaneDistance(p, t0, t1, t2 mgl64.Vec3) float64 {
	n := t1.Sub(t0).Cross(t2.Sub(t0))
	d := p.Sub(t0).Dot(n)
	return d * d / n.LenSqr()
}

// PointPlaneDistanceGradient returns the gradient over (p, t0, t1, t2)
func PointPlaneDistanceGradient(p, t0, t1, t2 mgl64.Vec3) *mat.VecDense {
	_, g, _ := pointPlane(p, t0, t1, t2)
	return g
}

// PointPlaneDistanceHessian returns the Hessian over (p, t0, t1, t2)
func PointPlaneDistanceHessian(p, t0, t1, t2 mgl64.Vec3) *mat.SymDense {
	_, _, h := pointPlane(p, t0, t1, t2)
	return h
}

func pointPlane(p, t0, t1, t2 mgl64.Vec3) (float64, *mat.VecDense, *mat.SymDense) {
	return tripleRatio(p.Sub(t0), t1.Sub(t0), t2.Sub(t0), &pointPlaneWeights, 4)
}

// PointPlaneDistanceNormal returns the squared distance from p to the plane through origin with the given normal.
// The normal does not need to be unit length.
func PointPlaneDistanceNormal(p, origin, normal mgl64.Vec3) float64 {
	d := p.Sub(origin).Dot(normal)
	return d * d / normal.LenSqr()
}

// PointPlaneDistanceNormalGradient returns the gradient with respect to p only:
// 2((p-origin)·n) n / ||n||²
func PointPlaneDistanceNormalGradient(p, origin, normal mgl64.Vec3) *mat.VecDense {
	scale := 2 * p.Sub(origin).Dot(normal) / normal.LenSqr()
	return mat.NewVecDense(3, flatten(normal.Mul(scale)))
}

// PointPlaneDistanceNormalHessian returns the Hessian with respect to p only: 2 n nᵀ / ||n||²
func PointPlaneDistanceNormalHessian(p, origin, normal mgl64.Vec3) *mat.SymDense {
	h := mat.NewSymDense(3, nil)
	n := mat.NewVecDense(3, flatten(normal))
	h.SymRankOne(h, 2/normal.LenSqr(), n)
	return h
}
