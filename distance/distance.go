// Package distance implements closed-form squared distances between mesh primitives,
// with their gradients and Hessians with respect to the defining points.
//
// Every pair type uses the squared Euclidean distance, so derivatives stay polynomial or rational
// and are defined at zero distance. For a pair defined by k points the gradient has length 3k,
// ordered point by point in argument order (x, y, z of each point), and the Hessian is a 3k×3k
// *mat.SymDense: only one triangle is stored, so it is exactly symmetric.
//
// The line and plane forms are written as functions of a few difference vectors of the points
// (for the plane: w = p-t0, u = t1-t0, v = t2-t0), evaluated on 3-vectors and 3×3 blocks, then
// pulled back to the points through the constant point weights of those differences.
//
// Degenerate primitives (zero-length edges, zero-area triangles, parallel lines) make the
// denominators vanish. They are not detected here: the piecewise functions classify the active
// feature pair first, and callers filter degenerate geometry upstream.
//
// References:
//   - Li et al.: "Incremental Potential Contact: Intersection- and Inversion-free,
//     Large-Deformation Dynamics" (2020)
//   - Ericson: "Real-Time Collision Detection", 5.1.5 and 5.1.9 (2004)
package distance

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// flatten stacks the coordinates of the points
func flatten(points ...mgl64.Vec3) []float64 {
	out := make([]float64, 0, 3*len(points))
	for _, p := range points {
		out = append(out, p[0], p[1], p[2])
	}
	return out
}

// unflatten is the inverse of flatten
func unflatten(x []float64) []mgl64.Vec3 {
	points := make([]mgl64.Vec3, len(x)/3)
	for i := range points {
		points[i] = mgl64.Vec3{x[3*i], x[3*i+1], x[3*i+2]}
	}
	return points
}

// diffForm is a function of up to three difference vectors of the points: its value, its gradient
// as 3-vectors and its full Hessian as 3×3 blocks, hess[l][k] being the transpose of hess[k][l].
// Everything stays on the stack until pull writes the result over the points.
type diffForm struct {
	value float64
	grad  [3]mgl64.Vec3
	hess  [3][3]mgl64.Mat3
}

// ratio returns the form n/d over m difference vectors:
// g = (gn - f gd) / d, H = (Hn - f Hd - g gdᵀ - gd gᵀ) / d
func ratio(n, d *diffForm, m int) diffForm {
	var f diffForm
	inv := 1 / d.value
	f.value = n.value * inv
	for k := range m {
		f.grad[k] = n.grad[k].Sub(d.grad[k].Mul(f.value)).Mul(inv)
	}
	for k := range m {
		for l := range m {
			f.hess[k][l] = n.hess[k][l].Sub(d.hess[k][l].Mul(f.value)).
				Sub(f.grad[k].OuterProd3(d.grad[l])).
				Sub(d.grad[k].OuterProd3(f.grad[l])).
				Mul(inv)
		}
	}
	return f
}

// pull returns the gradient and Hessian of f over n points.
// weights[k][i] is the weight of point i in difference k.
func (f *diffForm) pull(weights *[3][4]float64, m, n int) (*mat.VecDense, *mat.SymDense) {
	g := mat.NewVecDense(3*n, nil)
	h := mat.NewSymDense(3*n, nil)

	for i := range n {
		var gi mgl64.Vec3
		for k := range m {
			if w := weights[k][i]; w != 0 {
				gi = gi.Add(f.grad[k].Mul(w))
			}
		}
		for axis := range 3 {
			g.SetVec(3*i+axis, gi[axis])
		}

		for j := i; j < n; j++ {
			var block mgl64.Mat3
			for k := range m {
				for l := range m {
					if w := weights[k][i] * weights[l][j]; w != 0 {
						block = block.Add(f.hess[k][l].Mul(w))
					}
				}
			}
			setBlock(h, i, j, block)
		}
	}
	return g, h
}

// setBlock writes the 3×3 block (bi, bj) of h, bi <= bj. Diagonal blocks must be symmetric.
func setBlock(h *mat.SymDense, bi, bj int, m mgl64.Mat3) {
	for r := range 3 {
		for c := range 3 {
			if bi == bj && c < r {
				continue
			}
			h.SetSym(3*bi+r, 3*bj+c, m.At(r, c))
		}
	}
}

// crossMatrix returns [v]×, the matrix such that [v]× x = v × x
func crossMatrix(v mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Mat3FromRows(
		mgl64.Vec3{0, -v[2], v[1]},
		mgl64.Vec3{v[2], 0, -v[0]},
		mgl64.Vec3{-v[1], v[0], 0},
	)
}

// crossNormForm returns ||a×b||² as a form of (a, b),
// written as (a·a)(b·b) - (a·b)² for the derivatives
func crossNormForm(a, b mgl64.Vec3) diffForm {
	aa, bb, ab := a.Dot(a), b.Dot(b), a.Dot(b)
	identity := mgl64.Ident3()

	var f diffForm
	f.value = a.Cross(b).LenSqr()
	f.grad[0] = a.Mul(2 * bb).Sub(b.Mul(2 * ab))
	f.grad[1] = b.Mul(2 * aa).Sub(a.Mul(2 * ab))
	f.hess[0][0] = identity.Mul(2 * bb).Sub(b.OuterProd3(b).Mul(2))
	f.hess[1][1] = identity.Mul(2 * aa).Sub(a.OuterProd3(a).Mul(2))
	f.hess[0][1] = a.OuterProd3(b).Mul(4).Sub(b.OuterProd3(a).Mul(2)).Sub(identity.Mul(2 * ab))
	f.hess[1][0] = f.hess[0][1].Transpose()
	return f
}

// tripleRatio returns det[w,u,v]² / ||u×v||², the squared distance of w to the plane spanned by u and v,
// with its derivatives over n points. weights rows are the point weights of w, u and v.
//
// With t = w·(u×v), d = ||u×v||², s = t/d and q = ∇t - s∇d:
// ∇f = 2s∇t - s²∇d and ∇²f = 2s∇²t - s²∇²d + (2/d) q qᵀ
func tripleRatio(w, u, v mgl64.Vec3, weights *[3][4]float64, n int) (float64, *mat.VecDense, *mat.SymDense) {
	uxv := u.Cross(v)
	t := w.Dot(uxv)

	cross := crossNormForm(u, v)
	d := cross.value
	s := t / d

	// Triple product over (w, u, v): gradient and the off-diagonal Hessian blocks
	gt := [3]mgl64.Vec3{uxv, v.Cross(w), w.Cross(u)}
	var ht [3][3]mgl64.Mat3
	ht[0][1] = crossMatrix(v).Mul(-1)
	ht[0][2] = crossMatrix(u)
	ht[1][2] = crossMatrix(w).Mul(-1)
	for k := range 3 {
		for l := k + 1; l < 3; l++ {
			ht[l][k] = ht[k][l].Transpose()
		}
	}

	// ||u×v||² over (w, u, v): w does not appear
	gd := [3]mgl64.Vec3{{}, cross.grad[0], cross.grad[1]}
	var hd [3][3]mgl64.Mat3
	hd[1][1], hd[1][2] = cross.hess[0][0], cross.hess[0][1]
	hd[2][1], hd[2][2] = cross.hess[1][0], cross.hess[1][1]

	var q [3]mgl64.Vec3
	for k := range 3 {
		q[k] = gt[k].Sub(gd[k].Mul(s))
	}

	var f diffForm
	f.value = t * s
	for k := range 3 {
		f.grad[k] = gt[k].Mul(2 * s).Sub(gd[k].Mul(s * s))
		for l := range 3 {
			f.hess[k][l] = ht[k][l].Mul(2 * s).Sub(hd[k][l].Mul(s * s)).Add(q[k].OuterProd3(q[l]).Mul(2 / d))
		}
	}

	g, h := f.pull(weights, 3, n)
	return f.value, g, h
}

// scatterGradient adds the gradient of a sub-stencil into the gradient of the full stencil.
// indices[k] is the position in the full stencil of the sub-stencil point k.
func scatterGradient(dst, sub *mat.VecDense, indices []int) {
	for k, idx := range indices {
		for axis := range 3 {
			dst.SetVec(3*idx+axis, dst.AtVec(3*idx+axis)+sub.AtVec(3*k+axis))
		}
	}
}

// scatterHessian writes the Hessian of a sub-stencil into the Hessian of the full stencil
func scatterHessian(dst, sub *mat.SymDense, indices []int) {
	for a, ia := range indices {
		for b, ib := range indices {
			for r := range 3 {
				for c := range 3 {
					dst.SetSym(3*ia+r, 3*ib+c, sub.At(3*a+r, 3*b+c))
				}
			}
		}
	}
}
