package distance

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// PointEdgeType identifies the feature of the edge closest to the point
type PointEdgeType int

const (
	// P_E0 - closest to the first endpoint
	P_E0 PointEdgeType = iota
	// P_E1 - closest to the second endpoint
	P_E1
	// P_E - closest to the edge interior
	P_E
	// PE_AUTO - classify before evaluating
	PE_AUTO
)

func (t PointEdgeType) String() string {
	switch t {
	case P_E0:
		return "P_E0"
	case P_E1:
		return "P_E1"
	case P_E:
		return "P_E"
	case PE_AUTO:
		return "AUTO"
	}
	return fmt.Sprintf("PointEdgeType(%d)", int(t))
}

// PointTriangleType identifies the feature of the triangle closest to the point.
// Edge i of the triangle goes from corner i to corner (i+1)%3.
type PointTriangleType int

const (
	P_T0 PointTriangleType = iota
	P_T1
	P_T2
	P_TE0
	P_TE1
	P_TE2
	// P_T - closest to the triangle interior
	P_T
	// PT_AUTO - classify before evaluating
	PT_AUTO
)

func (t PointTriangleType) String() string {
	names := [...]string{"P_T0", "P_T1", "P_T2", "P_TE0", "P_TE1", "P_TE2", "P_T", "AUTO"}
	if t >= 0 && int(t) < len(names) {
		return names[t]
	}
	return fmt.Sprintf("PointTriangleType(%d)", int(t))
}

// EdgeEdgeType identifies the pair of features closest between two edges a and b
type EdgeEdgeType int

const (
	EA0_EB0 EdgeEdgeType = iota
	EA0_EB1
	EA1_EB0
	EA1_EB1
	// EA_EB0 - interior of a against the first endpoint of b
	EA_EB0
	EA_EB1
	// EA0_EB - first endpoint of a against the interior of b
	EA0_EB
	EA1_EB
	// EA_EB - both interiors
	EA_EB
	// EE_AUTO - classify before evaluating
	EE_AUTO
)

func (t EdgeEdgeType) String() string {
	names := [...]string{"EA0_EB0", "EA0_EB1", "EA1_EB0", "EA1_EB1", "EA_EB0", "EA_EB1", "EA0_EB", "EA1_EB", "EA_EB", "AUTO"}
	if t >= 0 && int(t) < len(names) {
		return names[t]
	}
	return fmt.Sprintf("EdgeEdgeType(%d)", int(t))
}

// parallelThreshold is the relative squared sine below which two edges are handled as parallel
const parallelThreshold = 1e-20

// ClassifyPointEdge returns the edge feature closest to p
func ClassifyPointEdge(p, e0, e1 mgl64.Vec3) PointEdgeType {
	e := e1.Sub(e0)
	t := p.Sub(e0).Dot(e) / e.LenSqr()

	switch {
	case t < 0:
		return P_E0
	case t > 1:
		return P_E1
	default:
		return P_E
	}
}

// ClassifyPointTriangle returns the triangle feature closest to p, following the Voronoi regions of the triangle
func ClassifyPointTriangle(p, t0, t1, t2 mgl64.Vec3) PointTriangleType {
	ab, ac := t1.Sub(t0), t2.Sub(t0)

	ap := p.Sub(t0)
	d1, d2 := ab.Dot(ap), ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return P_T0
	}

	bp := p.Sub(t1)
	d3, d4 := ab.Dot(bp), ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return P_T1
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return P_TE0
	}

	cp := p.Sub(t2)
	d5, d6 := ab.Dot(cp), ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return P_T2
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return P_TE2
	}

	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		return P_TE1
	}

	return P_T
}

// ClassifyEdgeEdge returns the pair of features closest between edges (ea0, ea1) and (eb0, eb1).
// Nearly parallel edges never classify as EA_EB, the line-line distance being singular there.
func ClassifyEdgeEdge(ea0, ea1, eb0, eb1 mgl64.Vec3) EdgeEdgeType {
	u, v, w := ea1.Sub(ea0), eb1.Sub(eb0), ea0.Sub(eb0)

	a, b, c := u.Dot(u), u.Dot(v), v.Dot(v)
	d, e := u.Dot(w), v.Dot(w)
	denom := a*c - b*b

	if u.Cross(v).LenSqr() < parallelThreshold*max(1, a*c) {
		return classifyParallelEdgeEdge(ea0, ea1, eb0, eb1)
	}

	defaultType := EA_EB
	sN := b*e - c*d
	var tN, tD float64
	switch {
	case sN <= 0:
		tN, tD = e, c
		defaultType = EA0_EB
	case sN >= denom:
		tN, tD = e+b, c
		defaultType = EA1_EB
	default:
		tN, tD = a*e-b*d, denom
	}

	switch {
	case tN <= 0:
		switch {
		case -d <= 0:
			return EA0_EB0
		case -d >= a:
			return EA1_EB0
		default:
			return EA_EB0
		}
	case tN >= tD:
		switch {
		case -d+b <= 0:
			return EA0_EB1
		case -d+b >= a:
			return EA1_EB1
		default:
			return EA_EB1
		}
	}
	return defaultType
}

// classifyParallelEdgeEdge keeps the closest of the four endpoint-against-edge configurations
func classifyParallelEdgeEdge(ea0, ea1, eb0, eb1 mgl64.Vec3) EdgeEdgeType {
	candidates := [4]struct {
		dtype    EdgeEdgeType
		distance float64
	}{
		{pointEdgeAsEdgeEdge(ClassifyPointEdge(eb0, ea0, ea1), EA_EB0, EA0_EB0, EA1_EB0), PointEdgeDistance(eb0, ea0, ea1, PE_AUTO)},
		{pointEdgeAsEdgeEdge(ClassifyPointEdge(eb1, ea0, ea1), EA_EB1, EA0_EB1, EA1_EB1), PointEdgeDistance(eb1, ea0, ea1, PE_AUTO)},
		{pointEdgeAsEdgeEdge(ClassifyPointEdge(ea0, eb0, eb1), EA0_EB, EA0_EB0, EA0_EB1), PointEdgeDistance(ea0, eb0, eb1, PE_AUTO)},
		{pointEdgeAsEdgeEdge(ClassifyPointEdge(ea1, eb0, eb1), EA1_EB, EA1_EB0, EA1_EB1), PointEdgeDistance(ea1, eb0, eb1, PE_AUTO)},
	}

	best := candidates[0]
	for _, candidate := range candidates[1:] {
		if candidate.distance < best.distance {
			best = candidate
		}
	}
	return best.dtype
}

func pointEdgeAsEdgeEdge(t PointEdgeType, interior, atE0, atE1 EdgeEdgeType) EdgeEdgeType {
	switch t {
	case P_E0:
		return atE0
	case P_E1:
		return atE1
	default:
		return interior
	}
}
