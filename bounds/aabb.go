package bounds

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// NoVertex marks an unused slot of AABB.VertexIDs
const NoVertex = -1

// AABB represents an axis-aligned bounding box around one primitive of a mesh.
// 2D geometry is embedded in the z = 0 plane.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
	// VertexIDs are the vertices defining the bounded primitive, NoVertex for unused slots
	VertexIDs [3]int
	// ID is the index of the primitive in its vertex, edge or face array
	ID int
}

// PointAABB returns the box of a single point, inflated by radius on every axis
func PointAABB(p mgl64.Vec3, radius float64, id int) AABB {
	r := mgl64.Vec3{radius, radius, radius}
	return AABB{
		Min:       p.Sub(r),
		Max:       p.Add(r),
		VertexIDs: [3]int{id, NoVertex, NoVertex},
		ID:        id,
	}
}

// SegmentAABB returns the box of the segment [p0, p1], inflated by radius on every axis
func SegmentAABB(p0, p1 mgl64.Vec3, radius float64, id int) AABB {
	a := PointAABB(p0, radius, id)
	b := PointAABB(p1, radius, id)
	a.Min, a.Max = minVec(a.Min, b.Min), maxVec(a.Max, b.Max)
	return a
}

// Union returns the smallest box containing all the given boxes.
// VertexIDs and ID are left to the caller.
func Union(boxes ...AABB) AABB {
	if len(boxes) == 0 {
		return AABB{VertexIDs: [3]int{NoVertex, NoVertex, NoVertex}, ID: NoVertex}
	}

	u := boxes[0]
	for _, b := range boxes[1:] {
		u.Min = minVec(u.Min, b.Min)
		u.Max = maxVec(u.Max, b.Max)
	}

	return u
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Overlaps checks if two AABBs overlap.
// Bounds are inclusive: boxes sharing only a face, an edge or a corner overlap.
func (a AABB) Overlaps(other AABB) bool {
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}

// Extent returns the size of the box along each axis
func (a AABB) Extent() mgl64.Vec3 {
	return a.Max.Sub(a.Min)
}

// MaxExtent returns the largest side length of the box
func (a AABB) MaxExtent() float64 {
	e := a.Extent()
	return math.Max(e.X(), math.Max(e.Y(), e.Z()))
}

// Center returns the center of the box
func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Shares reports whether both boxes bound primitives with a common vertex
func (a AABB) Shares(other AABB) bool {
	for _, vi := range a.VertexIDs {
		if vi == NoVertex {
			continue
		}
		for _, vj := range other.VertexIDs {
			if vi == vj {
				return true
			}
		}
	}
	return false
}

func minVec(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Min(a[0], b[0]), math.Min(a[1], b[1]), math.Min(a[2], b[2])}
}

func maxVec(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])}
}
