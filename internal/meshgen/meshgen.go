// Package meshgen builds welded triangle meshes from signed distance functions,
// for the CLI scenes and the tests.
package meshgen

import (
	"fmt"
	"math"

	"github.com/akmonengine/proximity"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
)

// Mesh is an indexed triangle mesh, or a closed polyline when Faces is empty
type Mesh struct {
	Vertices []mgl64.Vec3
	Edges    [][2]int
	Faces    [][3]int
}

// Sphere returns a sphere of the given radius centered at the origin, cells sets the marching cubes resolution
func Sphere(radius float64, cells int) (*Mesh, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sphere: %w", err)
	}
	return FromSDF(s, cells)
}

// Box returns an axis-aligned cube of the given side centered at the origin
func Box(size float64, cells int) (*Mesh, error) {
	s, err := sdf.Box3D(v3.Vec{X: size, Y: size, Z: size}, 0)
	if err != nil {
		return nil, fmt.Errorf("box: %w", err)
	}
	return FromSDF(s, cells)
}

// FromSDF tessellates s with uniform marching cubes and welds the triangle soup
func FromSDF(s sdf.SDF3, cells int) (*Mesh, error) {
	if cells < 2 {
		return nil, fmt.Errorf("marching cubes needs at least 2 cells, got %d", cells)
	}

	triangles := render.ToTriangles(s, render.NewMarchingCubesUniform(cells))
	if len(triangles) == 0 {
		return nil, fmt.Errorf("tessellation produced no triangles")
	}

	bb := s.BoundingBox()
	size := bb.Size()
	w := newWelder(max(size.X, size.Y, size.Z) * 1e-9)

	m := &Mesh{Faces: make([][3]int, 0, len(triangles))}
	for _, tri := range triangles {
		var f [3]int
		for k := 0; k < 3; k++ {
			f[k] = w.index(mgl64.Vec3{tri[k].X, tri[k].Y, tri[k].Z})
		}
		// Slivers collapse once welded
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			continue
		}
		m.Faces = append(m.Faces, f)
	}

	m.Vertices = w.vertices
	m.Edges = proximity.EdgesFromFaces(m.Faces)
	return m, nil
}

// Circle returns a closed polyline of n segments in the z = 0 plane
func Circle(radius float64, n int) *Mesh {
	m := &Mesh{
		Vertices: make([]mgl64.Vec3, n),
		Edges:    make([][2]int, n),
	}
	for i := range n {
		angle := 2 * math.Pi * float64(i) / float64(n)
		m.Vertices[i] = mgl64.Vec3{radius * math.Cos(angle), radius * math.Sin(angle), 0}
		m.Edges[i] = [2]int{i, (i + 1) % n}
	}
	return m
}

// Transformed returns the vertices rotated by q, then translated by t
func (m *Mesh) Transformed(q mgl64.Quat, t mgl64.Vec3) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		out[i] = q.Rotate(v).Add(t)
	}
	return out
}

// Merge concatenates meshes into one, shifting their ids.
// groups[v] is the index of the mesh vertex v comes from.
func Merge(meshes ...*Mesh) (merged *Mesh, groups []int) {
	merged = &Mesh{}
	for g, m := range meshes {
		offset := len(merged.Vertices)
		merged.Vertices = append(merged.Vertices, m.Vertices...)
		for _, e := range m.Edges {
			merged.Edges = append(merged.Edges, [2]int{e[0] + offset, e[1] + offset})
		}
		for _, f := range m.Faces {
			merged.Faces = append(merged.Faces, [3]int{f[0] + offset, f[1] + offset, f[2] + offset})
		}
		for range m.Vertices {
			groups = append(groups, g)
		}
	}
	return merged, groups
}

// welder merges positions closer than its tolerance, using a snapped-coordinate index
type welder struct {
	tolerance float64
	ids       map[[3]int64]int
	vertices  []mgl64.Vec3
}

func newWelder(tolerance float64) *welder {
	return &welder{
		tolerance: max(tolerance, 1e-12),
		ids:       make(map[[3]int64]int),
	}
}

func (w *welder) index(p mgl64.Vec3) int {
	key := [3]int64{
		int64(math.Round(p[0] / w.tolerance)),
		int64(math.Round(p[1] / w.tolerance)),
		int64(math.Round(p[2] / w.tolerance)),
	}
	if id, ok := w.ids[key]; ok {
		return id
	}
	id := len(w.vertices)
	w.ids[key] = id
	w.vertices = append(w.vertices, p)
	return id
}
