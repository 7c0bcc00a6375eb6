package proximity

import (
	"fmt"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// ValidateTopology checks that every edge and face references existing, distinct vertices
func ValidateTopology(vertexCount int, edges [][2]int, faces [][3]int) error {
	for i, e := range edges {
		for _, vi := range e {
			if vi < 0 || vi >= vertexCount {
				return fmt.Errorf("%w: edge %d references vertex %d, have %d vertices", ErrInvalidTopology, i, vi, vertexCount)
			}
		}
		if e[0] == e[1] {
			return fmt.Errorf("%w: edge %d repeats vertex %d", ErrInvalidTopology, i, e[0])
		}
	}

	for i, f := range faces {
		for _, vi := range f {
			if vi < 0 || vi >= vertexCount {
				return fmt.Errorf("%w: face %d references vertex %d, have %d vertices", ErrInvalidTopology, i, vi, vertexCount)
			}
		}
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			return fmt.Errorf("%w: face %d repeats a vertex %v", ErrInvalidTopology, i, f)
		}
	}

	return nil
}

func validateRadius(inflationRadius float64) error {
	if math.IsNaN(inflationRadius) || inflationRadius < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidRadius, inflationRadius)
	}
	return nil
}

// EdgesFromFaces returns the unique undirected edges of a triangle mesh,
// each with its smaller vertex id first, sorted
func EdgesFromFaces(faces [][3]int) [][2]int {
	edges := make([][2]int, 0, len(faces)*3)
	for _, f := range faces {
		for k := 0; k < 3; k++ {
			a, b := f[k], f[(k+1)%3]
			if b < a {
				a, b = b, a
			}
			edges = append(edges, [2]int{a, b})
		}
	}

	slices.SortFunc(edges, comparePair)
	return slices.Compact(edges)
}

// Vertices2D embeds planar positions in the z = 0 plane
func Vertices2D(points []mgl64.Vec2) []mgl64.Vec3 {
	vertices := make([]mgl64.Vec3, len(points))
	for i, p := range points {
		vertices[i] = p.Vec3(0)
	}
	return vertices
}

// GroupPolicy returns a vertex-pair policy letting two vertices collide only
// when they belong to different groups, e.g. to ignore self-contact of each body.
// Vertices beyond len(groups) always collide.
func GroupPolicy(groups []int) func(vi, vj int) bool {
	return func(vi, vj int) bool {
		if vi >= len(groups) || vj >= len(groups) {
			return true
		}
		return groups[vi] != groups[vj]
	}
}

func comparePair(a, b [2]int) int {
	if a[0] != b[0] {
		return a[0] - b[0]
	}
	return a[1] - b[1]
}
