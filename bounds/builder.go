package bounds

import (
	"fmt"

	"github.com/akmonengine/proximity/internal/pipeline"
	"github.com/go-gl/mathgl/mgl64"
)

// VertexBoxes builds one box per vertex: the point inflated by inflationRadius
func VertexBoxes(vertices []mgl64.Vec3, inflationRadius float64, workers int) []AABB {
	boxes := make([]AABB, len(vertices))
	pipeline.Range(workers, len(vertices), func(i int) {
		boxes[i] = PointAABB(vertices[i], inflationRadius, i)
	})
	return boxes
}

// SweptVertexBoxes builds one box per vertex bounding its linear trajectory
// from verticesT0[i] to verticesT1[i], inflated by inflationRadius
func SweptVertexBoxes(verticesT0, verticesT1 []mgl64.Vec3, inflationRadius float64, workers int) ([]AABB, error) {
	if len(verticesT0) != len(verticesT1) {
		return nil, fmt.Errorf("swept boxes: %d start positions for %d end positions", len(verticesT0), len(verticesT1))
	}

	boxes := make([]AABB, len(verticesT0))
	pipeline.Range(workers, len(verticesT0), func(i int) {
		boxes[i] = SegmentAABB(verticesT0[i], verticesT1[i], inflationRadius, i)
	})
	return boxes, nil
}

// EdgeBoxes unions the boxes of each edge's two endpoints
func EdgeBoxes(vertexBoxes []AABB, edges [][2]int, workers int) []AABB {
	boxes := make([]AABB, len(edges))
	pipeline.Range(workers, len(edges), func(i int) {
		e := edges[i]
		b := Union(vertexBoxes[e[0]], vertexBoxes[e[1]])
		b.VertexIDs = [3]int{e[0], e[1], NoVertex}
		b.ID = i
		boxes[i] = b
	})
	return boxes
}

// FaceBoxes unions the boxes of each face's three corners
func FaceBoxes(vertexBoxes []AABB, faces [][3]int, workers int) []AABB {
	boxes := make([]AABB, len(faces))
	pipeline.Range(workers, len(faces), func(i int) {
		f := faces[i]
		b := Union(vertexBoxes[f[0]], vertexBoxes[f[1]], vertexBoxes[f[2]])
		b.VertexIDs = f
		b.ID = i
		boxes[i] = b
	})
	return boxes
}

// Bounds returns the union of all boxes, and false when the list is empty
func Bounds(boxes ...[]AABB) (AABB, bool) {
	var (
		u     AABB
		found bool
	)
	for _, list := range boxes {
		for _, b := range list {
			if !found {
				u, found = b, true
				continue
			}
			u.Min = minVec(u.Min, b.Min)
			u.Max = maxVec(u.Max, b.Max)
		}
	}
	return u, found
}
