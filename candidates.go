package proximity

import (
	"cmp"
	"slices"
)

// CandidateKind identifies the primitive combination of a candidate
type CandidateKind uint8

const (
	EDGE_VERTEX CandidateKind = iota
	EDGE_EDGE
	FACE_VERTEX
	EDGE_FACE
)

func (k CandidateKind) String() string {
	switch k {
	case EDGE_VERTEX:
		return "edge-vertex"
	case EDGE_EDGE:
		return "edge-edge"
	case FACE_VERTEX:
		return "face-vertex"
	case EDGE_FACE:
		return "edge-face"
	default:
		return "unknown"
	}
}

// EdgeVertexCandidate pairs an edge with a vertex (2D)
type EdgeVertexCandidate struct {
	Edge   int
	Vertex int
}

// Vertices returns the stencil in distance gradient order: vertex, then edge endpoints
func (c EdgeVertexCandidate) Vertices(edges [][2]int) [4]int {
	e := edges[c.Edge]
	return [4]int{c.Vertex, e[0], e[1], -1}
}

// EdgeEdgeCandidate pairs two edges, EdgeA < EdgeB
type EdgeEdgeCandidate struct {
	EdgeA int
	EdgeB int
}

// Vertices returns the stencil in distance gradient order: edge A endpoints, then edge B endpoints
func (c EdgeEdgeCandidate) Vertices(edges [][2]int) [4]int {
	ea, eb := edges[c.EdgeA], edges[c.EdgeB]
	return [4]int{ea[0], ea[1], eb[0], eb[1]}
}

// FaceVertexCandidate pairs a triangle with a vertex (3D)
type FaceVertexCandidate struct {
	Face   int
	Vertex int
}

// Vertices returns the stencil in distance gradient order: vertex, then face corners
func (c FaceVertexCandidate) Vertices(faces [][3]int) [4]int {
	f := faces[c.Face]
	return [4]int{c.Vertex, f[0], f[1], f[2]}
}

// EdgeFaceCandidate pairs an edge with a triangle, used by continuous collision checks
type EdgeFaceCandidate struct {
	Edge int
	Face int
}

// Candidates stores the accepted pairs of one detection, grouped by primitive combination.
// No group holds the same pair twice.
type Candidates struct {
	EV []EdgeVertexCandidate
	EE []EdgeEdgeCandidate
	FV []FaceVertexCandidate
	EF []EdgeFaceCandidate
}

// Clear empties every group, keeping the allocated memory
func (c *Candidates) Clear() {
	c.EV = c.EV[:0]
	c.EE = c.EE[:0]
	c.FV = c.FV[:0]
	c.EF = c.EF[:0]
}

// Len returns the total number of candidates
func (c *Candidates) Len() int {
	return len(c.EV) + len(c.EE) + len(c.FV) + len(c.EF)
}

// Empty reports whether no group holds a candidate
func (c *Candidates) Empty() bool {
	return c.Len() == 0
}

// Sort orders every group lexicographically, making two detections comparable
func (c *Candidates) Sort() {
	slices.SortFunc(c.EV, compareEV)
	slices.SortFunc(c.EE, compareEE)
	slices.SortFunc(c.FV, compareFV)
	slices.SortFunc(c.EF, compareEF)
}

func compareEV(a, b EdgeVertexCandidate) int {
	return cmp.Or(cmp.Compare(a.Edge, b.Edge), cmp.Compare(a.Vertex, b.Vertex))
}

func compareEE(a, b EdgeEdgeCandidate) int {
	return cmp.Or(cmp.Compare(a.EdgeA, b.EdgeA), cmp.Compare(a.EdgeB, b.EdgeB))
}

func compareFV(a, b FaceVertexCandidate) int {
	return cmp.Or(cmp.Compare(a.Face, b.Face), cmp.Compare(a.Vertex, b.Vertex))
}

func compareEF(a, b EdgeFaceCandidate) int {
	return cmp.Or(cmp.Compare(a.Edge, b.Edge), cmp.Compare(a.Face, b.Face))
}

// dedupe sorts the pairs and drops repeated ones
func dedupe[T any](pairs []T, compare func(a, b T) int) []T {
	slices.SortFunc(pairs, compare)
	return slices.CompactFunc(pairs, func(a, b T) bool { return compare(a, b) == 0 })
}
