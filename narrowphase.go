package proximity

import (
	"cmp"
	"math"
	"slices"
	"sync"

	"github.com/akmonengine/proximity/distance"
	"github.com/akmonengine/proximity/internal/pipeline"
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// Contact is a candidate whose primitives are closer than the activation distance
type Contact struct {
	Kind CandidateKind
	// A and B are the candidate ids: (edge, vertex) for EV, (edgeA, edgeB) for EE, (face, vertex) for FV
	A, B int
	// Distance is the squared distance between the two primitives
	Distance float64
	// Stencil lists the vertices in the order of the gradient layout, -1 for unused slots
	Stencil [4]int
}

// Points returns the positions of the stencil vertices
func (c Contact) Points(vertices []mgl64.Vec3) []mgl64.Vec3 {
	points := make([]mgl64.Vec3, 0, 4)
	for _, vi := range c.Stencil {
		if vi < 0 {
			break
		}
		points = append(points, vertices[vi])
	}
	return points
}

// Gradient returns the squared distance gradient over the stencil vertices
func (c Contact) Gradient(vertices []mgl64.Vec3) *mat.VecDense {
	x := c.Points(vertices)
	switch c.Kind {
	case EDGE_VERTEX:
		return distance.PointEdgeDistanceGradient(x[0], x[1], x[2], distance.PE_AUTO)
	case EDGE_EDGE:
		return distance.EdgeEdgeDistanceGradient(x[0], x[1], x[2], x[3], distance.EE_AUTO)
	default:
		return distance.PointTriangleDistanceGradient(x[0], x[1], x[2], x[3], distance.PT_AUTO)
	}
}

// Hessian returns the squared distance Hessian over the stencil vertices
func (c Contact) Hessian(vertices []mgl64.Vec3) *mat.SymDense {
	x := c.Points(vertices)
	switch c.Kind {
	case EDGE_VERTEX:
		return distance.PointEdgeDistanceHessian(x[0], x[1], x[2], distance.PE_AUTO)
	case EDGE_EDGE:
		return distance.EdgeEdgeDistanceHessian(x[0], x[1], x[2], x[3], distance.EE_AUTO)
	default:
		return distance.PointTriangleDistanceHessian(x[0], x[1], x[2], x[3], distance.PT_AUTO)
	}
}

// stencilDistance returns the squared distance of a stencil of the given kind
func stencilDistance(kind CandidateKind, vertices []mgl64.Vec3, s [4]int) float64 {
	switch kind {
	case EDGE_VERTEX:
		return distance.PointEdgeDistance(vertices[s[0]], vertices[s[1]], vertices[s[2]], distance.PE_AUTO)
	case EDGE_EDGE:
		return distance.EdgeEdgeDistance(vertices[s[0]], vertices[s[1]], vertices[s[2]], vertices[s[3]], distance.EE_AUTO)
	default:
		return distance.PointTriangleDistance(vertices[s[0]], vertices[s[1]], vertices[s[2]], vertices[s[3]], distance.PT_AUTO)
	}
}

// NarrowPhase measures every EV, EE and FV candidate and keeps the contacts
// whose squared distance is below activationDistance². EF candidates are left to continuous checks.
// Contacts are sorted by kind, then ids.
func NarrowPhase(vertices []mgl64.Vec3, edges [][2]int, faces [][3]int, candidates *Candidates, activationDistance float64, workersCount int) []Contact {
	if candidates == nil || candidates.Empty() {
		return nil
	}
	workersCount = pipeline.Workers(workersCount)
	threshold := max(0, activationDistance)
	threshold *= threshold

	measured := measure(vertices, dispatch(candidates, edges, faces, workersCount), workersCount)

	contacts := make([]Contact, 0)
	for c := range measured {
		if c.Distance < threshold {
			contacts = append(contacts, c)
		}
	}
	sortContacts(contacts)
	return contacts
}

// MinimumDistance returns the smallest squared distance over the EV, EE and FV candidates,
// +Inf when there is none
func MinimumDistance(vertices []mgl64.Vec3, edges [][2]int, faces [][3]int, candidates *Candidates, workersCount int) float64 {
	best := math.Inf(1)
	if candidates == nil || candidates.Empty() {
		return best
	}
	workersCount = pipeline.Workers(workersCount)

	for c := range measure(vertices, dispatch(candidates, edges, faces, workersCount), workersCount) {
		best = min(best, c.Distance)
	}
	return best
}

// dispatch streams the candidates as unmeasured contacts with their stencils resolved
func dispatch(candidates *Candidates, edges [][2]int, faces [][3]int, workersCount int) <-chan Contact {
	ch := make(chan Contact, workersCount)

	go func() {
		defer close(ch)

		for _, c := range candidates.EV {
			ch <- Contact{Kind: EDGE_VERTEX, A: c.Edge, B: c.Vertex, Stencil: c.Vertices(edges)}
		}
		for _, c := range candidates.EE {
			ch <- Contact{Kind: EDGE_EDGE, A: c.EdgeA, B: c.EdgeB, Stencil: c.Vertices(edges)}
		}
		for _, c := range candidates.FV {
			ch <- Contact{Kind: FACE_VERTEX, A: c.Face, B: c.Vertex, Stencil: c.Vertices(faces)}
		}
	}()

	return ch
}

// measure fills the distance of every contact read from in, across workersCount goroutines
func measure(vertices []mgl64.Vec3, in <-chan Contact, workersCount int) <-chan Contact {
	ch := make(chan Contact, workersCount)

	go func() {
		var wg sync.WaitGroup
		defer close(ch)

		for range workersCount {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for c := range in {
					c.Distance = stencilDistance(c.Kind, vertices, c.Stencil)
					ch <- c
				}
			}()
		}
		wg.Wait()
	}()

	return ch
}

func sortContacts(contacts []Contact) {
	slices.SortFunc(contacts, compareContact)
}

func compareContact(a, b Contact) int {
	return cmp.Or(cmp.Compare(a.Kind, b.Kind), cmp.Compare(a.A, b.A), cmp.Compare(a.B, b.B))
}
