package proximity

import (
	"errors"
	"fmt"
	"io"

	"github.com/akmonengine/proximity/bounds"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BroadPhase finds the primitive pairs of a mesh whose inflated boxes overlap
// and that pass the adjacency filter.
//
// Usage is build-then-query: Build, BuildSwept and Clear must not run
// concurrently with a detection on the same instance.
type BroadPhase interface {
	// Build computes the boxes of the static configuration vertices
	Build(vertices []mgl64.Vec3, edges [][2]int, faces [][3]int, inflationRadius float64) error
	// BuildSwept computes boxes bounding the linear motion from verticesT0 to verticesT1
	BuildSwept(verticesT0, verticesT1 []mgl64.Vec3, edges [][2]int, faces [][3]int, inflationRadius float64) error
	// Clear drops every box
	Clear()
	// DetectCollisionCandidates fills candidates with edge-vertex pairs when dim is 2,
	// and with edge-edge and face-vertex pairs otherwise
	DetectCollisionCandidates(dim int, candidates *Candidates) error
	DetectEdgeVertexCandidates() ([]EdgeVertexCandidate, error)
	DetectEdgeEdgeCandidates() ([]EdgeEdgeCandidate, error)
	DetectFaceVertexCandidates() ([]FaceVertexCandidate, error)
	DetectEdgeFaceCandidates() ([]EdgeFaceCandidate, error)
	Method() Method
	// Close releases the backend resources (GPU device, pipeline).
	// Detections fail with ErrClosed afterwards. Closing twice is a no-op.
	Close() error
}

// pair is an overlapping (boxesA[i], boxesB[j]) couple reported by a strategy
type pair struct {
	i, j int
}

// strategy is the overlap search plugged into a broad phase
type strategy interface {
	// pairs returns every (i, j) such that a[i] overlaps b[j] and accept(i, j).
	// When self is true b is ignored and pairs are taken within a, with i < j.
	// accept is called concurrently. No overlapping pair may be missed, duplicates are allowed.
	pairs(a, b []bounds.AABB, self bool, accept func(i, j int) bool, workers int) ([]pair, error)
}

// closedStrategy replaces the strategy of a closed broad phase
type closedStrategy struct{}

func (closedStrategy) pairs([]bounds.AABB, []bounds.AABB, bool, func(i, j int) bool, int) ([]pair, error) {
	return nil, ErrClosed
}

type broadPhase struct {
	method   Method
	strategy strategy

	vertexBoxes []bounds.AABB
	edgeBoxes   []bounds.AABB
	faceBoxes   []bounds.AABB

	canVerticesCollide func(vi, vj int) bool
	workers            int
	logger             *zap.Logger
}

func (bp *broadPhase) Method() Method {
	return bp.method
}

func (bp *broadPhase) Build(vertices []mgl64.Vec3, edges [][2]int, faces [][3]int, inflationRadius float64) error {
	bp.Clear()
	if err := validateRadius(inflationRadius); err != nil {
		return err
	}
	if err := ValidateTopology(len(vertices), edges, faces); err != nil {
		return err
	}

	bp.vertexBoxes = bounds.VertexBoxes(vertices, inflationRadius, bp.workers)
	bp.buildPrimitiveBoxes(edges, faces)
	return nil
}

func (bp *broadPhase) BuildSwept(verticesT0, verticesT1 []mgl64.Vec3, edges [][2]int, faces [][3]int, inflationRadius float64) error {
	bp.Clear()
	if len(verticesT0) != len(verticesT1) {
		return fmt.Errorf("%w: %d != %d", ErrVertexCountMismatch, len(verticesT0), len(verticesT1))
	}
	if err := validateRadius(inflationRadius); err != nil {
		return err
	}
	if err := ValidateTopology(len(verticesT0), edges, faces); err != nil {
		return err
	}

	boxes, err := bounds.SweptVertexBoxes(verticesT0, verticesT1, inflationRadius, bp.workers)
	if err != nil {
		return err
	}
	bp.vertexBoxes = boxes
	bp.buildPrimitiveBoxes(edges, faces)
	return nil
}

func (bp *broadPhase) buildPrimitiveBoxes(edges [][2]int, faces [][3]int) {
	bp.edgeBoxes = bounds.EdgeBoxes(bp.vertexBoxes, edges, bp.workers)
	bp.faceBoxes = bounds.FaceBoxes(bp.vertexBoxes, faces, bp.workers)

	bp.logger.Debug("broad phase built",
		zap.Stringer("method", bp.method),
		zap.Int("vertices", len(bp.vertexBoxes)),
		zap.Int("edges", len(bp.edgeBoxes)),
		zap.Int("faces", len(bp.faceBoxes)),
	)
}

func (bp *broadPhase) Clear() {
	bp.vertexBoxes = nil
	bp.edgeBoxes = nil
	bp.faceBoxes = nil
}

func (bp *broadPhase) Close() error {
	bp.Clear()
	s := bp.strategy
	bp.strategy = closedStrategy{}

	if closer, ok := s.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("%s: close: %w", bp.method, err)
		}
	}
	return nil
}

func (bp *broadPhase) DetectCollisionCandidates(dim int, candidates *Candidates) error {
	if candidates == nil {
		return errors.New("detect collision candidates: nil candidates")
	}
	candidates.Clear()

	if dim == 2 {
		ev, err := bp.DetectEdgeVertexCandidates()
		if err != nil {
			return err
		}
		candidates.EV = append(candidates.EV, ev...)
		return nil
	}

	var (
		g  errgroup.Group
		ee []EdgeEdgeCandidate
		fv []FaceVertexCandidate
	)
	g.Go(func() error {
		var err error
		ee, err = bp.DetectEdgeEdgeCandidates()
		return err
	})
	g.Go(func() error {
		var err error
		fv, err = bp.DetectFaceVertexCandidates()
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	candidates.EE = append(candidates.EE, ee...)
	candidates.FV = append(candidates.FV, fv...)
	return nil
}

func (bp *broadPhase) DetectEdgeVertexCandidates() ([]EdgeVertexCandidate, error) {
	pairs, err := bp.strategy.pairs(bp.edgeBoxes, bp.vertexBoxes, false, bp.canEdgeVertexCollide, bp.workers)
	if err != nil {
		return nil, fmt.Errorf("edge-vertex candidates: %w", err)
	}

	candidates := make([]EdgeVertexCandidate, len(pairs))
	for k, p := range pairs {
		candidates[k] = EdgeVertexCandidate{Edge: p.i, Vertex: p.j}
	}
	candidates = dedupe(candidates, compareEV)

	bp.logDetection(EDGE_VERTEX, len(candidates))
	return candidates, nil
}

func (bp *broadPhase) DetectEdgeEdgeCandidates() ([]EdgeEdgeCandidate, error) {
	pairs, err := bp.strategy.pairs(bp.edgeBoxes, nil, true, bp.canEdgesCollide, bp.workers)
	if err != nil {
		return nil, fmt.Errorf("edge-edge candidates: %w", err)
	}

	candidates := make([]EdgeEdgeCandidate, len(pairs))
	for k, p := range pairs {
		candidates[k] = EdgeEdgeCandidate{EdgeA: min(p.i, p.j), EdgeB: max(p.i, p.j)}
	}
	candidates = dedupe(candidates, compareEE)

	bp.logDetection(EDGE_EDGE, len(candidates))
	return candidates, nil
}

func (bp *broadPhase) DetectFaceVertexCandidates() ([]FaceVertexCandidate, error) {
	pairs, err := bp.strategy.pairs(bp.faceBoxes, bp.vertexBoxes, false, bp.canFaceVertexCollide, bp.workers)
	if err != nil {
		return nil, fmt.Errorf("face-vertex candidates: %w", err)
	}

	candidates := make([]FaceVertexCandidate, len(pairs))
	for k, p := range pairs {
		candidates[k] = FaceVertexCandidate{Face: p.i, Vertex: p.j}
	}
	candidates = dedupe(candidates, compareFV)

	bp.logDetection(FACE_VERTEX, len(candidates))
	return candidates, nil
}

func (bp *broadPhase) DetectEdgeFaceCandidates() ([]EdgeFaceCandidate, error) {
	pairs, err := bp.strategy.pairs(bp.edgeBoxes, bp.faceBoxes, false, bp.canEdgeFaceCollide, bp.workers)
	if err != nil {
		return nil, fmt.Errorf("edge-face candidates: %w", err)
	}

	candidates := make([]EdgeFaceCandidate, len(pairs))
	for k, p := range pairs {
		candidates[k] = EdgeFaceCandidate{Edge: p.i, Face: p.j}
	}
	candidates = dedupe(candidates, compareEF)

	bp.logDetection(EDGE_FACE, len(candidates))
	return candidates, nil
}

func (bp *broadPhase) logDetection(kind CandidateKind, count int) {
	bp.logger.Debug("candidates detected",
		zap.Stringer("method", bp.method),
		zap.Stringer("kind", kind),
		zap.Int("count", count),
	)
}
