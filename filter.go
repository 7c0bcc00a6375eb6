package proximity

// The predicates below run once per overlapping box pair, concurrently, and only read the built boxes.
// A pair sharing a vertex is always rejected; otherwise a single vertex pair allowed by the
// policy is enough to accept the whole primitive pair.

func (bp *broadPhase) canEdgeVertexCollide(ei, vi int) bool {
	e0i, e1i := bp.edgeBoxes[ei].VertexIDs[0], bp.edgeBoxes[ei].VertexIDs[1]

	return vi != e0i && vi != e1i &&
		(bp.canVerticesCollide(vi, e0i) || bp.canVerticesCollide(vi, e1i))
}

func (bp *broadPhase) canEdgesCollide(eai, ebi int) bool {
	ea0i, ea1i := bp.edgeBoxes[eai].VertexIDs[0], bp.edgeBoxes[eai].VertexIDs[1]
	eb0i, eb1i := bp.edgeBoxes[ebi].VertexIDs[0], bp.edgeBoxes[ebi].VertexIDs[1]

	shareEndpoint := ea0i == eb0i || ea0i == eb1i || ea1i == eb0i || ea1i == eb1i

	return !shareEndpoint &&
		(bp.canVerticesCollide(ea0i, eb0i) || bp.canVerticesCollide(ea0i, eb1i) ||
			bp.canVerticesCollide(ea1i, eb0i) || bp.canVerticesCollide(ea1i, eb1i))
}

func (bp *broadPhase) canFaceVertexCollide(fi, vi int) bool {
	f := bp.faceBoxes[fi].VertexIDs

	return vi != f[0] && vi != f[1] && vi != f[2] &&
		(bp.canVerticesCollide(vi, f[0]) || bp.canVerticesCollide(vi, f[1]) || bp.canVerticesCollide(vi, f[2]))
}

func (bp *broadPhase) canEdgeFaceCollide(ei, fi int) bool {
	e0i, e1i := bp.edgeBoxes[ei].VertexIDs[0], bp.edgeBoxes[ei].VertexIDs[1]
	f := bp.faceBoxes[fi].VertexIDs

	shareEndpoint := e0i == f[0] || e0i == f[1] || e0i == f[2] ||
		e1i == f[0] || e1i == f[1] || e1i == f[2]

	if shareEndpoint {
		return false
	}
	for _, fvi := range f {
		if bp.canVerticesCollide(e0i, fvi) || bp.canVerticesCollide(e1i, fvi) {
			return true
		}
	}
	return false
}
