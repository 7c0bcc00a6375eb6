package proximity

import (
	"errors"

	"github.com/akmonengine/proximity/internal/pipeline"
	"github.com/go-gl/mathgl/mgl64"
)

// Detector runs the full proximity query of a mesh, one configuration per Step
type Detector struct {
	// Mesh topology, shared by every step
	Edges [][2]int
	Faces [][3]int
	// Dim is 2 for planar meshes (edge-vertex contacts only), 3 otherwise
	Dim int
	// InflationRadius is added around every vertex box.
	// Step raises it to ActivationDistance/2 so no active pair is missed.
	InflationRadius float64
	// ActivationDistance is the (unsquared) distance below which a candidate becomes a contact
	ActivationDistance float64
	Workers            int
	BroadPhase         BroadPhase

	Events Events

	candidates Candidates
}

// Step builds the broad phase on vertices, measures the candidates and
// emits the contact events. It returns the active contacts, sorted.
func (d *Detector) Step(vertices []mgl64.Vec3) ([]Contact, error) {
	if d.BroadPhase == nil {
		return nil, errors.New("detector: nil broad phase")
	}
	d.Workers = pipeline.Workers(d.Workers)

	// Phase 1: boxes
	radius := max(d.InflationRadius, d.ActivationDistance/2)
	if err := d.BroadPhase.Build(vertices, d.Edges, d.Faces, radius); err != nil {
		return nil, err
	}

	// Phase 2.0: candidate pairs - broad phase
	if err := d.BroadPhase.DetectCollisionCandidates(d.dim(), &d.candidates); err != nil {
		return nil, err
	}

	// Phase 2.1: distances - narrow phase
	contacts := NarrowPhase(vertices, d.Edges, d.Faces, &d.candidates, d.ActivationDistance, d.Workers)

	d.Events.recordContacts(contacts)
	d.Events.flush(contacts)

	return contacts, nil
}

// StepSwept returns the candidates of the motion from verticesT0 to verticesT1:
// edge-vertex pairs in 2D, edge-edge, face-vertex and edge-face pairs in 3D.
// It does not emit events.
func (d *Detector) StepSwept(verticesT0, verticesT1 []mgl64.Vec3) (*Candidates, error) {
	if d.BroadPhase == nil {
		return nil, errors.New("detector: nil broad phase")
	}
	d.Workers = pipeline.Workers(d.Workers)

	radius := max(d.InflationRadius, d.ActivationDistance/2)
	if err := d.BroadPhase.BuildSwept(verticesT0, verticesT1, d.Edges, d.Faces, radius); err != nil {
		return nil, err
	}

	candidates := &Candidates{}
	if err := d.BroadPhase.DetectCollisionCandidates(d.dim(), candidates); err != nil {
		return nil, err
	}
	if d.dim() == 3 {
		ef, err := d.BroadPhase.DetectEdgeFaceCandidates()
		if err != nil {
			return nil, err
		}
		candidates.EF = ef
	}

	return candidates, nil
}

// Candidates returns the candidates of the last Step, valid until the next one
func (d *Detector) Candidates() *Candidates {
	return &d.candidates
}

func (d *Detector) dim() int {
	if d.Dim == 2 {
		return 2
	}
	return 3
}
