package main

import (
	"fmt"
	"io"
	"math"

	"github.com/akmonengine/proximity"
	"github.com/akmonengine/proximity/internal/config"
	"github.com/akmonengine/proximity/internal/meshgen"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// scene is two copies of one mesh, the second approaching the first along x while spinning around z
type scene struct {
	mesh   *meshgen.Mesh
	merged *meshgen.Mesh
	groups []int
	offset float64
	speed  float64
	spin   float64
	angle  float64
}

func newScene(cfg *config.Config) (*scene, error) {
	var (
		mesh *meshgen.Mesh
		err  error
	)
	switch {
	case cfg.Contact.Dim == 2:
		mesh = meshgen.Circle(cfg.Scene.Size/2, 4*cfg.Scene.Resolution)
	case cfg.Scene.Shape == "box":
		mesh, err = meshgen.Box(cfg.Scene.Size, cfg.Scene.Resolution)
	default:
		mesh, err = meshgen.Sphere(cfg.Scene.Size/2, cfg.Scene.Resolution)
	}
	if err != nil {
		return nil, err
	}

	merged, groups := meshgen.Merge(mesh, mesh)
	return &scene{
		mesh:   mesh,
		merged: merged,
		groups: groups,
		offset: cfg.Scene.Size + cfg.Scene.Separation,
		speed:  cfg.Scene.Speed,
		spin:   mgl64.DegToRad(cfg.Scene.Spin),
	}, nil
}

// positions returns the merged vertices for the current offset and angle
func (s *scene) positions() []mgl64.Vec3 {
	a := s.mesh.Transformed(mgl64.QuatIdent(), mgl64.Vec3{})
	b := s.mesh.Transformed(mgl64.QuatRotate(s.angle, mgl64.Vec3{0, 0, 1}), mgl64.Vec3{s.offset, 0, 0})
	return append(a, b...)
}

func (s *scene) advance() {
	s.offset -= s.speed
	s.angle += s.spin
}

func runScene(out io.Writer, cfg *config.Config, log *zap.Logger) error {
	method, err := proximity.ParseMethod(cfg.BroadPhase.Method)
	if err != nil {
		return err
	}

	s, err := newScene(cfg)
	if err != nil {
		return err
	}
	log.Info("scene ready",
		zap.String("shape", cfg.Scene.Shape),
		zap.Int("vertices", len(s.merged.Vertices)),
		zap.Int("edges", len(s.merged.Edges)),
		zap.Int("faces", len(s.merged.Faces)),
	)

	bp, err := proximity.New(method,
		proximity.WithWorkers(cfg.BroadPhase.Workers),
		proximity.WithVertexPolicy(proximity.GroupPolicy(s.groups)),
		proximity.WithCellSize(cfg.BroadPhase.CellSize),
		proximity.WithBucketCount(cfg.BroadPhase.BucketCount),
		proximity.WithLogger(log),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := bp.Close(); err != nil {
			log.Warn("failed to close broad phase", zap.Error(err))
		}
	}()

	detector := &proximity.Detector{
		Edges:              s.merged.Edges,
		Faces:              s.merged.Faces,
		Dim:                cfg.Contact.Dim,
		InflationRadius:    cfg.BroadPhase.InflationRadius,
		ActivationDistance: cfg.Contact.ActivationDistance,
		Workers:            cfg.BroadPhase.Workers,
		BroadPhase:         bp,
		Events:             proximity.NewEvents(),
	}

	var entered, exited int
	detector.Events.Subscribe(proximity.CONTACT_ENTER, func(event proximity.Event) {
		entered++
		c := event.(proximity.ContactEnterEvent).Contact
		log.Debug("contact enter", zap.Stringer("kind", c.Kind), zap.Int("a", c.A), zap.Int("b", c.B))
	})
	detector.Events.Subscribe(proximity.CONTACT_EXIT, func(event proximity.Event) {
		exited++
	})

	fmt.Fprintf(out, "%5s %10s %10s %8s %8s %8s %12s\n", "step", "offset", "candidates", "swept", "contacts", "entered", "min distance")

	previous := s.positions()
	for step := 0; step < cfg.Scene.Steps; step++ {
		current := s.positions()

		swept, err := detector.StepSwept(previous, current)
		if err != nil {
			return fmt.Errorf("step %d: %w", step, err)
		}

		entered, exited = 0, 0
		contacts, err := detector.Step(current)
		if err != nil {
			return fmt.Errorf("step %d: %w", step, err)
		}

		candidates := detector.Candidates()
		minDistance := math.Sqrt(proximity.MinimumDistance(current, s.merged.Edges, s.merged.Faces, candidates, cfg.BroadPhase.Workers))

		fmt.Fprintf(out, "%5d %10.4f %10d %8d %8d %8d %12.6f\n",
			step, s.offset, candidates.Len(), swept.Len(), len(contacts), entered, minDistance)
		log.Debug("step done",
			zap.Int("step", step),
			zap.Int("candidates", candidates.Len()),
			zap.Int("contacts", len(contacts)),
			zap.Int("exited", exited),
		)

		previous = current
		s.advance()
	}

	return nil
}
