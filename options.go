package proximity

import (
	"github.com/akmonengine/proximity/internal/pipeline"
	"go.uber.org/zap"
)

// Option configures a broad phase created by New
type Option func(*options)

type options struct {
	workers            int
	canVerticesCollide func(vi, vj int) bool
	cellSize           float64
	bucketCount        int
	logger             *zap.Logger
}

func defaultOptions() options {
	return options{
		workers:            pipeline.DefaultWorkers,
		canVerticesCollide: func(vi, vj int) bool { return true },
		bucketCount:        4096,
		logger:             zap.NewNop(),
	}
}

// WithWorkers sets the number of goroutines used to build boxes and find pairs
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = pipeline.Workers(n)
	}
}

// WithVertexPolicy sets the predicate telling whether two vertices may collide.
// A primitive pair is accepted when at least one of its vertex pairs may collide.
// The predicate is called concurrently and must not mutate shared state.
func WithVertexPolicy(canCollide func(vi, vj int) bool) Option {
	return func(o *options) {
		if canCollide != nil {
			o.canVerticesCollide = canCollide
		}
	}
}

// WithCellSize fixes the cell size of the grid methods, 0 lets them derive it from the boxes
func WithCellSize(h float64) Option {
	return func(o *options) {
		o.cellSize = max(0, h)
	}
}

// WithBucketCount sets the bucket table size of the spatial hash, rounded up to a power of two
func WithBucketCount(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.bucketCount = n
		}
	}
}

// WithLogger sets the logger receiving build and detection statistics
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
