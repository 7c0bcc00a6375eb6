package proximity

import (
	"fmt"
	"strings"
)

// Method identifies a broad-phase strategy
type Method int

const (
	// MethodBruteForce tests every pair, it is the reference every other method must agree with
	MethodBruteForce Method = iota
	// MethodSpatialHash buckets boxes in a hashed uniform grid
	MethodSpatialHash
	// MethodHashGrid sorts (cell, box) items of a dense grid sized from the median box extent
	MethodHashGrid
	// MethodSweepAndPrune sorts boxes along one axis and sweeps over the overlapping intervals
	MethodSweepAndPrune
	// MethodRTree queries a bulk-loaded R-tree
	MethodRTree
	// MethodGPU runs the overlap tests in a compute shader, only with the gpu build tag
	MethodGPU
)

var methodNames = map[Method]string{
	MethodBruteForce:    "brute_force",
	MethodSpatialHash:   "spatial_hash",
	MethodHashGrid:      "hash_grid",
	MethodSweepAndPrune: "sweep_and_prune",
	MethodRTree:         "rtree",
	MethodGPU:           "gpu",
}

// Methods returns every known method, available or not
func Methods() []Method {
	return []Method{MethodBruteForce, MethodSpatialHash, MethodHashGrid, MethodSweepAndPrune, MethodRTree, MethodGPU}
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// Available reports whether the method's backend is compiled into this binary
func (m Method) Available() bool {
	if m == MethodGPU {
		return gpuCompiled
	}
	_, ok := methodNames[m]
	return ok
}

// ParseMethod returns the method named s, as printed by Method.String
func ParseMethod(s string) (Method, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range methodNames {
		if n == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// New returns the broad phase implementing method.
// A method whose backend is not built in fails with ErrBackendUnavailable, it is never replaced by another one.
func New(method Method, opts ...Option) (BroadPhase, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var s strategy
	switch method {
	case MethodBruteForce:
		s = bruteForce{}
	case MethodSpatialHash:
		s = spatialHash{cellSize: o.cellSize, bucketCount: o.bucketCount}
	case MethodHashGrid:
		s = hashGrid{cellSize: o.cellSize}
	case MethodSweepAndPrune:
		s = sweepAndPrune{}
	case MethodRTree:
		s = rtreeIndex{minChildren: 25, maxChildren: 50}
	case MethodGPU:
		gs, err := newGPUStrategy()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", method, err)
		}
		s = gs
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}

	return &broadPhase{
		method:             method,
		strategy:           s,
		canVerticesCollide: o.canVerticesCollide,
		workers:            o.workers,
		logger:             o.logger,
	}, nil
}
