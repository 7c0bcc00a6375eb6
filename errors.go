package proximity

import "errors"

var (
	// ErrInvalidTopology reports an edge or face referencing a missing vertex, or repeating one
	ErrInvalidTopology = errors.New("invalid mesh topology")
	// ErrInvalidRadius reports a negative or NaN inflation radius
	ErrInvalidRadius = errors.New("invalid inflation radius")
	// ErrVertexCountMismatch reports swept positions of different lengths
	ErrVertexCountMismatch = errors.New("vertex count mismatch between t0 and t1")
	// ErrUnknownMethod reports a broad-phase method that does not exist
	ErrUnknownMethod = errors.New("unknown broad-phase method")
	// ErrBackendUnavailable reports a broad-phase method whose backend is not built in or cannot start
	ErrBackendUnavailable = errors.New("broad-phase backend unavailable")
	// ErrClosed reports a detection on a broad phase after Close
	ErrClosed = errors.New("broad phase closed")
)
