//go:build !gpu

package proximity

const gpuCompiled = false

func newGPUStrategy() (strategy, error) {
	return nil, ErrBackendUnavailable
}
