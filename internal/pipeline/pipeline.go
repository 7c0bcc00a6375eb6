// Package pipeline holds the worker fan-out helpers shared by the box builder,
// the broad-phase strategies and the narrow phase.
package pipeline

import "sync"

// DefaultWorkers is used whenever a caller asks for less than one worker
const DefaultWorkers = 1

// Workers clamps a requested worker count to a usable value
func Workers(n int) int {
	return max(DefaultWorkers, n)
}

// Range calls fn(i) for every i in [0, n), split in contiguous chunks across workersCount goroutines.
// fn must only write to storage owned by index i.
func Range(workersCount int, n int, fn func(i int)) {
	workersCount = Workers(workersCount)
	if n == 0 {
		return
	}
	if workersCount == 1 || n == 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := (n + workersCount - 1) / workersCount

	for workerID := 0; workerID < workersCount; workerID++ {
		start, end := workerID*chunkSize, min((workerID+1)*chunkSize, n)
		if start >= end {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// Collect runs fn over [0, n) in contiguous chunks, each worker appending into its own buffer.
// Buffers are concatenated once every worker is done, so producers never share a slice.
func Collect[T any](workersCount int, n int, fn func(i int, out []T) []T) []T {
	return CollectState(workersCount, n, func() struct{} { return struct{}{} },
		func(i int, _ struct{}, out []T) []T {
			return fn(i, out)
		})
}

// CollectState is Collect with a scratch state created once per worker
func CollectState[T, S any](workersCount int, n int, newState func() S, fn func(i int, state S, out []T) []T) []T {
	workersCount = Workers(workersCount)
	if n == 0 {
		return nil
	}
	if workersCount == 1 || n == 1 {
		var out []T
		state := newState()
		for i := 0; i < n; i++ {
			out = fn(i, state, out)
		}
		return out
	}

	var wg sync.WaitGroup
	chunkSize := (n + workersCount - 1) / workersCount
	buffers := make([][]T, workersCount)

	for workerID := 0; workerID < workersCount; workerID++ {
		start, end := workerID*chunkSize, min((workerID+1)*chunkSize, n)
		if start >= end {
			break
		}
		wg.Add(1)
		go func(workerID, start, end int) {
			defer wg.Done()
			var local []T
			state := newState()
			for i := start; i < end; i++ {
				local = fn(i, state, local)
			}
			buffers[workerID] = local
		}(workerID, start, end)
	}
	wg.Wait()

	total := 0
	for _, b := range buffers {
		total += len(b)
	}
	out := make([]T, 0, total)
	for _, b := range buffers {
		out = append(out, b...)
	}
	return out
}
