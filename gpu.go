//go:build gpu

package proximity

import (
	"fmt"
	"math"
	"sync"

	"github.com/akmonengine/proximity/bounds"
	"github.com/akmonengine/proximity/internal/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

const gpuCompiled = true

const gpuWorkgroupSize = 256

// overlapShader tests every (a, b) box pair, each thread owning one a box.
// Boxes are widened to f32 outward on upload, so the reported set is a superset of the f64 overlaps.
const overlapShader = `
struct Box {
    lo: vec4<f32>,
    hi: vec4<f32>,
}

struct Pair {
    a: u32,
    b: u32,
}

struct Params {
    countA: u32,
    countB: u32,
    selfPairs: u32,
    capacity: u32,
}

@group(0) @binding(0) var<storage, read> boxesA: array<Box>;
@group(0) @binding(1) var<storage, read> boxesB: array<Box>;
@group(0) @binding(2) var<storage, read_write> pairs: array<Pair>;
@group(0) @binding(3) var<storage, read_write> pairCount: atomic<u32>;
@group(0) @binding(4) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let i = global_id.x;
    if (i >= params.countA) {
        return;
    }

    let boxA = boxesA[i];
    var start = 0u;
    if (params.selfPairs != 0u) {
        start = i + 1u;
    }

    for (var j = start; j < params.countB; j = j + 1u) {
        let boxB = boxesB[j];
        if (all(boxA.lo.xyz <= boxB.hi.xyz) && all(boxB.lo.xyz <= boxA.hi.xyz)) {
            let idx = atomicAdd(&pairCount, 1u);
            if (idx < params.capacity) {
                pairs[idx] = Pair(i, j);
            }
        }
    }
}
`

// gpuBox matches the Box layout of the shader
type gpuBox struct {
	Lo [4]float32
	Hi [4]float32
}

// gpuBuffer is a device buffer with its byte size
type gpuBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
}

type gpuPair struct {
	A, B uint32
}

type gpuParams struct {
	CountA, CountB, Self, Capacity uint32
}

// gpuStrategy dispatches the overlap shader, then applies the exact overlap test and the filter on the CPU.
// Queries are serialized on the device queue.
type gpuStrategy struct {
	mu sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	layout   *wgpu.BindGroupLayout
	shader   *wgpu.ShaderModule
	pipeline *wgpu.ComputePipeline
}

func newGPUStrategy() (*gpuStrategy, error) {
	instance := wgpu.CreateInstance(nil)

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("%w: no GPU adapter: %v", ErrBackendUnavailable, err)
	}

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: no GPU device: %v", ErrBackendUnavailable, err)
	}

	gs := &gpuStrategy{
		instance: instance,
		adapter:  adapter,
		device:   device,
		queue:    device.GetQueue(),
	}
	if err := gs.createPipeline(); err != nil {
		gs.Close()
		return nil, err
	}
	return gs, nil
}

func (gs *gpuStrategy) createPipeline() error {
	storage := func(binding uint32, kind wgpu.BufferBindingType) wgpu.BindGroupLayoutEntry {
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageCompute,
			Buffer:     wgpu.BufferBindingLayout{Type: kind},
		}
	}

	layout, err := gs.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "overlap_layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			storage(0, wgpu.BufferBindingTypeReadOnlyStorage),
			storage(1, wgpu.BufferBindingTypeReadOnlyStorage),
			storage(2, wgpu.BufferBindingTypeStorage),
			storage(3, wgpu.BufferBindingTypeStorage),
			storage(4, wgpu.BufferBindingTypeUniform),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create bind group layout: %w", err)
	}
	gs.layout = layout

	pipelineLayout, err := gs.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "overlap_pipeline_layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		return fmt.Errorf("failed to create pipeline layout: %w", err)
	}
	defer pipelineLayout.Release()

	shader, err := gs.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "overlap_shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: overlapShader},
	})
	if err != nil {
		return fmt.Errorf("failed to create shader module: %w", err)
	}
	gs.shader = shader

	computePipeline, err := gs.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  "overlap_pipeline",
		Layout: pipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     shader,
			EntryPoint: "main",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create compute pipeline: %w", err)
	}
	gs.pipeline = computePipeline
	return nil
}

func (gs *gpuStrategy) pairs(a, b []bounds.AABB, self bool, accept func(i, j int) bool, workers int) ([]pair, error) {
	if self {
		b = a
	}
	if len(a) == 0 || len(b) == 0 {
		return nil, nil
	}

	raw, err := gs.overlaps(toGPUBoxes(a), toGPUBoxes(b), self)
	if err != nil {
		return nil, err
	}

	return pipeline.Collect(workers, len(raw), func(k int, out []pair) []pair {
		i, j := int(raw[k].A), int(raw[k].B)
		if a[i].Overlaps(b[j]) && accept(i, j) {
			out = append(out, pair{i, j})
		}
		return out
	}), nil
}

// overlaps dispatches the shader until the pair buffer is large enough to hold every overlap
func (gs *gpuStrategy) overlaps(a, b []gpuBox, self bool) ([]gpuPair, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if gs.device == nil {
		return nil, ErrClosed
	}

	capacity := uint32(max(len(a), len(b)) * 8)
	for {
		found, count, err := gs.dispatch(a, b, self, capacity)
		if err != nil {
			return nil, err
		}
		if count <= capacity {
			return found, nil
		}
		capacity = count
	}
}

func (gs *gpuStrategy) dispatch(a, b []gpuBox, self bool, capacity uint32) ([]gpuPair, uint32, error) {
	params := gpuParams{CountA: uint32(len(a)), CountB: uint32(len(b)), Capacity: capacity}
	if self {
		params.Self = 1
	}

	buffers := make([]gpuBuffer, 0, 5)
	defer func() {
		for _, buf := range buffers {
			buf.buffer.Release()
		}
	}()
	create := func(label string, contents []byte, usage wgpu.BufferUsage) (gpuBuffer, error) {
		buf, err := gs.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
			Label:    label,
			Contents: contents,
			Usage:    usage,
		})
		if err != nil {
			return gpuBuffer{}, fmt.Errorf("failed to create buffer %s: %w", label, err)
		}
		created := gpuBuffer{buffer: buf, size: uint64(len(contents))}
		buffers = append(buffers, created)
		return created, nil
	}

	boxesA, err := create("boxes_a", wgpu.ToBytes(a), wgpu.BufferUsageStorage)
	if err != nil {
		return nil, 0, err
	}
	boxesB, err := create("boxes_b", wgpu.ToBytes(b), wgpu.BufferUsageStorage)
	if err != nil {
		return nil, 0, err
	}
	pairs, err := create("pairs", make([]byte, uint64(max(capacity, 1))*8), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	if err != nil {
		return nil, 0, err
	}
	pairCount, err := create("pair_count", wgpu.ToBytes([]uint32{0}), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	if err != nil {
		return nil, 0, err
	}
	uniform, err := create("params", wgpu.ToBytes([]gpuParams{params}), wgpu.BufferUsageUniform)
	if err != nil {
		return nil, 0, err
	}

	bindGroup, err := gs.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "overlap_bindgroup",
		Layout: gs.layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: boxesA.buffer, Size: boxesA.size},
			{Binding: 1, Buffer: boxesB.buffer, Size: boxesB.size},
			{Binding: 2, Buffer: pairs.buffer, Size: pairs.size},
			{Binding: 3, Buffer: pairCount.buffer, Size: pairCount.size},
			{Binding: 4, Buffer: uniform.buffer, Size: uniform.size},
		},
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create bind group: %w", err)
	}
	defer bindGroup.Release()

	encoder, err := gs.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create command encoder: %w", err)
	}
	defer encoder.Release()
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(gs.pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups((params.CountA+gpuWorkgroupSize-1)/gpuWorkgroupSize, 1, 1)
	pass.End()
	pass.Release()

	commands, err := encoder.Finish(nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to finish command encoder: %w", err)
	}
	gs.queue.Submit(commands)
	commands.Release()

	countData, err := gs.read(pairCount.buffer, 4)
	if err != nil {
		return nil, 0, err
	}
	count := wgpu.FromBytes[uint32](countData)[0]
	if count == 0 || count > capacity {
		return nil, count, nil
	}

	pairData, err := gs.read(pairs.buffer, uint64(count)*8)
	if err != nil {
		return nil, 0, err
	}
	found := make([]gpuPair, count)
	copy(found, wgpu.FromBytes[gpuPair](pairData))
	return found, count, nil
}

// read copies the first size bytes of buf back to the CPU through a staging buffer
func (gs *gpuStrategy) read(buf *wgpu.Buffer, size uint64) ([]byte, error) {
	staging, err := gs.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "staging_read",
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create staging buffer: %w", err)
	}
	defer staging.Release()

	encoder, err := gs.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create command encoder: %w", err)
	}
	defer encoder.Release()
	encoder.CopyBufferToBuffer(buf, 0, staging, 0, size)
	commands, err := encoder.Finish(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to finish encoder: %w", err)
	}
	gs.queue.Submit(commands)
	commands.Release()

	done := make(chan error, 1)
	err = staging.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			done <- fmt.Errorf("failed to map buffer: %v", status)
		} else {
			done <- nil
		}
	})
	if err != nil {
		return nil, err
	}

	gs.device.Poll(true, nil)
	if err := <-done; err != nil {
		return nil, err
	}

	mapped := staging.GetMappedRange(0, uint(size))
	result := make([]byte, len(mapped))
	copy(result, mapped)
	staging.Unmap()

	return result, nil
}

// Close frees the device resources, later queries fail with ErrClosed
func (gs *gpuStrategy) Close() error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.pipeline != nil {
		gs.pipeline.Release()
		gs.pipeline = nil
	}
	if gs.shader != nil {
		gs.shader.Release()
		gs.shader = nil
	}
	if gs.layout != nil {
		gs.layout.Release()
		gs.layout = nil
	}
	if gs.device == nil {
		return nil
	}
	gs.queue.Release()
	gs.device.Release()
	gs.adapter.Release()
	gs.instance.Release()
	gs.queue, gs.device, gs.adapter, gs.instance = nil, nil, nil, nil
	return nil
}

func toGPUBoxes(boxes []bounds.AABB) []gpuBox {
	out := make([]gpuBox, len(boxes))
	for i, box := range boxes {
		for axis := range 3 {
			out[i].Lo[axis] = roundDown32(box.Min[axis])
			out[i].Hi[axis] = roundUp32(box.Max[axis])
		}
	}
	return out
}

func roundDown32(x float64) float32 {
	f := float32(x)
	if float64(f) > x {
		f = math.Nextafter32(f, float32(math.Inf(-1)))
	}
	return f
}

func roundUp32(x float64) float32 {
	f := float32(x)
	if float64(f) < x {
		f = math.Nextafter32(f, float32(math.Inf(1)))
	}
	return f
}
