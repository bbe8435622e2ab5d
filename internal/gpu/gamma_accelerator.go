//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gogpu/gamma"
	"github.com/gogpu/gamma/internal/color"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

const (
	// workgroupSize matches @workgroup_size(8, 8) in gamma.wgsl.
	workgroupSize = 8

	// maxDispatch is the WebGPU default limit on workgroups per dimension.
	maxDispatch = 65535

	// maxStorageBytes is the WebGPU default maxStorageBufferBindingSize.
	maxStorageBytes = 128 << 20

	paramsSize = 16
	curveSize  = 256 * 4

	fenceTimeout = 5 * time.Second
)

// GammaAccelerator corrects pixel buffers with a wgpu/hal compute shader.
// It implements the gamma.Accelerator interface.
//
// Every ApplyGamma call is one upload, one compute pass and one readback,
// serialized by an internal mutex.
type GammaAccelerator struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	gpuReady       bool
	externalDevice bool // true when using shared device (don't destroy on Close)
}

var _ gamma.Accelerator = (*GammaAccelerator)(nil)

func (a *GammaAccelerator) Name() string { return "gamma-gpu" }

func (a *GammaAccelerator) CanAccelerate(op gamma.AcceleratedOp) bool {
	return op&gamma.AccelGamma != 0
}

// Init opens a Vulkan device. Failure is not an error: the accelerator stays
// registered and every call falls back to the CPU until a device provider
// is attached.
func (a *GammaAccelerator) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.initGPU(); err != nil {
		slogger().Warn("gamma-gpu: GPU init failed, using CPU fallback", "err", err)
		a.releaseLocked()
	}
	return nil
}

// Ready reports whether a device and pipeline are available.
func (a *GammaAccelerator) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gpuReady
}

// SetLogger routes the accelerator's log output to l.
func (a *GammaAccelerator) SetLogger(l *slog.Logger) {
	setLogger(l)
}

func (a *GammaAccelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.releaseLocked()
}

func (a *GammaAccelerator) releaseLocked() {
	a.destroyPipelines()
	if !a.externalDevice {
		if a.device != nil {
			a.device.Destroy()
		}
		if a.instance != nil {
			a.instance.Destroy()
		}
	}
	// Shared resources belong to the provider.
	a.device = nil
	a.instance = nil
	a.queue = nil
	a.gpuReady = false
	a.externalDevice = false
}

// SetDeviceProvider switches the accelerator to use a shared GPU device
// from an external provider (e.g., gogpu). The provider must implement
// HalDevice() any and HalQueue() any returning hal.Device and hal.Queue.
func (a *GammaAccelerator) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("gamma-gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("gamma-gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("gamma-gpu: provider HalQueue is not hal.Queue")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.releaseLocked()
	a.device = device
	a.queue = queue
	a.externalDevice = true

	if err := a.createPipelines(); err != nil {
		a.gpuReady = false
		return fmt.Errorf("gamma-gpu: create pipelines with shared device: %w", err)
	}
	a.gpuReady = true
	slogger().Info("gamma-gpu: switched to shared GPU device")
	return nil
}

// ApplyGamma corrects target in place on the GPU.
// It returns gamma.ErrFallbackToCPU when no device is available, when the
// exponent is not finite, or when the buffer exceeds device limits.
func (a *GammaAccelerator) ApplyGamma(target gamma.Target, g float32) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.gpuReady {
		return gamma.ErrFallbackToCPU
	}
	if math.IsNaN(float64(g)) || math.IsInf(float64(g), 0) {
		return gamma.ErrFallbackToCPU
	}
	if target.Width <= 0 || target.Height <= 0 {
		return nil
	}
	if !fitsDevice(target.Width, target.Height) {
		slogger().Debug("gamma-gpu: target exceeds device limits",
			"width", target.Width, "height", target.Height)
		return gamma.ErrFallbackToCPU
	}
	if len(target.Data) < (target.Height-1)*target.Stride+target.Width*4 {
		return fmt.Errorf("gamma-gpu: buffer too small for %dx%d stride %d",
			target.Width, target.Height, target.Stride)
	}

	return a.dispatch(target, g)
}

func fitsDevice(w, h int) bool {
	groupsX := (w + workgroupSize - 1) / workgroupSize
	groupsY := (h + workgroupSize - 1) / workgroupSize
	return groupsX <= maxDispatch && groupsY <= maxDispatch &&
		uint64(w)*uint64(h)*4 <= maxStorageBytes //nolint:gosec // dimensions are positive
}

// dispatch uploads the pixels and the channel curve, runs the compute pass
// and copies the result back into target.
func (a *GammaAccelerator) dispatch(target gamma.Target, g float32) error {
	w, h := uint32(target.Width), uint32(target.Height) //nolint:gosec // checked by fitsDevice
	pixelBufSize := uint64(w) * uint64(h) * 4

	paramsBuf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "gamma_params", Size: paramsSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create params buffer: %w", err)
	}
	defer a.device.DestroyBuffer(paramsBuf)

	curveBuf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "gamma_curve", Size: curveSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create curve buffer: %w", err)
	}
	defer a.device.DestroyBuffer(curveBuf)

	storageBuf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "gamma_pixels", Size: pixelBufSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create storage buffer: %w", err)
	}
	defer a.device.DestroyBuffer(storageBuf)

	stagingBuf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "gamma_staging", Size: pixelBufSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer a.device.DestroyBuffer(stagingBuf)

	a.queue.WriteBuffer(paramsBuf, 0, makeParams(w, h))
	a.queue.WriteBuffer(curveBuf, 0, makeCurve(g))
	a.queue.WriteBuffer(storageBuf, 0, packPixels(target))

	bindGroup, err := a.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "gamma_bind", Layout: a.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: paramsBuf.NativeHandle(), Offset: 0, Size: paramsSize}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: curveBuf.NativeHandle(), Offset: 0, Size: curveSize}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: storageBuf.NativeHandle(), Offset: 0, Size: pixelBufSize}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	defer a.device.DestroyBindGroup(bindGroup)

	encoder, err := a.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "gamma_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("gamma"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	computePass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "gamma_pass"})
	computePass.SetPipeline(a.pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)
	computePass.Dispatch((w+workgroupSize-1)/workgroupSize, (h+workgroupSize-1)/workgroupSize, 1)
	computePass.End()

	encoder.CopyBufferToBuffer(storageBuf, stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: pixelBufSize},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer a.device.FreeCommandBuffer(cmdBuf)

	fence, err := a.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer a.device.DestroyFence(fence)
	if err := a.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := a.device.Wait(fence, 1, fenceTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, pixelBufSize)
	if err := a.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	unpackPixels(readback, target)

	slogger().Debug("gamma-gpu: pass complete", "width", w, "height", h, "gamma", g)
	return nil
}

func (a *GammaAccelerator) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	a.instance = instance
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	a.device = openDev.Device
	a.queue = openDev.Queue
	if err := a.createPipelines(); err != nil {
		return fmt.Errorf("create pipelines: %w", err)
	}
	a.gpuReady = true
	slogger().Info("gamma-gpu: GPU accelerator initialized", "adapter", selected.Info.Name)
	return nil
}

func (a *GammaAccelerator) createPipelines() error {
	shader, err := a.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "gamma",
		Source: gammaShaderModuleSource(),
	})
	if err != nil {
		return fmt.Errorf("compile gamma shader: %w", err)
	}
	a.shader = shader

	bindLayout, err := a.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "gamma_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	a.bindLayout = bindLayout

	pipeLayout, err := a.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "gamma_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{a.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	a.pipeLayout = pipeLayout

	pipeline, err := a.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "gamma_pipeline", Layout: a.pipeLayout,
		Compute: hal.ComputeState{Module: a.shader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}
	a.pipeline = pipeline

	return nil
}

func (a *GammaAccelerator) destroyPipelines() {
	if a.device == nil {
		return
	}
	if a.pipeline != nil {
		a.device.DestroyComputePipeline(a.pipeline)
		a.pipeline = nil
	}
	if a.pipeLayout != nil {
		a.device.DestroyPipelineLayout(a.pipeLayout)
		a.pipeLayout = nil
	}
	if a.bindLayout != nil {
		a.device.DestroyBindGroupLayout(a.bindLayout)
		a.bindLayout = nil
	}
	if a.shader != nil {
		a.device.DestroyShaderModule(a.shader)
		a.shader = nil
	}
}

// makeParams returns the 16-byte Params uniform.
func makeParams(w, h uint32) []byte {
	buf := make([]byte, paramsSize)
	binary.LittleEndian.PutUint32(buf[0:], w)
	binary.LittleEndian.PutUint32(buf[4:], h)
	return buf
}

// makeCurve returns the channel table for g as 256 little-endian u32 words.
func makeCurve(g float32) []byte {
	lut := color.BuildTable(g)
	buf := make([]byte, curveSize)
	for i, v := range lut {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
	}
	return buf
}

// packPixels copies target rows into a tightly packed buffer. RGBA bytes
// read as little-endian u32 are already the shader's pixel layout.
func packPixels(target gamma.Target) []byte {
	rowBytes := target.Width * 4
	out := make([]byte, rowBytes*target.Height)
	for y := 0; y < target.Height; y++ {
		copy(out[y*rowBytes:(y+1)*rowBytes], target.Data[y*target.Stride:])
	}
	return out
}

// unpackPixels writes tightly packed rows back into target.
func unpackPixels(packed []byte, target gamma.Target) {
	rowBytes := target.Width * 4
	for y := 0; y < target.Height; y++ {
		copy(target.Data[y*target.Stride:y*target.Stride+rowBytes], packed[y*rowBytes:])
	}
}
