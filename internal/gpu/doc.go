//go:build !nogpu

// Package gpu implements the compute-shader gamma accelerator on top of
// gogpu/wgpu HAL.
//
// GammaAccelerator uploads a pixel buffer into a storage buffer, runs one
// compute pass that maps every RGB channel through a host-built 256-entry
// curve, and reads the result back through a staging buffer. When no GPU
// device is available every call returns gamma.ErrFallbackToCPU.
//
// The public entry point is github.com/gogpu/gamma/gpu.
package gpu
