// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package gpu registers the compute-shader gamma accelerator.
//
// Import this package to let every gamma.Processor correct images on the
// GPU. The accelerator uses wgpu/hal compute shaders; each pass uploads the
// pixels, maps them through the channel curve and reads them back.
//
// If GPU initialization fails (no Vulkan available), the accelerator stays
// registered without a device and processing falls back to CPU.
//
// Usage:
//
//	import _ "github.com/gogpu/gamma/gpu" // enable GPU acceleration
package gpu

import (
	"github.com/gogpu/gamma"
	gpuimpl "github.com/gogpu/gamma/internal/gpu"
	"github.com/gogpu/gpucontext"
)

// DeviceHandle is the device interface of the host application.
// It is an alias for gpucontext.DeviceProvider.
type DeviceHandle = gpucontext.DeviceProvider

func init() {
	accel := &gpuimpl.GammaAccelerator{}
	if err := gamma.RegisterAccelerator(accel); err != nil {
		gamma.Logger().Warn("GPU accelerator not available", "err", err)
	}
}

// SetDeviceProvider configures the GPU accelerator to use a shared GPU device
// from an external provider (e.g., gogpu). This avoids creating a separate
// GPU instance and enables efficient device sharing.
//
// The provider should be a DeviceHandle that also exposes HalDevice() and
// HalQueue() for direct HAL access.
func SetDeviceProvider(provider any) error {
	return gamma.SetAcceleratorDeviceProvider(provider)
}

// Available reports whether the registered accelerator has a working device.
func Available() bool {
	a, ok := gamma.RegisteredAccelerator().(*gpuimpl.GammaAccelerator)
	return ok && a.Ready()
}
