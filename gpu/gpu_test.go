// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"context"
	"testing"

	"github.com/gogpu/gamma"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// mockDevice implements gpucontext.Device for testing.
type mockDevice struct{}

func (m *mockDevice) Poll(wait bool) {}
func (m *mockDevice) Destroy()       {}

// mockQueue implements gpucontext.Queue for testing.
type mockQueue struct{}

// mockAdapter implements gpucontext.Adapter for testing.
type mockAdapter struct{}

// mockProvider implements DeviceHandle and exposes noop HAL objects.
type mockProvider struct {
	halDevice hal.Device
	halQueue  hal.Queue
}

func (m *mockProvider) Device() gpucontext.Device             { return &mockDevice{} }
func (m *mockProvider) Queue() gpucontext.Queue               { return &mockQueue{} }
func (m *mockProvider) Adapter() gpucontext.Adapter           { return &mockAdapter{} }
func (m *mockProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatRGBA8Unorm }
func (m *mockProvider) HalDevice() any                        { return m.halDevice }
func (m *mockProvider) HalQueue() any                         { return m.halQueue }

var _ DeviceHandle = (*mockProvider)(nil)

func newNoopProvider(t *testing.T) *mockProvider {
	t.Helper()
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return &mockProvider{halDevice: openDev.Device, halQueue: openDev.Queue}
}

func TestAcceleratorRegistered(t *testing.T) {
	a := gamma.RegisteredAccelerator()
	if a == nil {
		t.Fatal("importing gpu should register an accelerator")
	}
	if a.Name() != "gamma-gpu" {
		t.Errorf("Name() = %q, want %q", a.Name(), "gamma-gpu")
	}
	if !a.CanAccelerate(gamma.AccelGamma) {
		t.Error("accelerator should support AccelGamma")
	}
}

func TestSetDeviceProviderRejectsPlainProvider(t *testing.T) {
	var plain struct{ DeviceHandle }
	if err := SetDeviceProvider(plain); err == nil {
		t.Error("expected error for provider without HAL access")
	}
}

func TestProcessorWithSharedDevice(t *testing.T) {
	if err := SetDeviceProvider(newNoopProvider(t)); err != nil {
		t.Fatalf("SetDeviceProvider: %v", err)
	}
	if !Available() {
		t.Fatal("accelerator should be ready with a shared device")
	}

	p := gamma.NewProcessor()
	defer p.Close()

	pm := gamma.NewPixmap(17, 9)
	pm.Fill(gamma.PackPixel(128, 64, 32, 200))
	if err := p.Process(context.Background(), pm, 2.2); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if st := p.Stats(); st.AcceleratedPasses != 1 {
		t.Errorf("stats = %+v, want one accelerated pass", st)
	}
}
