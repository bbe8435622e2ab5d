package gamma

import (
	"errors"
	"sync"
)

// ErrFallbackToCPU indicates the accelerator cannot handle this operation.
// The caller should transparently fall back to the CPU kernel.
var ErrFallbackToCPU = errors.New("gamma: falling back to CPU")

// AcceleratedOp describes operation types for capability checking.
type AcceleratedOp uint32

const (
	// AccelGamma represents per-pixel gamma correction of an RGBA8 buffer.
	AccelGamma AcceleratedOp = 1 << iota
)

// Target is a pixel buffer handed to an accelerator.
// Data holds straight RGBA, 4 bytes per pixel, row by row with the given
// Stride. The accelerator writes its result back into Data.
type Target struct {
	Data          []uint8
	Width, Height int
	Stride        int // bytes per row
}

// Accelerator is an optional hardware backend for gamma correction.
//
// When registered via RegisterAccelerator, a Processor with acceleration
// enabled tries the accelerator first. ErrFallbackToCPU or any other error
// makes the Processor fall back to its CPU kernel.
//
// Users opt in via blank import:
//
//	import _ "github.com/gogpu/gamma/gpu"
type Accelerator interface {
	// Name returns the accelerator name (e.g., "gamma-gpu").
	Name() string

	// Init initializes device resources. Called once during registration.
	Init() error

	// Close releases device resources.
	Close()

	// CanAccelerate reports whether the accelerator supports op.
	CanAccelerate(op AcceleratedOp) bool

	// ApplyGamma corrects every pixel of target in place.
	// Returns ErrFallbackToCPU if the target cannot be accelerated.
	ApplyGamma(target Target, gamma float32) error
}

// DeviceProviderAware is an optional interface for accelerators that can
// share a GPU device with the host application.
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	accelMu sync.RWMutex
	accel   Accelerator
)

// RegisterAccelerator registers an accelerator.
//
// Only one accelerator can be registered; a later call replaces and closes
// the previous one. Init is called first; if it fails, nothing is registered
// and the error is returned.
func RegisterAccelerator(a Accelerator) error {
	if a == nil {
		return errors.New("gamma: accelerator must not be nil")
	}
	if err := a.Init(); err != nil {
		return err
	}
	propagateLogger(a, Logger())

	accelMu.Lock()
	old := accel
	accel = a
	accelMu.Unlock()
	if old != nil && old != a {
		old.Close()
	}
	Logger().Info("gamma: accelerator registered", "name", a.Name())
	return nil
}

// UnregisterAccelerator removes and closes the registered accelerator, if any.
func UnregisterAccelerator() {
	accelMu.Lock()
	old := accel
	accel = nil
	accelMu.Unlock()
	if old != nil {
		old.Close()
	}
}

// RegisteredAccelerator returns the registered accelerator, or nil if none.
func RegisteredAccelerator() Accelerator {
	accelMu.RLock()
	a := accel
	accelMu.RUnlock()
	return a
}

// SetAcceleratorDeviceProvider passes a device provider to the registered
// accelerator. It is a no-op when no accelerator is registered or the
// accelerator cannot share devices.
func SetAcceleratorDeviceProvider(provider any) error {
	a := RegisteredAccelerator()
	if a == nil {
		return nil
	}
	if dpa, ok := a.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}
