package gamma

import "github.com/gogpu/gamma/internal/parallel"

// Kernel selects how the CPU path evaluates the gamma curve.
type Kernel uint8

const (
	// KernelTable precomputes the 256-entry channel table once per pass and
	// corrects pixels by lookup. This is the default.
	KernelTable Kernel = iota

	// KernelExact evaluates the power function for every channel of every
	// pixel. Output is identical to KernelTable; it exists as a reference.
	KernelExact
)

// String returns the kernel name.
func (k Kernel) String() string {
	switch k {
	case KernelTable:
		return "table"
	case KernelExact:
		return "exact"
	default:
		return "unknown"
	}
}

// ParseKernel returns the kernel with the given name.
func ParseKernel(name string) (Kernel, bool) {
	switch name {
	case "table", "lut":
		return KernelTable, true
	case "exact":
		return KernelExact, true
	default:
		return 0, false
	}
}

// ProcessorOption configures a Processor during creation.
//
// Example:
//
//	p := gamma.NewProcessor(
//	    gamma.WithWorkers(4),
//	    gamma.WithBandHeight(32),
//	)
//	defer p.Close()
type ProcessorOption func(*processorOptions)

// processorOptions holds optional configuration for Processor creation.
type processorOptions struct {
	workers    int
	bandHeight int
	kernel     Kernel
	accelerate bool
}

// defaultOptions returns the default processor options.
func defaultOptions() processorOptions {
	return processorOptions{
		workers:    0, // GOMAXPROCS
		bandHeight: parallel.DefaultBandHeight,
		kernel:     KernelTable,
		accelerate: true,
	}
}

// WithWorkers sets the number of worker goroutines.
// Zero or negative uses GOMAXPROCS.
func WithWorkers(n int) ProcessorOption {
	return func(o *processorOptions) {
		o.workers = n
	}
}

// WithBandHeight sets how many rows make up one unit of parallel work.
// Zero or negative restores the default.
func WithBandHeight(rows int) ProcessorOption {
	return func(o *processorOptions) {
		if rows <= 0 {
			rows = parallel.DefaultBandHeight
		}
		o.bandHeight = rows
	}
}

// WithKernel selects the CPU kernel.
func WithKernel(k Kernel) ProcessorOption {
	return func(o *processorOptions) {
		o.kernel = k
	}
}

// WithAcceleration enables or disables the registered accelerator for this
// processor. Enabled by default; it has no effect when no accelerator is
// registered.
func WithAcceleration(enabled bool) ProcessorOption {
	return func(o *processorOptions) {
		o.accelerate = enabled
	}
}
