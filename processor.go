package gamma

import (
	"context"
	"errors"
	"image"
	"math"
	"sync/atomic"

	"github.com/gogpu/gamma/internal/cache"
	"github.com/gogpu/gamma/internal/color"
	"github.com/gogpu/gamma/internal/parallel"
)

// Processor errors.
var (
	// ErrProcessorClosed is returned by Process after Close.
	ErrProcessorClosed = errors.New("gamma: processor is closed")

	// ErrInvalidGamma is returned for NaN or infinite exponents.
	ErrInvalidGamma = errors.New("gamma: exponent must be finite")

	// ErrNilPixmap is returned when the target buffer is nil.
	ErrNilPixmap = errors.New("gamma: nil pixmap")
)

// tableCacheSize bounds the number of curve tables a Processor keeps.
const tableCacheSize = 16

// Stats holds cumulative counters of a Processor.
type Stats struct {
	Passes            uint64 // completed Process calls that touched pixels
	Pixels            uint64 // pixels corrected
	AcceleratedPasses uint64 // passes served by the registered accelerator
	FallbackPasses    uint64 // accelerator attempts that fell back to the CPU
	TableHits         uint64 // table kernel passes that reused a cached curve
	TableMisses       uint64 // table kernel passes that built a new curve
}

// Processor applies gamma correction to whole pixmaps, splitting them into
// horizontal bands that are corrected in parallel.
//
// A Processor owns a worker pool; call Close when done with it. All methods
// are safe for concurrent use. Concurrent Process calls on distinct pixmaps
// share the same workers.
type Processor struct {
	opts   processorOptions
	pool   *parallel.WorkerPool
	tables *cache.Cache[uint32, *color.Table] // keyed by float32 bits of gamma

	closed atomic.Bool

	passes      atomic.Uint64
	pixels      atomic.Uint64
	accelerated atomic.Uint64
	fallbacks   atomic.Uint64
}

// NewProcessor creates a processor with the given options.
func NewProcessor(opts ...ProcessorOption) *Processor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	p := &Processor{
		opts:   o,
		pool:   parallel.NewWorkerPool(o.workers),
		tables: cache.New[uint32, *color.Table](tableCacheSize),
	}
	Logger().Debug("gamma: processor created",
		"workers", p.pool.Workers(),
		"band_height", o.bandHeight,
		"kernel", o.kernel.String())
	return p
}

// Workers returns the number of worker goroutines.
func (p *Processor) Workers() int {
	return p.pool.Workers()
}

// Process applies gamma to every pixel of pm in place.
//
// If ctx is cancelled, bands that have not started are skipped and
// ctx.Err() is returned; pm is then partially corrected. A gamma of exactly 1
// returns immediately without touching pm.
func (p *Processor) Process(ctx context.Context, pm *Pixmap, gamma float64) error {
	if pm == nil {
		return ErrNilPixmap
	}
	return p.process(ctx, Target{
		Data:   pm.data,
		Width:  pm.width,
		Height: pm.height,
		Stride: pm.stride,
	}, gamma)
}

// ProcessNRGBA applies gamma to img in place, honoring its stride and
// sub-image bounds.
func (p *Processor) ProcessNRGBA(ctx context.Context, img *image.NRGBA, gamma float64) error {
	if img == nil {
		return ErrNilPixmap
	}
	return p.Process(ctx, PixmapFromNRGBA(img), gamma)
}

func (p *Processor) process(ctx context.Context, t Target, gamma float64) error {
	if p.closed.Load() {
		return ErrProcessorClosed
	}
	if math.IsNaN(gamma) || math.IsInf(gamma, 0) {
		return ErrInvalidGamma
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if gamma <= 0 {
		Logger().Warn("gamma: non-positive exponent, channels will saturate", "gamma", gamma)
	}
	if gamma == 1 || t.Width == 0 || t.Height == 0 {
		return nil
	}

	if p.opts.accelerate && p.tryAccelerator(t, gamma) {
		p.record(t)
		p.accelerated.Add(1)
		return nil
	}

	bands := parallel.SplitRows(t.Height, p.opts.bandHeight)
	kernel := p.kernel(gamma)
	err := p.pool.Run(ctx, len(bands), func(i int) {
		b := bands[i]
		for y := b.Y0; y < b.Y1; y++ {
			start := y * t.Stride
			kernel(t.Data[start : start+t.Width*4])
		}
	})
	if errors.Is(err, parallel.ErrPoolClosed) {
		return ErrProcessorClosed
	}
	if err != nil {
		return err
	}

	Logger().Debug("gamma: pass complete",
		"width", t.Width, "height", t.Height, "bands", len(bands), "gamma", gamma)
	p.record(t)
	return nil
}

// kernel returns the row function for the configured CPU kernel.
func (p *Processor) kernel(gamma float64) func(row []uint8) {
	g := float32(gamma)
	if p.opts.kernel == KernelExact {
		return func(row []uint8) {
			for i := 0; i+4 <= len(row); i += 4 {
				c := color.GammaU8(color.ColorU8{R: row[i], G: row[i+1], B: row[i+2], A: row[i+3]}, g)
				row[i], row[i+1], row[i+2] = c.R, c.G, c.B
			}
		}
	}
	lut := p.tables.GetOrCreate(math.Float32bits(g), func() *color.Table {
		t := color.BuildTable(g)
		return &t
	})
	return lut.ApplyBytes
}

// tryAccelerator hands t to the registered accelerator. It reports whether
// the accelerator corrected the buffer.
func (p *Processor) tryAccelerator(t Target, gamma float64) bool {
	a := RegisteredAccelerator()
	if a == nil || !a.CanAccelerate(AccelGamma) {
		return false
	}
	err := a.ApplyGamma(t, float32(gamma))
	if err == nil {
		return true
	}
	p.fallbacks.Add(1)
	if errors.Is(err, ErrFallbackToCPU) {
		Logger().Debug("gamma: accelerator declined, using CPU", "name", a.Name())
	} else {
		Logger().Warn("gamma: accelerator failed, using CPU", "name", a.Name(), "err", err)
	}
	return false
}

func (p *Processor) record(t Target) {
	p.passes.Add(1)
	p.pixels.Add(uint64(t.Width) * uint64(t.Height)) //nolint:gosec // dimensions are non-negative
}

// Stats returns a snapshot of the processor counters.
func (p *Processor) Stats() Stats {
	ts := p.tables.Stats()
	return Stats{
		Passes:            p.passes.Load(),
		Pixels:            p.pixels.Load(),
		AcceleratedPasses: p.accelerated.Load(),
		FallbackPasses:    p.fallbacks.Load(),
		TableHits:         ts.Hits,
		TableMisses:       ts.Misses,
	}
}

// Close stops the worker pool. It waits for passes in flight to finish.
// Close is idempotent.
func (p *Processor) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	p.pool.Close()
	return nil
}
