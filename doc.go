// Package gamma provides per-pixel gamma correction for RGBA8 images.
//
// # Overview
//
// gamma applies the power-law transfer c' = c^gamma to the red, green and
// blue channels of 8-bit RGBA pixels, leaving alpha untouched. It is part of
// the GoGPU ecosystem and shares its pixel layout and GPU plumbing with
// gogpu/gg.
//
// # Quick Start
//
//	import "github.com/gogpu/gamma"
//
//	// Correct a single pixel
//	p := gamma.PackPixel(128, 64, 32, 255)
//	q := gamma.Apply(p, 2.0) // rgba(64, 16, 4, 255)
//
//	// Correct a whole image on all cores
//	proc := gamma.NewProcessor()
//	defer proc.Close()
//	pm := gamma.FromImage(img)
//	if err := proc.Process(ctx, pm, 1/2.2); err != nil {
//	    return err
//	}
//
// # The Operator
//
// Each channel is normalized to [0,1], raised to gamma, clamped into [0,1]
// and repacked as round-half-to-even(c*255). The operator never fails:
// results the power function cannot represent (NaN, ±Inf) saturate at 0 or
// 255, and any exponent, including zero and negative ones, is accepted.
// A gamma of 1 is the identity.
//
// Table precomputes the 256 possible channel results for one exponent and is
// bit-identical to Apply.
//
// # Pixel Layout
//
// Pixel packs R in the low byte, then G, B and A. This is the in-memory
// byte order of a Pixmap (and of image.NRGBA) read as a little-endian uint32.
//
// # Architecture
//
// The library is organized into:
//   - Public API: Pixel, Apply, Table, Pixmap, Processor
//   - Internal: color (channel math), parallel (worker pool, row bands),
//     gpu (compute shader backend), imageio (file formats)
//   - Optional: gpu (GPU accelerator, enabled by blank import),
//     pngmeta (gamma stored in PNG files)
//
// # GPU Acceleration
//
// Importing github.com/gogpu/gamma/gpu registers a compute-shader
// accelerator. Processors try it first and fall back to the CPU when no
// device is available.
package gamma

// Version information
const (
	// Version is the current version of the library
	Version = "0.2.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 2

	// VersionPatch is the patch version
	VersionPatch = 0

	// VersionPrerelease is the prerelease identifier
	VersionPrerelease = ""
)
