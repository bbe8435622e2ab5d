package gamma

import (
	"github.com/gogpu/gamma/internal/color"
)

// Apply returns p with gamma correction applied to its RGB channels.
//
// Each channel is normalized to [0,1], raised to gamma, clamped back into
// [0,1] and repacked as round-half-to-even(c*255). Alpha is copied unchanged.
//
// Apply never fails. Results that the power function cannot express as a
// channel value (NaN, ±Inf, negative or zero gamma artifacts) saturate at 0
// or 255. 0^0 evaluates to 1, following math.Pow.
//
// Apply is pure and safe to call from any number of goroutines.
func Apply(p Pixel, gamma float64) Pixel {
	c := color.GammaU8(color.Unpack(uint32(p)), float32(gamma))
	return Pixel(color.Pack(c))
}

// ApplyRGBA applies gamma in place to a buffer of RGBA bytes, 4 bytes per
// pixel. A trailing partial pixel is left untouched.
//
// ApplyRGBA runs on the calling goroutine. Use a Processor to spread large
// buffers across cores.
func ApplyRGBA(pix []uint8, gamma float64) {
	t := NewTable(gamma)
	t.lut.ApplyBytes(pix)
}

// Table is gamma correction for one fixed exponent, precomputed for all 256
// channel values.
//
// Table.Apply produces exactly the same pixels as Apply with the same gamma;
// it trades 256 power evaluations up front for a table lookup per channel.
// A Table is immutable and safe for concurrent use.
type Table struct {
	gamma float64
	lut   color.Table
}

// NewTable builds the lookup table for gamma.
func NewTable(gamma float64) *Table {
	return &Table{
		gamma: gamma,
		lut:   color.BuildTable(float32(gamma)),
	}
}

// Gamma returns the exponent the table was built for.
func (t *Table) Gamma() float64 {
	return t.gamma
}

// Lookup returns the corrected value of a single RGB channel byte.
func (t *Table) Lookup(c uint8) uint8 {
	return t.lut[c]
}

// Apply returns p with the table's correction applied. Alpha is unchanged.
func (t *Table) Apply(p Pixel) Pixel {
	return Pixel(t.lut.ApplyPacked(uint32(p)))
}

// IsIdentity reports whether the table leaves every pixel unchanged.
func (t *Table) IsIdentity() bool {
	return t.lut.Identity()
}
