package gamma

import (
	"fmt"

	"github.com/gogpu/gamma/internal/color"
)

// Pixel is a packed 32-bit pixel with four 8-bit channels.
//
// The red channel occupies the low byte and alpha the high byte, so a Pixel
// read little-endian from an RGBA byte buffer has the same channel order as
// the buffer itself.
type Pixel uint32

// PackPixel packs four 8-bit channels into a Pixel.
func PackPixel(r, g, b, a uint8) Pixel {
	return Pixel(color.Pack(color.ColorU8{R: r, G: g, B: b, A: a}))
}

// RGBA returns the four 8-bit channels of p.
func (p Pixel) RGBA() (r, g, b, a uint8) {
	c := color.Unpack(uint32(p))
	return c.R, c.G, c.B, c.A
}

// R returns the red channel.
func (p Pixel) R() uint8 { return uint8(p) } //nolint:gosec // low byte

// G returns the green channel.
func (p Pixel) G() uint8 { return uint8(p >> 8) } //nolint:gosec // byte extraction

// B returns the blue channel.
func (p Pixel) B() uint8 { return uint8(p >> 16) } //nolint:gosec // byte extraction

// A returns the alpha channel.
func (p Pixel) A() uint8 { return uint8(p >> 24) }

// WithAlpha returns p with its alpha channel replaced.
func (p Pixel) WithAlpha(a uint8) Pixel {
	return p&0x00FFFFFF | Pixel(a)<<24
}

// String formats the pixel as rgba(r, g, b, a).
func (p Pixel) String() string {
	r, g, b, a := p.RGBA()
	return fmt.Sprintf("rgba(%d, %d, %d, %d)", r, g, b, a)
}
