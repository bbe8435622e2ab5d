package color

import (
	"math"

	"github.com/chewxy/math32"
)

// U8ToF32 converts ColorU8 to ColorF32.
// Each uint8 component [0,255] is mapped to float32 [0,1].
func U8ToF32(c ColorU8) ColorF32 {
	return ColorF32{
		R: float32(c.R) / 255.0,
		G: float32(c.G) / 255.0,
		B: float32(c.B) / 255.0,
		A: float32(c.A) / 255.0,
	}
}

// F32ToU8 converts ColorF32 to ColorU8.
// Each component is clamped to [0,1] and scaled to [0,255], rounding half
// to even.
func F32ToU8(c ColorF32) ColorU8 {
	return ColorU8{
		R: ToByte(c.R),
		G: ToByte(c.G),
		B: ToByte(c.B),
		A: ToByte(c.A),
	}
}

// Clamp01 restricts v to [0,1]. NaN maps to 0.
func Clamp01(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ToByte clamps v to [0,1] and converts it to a byte, rounding half to even.
func ToByte(v float32) uint8 {
	return roundByte(Clamp01(v) * 255)
}

// roundByte rounds a value already scaled to [0,255].
func roundByte(x float32) uint8 {
	return uint8(math.RoundToEven(float64(x)))
}

// PowChannel raises a normalized channel to gamma and clamps the result.
//
// Follows the Go math.Pow conventions: 0^0 is 1, 0^negative is +Inf (so 1
// after clamping), and any NaN result becomes 0.
func PowChannel(c, gamma float32) float32 {
	return Clamp01(math32.Pow(c, gamma))
}

// GammaColor applies gamma to the RGB channels of c. Alpha is unchanged.
func GammaColor(c ColorF32, gamma float32) ColorF32 {
	return ColorF32{
		R: PowChannel(c.R, gamma),
		G: PowChannel(c.G, gamma),
		B: PowChannel(c.B, gamma),
		A: c.A, // Alpha is always linear
	}
}

// GammaU8 is the full per-pixel path: unpack, power, clamp, repack.
// The alpha byte is copied, not round-tripped through float.
func GammaU8(c ColorU8, gamma float32) ColorU8 {
	out := F32ToU8(GammaColor(U8ToF32(c), gamma))
	out.A = c.A
	return out
}
