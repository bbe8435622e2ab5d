// Package color provides the channel math behind gamma correction.
//
// Pixels travel through the package in two forms: ColorU8 (the stored 8-bit
// channels) and ColorF32 (normalized floats in [0,1]). Only RGB is ever
// raised to a power; alpha is carried through untouched.
package color

// ColorF32 represents a color with float32 components in [0,1].
// Alpha is always linear (never gamma-encoded).
type ColorF32 struct {
	R, G, B, A float32
}

// ColorU8 represents a color with uint8 components in [0,255].
// Alpha is always linear (never gamma-encoded).
type ColorU8 struct {
	R, G, B, A uint8
}

// Unpack splits a packed pixel (R in the low byte, A in the high byte) into
// its 8-bit channels.
func Unpack(p uint32) ColorU8 {
	return ColorU8{
		R: uint8(p),       //nolint:gosec // truncation to low byte is intended
		G: uint8(p >> 8),  //nolint:gosec // truncation to low byte is intended
		B: uint8(p >> 16), //nolint:gosec // truncation to low byte is intended
		A: uint8(p >> 24),
	}
}

// Pack joins 8-bit channels into a packed pixel.
func Pack(c ColorU8) uint32 {
	return uint32(c.R) | uint32(c.G)<<8 | uint32(c.B)<<16 | uint32(c.A)<<24
}
