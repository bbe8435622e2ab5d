package color

// Table maps every 8-bit channel value to its gamma-corrected value.
//
// A channel's result depends only on its own byte, so 256 evaluations of
// PowChannel cover every pixel. Lookups are bit-identical to GammaU8.
type Table [256]uint8

// BuildTable evaluates the gamma curve for all 256 channel values.
func BuildTable(gamma float32) Table {
	var t Table
	for i := range t {
		t[i] = ToByte(PowChannel(float32(i)/255.0, gamma))
	}
	return t
}

// Identity reports whether the table maps every value to itself.
func (t *Table) Identity() bool {
	for i, v := range t {
		if int(v) != i {
			return false
		}
	}
	return true
}

// ApplyPacked corrects one packed pixel through the table.
func (t *Table) ApplyPacked(p uint32) uint32 {
	return uint32(t[uint8(p)]) | //nolint:gosec // byte extraction
		uint32(t[uint8(p>>8)])<<8 | //nolint:gosec // byte extraction
		uint32(t[uint8(p>>16)])<<16 | //nolint:gosec // byte extraction
		p&0xFF000000
}

// ApplyBytes corrects RGBA bytes in place. A trailing partial pixel is left
// untouched.
func (t *Table) ApplyBytes(pix []uint8) {
	n := len(pix) &^ 3
	for i := 0; i < n; i += 4 {
		pix[i+0] = t[pix[i+0]]
		pix[i+1] = t[pix[i+1]]
		pix[i+2] = t[pix[i+2]]
	}
}
