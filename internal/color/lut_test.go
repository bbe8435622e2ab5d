package color

import (
	"testing"
)

// TestTableMatchesDirect verifies the table agrees with the per-pixel path for
// every channel value.
func TestTableMatchesDirect(t *testing.T) {
	for _, g := range []float32{0, 0.25, 0.45454545, 1, 1.8, 2.2, 4, -1} {
		table := BuildTable(g)
		for i := 0; i < 256; i++ {
			c := ColorU8{R: uint8(i), G: uint8(255 - i), B: uint8(i / 2), A: uint8(i)}
			want := GammaU8(c, g)
			got := Unpack(table.ApplyPacked(Pack(c)))
			if got != want {
				t.Fatalf("gamma %v, input %v: table=%v direct=%v", g, c, got, want)
			}
		}
	}
}

// TestTableIdentity checks gamma 1 produces the identity table.
func TestTableIdentity(t *testing.T) {
	table := BuildTable(1)
	if !table.Identity() {
		t.Error("BuildTable(1) is not the identity")
	}
	table = BuildTable(2)
	if table.Identity() {
		t.Error("BuildTable(2) should not be the identity")
	}
}

// TestTableMonotonic checks the curve never decreases for positive gamma.
func TestTableMonotonic(t *testing.T) {
	for _, g := range []float32{0.2, 0.5, 1.5, 2.2, 4} {
		table := BuildTable(g)
		for i := 1; i < 256; i++ {
			if table[i] < table[i-1] {
				t.Fatalf("gamma %v: table[%d]=%d < table[%d]=%d", g, i, table[i], i-1, table[i-1])
			}
		}
		if table[0] != 0 || table[255] != 255 {
			t.Errorf("gamma %v: endpoints = (%d, %d), want (0, 255)", g, table[0], table[255])
		}
	}
}

// TestApplyBytes verifies in-place byte processing skips alpha and partial pixels.
func TestApplyBytes(t *testing.T) {
	table := BuildTable(2)
	pix := []uint8{128, 128, 128, 128, 255, 0, 64, 9, 200, 200}
	table.ApplyBytes(pix)

	want := []uint8{64, 64, 64, 128, 255, 0, table[64], 9, 200, 200}
	for i := range want {
		if pix[i] != want[i] {
			t.Errorf("pix[%d] = %d, want %d", i, pix[i], want[i])
		}
	}
}

func BenchmarkTableApplyBytes(b *testing.B) {
	table := BuildTable(2.2)
	pix := make([]uint8, 1920*4)
	for i := range pix {
		pix[i] = uint8(i)
	}
	b.SetBytes(int64(len(pix)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		table.ApplyBytes(pix)
	}
}

func BenchmarkGammaU8Direct(b *testing.B) {
	c := ColorU8{R: 10, G: 128, B: 240, A: 255}
	for i := 0; i < b.N; i++ {
		c = GammaU8(c, 1)
	}
	_ = c
}

func BenchmarkBuildTable(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = BuildTable(2.2)
	}
}
