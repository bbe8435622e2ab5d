package imageio

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 5, 4))
	for y := range 4 {
		for x := range 5 {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 50), G: uint8(y * 60), B: uint8(x*y*10 + 5), A: 255})
		}
	}
	return img
}

func TestSaveLoadLossless(t *testing.T) {
	dir := t.TempDir()
	src := testImage()

	for _, name := range []string{"out.png", "out.bmp", "out.tiff", "OUT.PNG"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := Save(path, src); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if diff := cmp.Diff(src.Pix, got.Pix); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSaveJPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jpg")
	if err := Save(path, testImage()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Bounds() != testImage().Bounds() {
		t.Errorf("bounds = %v", got.Bounds())
	}
}

func TestSaveUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xyz")
	err := Save(path, testImage())
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("unsupported Save should not create a file")
	}
	if CanSave(path) || !CanSave("a.JPEG") {
		t.Error("CanSave mismatch")
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDecode(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage()); err != nil {
		t.Fatal(err)
	}
	img, format, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if format != "png" {
		t.Errorf("format = %q, want png", format)
	}
	if diff := cmp.Diff(testImage().Pix, img.Pix); diff != "" {
		t.Errorf("decode mismatch:\n%s", diff)
	}

	if _, _, err := Decode(bytes.NewReader([]byte("garbage"))); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestToNRGBA(t *testing.T) {
	src := testImage()
	if ToNRGBA(src) != src {
		t.Error("NRGBA at origin should be returned as is")
	}

	sub := src.SubImage(image.Rect(1, 1, 3, 3))
	got := ToNRGBA(sub)
	if got.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Fatalf("bounds = %v", got.Bounds())
	}
	if got.NRGBAAt(0, 0) != src.NRGBAAt(1, 1) {
		t.Errorf("(0,0) = %v, want %v", got.NRGBAAt(0, 0), src.NRGBAAt(1, 1))
	}

	gray := image.NewGray(image.Rect(0, 0, 1, 1))
	gray.SetGray(0, 0, color.Gray{Y: 77})
	if c := ToNRGBA(gray).NRGBAAt(0, 0); c != (color.NRGBA{77, 77, 77, 255}) {
		t.Errorf("gray converted to %v", c)
	}
}
