// Package imageio loads and saves images for gamma processing.
//
// Decoding goes through bild's imgio with the golang.org/x/image decoders
// registered, so PNG, JPEG, GIF, BMP, TIFF and WebP inputs are accepted.
// Every decoded image is converted to straight-alpha *image.NRGBA.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	// Register extra decoders with image.Decode.
	_ "image/gif"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// JPEGQuality is the quality used when saving JPEG files.
const JPEGQuality = 95

// I/O errors.
var (
	// ErrUnsupportedFormat is returned when no encoder matches the file extension.
	ErrUnsupportedFormat = errors.New("imageio: unsupported format")
)

// Load reads an image file and returns it as NRGBA.
func Load(path string) (*image.NRGBA, error) {
	img, err := imgio.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("imageio: load %s: %w", path, err)
	}
	return ToNRGBA(img), nil
}

// Decode reads an image from r and returns it as NRGBA together with the
// format name reported by the decoder.
func Decode(r io.Reader) (*image.NRGBA, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("imageio: decode: %w", err)
	}
	return ToNRGBA(img), format, nil
}

// ToNRGBA returns img as *image.NRGBA with its origin at (0, 0).
// An NRGBA image already at the origin is returned as is.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}

// Save writes img to path. The format is chosen by extension:
// .png, .jpg/.jpeg, .bmp or .tif/.tiff.
func Save(path string, img image.Image) error {
	enc, err := encoderFor(path)
	if err != nil {
		return err
	}
	if err := imgio.Save(filepath.Clean(path), img, enc); err != nil {
		return fmt.Errorf("imageio: save %s: %w", path, err)
	}
	return nil
}

// CanSave reports whether Save supports the extension of path.
func CanSave(path string) bool {
	_, err := encoderFor(path)
	return err == nil
}

func encoderFor(path string) (imgio.Encoder, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return imgio.PNGEncoder(), nil
	case ".jpg", ".jpeg":
		return imgio.JPEGEncoder(JPEGQuality), nil
	case ".bmp":
		return imgio.BMPEncoder(), nil
	case ".tif", ".tiff":
		return tiffEncoder, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func tiffEncoder(w io.Writer, img image.Image) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
}
