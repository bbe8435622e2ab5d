package gamma

import (
	"encoding/binary"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Pixmap is a rectangular buffer of straight (non-premultiplied) RGBA pixels,
// 4 bytes per pixel, rows packed back to back unless Stride says otherwise.
type Pixmap struct {
	width  int
	height int
	stride int
	data   []uint8
}

// NewPixmap creates a transparent black pixmap with the given dimensions.
// Non-positive dimensions produce an empty pixmap.
func NewPixmap(width, height int) *Pixmap {
	if width <= 0 || height <= 0 {
		return &Pixmap{}
	}
	return &Pixmap{
		width:  width,
		height: height,
		stride: width * 4,
		data:   make([]uint8, width*height*4),
	}
}

// PixmapFromNRGBA wraps the pixels of img without copying.
// Changes made through the pixmap are visible in img and vice versa.
func PixmapFromNRGBA(img *image.NRGBA) *Pixmap {
	b := img.Bounds()
	if b.Empty() {
		return &Pixmap{}
	}
	off := img.PixOffset(b.Min.X, b.Min.Y)
	end := off + (b.Dy()-1)*img.Stride + b.Dx()*4
	return &Pixmap{
		width:  b.Dx(),
		height: b.Dy(),
		stride: img.Stride,
		data:   img.Pix[off:end:end],
	}
}

// FromImage copies img into a new pixmap, converting to straight alpha.
func FromImage(img image.Image) *Pixmap {
	b := img.Bounds()
	pm := NewPixmap(b.Dx(), b.Dy())
	if pm.width == 0 {
		return pm
	}

	dst := &image.NRGBA{Pix: pm.data, Stride: pm.stride, Rect: image.Rect(0, 0, pm.width, pm.height)}
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return pm
}

// Width returns the width of the pixmap.
func (p *Pixmap) Width() int {
	return p.width
}

// Height returns the height of the pixmap.
func (p *Pixmap) Height() int {
	return p.height
}

// Stride returns the distance in bytes between vertically adjacent pixels.
func (p *Pixmap) Stride() int {
	return p.stride
}

// Data returns the raw pixel data (RGBA format).
func (p *Pixmap) Data() []uint8 {
	return p.data
}

// Row returns the bytes of row y, or nil if y is out of range.
func (p *Pixmap) Row(y int) []uint8 {
	if y < 0 || y >= p.height {
		return nil
	}
	start := y * p.stride
	return p.data[start : start+p.width*4]
}

// Pixel returns the packed pixel at (x, y), or 0 outside the pixmap.
func (p *Pixmap) Pixel(x, y int) Pixel {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return 0
	}
	i := y*p.stride + x*4
	return Pixel(binary.LittleEndian.Uint32(p.data[i:]))
}

// SetPixel stores a packed pixel at (x, y). Out of bounds writes are ignored.
func (p *Pixmap) SetPixel(x, y int, px Pixel) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return
	}
	i := y*p.stride + x*4
	binary.LittleEndian.PutUint32(p.data[i:], uint32(px))
}

// Fill sets every pixel to px.
func (p *Pixmap) Fill(px Pixel) {
	for y := 0; y < p.height; y++ {
		row := p.Row(y)
		for i := 0; i < len(row); i += 4 {
			binary.LittleEndian.PutUint32(row[i:], uint32(px))
		}
	}
}

// Clone returns a deep copy with tightly packed rows.
func (p *Pixmap) Clone() *Pixmap {
	c := NewPixmap(p.width, p.height)
	for y := 0; y < p.height; y++ {
		copy(c.Row(y), p.Row(y))
	}
	return c
}

// ToImage copies the pixmap into a new image.NRGBA.
func (p *Pixmap) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.width, p.height))
	for y := 0; y < p.height; y++ {
		copy(img.Pix[y*img.Stride:], p.Row(y))
	}
	return img
}

// At implements the image.Image interface.
func (p *Pixmap) At(x, y int) color.Color {
	r, g, b, a := p.Pixel(x, y).RGBA()
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

// Bounds implements the image.Image interface.
func (p *Pixmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// ColorModel implements the image.Image interface.
func (p *Pixmap) ColorModel() color.Model {
	return color.NRGBAModel
}
