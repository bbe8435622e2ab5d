package gamma_test

import (
	"context"
	"fmt"
	"image"

	"github.com/gogpu/gamma"
)

func ExampleApply() {
	p := gamma.PackPixel(128, 64, 32, 255)
	fmt.Println(gamma.Apply(p, 2))
	// Output: rgba(64, 16, 4, 255)
}

func ExampleTable() {
	t := gamma.NewTable(0.5)
	fmt.Println(t.Lookup(64), t.Lookup(0), t.Lookup(255))
	// Output: 128 0 255
}

func ExampleProcessor() {
	proc := gamma.NewProcessor(gamma.WithAcceleration(false))
	defer proc.Close()

	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	if err := proc.ProcessNRGBA(context.Background(), img, 2); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(img.NRGBAAt(10, 10))
	// Output: {64 64 64 128}
}
