// Package fractal draws grayscale fractal images.
package fractal

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/pkg/errors"
)

const (
	KindMandelbrot = "mandelbrot"
	KindJulia      = "julia"
)

var ErrUnknownKind = errors.New("unknown fractal kind")

// Render draws the fractal of the given kind on a size x size image. An empty
// kind renders a single white pixel.
func Render(kind string, size int, maxIters int) (*image.Gray, error) {
	switch kind {
	case "":
		img := image.NewGray(image.Rect(0, 0, 1, 1))
		Solid(img, 255)
		return img, nil
	case KindMandelbrot:
		img := image.NewGray(image.Rect(0, 0, size, size))
		Mandelbrot(img, maxIters)
		return img, nil
	case KindJulia:
		img := image.NewGray(image.Rect(0, 0, size, size))
		Julia(img, maxIters)
		return img, nil
	default:
		return nil, errors.Wrapf(ErrUnknownKind, "kind %q", kind)
	}
}

// Solid paints every pixel with the given value
func Solid(img *image.Gray, value uint8) {
	for i := range img.Pix {
		img.Pix[i] = value
	}
}

// Mandelbrot uses the escape time algorithm, each pixel holds the number of
// iterations before the orbit left the radius 2 disk.
func Mandelbrot(img *image.Gray, maxIters int) {
	b := img.Bounds()
	scalex := 3.5 / float32(b.Dx())
	scaley := 2.0 / float32(b.Dy())

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			x0 := float32(x-b.Min.X)*scalex - 2.5
			y0 := float32(y-b.Min.Y)*scaley - 1.0

			re, im := x0, y0
			iters := 0
			for ; iters < maxIters; iters++ {
				if re*re+im*im > 4 {
					break
				}
				re, im = re*re-im*im+x0, 2*re*im+y0
			}

			img.SetGray(x, y, color.Gray{Y: uint8(iters)})
		}
	}
}

// Julia draws the julia set of c = -0.4+0.6i over the [-2, 2] square
func Julia(img *image.Gray, maxIters int) {
	const cre, cim = -0.4, 0.6

	b := img.Bounds()
	scalex := 4.0 / float32(b.Dx())
	scaley := 4.0 / float32(b.Dy())

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			re := float32(x-b.Min.X)*scalex - 2.0
			im := float32(y-b.Min.Y)*scaley - 2.0

			last := 0
			for t := 0; t < maxIters; t++ {
				if re*re+im*im > 4 {
					break
				}
				re, im = re*re-im*im+cre, 2*re*im+cim
				last = t
			}

			img.SetGray(x, y, color.Gray{Y: uint8(last)})
		}
	}
}

// EncodePNG writes the image as png
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return errors.Wrap(err, "error encoding png")
	}
	return nil
}
