// Package render maps escape-count grids to images. It is a consumer of the
// engine's numeric output; nothing in here feeds back into evaluation.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"zoomdive"
)

// Palette maps one escape count to a color. maxIter is the iteration budget
// the counts were produced with; counts equal to maxIter are in-set.
type Palette interface {
	At(count, maxIter int) color.RGBA
}

// Grayscale ramps brightness with the escape count, in-set points black.
type Grayscale struct{}

func (Grayscale) At(count, maxIter int) color.RGBA {
	if count >= maxIter {
		return color.RGBA{A: 255}
	}
	v := uint8(255 * float64(count) / float64(maxIter))
	return color.RGBA{R: v, G: v, B: v, A: 255}
}

// HSVCycle cycles the hue with the escape count, in-set points black.
type HSVCycle struct{}

func (HSVCycle) At(count, maxIter int) color.RGBA {
	if count >= maxIter {
		return color.RGBA{A: 255}
	}
	hue := math.Mod(float64(count)*0.02, 1.0)
	return hsv(hue, 1, 1)
}

// ByName resolves a palette from its external name ("gray" or "hsv").
func ByName(name string) (Palette, error) {
	switch name {
	case "gray", "":
		return Grayscale{}, nil
	case "hsv":
		return HSVCycle{}, nil
	default:
		return nil, fmt.Errorf("render: unknown palette %q", name)
	}
}

// Image renders one evaluated view, one pixel per sample. Image row y is
// grid row y, so the imaginary axis runs down the image the way the grid
// was generated.
func Image(v zoomdive.View, maxIter int, p Palette) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, v.Cols(), v.Rows()))
	for y, row := range v.Escapes {
		for x, count := range row {
			img.SetRGBA(x, y, p.At(count, maxIter))
		}
	}
	return img
}

// WritePNG saves the rendered image to path.
func WritePNG(path string, img *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode PNG: %w", err)
	}
	return nil
}

// Simple HSV -> RGB
func hsv(h, s, v float64) color.RGBA {
	h = math.Mod(h, 1)
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	case 5:
		r, g, b = v, p, q
	}
	return color.RGBA{uint8(r * 255), uint8(g * 255), uint8(b * 255), 255}
}
