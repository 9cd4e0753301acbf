package render

import (
	"image/color"
	"testing"

	"zoomdive"
)

func TestGrayscale(t *testing.T) {
	p := Grayscale{}

	if got := p.At(100, 100); got != (color.RGBA{A: 255}) {
		t.Fatalf("in-set point: got %v, want black", got)
	}
	if got := p.At(0, 100); got != (color.RGBA{A: 255}) {
		t.Fatalf("count 0: got %v, want black", got)
	}
	if got := p.At(50, 100); got.R != 127 || got.R != got.G || got.G != got.B {
		t.Fatalf("count 50/100: got %v, want mid gray", got)
	}
}

func TestHSVCycle_InSetBlack(t *testing.T) {
	p := HSVCycle{}
	if got := p.At(64, 64); got != (color.RGBA{A: 255}) {
		t.Fatalf("in-set point: got %v, want black", got)
	}
	if got := p.At(10, 64); got.A != 255 {
		t.Fatalf("escaping point: alpha %d, want 255", got.A)
	}
}

func TestByName(t *testing.T) {
	if _, err := ByName("gray"); err != nil {
		t.Fatalf("gray: %v", err)
	}
	if _, err := ByName("hsv"); err != nil {
		t.Fatalf("hsv: %v", err)
	}
	if _, err := ByName(""); err != nil {
		t.Fatalf("default: %v", err)
	}
	if _, err := ByName("neon"); err == nil {
		t.Fatalf("unknown palette accepted")
	}
}

func TestImage(t *testing.T) {
	v := zoomdive.View{
		Re:      [][]float64{{0, 1}, {0, 1}},
		Im:      [][]float64{{0, 0}, {1, 1}},
		Escapes: [][]int{{10, 3}, {0, 10}},
	}
	img := Image(v, 10, Grayscale{})

	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Fatalf("bounds %v, want 2x2", img.Bounds())
	}
	// image row y is grid row y
	if got := img.RGBAAt(0, 0); got != (color.RGBA{A: 255}) {
		t.Fatalf("(0,0): got %v, want black (in-set)", got)
	}
	if got := img.RGBAAt(1, 1); got != (color.RGBA{A: 255}) {
		t.Fatalf("(1,1): got %v, want black (in-set)", got)
	}
	want := Grayscale{}.At(3, 10)
	if got := img.RGBAAt(1, 0); got != want {
		t.Fatalf("(1,0): got %v, want %v", got, want)
	}
}
