// zoomdive is the batch CLI: it evaluates a centers x zoom-levels view set
// and writes one PNG per view to the output directory.
package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"zoomdive"
	"zoomdive/render"
	"zoomdive/view"
)

// centerList collects repeated -center "x,y" flags.
type centerList []zoomdive.Center

func (l *centerList) String() string {
	parts := make([]string, len(*l))
	for i, c := range *l {
		parts[i] = fmt.Sprintf("%g,%g", c.X, c.Y)
	}
	return strings.Join(parts, " ")
}

func (l *centerList) Set(s string) error {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return fmt.Errorf("center must be \"x,y\", got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return fmt.Errorf("center x: %w", err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return fmt.Errorf("center y: %w", err)
	}
	*l = append(*l, zoomdive.Center{X: x, Y: y})
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	var centers centerList
	flag.Var(&centers, "center", "zoom target as \"x,y\" (repeatable; default Seahorse Valley)")
	zoomSpec := flag.String("zoom", "0.5", "zoom factor, or one factor per center as a comma list")
	nZooms := flag.Int("zooms", 4, "number of zoom levels per center")
	nSamples := flag.Int("samples", 500, "samples per grid axis")
	nIterations := flag.Int("iter", 100, "iteration budget per point")
	limit := flag.Float64("limit", 2, "divergence limit (magnitude)")
	paletteName := flag.String("palette", "gray", "palette: gray or hsv")
	outDir := flag.String("out", ".", "output directory for PNG files")
	workers := flag.Int("workers", 1, "views evaluated concurrently")
	flag.Parse()

	if len(centers) == 0 {
		centers = centerList{zoomdive.SeahorseValley}
	}

	zoom, err := parseZoom(*zoomSpec, len(centers))
	if err != nil {
		return err
	}
	pal, err := render.ByName(*paletteName)
	if err != nil {
		return err
	}

	total := len(centers) * *nZooms
	log.Printf("generating %d views (%d centers x %d levels, %dx%d samples)...",
		total, len(centers), *nZooms, *nSamples, *nSamples)
	views, err := view.Generate(centers, zoom, *nZooms, *nSamples, *nIterations, *limit,
		view.Options{Workers: *workers})
	if err != nil {
		return fmt.Errorf("generate views: %w", err)
	}

	for k, v := range views {
		name := fmt.Sprintf("view_%g_%g_z%d.png", k.X, k.Y, k.Zoom)
		path := filepath.Join(*outDir, name)
		if err := render.WritePNG(path, render.Image(v, *nIterations, pal)); err != nil {
			return err
		}
		log.Printf("saved %q", path)
	}
	return nil
}

// parseZoom turns the -zoom flag into one factor per center. A single value
// is shared by all centers; a comma list must match the center count.
func parseZoom(arg string, nCenters int) ([]float64, error) {
	parts := strings.Split(arg, ",")
	factors := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("zoom factor %q: %w", p, err)
		}
		factors = append(factors, f)
	}
	if len(factors) == 1 && nCenters > 1 {
		shared := factors[0]
		factors = make([]float64, nCenters)
		for i := range factors {
			factors[i] = shared
		}
	}
	if len(factors) != nCenters {
		return nil, fmt.Errorf("%d zoom factors for %d centers: %w",
			len(factors), nCenters, view.ErrZoomCountMismatch)
	}
	return factors, nil
}
