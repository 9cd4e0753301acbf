// Package view turns (center, zoom schedule) specifications into evaluated
// sample grids: for every center and zoom level it builds a square grid of
// complex samples, runs the escape-time evaluator over it and reshapes the
// counts back into the grid.
package view

import (
	"errors"
	"math"
	"sync"

	"zoomdive"
	"zoomdive/escape"
)

var (
	ErrZoomCountMismatch  = errors.New("view: per-center zoom factors must match the number of centers")
	ErrInvalidZoomCount   = errors.New("view: zoom level count must be positive")
	ErrInvalidSampleCount = errors.New("view: sample resolution must be positive")
)

// Options tune how a view set is generated.
type Options struct {
	// Workers bounds how many views are evaluated concurrently. Zero or one
	// keeps generation fully serial. Views carry no data dependency on each
	// other, so the setting never changes results.
	Workers int
}

// Generate evaluates one view per (center, zoom level) pair. zoom supplies
// one shrink factor per center; the box sampled at level s is a square of
// side factor^s around the center, subdivided into nSamples points per axis
// with both endpoints included. On success the map holds exactly
// len(centers) * nZooms entries; on any failure it is nil.
func Generate(centers []zoomdive.Center, zoom []float64, nZooms, nSamples, nIterations int, divergenceLimit float64, opts Options) (map[zoomdive.ViewKey]zoomdive.View, error) {
	if len(zoom) != len(centers) {
		return nil, ErrZoomCountMismatch
	}
	if err := validate(nZooms, nSamples, nIterations, divergenceLimit); err != nil {
		return nil, err
	}

	keys := make([]zoomdive.ViewKey, 0, len(centers)*nZooms)
	factors := make(map[zoomdive.ViewKey]float64, len(centers)*nZooms)
	for i, c := range centers {
		for s := 0; s < nZooms; s++ {
			k := zoomdive.ViewKey{X: c.X, Y: c.Y, Zoom: s}
			keys = append(keys, k)
			factors[k] = zoom[i]
		}
	}

	views := make(map[zoomdive.ViewKey]zoomdive.View, len(keys))
	if opts.Workers <= 1 {
		for _, k := range keys {
			v, err := One(k.X, k.Y, factors[k], k.Zoom, nSamples, nIterations, divergenceLimit)
			if err != nil {
				return nil, err
			}
			views[k] = v
		}
		return views, nil
	}

	var (
		wg sync.WaitGroup
		m  sync.Mutex
	)
	work := make(chan zoomdive.ViewKey)
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := range work {
				// parameters were validated above, so this cannot fail
				v, _ := One(k.X, k.Y, factors[k], k.Zoom, nSamples, nIterations, divergenceLimit)
				m.Lock()
				views[k] = v
				m.Unlock()
			}
		}()
	}
	for _, k := range keys {
		work <- k
	}
	close(work)
	wg.Wait()
	return views, nil
}

// GenerateShared is Generate with a single zoom factor shared by all centers.
func GenerateShared(centers []zoomdive.Center, zoom float64, nZooms, nSamples, nIterations int, divergenceLimit float64, opts Options) (map[zoomdive.ViewKey]zoomdive.View, error) {
	factors := make([]float64, len(centers))
	for i := range factors {
		factors[i] = zoom
	}
	return Generate(centers, factors, nZooms, nSamples, nIterations, divergenceLimit, opts)
}

// One builds and evaluates the single view of (cx, cy) at the given zoom
// level. The sampled box is a square of side factor^level centered on the
// point. Grid ordering is row-major: row index varies the imaginary
// coordinate, column index the real coordinate.
func One(cx, cy, factor float64, level, nSamples, nIterations int, divergenceLimit float64) (zoomdive.View, error) {
	if err := validate(1, nSamples, nIterations, divergenceLimit); err != nil {
		return zoomdive.View{}, err
	}

	scale := math.Pow(factor, float64(level))
	re := linspace(cx-0.5*scale, cx+0.5*scale, nSamples)
	im := linspace(cy-0.5*scale, cy+0.5*scale, nSamples)

	points := make([]complex128, 0, nSamples*nSamples)
	for r := 0; r < nSamples; r++ {
		for c := 0; c < nSamples; c++ {
			points = append(points, complex(re[c], im[r]))
		}
	}

	counts, err := escape.Evaluate(points, nIterations, divergenceLimit)
	if err != nil {
		return zoomdive.View{}, err
	}

	v := zoomdive.View{
		Re:      make([][]float64, nSamples),
		Im:      make([][]float64, nSamples),
		Escapes: make([][]int, nSamples),
	}
	for r := 0; r < nSamples; r++ {
		v.Re[r] = make([]float64, nSamples)
		v.Im[r] = make([]float64, nSamples)
		v.Escapes[r] = make([]int, nSamples)
		for c := 0; c < nSamples; c++ {
			v.Re[r][c] = re[c]
			v.Im[r][c] = im[r]
		}
	}
	// reshape with the same row-major ordering the points were flattened in;
	// counts are already non-negative
	for i, n := range counts {
		v.Escapes[i/nSamples][i%nSamples] = n
	}
	return v, nil
}

func validate(nZooms, nSamples, nIterations int, divergenceLimit float64) error {
	if nZooms <= 0 {
		return ErrInvalidZoomCount
	}
	if nSamples <= 0 {
		return ErrInvalidSampleCount
	}
	if nIterations <= 0 {
		return escape.ErrInvalidIterations
	}
	if divergenceLimit <= 0 {
		return escape.ErrInvalidLimit
	}
	return nil
}

// linspace subdivides [start, end] into num regularly spaced points,
// both endpoints included.
func linspace(start, end float64, num int) []float64 {
	result := make([]float64, num)
	if num == 1 {
		result[0] = start
		return result
	}
	step := (end - start) / float64(num-1)
	for i := range result {
		result[i] = start + float64(i)*step
	}
	return result
}
