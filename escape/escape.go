// Package escape implements the escape-time iteration at the heart of the
// Mandelbrot computation: for each sample point c it reports how quickly the
// orbit of z = z*z + c leaves the divergence radius.
package escape

import (
	"errors"
	"math/cmplx"
	"sync"
)

var (
	ErrInvalidIterations = errors.New("escape: iteration budget must be positive")
	ErrInvalidLimit      = errors.New("escape: divergence limit must be positive")
)

// Evaluate returns, for every point in points, the 0-based index of the
// iteration at which the orbit of z = z*z + c (starting from z = 0) first
// exceeded divergenceLimit in magnitude, or nIterations when the orbit stayed
// within the limit for the whole budget. One result per point, input order.
//
// Escaped points leave the working set: their z is frozen at its escape-time
// value and their recorded index never changes. An overflow to +Inf during
// squaring compares greater than any finite limit and so classifies as
// divergence on the check that follows it; the running value is not clamped.
func Evaluate(points []complex128, nIterations int, divergenceLimit float64) ([]int, error) {
	if nIterations <= 0 {
		return nil, ErrInvalidIterations
	}
	if divergenceLimit <= 0 {
		return nil, ErrInvalidLimit
	}

	z := make([]complex128, len(points))
	escaped := make([]bool, len(points))
	out := make([]int, len(points))
	for i := range out {
		out[i] = nIterations
	}

	remaining := len(points)
	for it := 0; it < nIterations && remaining > 0; it++ {
		for p, c := range points {
			if escaped[p] {
				continue
			}
			z[p] = z[p]*z[p] + c
			if cmplx.Abs(z[p]) > divergenceLimit {
				escaped[p] = true
				out[p] = it
				remaining--
			}
		}
	}
	return out, nil
}

// EvaluateParallel is Evaluate with the point set partitioned across workers.
// Points carry no data dependency on each other, so the partition never
// changes results: output order matches input order exactly. workers <= 1
// falls back to the serial path.
func EvaluateParallel(points []complex128, nIterations int, divergenceLimit float64, workers int) ([]int, error) {
	if workers <= 1 || len(points) < 2 {
		return Evaluate(points, nIterations, divergenceLimit)
	}
	if nIterations <= 0 {
		return nil, ErrInvalidIterations
	}
	if divergenceLimit <= 0 {
		return nil, ErrInvalidLimit
	}
	if workers > len(points) {
		workers = len(points)
	}

	out := make([]int, len(points))
	chunk := (len(points) + workers - 1) / workers

	var wg sync.WaitGroup
	for lo := 0; lo < len(points); lo += chunk {
		hi := lo + chunk
		if hi > len(points) {
			hi = len(points)
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			// parameters were validated above, so this cannot fail
			res, _ := Evaluate(points[lo:hi], nIterations, divergenceLimit)
			copy(out[lo:hi], res)
		}(lo, hi)
	}
	wg.Wait()
	return out, nil
}
