// Package zoomdive holds the shared types of the zoom-view engine: view keys,
// evaluated views and a handful of classic Mandelbrot landmarks to aim at.
package zoomdive

// Center is a point in the complex plane that a zoom run is aimed at.
type Center struct {
	X, Y float64
}

// ViewKey identifies one fully evaluated grid: a center point together with
// the zoom level it was sampled at. Level 0 is the unzoomed view.
type ViewKey struct {
	X, Y float64
	Zoom int
}

// View is one evaluated sample grid. Re and Im hold the grid's coordinate
// components, Escapes the matching escape counts. All three share the same
// (rows, cols) shape; the row index varies the imaginary coordinate, the
// column index the real coordinate.
type View struct {
	Re      [][]float64
	Im      [][]float64
	Escapes [][]int
}

// Rows returns the number of grid rows.
func (v View) Rows() int {
	return len(v.Escapes)
}

// Cols returns the number of grid columns.
func (v View) Cols() int {
	if len(v.Escapes) == 0 {
		return 0
	}
	return len(v.Escapes[0])
}
