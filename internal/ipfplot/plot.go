package ipfplot

import (
	"fmt"
	"math"

	"github.com/causalgo/ipf/internal/ndarray"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Options configures plot appearance, generalized from the teacher's
// PlotOptions to the two diagnostics IPF actually produces: a convergence
// curve (Report.History) and a 2-D factor heatmap.
type Options struct {
	// Title is the plot's main title.
	Title string

	// Width and Height are the plot dimensions in inches, for passing to
	// SavePlot when saving to a file (default 10x6).
	Width  float64
	Height float64

	// LogScale renders the Y axis on a log10 scale, appropriate for a
	// convergence curve that shrinks geometrically toward the tolerance.
	LogScale bool
}

// DefaultOptions returns the teacher's default 10x6-inch plot sizing.
func DefaultOptions() Options {
	return Options{Title: "IPF Convergence", Width: 10.0, Height: 6.0}
}

// Convergence plots the per-iteration convergence criterion
// (Report.History) against iteration number, with an optional horizontal
// line at tol marking the stopping threshold.
func Convergence(history []float64, tol float64, opts Options) (*plot.Plot, error) {
	if len(history) == 0 {
		return nil, fmt.Errorf("ipfplot: history is empty")
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "Max factor delta"

	pts := make(plotter.XYs, len(history))
	for i, v := range history {
		y := v
		if opts.LogScale && y > 0 {
			y = math.Log10(y)
		}
		pts[i].X = float64(i + 1)
		pts[i].Y = y
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("ipfplot: building convergence line: %w", err)
	}
	line.Color = GetColor("convergence")
	line.Width = vg.Points(1.5)
	p.Add(line)

	if tol > 0 {
		tolY := tol
		if opts.LogScale {
			tolY = math.Log10(tol)
		}
		tolLine, err := plotter.NewLine(plotter.XYs{
			{X: pts[0].X, Y: tolY},
			{X: pts[len(pts)-1].X, Y: tolY},
		})
		if err != nil {
			return nil, fmt.Errorf("ipfplot: building tolerance line: %w", err)
		}
		tolLine.Color = GetColor("tolerance")
		tolLine.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		p.Add(tolLine)
		p.Legend.Add("tol", tolLine)
	}
	p.Legend.Add("crit", line)

	return p, nil
}

// Heatmap renders a rank-2 factor array as a color-mapped grid, grounded
// in gonum's palette.Heat color scale.
func Heatmap(factor *ndarray.Array[float64], opts Options) (*plot.Plot, error) {
	if factor == nil {
		return nil, fmt.Errorf("ipfplot: factor is nil")
	}
	if factor.Rank() != 2 {
		return nil, fmt.Errorf("ipfplot: Heatmap requires a rank-2 array, got rank %d", factor.Rank())
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "axis 2"
	p.Y.Label.Text = "axis 1"

	grid := arrayGrid{a: factor}
	hm := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	p.Add(hm)

	return p, nil
}

// arrayGrid adapts a rank-2 ndarray.Array[float64] to plotter.GridXYZ.
type arrayGrid struct {
	a *ndarray.Array[float64]
}

func (g arrayGrid) Dims() (c, r int) {
	shape := g.a.Shape()
	return shape[1], shape[0]
}

func (g arrayGrid) Z(c, r int) float64 {
	return g.a.At(r, c)
}

func (g arrayGrid) X(c int) float64 {
	return float64(c)
}

func (g arrayGrid) Y(r int) float64 {
	return float64(r)
}
