// Package plotting renders spectra, stage diagnostics and fit results as
// PNG figures.
package plotting

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Errors returned by the plotters.
var (
	ErrNoSeries       = errors.New("plotting: nothing to plot")
	ErrLengthMismatch = errors.New("plotting: x and y differ in length")
)

// Figure size of every saved plot.
const (
	Width  = 10 * vg.Inch
	Height = 6 * vg.Inch
)

// Style selects how a series is drawn.
type Style int

const (
	StyleLine Style = iota
	StyleDashed
	StyleScatter
)

// Series is one labelled curve.
type Series struct {
	Label string
	X, Y  []float64
	Style Style
}

// Figure describes a single 2-D plot.
type Figure struct {
	Title  string
	XLabel string
	YLabel string
	Series []Series
	// XTicks replaces the automatic x tick marks when non-empty.
	XTicks []plot.Tick
}

// Save renders f as PNG to path, creating the parent directory.
func (f Figure) Save(path string) error {
	if len(f.Series) == 0 {
		return fmt.Errorf("%w: %s", ErrNoSeries, path)
	}
	p, err := f.build()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("plotting: %w", err)
	}
	if err := p.Save(Width, Height, path); err != nil {
		return fmt.Errorf("plotting: save %s: %w", path, err)
	}
	return nil
}

func (f Figure) build() (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = f.Title
	p.X.Label.Text = f.XLabel
	p.Y.Label.Text = f.YLabel
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	if len(f.XTicks) > 0 {
		p.X.Tick.Marker = plot.ConstantTicks(f.XTicks)
	}

	for i, s := range f.Series {
		if len(s.X) != len(s.Y) {
			return nil, fmt.Errorf("%w: series %q has %d x and %d y values",
				ErrLengthMismatch, s.Label, len(s.X), len(s.Y))
		}
		// Non-finite readings are left out of the figure.
		pts := make(plotter.XYs, 0, len(s.X))
		for k := range s.X {
			if finite(s.X[k]) && finite(s.Y[k]) {
				pts = append(pts, plotter.XY{X: s.X[k], Y: s.Y[k]})
			}
		}
		if len(pts) == 0 {
			continue
		}

		c := plotutil.Color(i)
		switch s.Style {
		case StyleScatter:
			sc, err := plotter.NewScatter(pts)
			if err != nil {
				return nil, fmt.Errorf("plotting: series %q: %w", s.Label, err)
			}
			sc.GlyphStyle.Color = c
			sc.GlyphStyle.Radius = vg.Points(1.5)
			sc.Shape = draw.CircleGlyph{}
			p.Add(sc)
			if s.Label != "" {
				p.Legend.Add(s.Label, sc)
			}
		default:
			l, err := plotter.NewLine(pts)
			if err != nil {
				return nil, fmt.Errorf("plotting: series %q: %w", s.Label, err)
			}
			l.LineStyle.Color = c
			l.LineStyle.Width = vg.Points(1)
			if s.Style == StyleDashed {
				l.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
			}
			p.Add(l)
			if s.Label != "" {
				p.Legend.Add(s.Label, l)
			}
		}
	}
	return p, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
