// Package peaks decomposes a single absorbance spectrum into Gaussian bands
// on top of a smooth spline background.
package peaks

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-spectra/dsp/interp"
	"github.com/cwbudde/algo-spectra/fit"
	"github.com/cwbudde/algo-spectra/internal/plotting"
	"github.com/cwbudde/algo-spectra/measure/fitlog"
	"github.com/cwbudde/algo-spectra/spectrum"
)

// Errors returned by Analyze.
var (
	ErrNoPeaks      = errors.New("peaks: no peaks configured")
	ErrTooFewPoints = errors.New("peaks: too few points in the fit range")
)

// Bounds is a closed parameter range. The zero value means unbounded.
type Bounds struct {
	Min float64
	Max float64
}

func (b Bounds) apply(p *fit.Param) {
	if b.Min < b.Max {
		p.SetBounds(b.Min, b.Max)
	}
}

// Peak seeds one Gaussian band.
type Peak struct {
	Amplitude       float64
	Center          float64
	Sigma           float64
	AmplitudeBounds Bounds
	CenterBounds    Bounds
	SigmaBounds     Bounds
}

// Config configures [Analyze].
type Config struct {
	// TimeIndex selects the spectrum (table column).
	TimeIndex int
	Peaks     []Peak
	// Knots are the wavelengths of the spline background. Fewer than two
	// knots disables the background.
	Knots []float64
	// Range limits the fit to wavelengths inside [Min, Max]; the zero value
	// uses the whole spectrum.
	Range     Bounds
	MinCorrel float64
	MaxIter   int
}

func normalizeConfig(cfg Config) Config {
	if cfg.MinCorrel <= 0 {
		cfg.MinCorrel = fit.DefaultMinCorrel
	}
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = 2000
	}
	return cfg
}

// PeakPrefix returns the parameter prefix of the i-th peak ("p1_", ...).
func PeakPrefix(i int) string {
	return fmt.Sprintf("p%d_", i+1)
}

// BackgroundPrefix is the parameter prefix of the spline background.
const BackgroundPrefix = "bkg_"

// Result is the decomposition of one spectrum.
type Result struct {
	Label     string
	Time      float64
	Fit       *fit.Result
	MinCorrel float64
}

// Analyze fits cfg.Peaks and the spline background to column cfg.TimeIndex
// of t.
func Analyze(t *spectrum.Table, cfg Config) (*Result, error) {
	cfg = normalizeConfig(cfg)
	if len(cfg.Peaks) == 0 {
		return nil, ErrNoPeaks
	}
	if t.Empty() {
		return nil, fmt.Errorf("peaks: %w", spectrum.ErrEmptyTable)
	}
	if cfg.TimeIndex < 0 || cfg.TimeIndex >= t.Cols() {
		return nil, fmt.Errorf("peaks: %w: %d of %d", spectrum.ErrColumnOutRange, cfg.TimeIndex, t.Cols())
	}

	var x, y []float64
	col := t.Column(cfg.TimeIndex)
	for i, wl := range t.Wavelengths {
		if cfg.Range.Min < cfg.Range.Max && (wl < cfg.Range.Min || wl > cfg.Range.Max) {
			continue
		}
		x = append(x, wl)
		y = append(y, col[i])
	}

	parts := make([]fit.Model, 0, len(cfg.Peaks)+1)
	for i := range cfg.Peaks {
		parts = append(parts, fit.Gaussian(PeakPrefix(i)))
	}
	useSpline := len(cfg.Knots) >= 2
	if useSpline {
		spline, err := fit.Spline(BackgroundPrefix, cfg.Knots)
		if err != nil {
			return nil, fmt.Errorf("peaks: %w", err)
		}
		parts = append(parts, spline)
	}
	model := fit.Sum(parts...)
	if len(x) < len(model.ParamNames()) {
		return nil, fmt.Errorf("%w: %d points for %d parameters", ErrTooFewPoints, len(x), len(model.ParamNames()))
	}

	params := model.MakeParams()
	for i, pk := range cfg.Peaks {
		prefix := PeakPrefix(i)
		a := params.MustGet(prefix + "amplitude").Set(pk.Amplitude)
		pk.AmplitudeBounds.apply(a)
		c := params.MustGet(prefix + "center").Set(pk.Center)
		pk.CenterBounds.apply(c)
		s := params.MustGet(prefix + "sigma").Set(pk.Sigma)
		pk.SigmaBounds.apply(s)
	}
	if useSpline {
		// Knot values start on the measured spectrum.
		seed, err := interp.Linear(cfg.Knots, x, y)
		if err != nil {
			return nil, fmt.Errorf("peaks: seed background: %w", err)
		}
		for k, v := range seed {
			params.MustGet(fmt.Sprintf("%ss%d", BackgroundPrefix, k)).Set(v)
		}
	}

	res, err := fit.Fit(model, params, x, y, fit.WithMaxIter(cfg.MaxIter))
	if err != nil {
		return nil, fmt.Errorf("peaks: fit of %s: %w", t.Labels[cfg.TimeIndex], err)
	}
	return &Result{
		Label:     t.Labels[cfg.TimeIndex],
		Time:      t.Times[cfg.TimeIndex],
		Fit:       res,
		MinCorrel: cfg.MinCorrel,
	}, nil
}

// Heading is the line that introduces the result in a fit log.
func (r *Result) Heading() string {
	return "Spectrum time: " + r.Label
}

// Report renders the fit report.
func (r *Result) Report() string {
	return r.Fit.Report(r.MinCorrel)
}

// AppendReport appends the fit report to the log at path.
func (r *Result) AppendReport(path, runID string) error {
	return fitlog.Append(path, fitlog.Entry{
		Heading: r.Heading(),
		RunID:   runID,
		Report:  r.Report(),
	})
}

// Plot saves the spectrum, the fits and every band into dir.
func (r *Result) Plot(dir string) (string, error) {
	name := "peaks_" + strings.ReplaceAll(r.Label, ".", "_") + ".png"
	path := filepath.Join(dir, name)
	title := fmt.Sprintf("Peak fit at %s", r.Label)
	if err := plotting.FitResult(path, title, plotting.WavelengthLabel, r.Fit); err != nil {
		return "", err
	}
	return path, nil
}
