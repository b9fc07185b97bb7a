package kinetics

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/cwbudde/algo-spectra/fit"
	"github.com/cwbudde/algo-spectra/internal/plotting"
	"github.com/cwbudde/algo-spectra/measure/fitlog"
	"github.com/cwbudde/algo-spectra/spectrum"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrTooFewPoints is returned when the selected trace is too short to fit.
var ErrTooFewPoints = errors.New("kinetics: too few timepoints to fit")

// Result is the fit of one wavelength trace.
type Result struct {
	// Wavelength is the recorded wavelength that was analysed.
	Wavelength float64
	Fit        *fit.Result
	MinCorrel  float64
}

// Heading is the line that introduces the result in a fit log.
func (r *Result) Heading() string {
	return fmt.Sprintf("Spectra wavelength: %g", r.Wavelength)
}

// Report returns the fit report.
func (r *Result) Report() string {
	return r.Fit.Report(r.MinCorrel)
}

// AppendReport appends the report to the log at path.
func (r *Result) AppendReport(path, runID string) error {
	return fitlog.Append(path, fitlog.Entry{
		Heading: r.Heading(),
		RunID:   runID,
		Report:  r.Report(),
	})
}

// PlotName is the file name used by [Result.Plot].
func (r *Result) PlotName() string {
	return fmt.Sprintf("fit_%g_nm.png", r.Wavelength)
}

// Plot saves the data, fits and components into dir.
func (r *Result) Plot(dir string) (string, error) {
	path := filepath.Join(dir, r.PlotName())
	title := fmt.Sprintf("Fit at %g nm", r.Wavelength)
	if err := plotting.FitResult(path, title, plotting.TimeLabel, r.Fit); err != nil {
		return "", err
	}
	return path, nil
}

// trace returns the elapsed times and the row nearest to wavelength, keeping
// only timepoints <= cut when cut > 0.
func trace(t *spectrum.Table, wavelength, cut float64) (float64, []float64, []float64, error) {
	if t.Empty() {
		return 0, nil, nil, fmt.Errorf("kinetics: %w", spectrum.ErrEmptyTable)
	}
	if cut > 0 {
		t = t.SliceTime(cut)
	}
	i := t.NearestRow(wavelength)
	if i < 0 {
		return 0, nil, nil, fmt.Errorf("kinetics: %w", spectrum.ErrEmptyTable)
	}
	return t.Wavelengths[i], append([]float64(nil), t.Times...), t.Row(i), nil
}

// StepConfig configures [Step].
type StepConfig struct {
	Wavelength float64
	// CutTime drops timepoints later than this many seconds; <= 0 keeps all.
	CutTime float64
	// Center seeds the step centre in seconds; NaN uses the middle of the
	// time range.
	Center float64
	// Slope seeds the linear term and is clamped into [SlopeMin, SlopeMax].
	Slope    float64
	SlopeMin float64
	SlopeMax float64
	// Intercept seeds the linear offset; NaN uses the trace mean.
	Intercept float64
	MinCorrel float64
	MaxIter   int
}

// DefaultStepConfig returns the settings of the 412 nm rise analysis.
func DefaultStepConfig() StepConfig {
	return StepConfig{
		Wavelength: 412,
		CutTime:    20,
		Center:     2,
		Slope:      -0.1,
		SlopeMin:   0,
		SlopeMax:   0.1,
		Intercept:  math.NaN(),
		MinCorrel:  0.3,
		MaxIter:    1000,
	}
}

func normalizeStepConfig(cfg StepConfig) StepConfig {
	if !(cfg.SlopeMin < cfg.SlopeMax) {
		cfg.SlopeMin, cfg.SlopeMax = math.Inf(-1), math.Inf(1)
	}
	if cfg.MinCorrel <= 0 {
		cfg.MinCorrel = fit.DefaultMinCorrel
	}
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = 1000
	}
	return cfg
}

// StepGuess estimates step parameters from a trace: amplitude from the
// signal range, centre at the middle of the time range and width of one
// seventh of it.
func StepGuess(x, y []float64) (amplitude, center, sigma float64) {
	xmin, xmax := floats.Min(x), floats.Max(x)
	amplitude = floats.Max(y) - floats.Min(y)
	center = (xmin + xmax) / 2
	sigma = (xmax - xmin) / 7
	return amplitude, center, sigma
}

// Step fits an erf step plus a line to the trace nearest cfg.Wavelength.
func Step(t *spectrum.Table, cfg StepConfig) (*Result, error) {
	cfg = normalizeStepConfig(cfg)
	wl, x, y, err := trace(t, cfg.Wavelength, cfg.CutTime)
	if err != nil {
		return nil, err
	}
	if len(x) < 5 {
		return nil, fmt.Errorf("%w: %d at %g nm", ErrTooFewPoints, len(x), wl)
	}

	model := fit.Sum(fit.Step("step_"), fit.Linear("line_"))
	params := model.MakeParams()
	amp, center, sigma := StepGuess(x, y)
	if !math.IsNaN(cfg.Center) {
		center = cfg.Center
	}
	if sigma <= 0 {
		sigma = 1
	}
	params.MustGet("step_amplitude").Set(amp)
	params.MustGet("step_center").Set(center)
	params.MustGet("step_sigma").Set(sigma)
	params.MustGet("line_slope").Set(cfg.Slope).SetBounds(cfg.SlopeMin, cfg.SlopeMax)
	intercept := cfg.Intercept
	if math.IsNaN(intercept) {
		intercept = stat.Mean(y, nil)
	}
	params.MustGet("line_intercept").Set(intercept)

	res, err := fit.Fit(model, params, x, y, fit.WithMaxIter(cfg.MaxIter))
	if err != nil {
		return nil, fmt.Errorf("kinetics: step fit at %g nm: %w", wl, err)
	}
	return &Result{Wavelength: wl, Fit: res, MinCorrel: cfg.MinCorrel}, nil
}

// DecayConfig configures [Decay].
type DecayConfig struct {
	Wavelengths []float64
	// Amplitude, Rate and Offset seed a*exp(-b*t) + c.
	Amplitude float64
	Rate      float64
	Offset    float64
	CutTime   float64
	MinCorrel float64
	MaxIter   int
}

// DefaultDecayConfig returns seeds (1, 1e-3, 1) at 412 nm.
func DefaultDecayConfig() DecayConfig {
	return DecayConfig{
		Wavelengths: []float64{412},
		Amplitude:   1,
		Rate:        1e-3,
		Offset:      1,
		MinCorrel:   0.3,
		MaxIter:     10000,
	}
}

// Decay fits an exponential decay to the trace nearest each configured
// wavelength.
func Decay(t *spectrum.Table, cfg DecayConfig) ([]*Result, error) {
	if cfg.MinCorrel <= 0 {
		cfg.MinCorrel = fit.DefaultMinCorrel
	}
	out := make([]*Result, 0, len(cfg.Wavelengths))
	for _, want := range cfg.Wavelengths {
		wl, x, y, err := trace(t, want, cfg.CutTime)
		if err != nil {
			return nil, err
		}
		if len(x) < 3 {
			return nil, fmt.Errorf("%w: %d at %g nm", ErrTooFewPoints, len(x), wl)
		}

		model := fit.ExponentialDecay("")
		params := model.MakeParams()
		params.MustGet("amplitude").Set(cfg.Amplitude)
		params.MustGet("rate").Set(cfg.Rate)
		params.MustGet("offset").Set(cfg.Offset)

		res, err := fit.Fit(model, params, x, y, fit.WithMaxIter(cfg.MaxIter))
		if err != nil {
			return nil, fmt.Errorf("kinetics: decay fit at %g nm: %w", wl, err)
		}
		out = append(out, &Result{Wavelength: wl, Fit: res, MinCorrel: cfg.MinCorrel})
	}
	return out, nil
}
