// Package config loads the YAML run configuration shared by the specproc
// subcommands.
//
// A file has three sections: processing (the pipeline), logging, and fits
// (seeds and bounds of the kinetic and spectral fits). Keys that are not set
// keep their defaults; unknown keys are rejected.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/cwbudde/algo-spectra/dsp/baseline"
	"github.com/cwbudde/algo-spectra/dsp/filter/savgol"
	"github.com/cwbudde/algo-spectra/measure/kinetics"
	"github.com/cwbudde/algo-spectra/measure/peaks"
	"github.com/cwbudde/algo-spectra/pipeline"
	"gopkg.in/yaml.v3"
)

// ErrBadBounds is returned for a bounds entry that is not a [min, max] pair.
var ErrBadBounds = errors.New("config: bounds must be [min, max] with min < max")

// File is the root of a configuration document.
type File struct {
	Processing Processing `yaml:"processing"`
	Logging    Logging    `yaml:"logging"`
	Fits       Fits       `yaml:"fits"`
}

// Processing configures the pipeline.
type Processing struct {
	Inputs                []string  `yaml:"inputs"`
	Background            string    `yaml:"background"`
	BackgroundHeaderLines int       `yaml:"background_header_lines"`
	BackgroundFooterLines int       `yaml:"background_footer_lines"`
	HeaderLines           int       `yaml:"header_lines"`
	FooterLines           int       `yaml:"footer_lines"`
	Interval              float64   `yaml:"interval"`
	Output                string    `yaml:"output"`
	Baseline              Baseline  `yaml:"baseline"`
	Smoothing             Smoothing `yaml:"smoothing"`
	BackgroundPlots       []int     `yaml:"background_plots"`
	PlotEvery             int       `yaml:"plot_every"`
	Wavelengths           []float64 `yaml:"wavelengths"`
	TickEvery             int       `yaml:"tick_every"`
	SpectraEvery          int       `yaml:"spectra_every"`
	Parquet               bool      `yaml:"parquet"`
}

// Baseline configures IModPoly baseline removal.
type Baseline struct {
	Enabled     bool    `yaml:"enabled"`
	PolyOrder   int     `yaml:"poly_order"`
	Tol         float64 `yaml:"tol"`
	NumStd      float64 `yaml:"num_std"`
	MaxIter     int     `yaml:"max_iter"`
	UseOriginal bool    `yaml:"use_original"`
}

// Smoothing configures the Savitzky–Golay filter.
type Smoothing struct {
	Enabled      bool `yaml:"enabled"`
	WindowLength int  `yaml:"window_length"`
	PolyOrder    int  `yaml:"poly_order"`
}

// Logging configures the logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Fits holds the fit subcommand settings.
type Fits struct {
	Report  string `yaml:"report"`
	PlotDir string `yaml:"plot_dir"`
	Step    Step   `yaml:"step"`
	Decay   Decay  `yaml:"decay"`
	Peaks   Peaks  `yaml:"peaks"`
}

// Step seeds the step + line kinetic fit. A nil Center guesses the centre
// from the data; a nil Intercept uses the trace mean.
type Step struct {
	Wavelength float64  `yaml:"wavelength"`
	CutTime    float64  `yaml:"cut_time"`
	Center     *float64 `yaml:"center"`
	Slope      float64  `yaml:"slope"`
	SlopeMin   float64  `yaml:"slope_min"`
	SlopeMax   float64  `yaml:"slope_max"`
	Intercept  *float64 `yaml:"intercept"`
	MinCorrel  float64  `yaml:"min_correl"`
	MaxIter    int      `yaml:"max_iter"`
}

// Decay seeds the exponential decay fit.
type Decay struct {
	Wavelengths []float64 `yaml:"wavelengths"`
	Amplitude   float64   `yaml:"amplitude"`
	Rate        float64   `yaml:"rate"`
	Offset      float64   `yaml:"offset"`
	CutTime     float64   `yaml:"cut_time"`
	MinCorrel   float64   `yaml:"min_correl"`
	MaxIter     int       `yaml:"max_iter"`
}

// Peaks configures the Gaussian band decomposition.
type Peaks struct {
	TimeIndex int       `yaml:"time_index"`
	Peaks     []Peak    `yaml:"peaks"`
	Knots     []float64 `yaml:"knots"`
	Range     []float64 `yaml:"range"`
	MinCorrel float64   `yaml:"min_correl"`
	MaxIter   int       `yaml:"max_iter"`
}

// Peak seeds one band. Bounds are optional [min, max] pairs.
type Peak struct {
	Amplitude       float64   `yaml:"amplitude"`
	Center          float64   `yaml:"center"`
	Sigma           float64   `yaml:"sigma"`
	AmplitudeBounds []float64 `yaml:"amplitude_bounds"`
	CenterBounds    []float64 `yaml:"center_bounds"`
	SigmaBounds     []float64 `yaml:"sigma_bounds"`
}

// Default returns the configuration used without a file.
func Default() File {
	pc := pipeline.DefaultConfig()
	bc := baseline.DefaultConfig()
	sc := savgol.DefaultConfig()
	step := kinetics.DefaultStepConfig()
	decay := kinetics.DefaultDecayConfig()
	center := step.Center

	return File{
		Processing: Processing{
			Baseline: Baseline{
				PolyOrder: bc.PolyOrder,
				Tol:       bc.Tol,
				NumStd:    bc.NumStd,
				MaxIter:   bc.MaxIter,
			},
			Smoothing: Smoothing{
				WindowLength: sc.WindowLength,
				PolyOrder:    sc.PolyOrder,
			},
			BackgroundPlots: pc.BackgroundPlots,
			PlotEvery:       pc.PlotEvery,
			TickEvery:       pc.TickEvery,
		},
		Logging: Logging{Level: "info", Format: "console"},
		Fits: Fits{
			Report:  "fit_report.log",
			PlotDir: "fits",
			Step: Step{
				Wavelength: step.Wavelength,
				CutTime:    step.CutTime,
				Center:     &center,
				Slope:      step.Slope,
				SlopeMin:   step.SlopeMin,
				SlopeMax:   step.SlopeMax,
				MinCorrel:  step.MinCorrel,
				MaxIter:    step.MaxIter,
			},
			Decay: Decay{
				Wavelengths: decay.Wavelengths,
				Amplitude:   decay.Amplitude,
				Rate:        decay.Rate,
				Offset:      decay.Offset,
				MinCorrel:   decay.MinCorrel,
				MaxIter:     decay.MaxIter,
			},
			Peaks: Peaks{MinCorrel: 0.3},
		},
	}
}

// Parse decodes a document on top of the defaults.
func Parse(r io.Reader) (File, error) {
	f := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("config: %w", err)
	}
	return f, nil
}

// Load reads and decodes the file at path.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	f, err := Parse(bytes.NewReader(data))
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Pipeline converts the processing section.
func (p Processing) Pipeline() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.Inputs = p.Inputs
	cfg.Background = p.Background
	cfg.BackgroundHeaderLines = p.BackgroundHeaderLines
	cfg.BackgroundFooterLines = p.BackgroundFooterLines
	cfg.HeaderLines = p.HeaderLines
	cfg.FooterLines = p.FooterLines
	cfg.Interval = p.Interval
	cfg.OutputDir = p.Output
	cfg.Baseline = p.Baseline.Enabled
	cfg.BaselineConfig = baseline.Config{
		PolyOrder:   p.Baseline.PolyOrder,
		Tol:         p.Baseline.Tol,
		NumStd:      p.Baseline.NumStd,
		MaxIter:     p.Baseline.MaxIter,
		UseOriginal: p.Baseline.UseOriginal,
	}
	cfg.Smooth = p.Smoothing.Enabled
	cfg.SmoothConfig = savgol.Config{
		WindowLength: p.Smoothing.WindowLength,
		PolyOrder:    p.Smoothing.PolyOrder,
	}
	cfg.BackgroundPlots = p.BackgroundPlots
	cfg.PlotEvery = p.PlotEvery
	cfg.Wavelengths = p.Wavelengths
	cfg.TickEvery = p.TickEvery
	cfg.SpectraEvery = p.SpectraEvery
	cfg.Parquet = p.Parquet
	return cfg
}

// Kinetics converts the step section.
func (s Step) Kinetics() kinetics.StepConfig {
	cfg := kinetics.StepConfig{
		Wavelength: s.Wavelength,
		CutTime:    s.CutTime,
		Center:     math.NaN(),
		Slope:      s.Slope,
		SlopeMin:   s.SlopeMin,
		SlopeMax:   s.SlopeMax,
		Intercept:  math.NaN(),
		MinCorrel:  s.MinCorrel,
		MaxIter:    s.MaxIter,
	}
	if s.Center != nil {
		cfg.Center = *s.Center
	}
	if s.Intercept != nil {
		cfg.Intercept = *s.Intercept
	}
	return cfg
}

// Kinetics converts the decay section.
func (d Decay) Kinetics() kinetics.DecayConfig {
	return kinetics.DecayConfig{
		Wavelengths: d.Wavelengths,
		Amplitude:   d.Amplitude,
		Rate:        d.Rate,
		Offset:      d.Offset,
		CutTime:     d.CutTime,
		MinCorrel:   d.MinCorrel,
		MaxIter:     d.MaxIter,
	}
}

// Config converts the peaks section.
func (p Peaks) Config() (peaks.Config, error) {
	cfg := peaks.Config{
		TimeIndex: p.TimeIndex,
		Knots:     p.Knots,
		MinCorrel: p.MinCorrel,
		MaxIter:   p.MaxIter,
	}
	var err error
	if cfg.Range, err = bounds("range", p.Range); err != nil {
		return peaks.Config{}, err
	}
	for i, pk := range p.Peaks {
		seed := peaks.Peak{Amplitude: pk.Amplitude, Center: pk.Center, Sigma: pk.Sigma}
		name := fmt.Sprintf("peaks[%d]", i)
		if seed.AmplitudeBounds, err = bounds(name+".amplitude_bounds", pk.AmplitudeBounds); err != nil {
			return peaks.Config{}, err
		}
		if seed.CenterBounds, err = bounds(name+".center_bounds", pk.CenterBounds); err != nil {
			return peaks.Config{}, err
		}
		if seed.SigmaBounds, err = bounds(name+".sigma_bounds", pk.SigmaBounds); err != nil {
			return peaks.Config{}, err
		}
		cfg.Peaks = append(cfg.Peaks, seed)
	}
	return cfg, nil
}

func bounds(name string, v []float64) (peaks.Bounds, error) {
	switch {
	case len(v) == 0:
		return peaks.Bounds{}, nil
	case len(v) == 2 && v[0] < v[1]:
		return peaks.Bounds{Min: v[0], Max: v[1]}, nil
	default:
		return peaks.Bounds{}, fmt.Errorf("%w: %s = %v", ErrBadBounds, name, v)
	}
}
