package pipeline

import (
	"errors"
	"path/filepath"

	"github.com/cwbudde/algo-spectra/dsp/baseline"
	"github.com/cwbudde/algo-spectra/dsp/filter/savgol"
	"go.uber.org/zap"
)

// ErrNoInputs is returned when no input pattern is given.
var ErrNoInputs = errors.New("pipeline: no input patterns")

// Stage table and plot directory names inside the output directory.
const (
	MeanCSV          = "mean.csv"
	BackgroundCSV    = "background_subtracted.csv"
	BaselineCSV      = "baseline_corrected.csv"
	SmoothedCSV      = "smoothed.csv"
	FinalCSV         = "final.csv"
	FinalParquet     = "final.parquet"
	BackgroundDir    = "background_subtraction"
	BaselineDir      = "baseline_correction"
	SmoothingDir     = "smoothing"
	WavelengthsDir   = "wavelengths_time"
	SpectraDir       = "spectra_time"
	OutputDirSuffix  = "_spec"
	defaultPlotEvery = 100
)

// Config describes one processing run.
type Config struct {
	// Inputs are glob patterns of raw sample files.
	Inputs []string
	// Background is the path of a two-column reference spectrum; empty
	// disables background subtraction.
	Background string
	// BackgroundHeaderLines and BackgroundFooterLines frame the reference
	// file independently of the sample files.
	BackgroundHeaderLines int
	BackgroundFooterLines int
	HeaderLines           int
	FooterLines           int
	// Interval is the time between spectra in seconds; <= 0 labels columns
	// in 100 ms steps.
	Interval float64
	// OutputDir defaults to "<basename of first input>_spec".
	OutputDir string

	Baseline       bool
	BaselineConfig baseline.Config
	Smooth         bool
	SmoothConfig   savgol.Config

	// BackgroundPlots lists the column indices plotted after background
	// subtraction. Out-of-range indices are skipped.
	BackgroundPlots []int
	// PlotEvery selects every n-th spectrum for baseline and smoothing
	// diagnostics.
	PlotEvery int

	// Wavelengths are plotted over time when non-empty.
	Wavelengths []float64
	// TickEvery spaces the time-axis tick labels of the wavelength plot.
	TickEvery int
	// SpectraEvery plots every n-th spectrum over wavelength when > 0.
	SpectraEvery int

	Parquet bool

	Logger *zap.Logger
	RunID  string
}

// DefaultConfig returns the settings used when no configuration file is
// given.
func DefaultConfig() Config {
	return Config{
		BaselineConfig:  baseline.DefaultConfig(),
		SmoothConfig:    savgol.DefaultConfig(),
		BackgroundPlots: []int{0, 10, 100},
		PlotEvery:       defaultPlotEvery,
		TickEvery:       defaultPlotEvery,
	}
}

// DefaultOutputDir derives the output directory from the first input.
func DefaultOutputDir(firstInput string) string {
	return filepath.Base(firstInput) + OutputDirSuffix
}

func normalizeConfig(cfg Config, first string) Config {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir(first)
	}
	if cfg.BaselineConfig.MaxIter == 0 && cfg.BaselineConfig.Tol == 0 {
		cfg.BaselineConfig = baseline.DefaultConfig()
	}
	if cfg.SmoothConfig.WindowLength == 0 {
		cfg.SmoothConfig = savgol.DefaultConfig()
	}
	if cfg.PlotEvery <= 0 {
		cfg.PlotEvery = defaultPlotEvery
	}
	if cfg.TickEvery <= 0 {
		cfg.TickEvery = defaultPlotEvery
	}
	return cfg
}
