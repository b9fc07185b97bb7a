package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sample = `
processing:
  inputs: ["data/run*.txt"]
  background: bg.txt
  header_lines: 19
  footer_lines: 1
  interval: 0.5
  baseline:
    enabled: true
    poly_order: 3
  smoothing:
    enabled: true
    window_length: 21
  wavelengths: [412, 500]
  parquet: true
logging:
  level: debug
  format: json
fits:
  report: out/kinetics.log
  step:
    wavelength: 430
    center: null
    intercept: 0.2
  peaks:
    time_index: 5
    knots: [350, 500, 650]
    range: [360, 640]
    peaks:
      - {amplitude: 10, center: 420, sigma: 8, center_bounds: [400, 440]}
      - {amplitude: 5, center: 520, sigma: 10}
`

func TestParseOverridesDefaults(t *testing.T) {
	f, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	pc := f.Processing.Pipeline()
	if len(pc.Inputs) != 1 || pc.Background != "bg.txt" || pc.HeaderLines != 19 || pc.FooterLines != 1 {
		t.Fatalf("pipeline config = %+v", pc)
	}
	if !pc.Baseline || pc.BaselineConfig.PolyOrder != 3 || pc.BaselineConfig.Tol != 1e-3 || pc.BaselineConfig.MaxIter != 250 {
		t.Fatalf("baseline config = %+v", pc.BaselineConfig)
	}
	if !pc.Smooth || pc.SmoothConfig.WindowLength != 21 || pc.SmoothConfig.PolyOrder != 2 {
		t.Fatalf("smoothing config = %+v", pc.SmoothConfig)
	}
	if pc.PlotEvery != 100 || len(pc.BackgroundPlots) != 3 || !pc.Parquet {
		t.Fatalf("plot settings = %+v", pc)
	}
	if f.Logging.Level != "debug" || f.Logging.Format != "json" {
		t.Fatalf("logging = %+v", f.Logging)
	}

	step := f.Fits.Step.Kinetics()
	if step.Wavelength != 430 || !math.IsNaN(step.Center) || step.Intercept != 0.2 || step.CutTime != 20 {
		t.Fatalf("step config = %+v", step)
	}
	if f.Fits.PlotDir != "fits" || f.Fits.Report != "out/kinetics.log" {
		t.Fatalf("fits = %+v", f.Fits)
	}

	pk, err := f.Fits.Peaks.Config()
	if err != nil {
		t.Fatalf("Peaks.Config: %v", err)
	}
	if pk.TimeIndex != 5 || len(pk.Peaks) != 2 || pk.Range.Min != 360 || pk.Range.Max != 640 {
		t.Fatalf("peaks config = %+v", pk)
	}
	if pk.Peaks[0].CenterBounds.Min != 400 || pk.Peaks[1].CenterBounds.Max != 0 {
		t.Fatalf("peak bounds = %+v", pk.Peaks)
	}
}

func TestDefaults(t *testing.T) {
	f, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	step := f.Fits.Step.Kinetics()
	if step.Center != 2 || !math.IsNaN(step.Intercept) || step.SlopeMax != 0.1 {
		t.Fatalf("step defaults = %+v", step)
	}
	decay := f.Fits.Decay.Kinetics()
	if decay.Amplitude != 1 || decay.Rate != 1e-3 || decay.Offset != 1 || len(decay.Wavelengths) != 1 {
		t.Fatalf("decay defaults = %+v", decay)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse(strings.NewReader("processing:\n  unknown_key: 1\n")); err == nil {
		t.Fatal("expected error for unknown key")
	}
	f, err := Parse(strings.NewReader("fits:\n  peaks:\n    range: [500, 400]\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := f.Fits.Peaks.Config(); !errors.Is(err, ErrBadBounds) {
		t.Fatalf("expected ErrBadBounds, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Processing.Interval != 0.5 {
		t.Fatalf("interval = %v", f.Processing.Interval)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}
