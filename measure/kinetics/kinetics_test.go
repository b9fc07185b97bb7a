package kinetics

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/algo-spectra/internal/testutil"
	"github.com/cwbudde/algo-spectra/spectrum"
)

// traceTable builds a table whose 412.3 nm row is trace(t) and whose other
// rows are zero.
func traceTable(t *testing.T, n int, interval float64, trace func(float64) float64) *spectrum.Table {
	t.Helper()
	labels, times := spectrum.TimeLabels(n, interval)
	wl := []float64{400, 412.3, 430}
	data := make([][]float64, n)
	for j := range data {
		data[j] = []float64{0, trace(times[j]), 0}
	}
	tbl, err := spectrum.New(wl, labels, times, data)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tbl
}

func TestStepRecoversRise(t *testing.T) {
	tbl := traceTable(t, 301, 0.1, func(x float64) float64 {
		return 0.3*0.5*(1+math.Erf((x-3)/0.8)) + 0.1
	})
	cfg := DefaultStepConfig()
	cfg.Wavelength = 412

	res, err := Step(tbl, cfg)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if res.Wavelength != 412.3 {
		t.Fatalf("wavelength = %v, want 412.3", res.Wavelength)
	}
	if n := len(res.Fit.X); n != 201 {
		t.Fatalf("fitted %d points, want 201 after the 20 s cut", n)
	}
	testutil.RequireNearlyEqual(t, "center", res.Fit.Value("step_center"), 3, 1e-4)
	testutil.RequireNearlyEqual(t, "amplitude", res.Fit.Value("step_amplitude"), 0.3, 1e-4)
	testutil.RequireNearlyEqual(t, "sigma", res.Fit.Value("step_sigma"), 0.8, 1e-4)
	testutil.RequireNearlyEqual(t, "intercept", res.Fit.Value("line_intercept"), 0.1, 1e-4)
	if s := res.Fit.Value("line_slope"); s < 0 || s > 0.1 {
		t.Fatalf("slope %v outside [0, 0.1]", s)
	}
}

func TestStepGuess(t *testing.T) {
	x := testutil.Grid(0, 1, 15)
	y := testutil.Grid(1, 0.5, 15)
	amp, center, sigma := StepGuess(x, y)
	testutil.RequireNearlyEqual(t, "amplitude", amp, 7, 1e-12)
	testutil.RequireNearlyEqual(t, "center", center, 7, 1e-12)
	testutil.RequireNearlyEqual(t, "sigma", sigma, 2, 1e-12)
}

func TestDecay(t *testing.T) {
	tbl := traceTable(t, 201, 5, func(x float64) float64 {
		return 2*math.Exp(-0.004*x) + 0.5
	})
	cfg := DefaultDecayConfig()
	cfg.Wavelengths = []float64{415, 412}

	res, err := Decay(tbl, cfg)
	if err != nil {
		t.Fatalf("Decay: %v", err)
	}
	if len(res) != 2 || res[0].Wavelength != 412.3 || res[1].Wavelength != 412.3 {
		t.Fatalf("unexpected results %v", res)
	}
	testutil.RequireNearlyEqual(t, "amplitude", res[0].Fit.Value("amplitude"), 2, 1e-4)
	testutil.RequireNearlyEqual(t, "rate", res[0].Fit.Value("rate"), 0.004, 1e-7)
	testutil.RequireNearlyEqual(t, "offset", res[0].Fit.Value("offset"), 0.5, 1e-4)
}

func TestReportAndPlot(t *testing.T) {
	tbl := traceTable(t, 301, 0.1, func(x float64) float64 {
		return 0.3*0.5*(1+math.Erf((x-3)/0.8)) + 0.1
	})
	cfg := DefaultStepConfig()
	res, err := Step(tbl, cfg)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}

	dir := t.TempDir()
	logPath := filepath.Join(dir, "time_analysis_fit_report.log")
	for range 2 {
		if err := res.AppendReport(logPath, "run-1"); err != nil {
			t.Fatalf("AppendReport: %v", err)
		}
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := strings.Count(string(data), "Spectra wavelength: 412.3\nrun_id: run-1\n[[Model]]"); got != 2 {
		t.Fatalf("found %d report headings, want 2:\n%s", got, data)
	}

	path, err := res.Plot(filepath.Join(dir, "plots"))
	if err != nil {
		t.Fatalf("Plot: %v", err)
	}
	if filepath.Base(path) != "fit_412.3_nm.png" {
		t.Fatalf("plot path = %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("plot missing: %v", err)
	}
}

func TestErrors(t *testing.T) {
	if _, err := Step(&spectrum.Table{}, DefaultStepConfig()); !errors.Is(err, spectrum.ErrEmptyTable) {
		t.Fatalf("expected ErrEmptyTable, got %v", err)
	}
	short := traceTable(t, 3, 1, func(float64) float64 { return 1 })
	if _, err := Step(short, DefaultStepConfig()); !errors.Is(err, ErrTooFewPoints) {
		t.Fatalf("expected ErrTooFewPoints, got %v", err)
	}
}
