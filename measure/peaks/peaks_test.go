package peaks

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/algo-spectra/internal/testutil"
	"github.com/cwbudde/algo-spectra/spectrum"
)

func spectrumTable(t *testing.T, cols ...[]float64) *spectrum.Table {
	t.Helper()
	labels, times := spectrum.TimeLabels(len(cols), 1)
	tbl, err := spectrum.New(testutil.Grid(350, 1, 301), labels, times, cols)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tbl
}

func TestAnalyzeTwoBandsOnFlatBackground(t *testing.T) {
	wl := testutil.Grid(350, 1, 301)
	y := testutil.Add(
		testutil.Gaussian(wl, 20, 420, 8),
		testutil.Gaussian(wl, 12, 520, 12),
		testutil.DC(0.05, len(wl)),
	)
	tbl := spectrumTable(t, testutil.DC(0, len(wl)), y)

	res, err := Analyze(tbl, Config{
		TimeIndex: 1,
		Peaks: []Peak{
			{Amplitude: 15, Center: 415, Sigma: 10, CenterBounds: Bounds{400, 440}},
			{Amplitude: 10, Center: 525, Sigma: 10, SigmaBounds: Bounds{1, 30}},
		},
		Knots: []float64{350, 500, 650},
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Label != "1.0s" {
		t.Fatalf("label = %q", res.Label)
	}
	testutil.RequireNearlyEqual(t, "p1_center", res.Fit.Value("p1_center"), 420, 1e-3)
	testutil.RequireNearlyEqual(t, "p2_center", res.Fit.Value("p2_center"), 520, 1e-3)
	testutil.RequireNearlyEqual(t, "p1_sigma", res.Fit.Value("p1_sigma"), 8, 1e-3)
	testutil.RequireNearlyEqual(t, "p2_amplitude", res.Fit.Value("p2_amplitude"), 12, 1e-3)
	testutil.RequireNearlyEqual(t, "bkg_s1", res.Fit.Value("bkg_s1"), 0.05, 1e-4)

	dir := t.TempDir()
	logPath := filepath.Join(dir, "peaks.log")
	if err := res.AppendReport(logPath, ""); err != nil {
		t.Fatalf("AppendReport: %v", err)
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(data), "\nSpectrum time: 1.0s\n[[Model]]") {
		t.Fatalf("unexpected log:\n%s", data)
	}
	path, err := res.Plot(dir)
	if err != nil {
		t.Fatalf("Plot: %v", err)
	}
	if filepath.Base(path) != "peaks_1_0s.png" {
		t.Fatalf("plot path = %s", path)
	}
}

func TestAnalyzeRange(t *testing.T) {
	wl := testutil.Grid(350, 1, 301)
	y := testutil.Add(testutil.Gaussian(wl, 20, 420, 8), testutil.Gaussian(wl, 50, 600, 5))
	tbl := spectrumTable(t, y)

	res, err := Analyze(tbl, Config{
		Peaks: []Peak{{Amplitude: 10, Center: 425, Sigma: 5}},
		Range: Bounds{360, 500},
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if n := len(res.Fit.X); n != 141 {
		t.Fatalf("fit range has %d points, want 141", n)
	}
	testutil.RequireNearlyEqual(t, "center", res.Fit.Value("p1_center"), 420, 1e-3)
}

func TestAnalyzeErrors(t *testing.T) {
	tbl := spectrumTable(t, testutil.DC(0, 301))
	tests := []struct {
		name string
		tbl  *spectrum.Table
		cfg  Config
		want error
	}{
		{"no peaks", tbl, Config{}, ErrNoPeaks},
		{"empty", &spectrum.Table{}, Config{Peaks: []Peak{{}}}, spectrum.ErrEmptyTable},
		{"column", tbl, Config{TimeIndex: 3, Peaks: []Peak{{}}}, spectrum.ErrColumnOutRange},
		{"range", tbl, Config{Peaks: []Peak{{}}, Range: Bounds{360, 361}}, ErrTooFewPoints},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Analyze(tt.tbl, tt.cfg); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}
