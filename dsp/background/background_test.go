package background

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-spectra/internal/testutil"
	"github.com/cwbudde/algo-spectra/spectrum"
)

func table(t *testing.T, wl []float64, cols ...[]float64) *spectrum.Table {
	t.Helper()
	labels, times := spectrum.TimeLabels(len(cols), 1)
	tbl, err := spectrum.New(wl, labels, times, cols)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tbl
}

func TestSubtractConstantReference(t *testing.T) {
	tbl := table(t, []float64{400, 500}, []float64{0.1, 0.3}, []float64{0.2, 0.4})
	bg := &spectrum.Background{Wavelengths: []float64{400, 500}, Absorbance: []float64{0.05, 0.05}}

	got, err := Subtract(tbl, bg)
	if err != nil {
		t.Fatalf("Subtract: %v", err)
	}
	testutil.RequireColumnsNearlyEqual(t, got.Data, [][]float64{{0.05, 0.25}, {0.15, 0.35}}, 1e-12)
	testutil.RequireSliceNearlyEqual(t, tbl.Data[0], []float64{0.1, 0.3}, 0)
	if got.Labels[1] != tbl.Labels[1] {
		t.Fatalf("label = %q, want %q", got.Labels[1], tbl.Labels[1])
	}
}

func TestInterpolate(t *testing.T) {
	bg := &spectrum.Background{
		Wavelengths: []float64{400, 450, 500},
		Absorbance:  []float64{1, 2, 4},
	}
	tests := []struct {
		name string
		wl   []float64
		want []float64
	}{
		{"grid points", []float64{400, 450, 500}, []float64{1, 2, 4}},
		{"midpoints", []float64{425, 475}, []float64{1.5, 3}},
		{"clamped", []float64{300, 600}, []float64{1, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Interpolate(bg, tt.wl)
			if err != nil {
				t.Fatalf("Interpolate: %v", err)
			}
			testutil.RequireSliceNearlyEqual(t, got, tt.want, 1e-12)
		})
	}
}

func TestSinglePointReferenceIsConstant(t *testing.T) {
	bg := &spectrum.Background{Wavelengths: []float64{450}, Absorbance: []float64{0.2}}
	got, err := Interpolate(bg, []float64{400, 450, 700})
	if err != nil {
		t.Fatalf("Interpolate: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, got, []float64{0.2, 0.2, 0.2}, 0)
}

func TestSubtractIsLinear(t *testing.T) {
	wl := testutil.Grid(400, 2, 51)
	a := testutil.Gaussian(wl, 3, 450, 10)
	b := testutil.Polynomial(testutil.Grid(-1, 0.04, 51), 0.1, 0.02)
	tbl := table(t, wl, testutil.Add(a, b))
	bg := &spectrum.Background{Wavelengths: wl, Absorbance: b}

	got, err := Subtract(tbl, bg)
	if err != nil {
		t.Fatalf("Subtract: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, got.Column(0), a, 1e-12)
}

func TestEmptyReference(t *testing.T) {
	tbl := table(t, []float64{400}, []float64{1})
	if _, err := Subtract(tbl, &spectrum.Background{}); !errors.Is(err, ErrEmptyBackground) {
		t.Fatalf("expected ErrEmptyBackground, got %v", err)
	}
	if _, err := Subtract(tbl, nil); !errors.Is(err, ErrEmptyBackground) {
		t.Fatalf("expected ErrEmptyBackground, got %v", err)
	}
}
