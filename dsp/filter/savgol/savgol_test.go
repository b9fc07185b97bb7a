package savgol

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-spectra/internal/testutil"
)

func TestCoefficientsKnownValues(t *testing.T) {
	// Classic 5-point quadratic smoothing weights: (-3, 12, 17, 12, -3) / 35.
	got, err := Coefficients(5, 2)
	if err != nil {
		t.Fatalf("Coefficients: %v", err)
	}
	want := []float64{-3.0 / 35, 12.0 / 35, 17.0 / 35, 12.0 / 35, -3.0 / 35}
	testutil.RequireSliceNearlyEqual(t, got, want, 1e-12)
}

func TestCoefficientsSumToOne(t *testing.T) {
	for _, tc := range []struct{ w, p int }{{5, 2}, {11, 2}, {21, 4}, {101, 3}} {
		h, err := Coefficients(tc.w, tc.p)
		if err != nil {
			t.Fatalf("Coefficients(%d, %d): %v", tc.w, tc.p, err)
		}
		sum := 0.0
		for _, v := range h {
			sum += v
		}
		testutil.RequireNearlyEqual(t, "sum", sum, 1, 1e-10)
	}
}

func TestApplyPreservesConstant(t *testing.T) {
	x := testutil.DC(0.42, 200)
	for _, tc := range []struct{ w, p int }{{11, 2}, {5, 0}, {129, 3}} {
		got, err := Smooth(x, tc.w, tc.p)
		if err != nil {
			t.Fatalf("Smooth(%d, %d): %v", tc.w, tc.p, err)
		}
		testutil.RequireSliceNearlyEqual(t, got, x, 1e-9)
	}
}

func TestApplyPreservesQuadratic(t *testing.T) {
	grid := testutil.Grid(-1, 0.02, 101)
	x := testutil.Polynomial(grid, 0.1, 0.5, -0.7)
	got, err := Smooth(x, 11, 2)
	if err != nil {
		t.Fatalf("Smooth: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, got, x, 1e-9)
}

func TestApplyReducesNoise(t *testing.T) {
	noise := testutil.Noise(11, 0.1, 500)
	got, err := Smooth(noise, 21, 2)
	if err != nil {
		t.Fatalf("Smooth: %v", err)
	}
	var in, out float64
	for i := 20; i < 480; i++ {
		in += noise[i] * noise[i]
		out += got[i] * got[i]
	}
	if out >= in/2 {
		t.Fatalf("noise energy %v -> %v, expected at least 2x reduction", in, out)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		w, p int
		n    int
		err  error
	}{
		{name: "even window", w: 10, p: 2, n: 50, err: ErrWindowLength},
		{name: "zero window", w: 0, p: 0, n: 50, err: ErrWindowLength},
		{name: "order too high", w: 5, p: 5, n: 50, err: ErrPolyOrder},
		{name: "window too long", w: 11, p: 2, n: 7, err: ErrWindowTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Smooth(testutil.DC(1, tt.n), tt.w, tt.p)
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
		})
	}
	if _, err := Smooth(nil, 5, 2); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}
