package interp

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-spectra/internal/testutil"
)

func TestLinearExactAtReferencePoints(t *testing.T) {
	xp := []float64{400, 410, 425, 500}
	fp := []float64{0.05, 0.07, 0.02, 0.11}
	got, err := Linear(xp, xp, fp)
	if err != nil {
		t.Fatalf("Linear: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, got, fp, 0)
}

func TestLinear(t *testing.T) {
	tests := []struct {
		name string
		x    []float64
		xp   []float64
		fp   []float64
		want []float64
	}{
		{
			name: "midpoints",
			x:    []float64{405, 450},
			xp:   []float64{400, 410, 500},
			fp:   []float64{0, 1, 10},
			want: []float64{0.5, 5},
		},
		{
			name: "clamped ends",
			x:    []float64{300, 600},
			xp:   []float64{400, 500},
			fp:   []float64{1, 2},
			want: []float64{1, 2},
		},
		{
			name: "single point",
			x:    []float64{1, 2, 3},
			xp:   []float64{2},
			fp:   []float64{0.5},
			want: []float64{0.5, 0.5, 0.5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Linear(tt.x, tt.xp, tt.fp)
			if err != nil {
				t.Fatalf("Linear: %v", err)
			}
			testutil.RequireSliceNearlyEqual(t, got, tt.want, 1e-12)
		})
	}
}

func TestLinearErrors(t *testing.T) {
	if _, err := Linear(nil, nil, nil); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if _, err := Linear(nil, []float64{1, 2}, []float64{1}); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
	if _, err := Linear(nil, []float64{2, 1}, []float64{1, 1}); !errors.Is(err, ErrNotAscending) {
		t.Fatalf("expected ErrNotAscending, got %v", err)
	}
}
