package interp

import (
	"errors"
	"fmt"

	gonuminterp "gonum.org/v1/gonum/interp"
)

// Errors returned by interpolation functions.
var (
	ErrEmpty          = errors.New("interp: no reference points")
	ErrLengthMismatch = errors.New("interp: xp and fp differ in length")
	ErrNotAscending   = errors.New("interp: xp must be strictly ascending")
)

// NewLinear returns a piecewise-linear predictor through (xp, fp) that holds
// the end values outside the reference range. A single reference point
// yields a constant predictor.
func NewLinear(xp, fp []float64) (gonuminterp.Predictor, error) {
	if len(xp) == 0 {
		return nil, ErrEmpty
	}
	if len(xp) != len(fp) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(xp), len(fp))
	}
	for i := 1; i < len(xp); i++ {
		if !(xp[i] > xp[i-1]) {
			return nil, fmt.Errorf("%w: xp[%d]=%v after %v", ErrNotAscending, i, xp[i], xp[i-1])
		}
	}
	if len(xp) == 1 {
		return gonuminterp.Constant(fp[0]), nil
	}

	var pl gonuminterp.PiecewiseLinear
	if err := pl.Fit(xp, fp); err != nil {
		return nil, err
	}
	return pl, nil
}

// Linear evaluates the piecewise-linear interpolant through (xp, fp) at
// every x and returns a new slice.
func Linear(x, xp, fp []float64) ([]float64, error) {
	p, err := NewLinear(xp, fp)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = p.Predict(v)
	}
	return out, nil
}
