// Package background removes a reference (solvent or blank) spectrum from
// every timepoint of an absorbance table.
//
// The reference is resolved onto the sample wavelength grid by linear
// interpolation. Outside the reference range the end values are held.
package background

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-spectra/dsp/interp"
	"github.com/cwbudde/algo-spectra/spectrum"
	"gonum.org/v1/gonum/floats"
)

// ErrEmptyBackground is returned when the reference spectrum has no points.
var ErrEmptyBackground = errors.New("background: empty reference spectrum")

// Interpolate resolves bg onto wavelengths.
func Interpolate(bg *spectrum.Background, wavelengths []float64) ([]float64, error) {
	if bg.Len() == 0 {
		return nil, ErrEmptyBackground
	}
	out, err := interp.Linear(wavelengths, bg.Wavelengths, bg.Absorbance)
	if err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	return out, nil
}

// Subtract returns a new table with the interpolated reference subtracted
// from every column of t. t is not modified.
func Subtract(t *spectrum.Table, bg *spectrum.Background) (*spectrum.Table, error) {
	ref, err := Interpolate(bg, t.Wavelengths)
	if err != nil {
		return nil, err
	}
	return t.MapColumns(func(_ int, col []float64) ([]float64, error) {
		return floats.SubTo(make([]float64, len(col)), col, ref), nil
	})
}
