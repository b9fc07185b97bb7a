// Package interp resamples sparse reference data onto a sample grid.
//
// [Linear] mirrors the usual piecewise-linear semantics: values between
// reference points are interpolated, values outside the reference range are
// held at the nearest end value, and reference points that coincide with
// the query grid are reproduced exactly.
package interp
