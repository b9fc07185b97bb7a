// Package savgol implements Savitzky–Golay smoothing.
//
// Each output sample is the value at the window centre of a least-squares
// polynomial fitted to the surrounding window. Interior samples reduce to a
// fixed convolution kernel ([Coefficients]); the first and last half-window
// samples are taken from a polynomial fitted to the first and last full
// window, which matches the "interp" edge mode of common toolkits.
//
// The filter preserves polynomials up to the configured order exactly, and
// in particular leaves constant spectra unchanged.
//
//	f, err := savgol.New(savgol.WithWindowLength(11), savgol.WithPolyOrder(2))
//	smoothed, err := f.Apply(spectrum)
package savgol
