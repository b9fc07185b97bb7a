// Package conv provides linear convolution for smoothing kernels.
//
// Two strategies are available:
//
//   - Direct: O(N*M) time-domain convolution, best for short kernels
//   - Overlap-add: FFT-based block convolution for long kernels
//
// [Convolve] picks between them by kernel length, and [ConvolveMode]
// trims the full result to the requested output mode:
//
//	smoothed, err := conv.ConvolveMode(spectrum, kernel, conv.ModeSame)
package conv
