// Package baseline estimates slowly varying polynomial baselines under
// absorbance spectra.
//
// Two iterative polynomial methods are provided:
//
//   - [IModPoly]: improved modified polyfit (Zhao et al., 2007). Each
//     iteration clips the signal to baseline + NumStd*σ, where σ is the
//     residual standard deviation, and refits. Iteration stops when σ changes
//     by less than Tol (relative).
//   - [ModPoly]: modified polyfit (Lieber & Mahadevan-Jansen, 2003). Each
//     iteration clips the signal to the current baseline and stops when the
//     baseline changes by less than Tol (relative L2 norm).
//
// The abscissa is mapped onto [-1, 1] before fitting, so the returned
// coefficients refer to that scaled domain.
//
// # Usage
//
//	res, err := baseline.IModPoly(absorbance, wavelengths,
//		baseline.WithPolyOrder(4), baseline.WithTolerance(1e-3))
//	corrected := baseline.Subtract(absorbance, res.Baseline)
package baseline
