// Package fit performs bounded nonlinear least-squares fits of composite
// parametric models.
//
// A model is a sum of named components ([Gaussian], [Step], [Linear],
// [ExponentialDecay], [Spline]) whose parameters are distinguished by a
// per-component prefix. Parameters carry a value, optional bounds and a vary
// flag. Bounded parameters are optimised in an unbounded internal space via
// the MINUIT transforms, so the Levenberg–Marquardt solver never leaves the
// allowed range.
//
// After the fit, standard errors and correlations are taken from the
// covariance matrix (J^T J)^-1 scaled by the reduced chi-square, evaluated at
// the optimum in external parameter space.
//
// # Usage
//
//	model := fit.Sum(fit.Step("step_"), fit.Linear("line_"))
//	params := model.MakeParams()
//	params.MustGet("step_center").Set(2)
//	res, err := fit.Fit(model, params, times, absorbance)
//	fmt.Print(res.Report(0.1))
package fit
