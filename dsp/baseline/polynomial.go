package baseline

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-spectra/internal/polyfit"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Errors returned by the baseline estimators.
var (
	ErrEmptyInput     = errors.New("baseline: empty input")
	ErrLengthMismatch = errors.New("baseline: x and y differ in length")
	ErrNegativeNumStd = errors.New("baseline: num_std must be >= 0")
)

// Result holds a fitted baseline.
type Result struct {
	Baseline     []float64
	Coefficients []float64
	Iterations   int
	Converged    bool
	// TolHistory records the convergence measure of each iteration.
	TolHistory []float64
}

// IModPoly fits an improved modified polynomial baseline to y sampled at x.
func IModPoly(y, x []float64, opts ...Option) (Result, error) {
	cfg := ApplyOptions(opts...)
	if cfg.NumStd < 0 {
		return Result{}, fmt.Errorf("%w: %v", ErrNegativeNumStd, cfg.NumStd)
	}
	basis, err := setup(y, x, cfg)
	if err != nil {
		return Result{}, err
	}

	work := append([]float64(nil), y...)
	coef, fit, err := basis.Fit(work)
	if err != nil {
		return Result{}, err
	}
	deviation := residualStd(work, fit)

	res := Result{TolHistory: make([]float64, 0, cfg.MaxIter)}
	for res.Iterations < cfg.MaxIter {
		res.Iterations++
		src := work
		if cfg.UseOriginal {
			src = y
		}
		for i := range work {
			work[i] = math.Min(src[i], fit[i]+cfg.NumStd*deviation)
		}
		if coef, fit, err = basis.Fit(work); err != nil {
			return Result{}, err
		}
		newDeviation := residualStd(work, fit)
		diff := math.Abs(deviation-newDeviation) / math.Max(math.Abs(deviation), epsilon)
		res.TolHistory = append(res.TolHistory, diff)
		if diff < cfg.Tol {
			res.Converged = true
			break
		}
		deviation = newDeviation
	}

	res.Baseline = fit
	res.Coefficients = coef
	return res, nil
}

// ModPoly fits a modified polynomial baseline to y sampled at x.
func ModPoly(y, x []float64, opts ...Option) (Result, error) {
	cfg := ApplyOptions(opts...)
	basis, err := setup(y, x, cfg)
	if err != nil {
		return Result{}, err
	}

	work := append([]float64(nil), y...)
	coef, fit, err := basis.Fit(work)
	if err != nil {
		return Result{}, err
	}

	res := Result{TolHistory: make([]float64, 0, cfg.MaxIter)}
	for res.Iterations < cfg.MaxIter {
		res.Iterations++
		src := work
		if cfg.UseOriginal {
			src = y
		}
		for i := range work {
			work[i] = math.Min(src[i], fit[i])
		}
		prev := fit
		if coef, fit, err = basis.Fit(work); err != nil {
			return Result{}, err
		}
		diff := floats.Distance(fit, prev, 2) / math.Max(floats.Norm(prev, 2), epsilon)
		res.TolHistory = append(res.TolHistory, diff)
		if diff < cfg.Tol {
			res.Converged = true
			break
		}
	}

	res.Baseline = fit
	res.Coefficients = coef
	return res, nil
}

// Subtract returns y - baseline as a new slice.
func Subtract(y, baseline []float64) []float64 {
	return floats.SubTo(make([]float64, len(y)), y, baseline)
}

const epsilon = 2.220446049250313e-16

func setup(y, x []float64, cfg Config) (*polyfit.Basis, error) {
	if len(y) == 0 {
		return nil, ErrEmptyInput
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(x), len(y))
	}
	basis, err := polyfit.NewBasis(x, cfg.PolyOrder, cfg.Weights)
	if err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}
	return basis, nil
}

// residualStd is the population standard deviation of y - fit.
func residualStd(y, fit []float64) float64 {
	return stat.PopStdDev(floats.SubTo(make([]float64, len(y)), y, fit), nil)
}
