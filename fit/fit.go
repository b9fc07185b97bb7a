package fit

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-vecmath"
	"github.com/maorshutman/lm"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// Errors returned by Fit.
var (
	ErrEmptyInput     = errors.New("fit: empty input")
	ErrLengthMismatch = errors.New("fit: length mismatch")
	ErrNoVarying      = errors.New("fit: no varying parameters")
	ErrTooFewPoints   = errors.New("fit: fewer data points than varying parameters")
	ErrSingular       = errors.New("fit: singular normal equations")
	ErrNonFinite      = errors.New("fit: non-finite residuals at the solution")
)

// Result is the outcome of a fit. It is not modified after Fit returns.
type Result struct {
	Model  Model
	Params *Params
	X, Y   []float64

	InitFit  []float64
	BestFit  []float64
	Residual []float64

	NData  int
	NVarys int
	NFree  int
	NFev   int

	Chisqr float64
	Redchi float64
	AIC    float64
	BIC    float64

	Status  optimize.Status
	Success bool

	// ErrorbarsEstimated is false when the covariance could not be
	// computed; Stderr values are then NaN.
	ErrorbarsEstimated bool
	// VarNames lists the varying parameters in covariance order.
	VarNames []string
	Covar    *mat.SymDense
}

// Fit adjusts the varying parameters of params so that m(x) best matches y
// in the least-squares sense. params is not modified; the fitted values are
// in Result.Params.
func Fit(m Model, params *Params, x, y []float64, opts ...Option) (*Result, error) {
	cfg := ApplyOptions(opts...)
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d x values, %d y values", ErrLengthMismatch, len(x), len(y))
	}
	if cfg.Weights != nil && len(cfg.Weights) != len(x) {
		return nil, fmt.Errorf("%w: %d weights for %d points", ErrLengthMismatch, len(cfg.Weights), len(x))
	}

	ps := params.Clone()
	var vary []*Param
	for _, name := range m.ParamNames() {
		p, ok := ps.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownParam, name)
		}
		if err := p.validate(); err != nil {
			return nil, err
		}
		p.Value = p.clamp(p.Value)
		p.Init = p.Value
		p.Stderr = math.NaN()
		if p.Vary {
			vary = append(vary, p)
		}
	}
	if len(vary) == 0 {
		return nil, ErrNoVarying
	}
	if len(x) < len(vary) {
		return nil, fmt.Errorf("%w: %d points, %d parameters", ErrTooFewPoints, len(x), len(vary))
	}

	base := ps.Values()
	initFit, err := evaluate(m, x, base)
	if err != nil {
		return nil, err
	}

	var (
		nfev     atomic.Int64
		errMu    sync.Mutex
		firstErr error
	)
	// residual must be safe for concurrent use: the numeric Jacobian
	// evaluates columns in parallel.
	residual := func(dst, ext []float64) {
		nfev.Add(1)
		v := maps.Clone(base)
		for i, p := range vary {
			v[p.Name] = ext[i]
		}
		if err := m.Eval(dst, x, v); err != nil {
			errMu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			errMu.Unlock()
			for i := range dst {
				dst[i] = math.NaN()
			}
			return
		}
		floats.Sub(dst, y)
		if cfg.Weights != nil {
			vecmath.MulBlockInPlace(dst, cfg.Weights)
		}
	}
	internal := func(dst, u []float64) {
		ext := make([]float64, len(u))
		for i, p := range vary {
			ext[i] = p.fromInternal(u[i])
		}
		residual(dst, ext)
	}

	start := make([]float64, len(vary))
	for i, p := range vary {
		start[i] = p.toInternal(p.Value)
	}
	jac := lm.NumJac{Func: internal}
	sol, err := solve(lm.LMProblem{
		Dim:        len(vary),
		Size:       len(x),
		Func:       internal,
		Jac:        jac.Jac,
		InitParams: start,
		Tau:        cfg.Tau,
		Eps1:       cfg.GradTol,
		Eps2:       cfg.StepTol,
	}, &lm.Settings{Iterations: cfg.MaxIter, ObjectiveTol: cfg.ObjectiveTol})
	if err != nil {
		return nil, err
	}
	if firstErr != nil {
		return nil, firstErr
	}

	best := make([]float64, len(vary))
	res := &Result{
		Model:    m,
		Params:   ps,
		X:        append([]float64(nil), x...),
		Y:        append([]float64(nil), y...),
		InitFit:  initFit,
		NData:    len(x),
		NVarys:   len(vary),
		Status:   sol.Status,
		Success:  sol.Status != optimize.IterationLimit,
		VarNames: make([]string, len(vary)),
	}
	for i, p := range vary {
		p.Value = p.fromInternal(sol.X[i])
		best[i] = p.Value
		res.VarNames[i] = p.Name
	}

	res.Residual = make([]float64, len(x))
	residual(res.Residual, best)
	for _, r := range res.Residual {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, ErrNonFinite
		}
	}
	if res.BestFit, err = evaluate(m, x, ps.Values()); err != nil {
		return nil, err
	}

	res.NFree = max(res.NData-res.NVarys, 1)
	res.Chisqr = floats.Dot(res.Residual, res.Residual)
	res.Redchi = res.Chisqr / float64(res.NFree)
	n := float64(res.NData)
	logLike := n * math.Log(math.Max(res.Chisqr, 1e-250)/n)
	res.AIC = logLike + 2*float64(res.NVarys)
	res.BIC = logLike + math.Log(n)*float64(res.NVarys)

	if cov, ok := covariance(residual, best, res.NData, res.Redchi); ok {
		res.Covar = cov
		res.ErrorbarsEstimated = true
		for i, p := range vary {
			p.Stderr = math.Sqrt(cov.At(i, i))
		}
	}
	res.NFev = int(nfev.Load())
	return res, nil
}

// solve runs the solver and converts its panic on a singular damped system
// into ErrSingular.
func solve(problem lm.LMProblem, settings *lm.Settings) (res *lm.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("%w: %v", ErrSingular, r)
		}
	}()
	return lm.LM(problem, settings)
}

// covariance returns (J^T J)^-1 * redchi with J taken in external parameter
// space at ext.
func covariance(f func(dst, ext []float64), ext []float64, ndata int, redchi float64) (*mat.SymDense, bool) {
	jac := mat.NewDense(ndata, len(ext), nil)
	fd.Jacobian(jac, f, ext, &fd.JacobianSettings{Formula: fd.Central})

	var jtj mat.SymDense
	jtj.SymOuterK(1, jac.T())

	var chol mat.Cholesky
	if ok := chol.Factorize(&jtj); !ok {
		return nil, false
	}
	var cov mat.SymDense
	if err := chol.InverseTo(&cov); err != nil {
		return nil, false
	}
	cov.ScaleSym(redchi, &cov)
	for i := range len(ext) {
		if d := cov.At(i, i); !(d >= 0) || math.IsInf(d, 0) {
			return nil, false
		}
	}
	return &cov, true
}
