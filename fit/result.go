package fit

import (
	"cmp"
	"math"
	"slices"
)

// Eval evaluates the best-fit model at x.
func (r *Result) Eval(x []float64) ([]float64, error) {
	return evaluate(r.Model, x, r.Params.Values())
}

// EvalComponents evaluates every component of the best-fit model at x,
// keyed by component prefix (or kind when the prefix is empty).
func (r *Result) EvalComponents(x []float64) (map[string][]float64, error) {
	v := r.Params.Values()
	out := make(map[string][]float64)
	for _, c := range r.Model.Components() {
		y, err := evaluate(c, x, v)
		if err != nil {
			return nil, err
		}
		key := c.Prefix()
		if key == "" {
			key = c.Kind()
		}
		out[key] = y
	}
	return out, nil
}

// Value returns the fitted value of the named parameter.
func (r *Result) Value(name string) float64 {
	if p, ok := r.Params.Get(name); ok {
		return p.Value
	}
	return math.NaN()
}

// Correl returns the correlation coefficient of two varying parameters.
func (r *Result) Correl(a, b string) (float64, bool) {
	if r.Covar == nil {
		return 0, false
	}
	i, j := slices.Index(r.VarNames, a), slices.Index(r.VarNames, b)
	if i < 0 || j < 0 {
		return 0, false
	}
	return r.Covar.At(i, j) / math.Sqrt(r.Covar.At(i, i)*r.Covar.At(j, j)), true
}

// Correlation is a pair of parameters and their correlation coefficient.
type Correlation struct {
	A, B  string
	Value float64
}

// Correlations returns the pairs with |C| >= minCorrel, strongest first.
func (r *Result) Correlations(minCorrel float64) []Correlation {
	var out []Correlation
	for i, a := range r.VarNames {
		for _, b := range r.VarNames[i+1:] {
			c, ok := r.Correl(a, b)
			if ok && math.Abs(c) >= minCorrel {
				out = append(out, Correlation{A: a, B: b, Value: c})
			}
		}
	}
	slices.SortStableFunc(out, func(x, y Correlation) int {
		return cmp.Compare(math.Abs(y.Value), math.Abs(x.Value))
	})
	return out
}

// DerivedValue is a derived quantity evaluated at the best fit.
type DerivedValue struct {
	Derived
	Value  float64
	Stderr float64
}

// DerivedValues evaluates the derived quantities of all components. The
// standard error is propagated linearly through the covariance.
func (r *Result) DerivedValues() []DerivedValue {
	v := r.Params.Values()
	var out []DerivedValue
	for _, c := range r.Model.Components() {
		for _, d := range c.Derived() {
			dv := DerivedValue{Derived: d, Value: d.Fn(v), Stderr: math.NaN()}
			if r.Covar != nil {
				dv.Stderr = r.propagate(d.Fn, v)
			}
			out = append(out, dv)
		}
	}
	return out
}

func (r *Result) propagate(fn func(Values) float64, v Values) float64 {
	grad := make([]float64, len(r.VarNames))
	for i, name := range r.VarNames {
		x0 := v[name]
		h := 1e-6 * math.Max(math.Abs(x0), 1)
		v[name] = x0 + h
		hi := fn(v)
		v[name] = x0 - h
		lo := fn(v)
		v[name] = x0
		grad[i] = (hi - lo) / (2 * h)
	}
	var variance float64
	for i := range grad {
		for j := range grad {
			variance += grad[i] * r.Covar.At(i, j) * grad[j]
		}
	}
	return math.Sqrt(math.Max(variance, 0))
}
