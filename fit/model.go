package fit

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEvaluation is returned when a model cannot be evaluated with the given
// parameter values.
var ErrEvaluation = errors.New("fit: model evaluation failed")

// Model is a parametric curve y = f(x; params).
type Model interface {
	// Name describes the model, e.g. "Model(gaussian, prefix='p1_')".
	Name() string
	// ParamNames returns the prefixed parameter names.
	ParamNames() []string
	// Eval writes f(x) into dst, which must have len(x) elements.
	Eval(dst, x []float64, v Values) error
	// Components returns the leaf components of the model.
	Components() []*Component
	// MakeParams returns a parameter set with default values.
	MakeParams() *Params
}

// Derived is a quantity computed from fitted parameters and shown in the
// report, such as a Gaussian FWHM.
type Derived struct {
	Name string
	Expr string
	Fn   func(Values) float64
}

// Component is a single named model function.
type Component struct {
	kind     string
	prefix   string
	names    []string
	defaults []float64
	eval     func(dst, x, p []float64) error
	derived  []Derived
}

// Kind returns the function name, e.g. "gaussian".
func (c *Component) Kind() string { return c.kind }

// Prefix returns the parameter prefix.
func (c *Component) Prefix() string { return c.prefix }

// Name implements [Model].
func (c *Component) Name() string {
	if c.prefix == "" {
		return fmt.Sprintf("Model(%s)", c.kind)
	}
	return fmt.Sprintf("Model(%s, prefix='%s')", c.kind, c.prefix)
}

// ParamNames implements [Model].
func (c *Component) ParamNames() []string {
	out := make([]string, len(c.names))
	for i, n := range c.names {
		out[i] = c.prefix + n
	}
	return out
}

// Eval implements [Model].
func (c *Component) Eval(dst, x []float64, v Values) error {
	if len(dst) != len(x) {
		return fmt.Errorf("%w: dst has %d elements for %d points", ErrEvaluation, len(dst), len(x))
	}
	p := make([]float64, len(c.names))
	for i, n := range c.names {
		val, ok := v[c.prefix+n]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownParam, c.prefix+n)
		}
		p[i] = val
	}
	return c.eval(dst, x, p)
}

// Components implements [Model].
func (c *Component) Components() []*Component { return []*Component{c} }

// MakeParams implements [Model].
func (c *Component) MakeParams() *Params {
	ps := NewParams()
	for i, n := range c.names {
		ps.Add(c.prefix+n, c.defaults[i])
	}
	return ps
}

// Derived returns the derived quantities of the component.
func (c *Component) Derived() []Derived { return c.derived }

// Composite is the sum of several models.
type Composite struct {
	parts []*Component
}

// Sum returns the model whose value is the sum of the given models.
// Nested composites are flattened.
func Sum(models ...Model) *Composite {
	out := &Composite{}
	for _, m := range models {
		out.parts = append(out.parts, m.Components()...)
	}
	return out
}

// Name implements [Model].
func (m *Composite) Name() string {
	names := make([]string, len(m.parts))
	for i, c := range m.parts {
		names[i] = c.Name()
	}
	return "(" + strings.Join(names, " + ") + ")"
}

// ParamNames implements [Model].
func (m *Composite) ParamNames() []string {
	var out []string
	for _, c := range m.parts {
		out = append(out, c.ParamNames()...)
	}
	return out
}

// Eval implements [Model].
func (m *Composite) Eval(dst, x []float64, v Values) error {
	if len(dst) != len(x) {
		return fmt.Errorf("%w: dst has %d elements for %d points", ErrEvaluation, len(dst), len(x))
	}
	clear(dst)
	buf := make([]float64, len(x))
	for _, c := range m.parts {
		if err := c.Eval(buf, x, v); err != nil {
			return err
		}
		for i, b := range buf {
			dst[i] += b
		}
	}
	return nil
}

// Components implements [Model].
func (m *Composite) Components() []*Component { return m.parts }

// MakeParams implements [Model].
func (m *Composite) MakeParams() *Params {
	ps := NewParams()
	for _, c := range m.parts {
		for i, n := range c.names {
			ps.Add(c.prefix+n, c.defaults[i])
		}
	}
	return ps
}

// evaluate allocates and returns m(x).
func evaluate(m Model, x []float64, v Values) ([]float64, error) {
	out := make([]float64, len(x))
	if err := m.Eval(out, x, v); err != nil {
		return nil, err
	}
	return out, nil
}
