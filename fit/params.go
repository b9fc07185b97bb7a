package fit

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// Errors returned by parameter handling.
var (
	ErrUnknownParam  = errors.New("fit: unknown parameter")
	ErrInvalidBounds = errors.New("fit: min must be below max")
)

// Param is a single model parameter.
type Param struct {
	Name  string
	Value float64
	Min   float64
	Max   float64
	Vary  bool
	// Init is the value the last fit started from.
	Init float64
	// Stderr is the standard error estimated by the last fit; NaN when not
	// available.
	Stderr float64
}

// Set assigns the value and returns p for chaining.
func (p *Param) Set(value float64) *Param {
	p.Value = value
	return p
}

// SetBounds assigns the bounds. Use ±Inf for an open side.
func (p *Param) SetBounds(lo, hi float64) *Param {
	p.Min, p.Max = lo, hi
	return p
}

// Fix excludes the parameter from the optimisation.
func (p *Param) Fix() *Param {
	p.Vary = false
	return p
}

// Bounded reports whether either side is finite.
func (p *Param) Bounded() bool {
	return !math.IsInf(p.Min, -1) || !math.IsInf(p.Max, 1)
}

func (p *Param) validate() error {
	if math.IsNaN(p.Min) || math.IsNaN(p.Max) || !(p.Min < p.Max) {
		return fmt.Errorf("%w: %s [%v, %v]", ErrInvalidBounds, p.Name, p.Min, p.Max)
	}
	return nil
}

// clamp returns the value limited to the bounds.
func (p *Param) clamp(v float64) float64 {
	return math.Min(math.Max(v, p.Min), p.Max)
}

// toInternal maps an external value into the unbounded space seen by the
// solver.
func (p *Param) toInternal(v float64) float64 {
	v = p.clamp(v)
	loInf, hiInf := math.IsInf(p.Min, -1), math.IsInf(p.Max, 1)
	switch {
	case loInf && hiInf:
		return v
	case hiInf:
		return math.Sqrt((v-p.Min+1)*(v-p.Min+1) - 1)
	case loInf:
		return math.Sqrt((p.Max-v+1)*(p.Max-v+1) - 1)
	default:
		return math.Asin(2*(v-p.Min)/(p.Max-p.Min) - 1)
	}
}

// fromInternal is the inverse of toInternal.
func (p *Param) fromInternal(u float64) float64 {
	loInf, hiInf := math.IsInf(p.Min, -1), math.IsInf(p.Max, 1)
	switch {
	case loInf && hiInf:
		return u
	case hiInf:
		return p.Min - 1 + math.Sqrt(u*u+1)
	case loInf:
		return p.Max + 1 - math.Sqrt(u*u+1)
	default:
		return p.Min + (math.Sin(u)+1)*(p.Max-p.Min)/2
	}
}

// Params is an ordered set of named parameters.
type Params struct {
	order  []string
	byName map[string]*Param
}

// NewParams returns an empty parameter set.
func NewParams() *Params {
	return &Params{byName: make(map[string]*Param)}
}

// Add inserts or replaces a varying, unbounded parameter and returns it.
func (ps *Params) Add(name string, value float64) *Param {
	p := &Param{
		Name:   name,
		Value:  value,
		Init:   value,
		Min:    math.Inf(-1),
		Max:    math.Inf(1),
		Vary:   true,
		Stderr: math.NaN(),
	}
	if _, ok := ps.byName[name]; !ok {
		ps.order = append(ps.order, name)
	}
	ps.byName[name] = p
	return p
}

// Get returns the named parameter.
func (ps *Params) Get(name string) (*Param, bool) {
	p, ok := ps.byName[name]
	return p, ok
}

// MustGet returns the named parameter and panics if it is missing. Use it
// only with names produced by the model itself.
func (ps *Params) MustGet(name string) *Param {
	p, ok := ps.byName[name]
	if !ok {
		panic(fmt.Sprintf("fit: unknown parameter %q", name))
	}
	return p
}

// Set assigns a value to an existing parameter.
func (ps *Params) Set(name string, value float64) error {
	p, ok := ps.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	p.Value = value
	return nil
}

// Names returns the parameter names in insertion order.
func (ps *Params) Names() []string {
	return slices.Clone(ps.order)
}

// Len returns the number of parameters.
func (ps *Params) Len() int {
	return len(ps.order)
}

// Values returns a name → value snapshot.
func (ps *Params) Values() Values {
	v := make(Values, len(ps.order))
	for _, name := range ps.order {
		v[name] = ps.byName[name].Value
	}
	return v
}

// Clone returns a deep copy.
func (ps *Params) Clone() *Params {
	out := NewParams()
	for _, name := range ps.order {
		p := *ps.byName[name]
		out.order = append(out.order, name)
		out.byName[name] = &p
	}
	return out
}

// Values maps parameter names to values.
type Values map[string]float64
