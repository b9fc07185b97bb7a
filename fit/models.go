package fit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

// ErrBadKnots is returned for spline knots that are too few or not strictly
// ascending.
var ErrBadKnots = errors.New("fit: spline knots must be >= 2 and strictly ascending")

const tiny = 1e-15

var (
	fwhmFactor = 2 * math.Sqrt(2*math.Ln2)
	invSqrt2Pi = 1 / math.Sqrt(2*math.Pi)
)

// Gaussian returns an area-normalised Gaussian peak
//
//	amplitude/(sigma*sqrt(2π)) * exp(-(x-center)²/(2*sigma²))
//
// with parameters amplitude, center and sigma, plus derived fwhm and height.
func Gaussian(prefix string) *Component {
	return &Component{
		kind:     "gaussian",
		prefix:   prefix,
		names:    []string{"amplitude", "center", "sigma"},
		defaults: []float64{1, 0, 1},
		eval: func(dst, x, p []float64) error {
			amp, center, sigma := p[0], p[1], math.Max(tiny, math.Abs(p[2]))
			norm := amp * invSqrt2Pi / sigma
			for i, xi := range x {
				d := (xi - center) / sigma
				dst[i] = norm * math.Exp(-0.5*d*d)
			}
			return nil
		},
		derived: []Derived{
			{
				Name: prefix + "fwhm",
				Expr: fmt.Sprintf("%.7f*%ssigma", fwhmFactor, prefix),
				Fn: func(v Values) float64 {
					return fwhmFactor * v[prefix+"sigma"]
				},
			},
			{
				Name: prefix + "height",
				Expr: fmt.Sprintf("%.7f*%samplitude/max(%g, %ssigma)", invSqrt2Pi, prefix, tiny, prefix),
				Fn: func(v Values) float64 {
					return invSqrt2Pi * v[prefix+"amplitude"] / math.Max(tiny, v[prefix+"sigma"])
				},
			},
		},
	}
}

// Step returns an error-function step
//
//	amplitude * (1 + erf((x-center)/sigma)) / 2
//
// with parameters amplitude, center and sigma.
func Step(prefix string) *Component {
	return &Component{
		kind:     "step",
		prefix:   prefix,
		names:    []string{"amplitude", "center", "sigma"},
		defaults: []float64{1, 0, 1},
		eval: func(dst, x, p []float64) error {
			amp, center := p[0], p[1]
			sigma := math.Max(tiny, math.Abs(p[2]))
			for i, xi := range x {
				dst[i] = amp * 0.5 * (1 + math.Erf((xi-center)/sigma))
			}
			return nil
		},
	}
}

// Linear returns slope*x + intercept.
func Linear(prefix string) *Component {
	return &Component{
		kind:     "linear",
		prefix:   prefix,
		names:    []string{"slope", "intercept"},
		defaults: []float64{1, 0},
		eval: func(dst, x, p []float64) error {
			for i, xi := range x {
				dst[i] = p[0]*xi + p[1]
			}
			return nil
		},
	}
}

// ExponentialDecay returns amplitude*exp(-rate*x) + offset.
func ExponentialDecay(prefix string) *Component {
	return &Component{
		kind:     "exponential_decay",
		prefix:   prefix,
		names:    []string{"amplitude", "rate", "offset"},
		defaults: []float64{1, 1e-3, 1},
		eval: func(dst, x, p []float64) error {
			for i, xi := range x {
				dst[i] = p[0]*math.Exp(-p[1]*xi) + p[2]
			}
			return nil
		},
		derived: []Derived{
			{
				Name: prefix + "lifetime",
				Expr: fmt.Sprintf("1/%srate", prefix),
				Fn: func(v Values) float64 {
					return 1 / v[prefix+"rate"]
				},
			},
		},
	}
}

// Spline returns a natural cubic spline through fixed knots. The spline
// value at knot i is the parameter "s<i>". Outside the knot range the end
// values are held.
func Spline(prefix string, knots []float64) (*Component, error) {
	if len(knots) < 2 {
		return nil, fmt.Errorf("%w: %d knots", ErrBadKnots, len(knots))
	}
	for i := 1; i < len(knots); i++ {
		if !(knots[i] > knots[i-1]) {
			return nil, fmt.Errorf("%w: knot %d = %v after %v", ErrBadKnots, i, knots[i], knots[i-1])
		}
	}
	xs := append([]float64(nil), knots...)
	names := make([]string, len(xs))
	for i := range names {
		names[i] = fmt.Sprintf("s%d", i)
	}
	return &Component{
		kind:     "spline",
		prefix:   prefix,
		names:    names,
		defaults: make([]float64, len(xs)),
		eval: func(dst, x, p []float64) error {
			var nc interp.NaturalCubic
			if err := nc.Fit(xs, p); err != nil {
				return fmt.Errorf("%w: spline: %v", ErrEvaluation, err)
			}
			lo, hi := xs[0], xs[len(xs)-1]
			for i, xi := range x {
				dst[i] = nc.Predict(math.Min(math.Max(xi, lo), hi))
			}
			return nil
		},
	}, nil
}
