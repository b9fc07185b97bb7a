// Package polyfit solves repeated least-squares polynomial fits on a fixed
// abscissa. The abscissa is mapped onto [-1, 1] before the Vandermonde
// matrix is built, and its QR factorisation is computed once per basis.
package polyfit

import (
	"errors"
	"fmt"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/mat"
)

// Errors returned by basis construction and fitting.
var (
	ErrTooFewPoints   = errors.New("polyfit: fewer points than coefficients")
	ErrNegativeOrder  = errors.New("polyfit: polynomial order must be >= 0")
	ErrLengthMismatch = errors.New("polyfit: length mismatch")
	ErrBadWeights     = errors.New("polyfit: weights must be finite and >= 0")
)

// Basis is a polynomial basis of a given order over fixed sample points.
type Basis struct {
	scaled []float64
	order  int
	vander *mat.Dense
	sqrtW  []float64
	qr     mat.QR
}

// NewBasis builds the basis for x. weights may be nil for an unweighted fit.
func NewBasis(x []float64, order int, weights []float64) (*Basis, error) {
	if order < 0 {
		return nil, ErrNegativeOrder
	}
	if len(x) < order+1 {
		return nil, fmt.Errorf("%w: %d points for order %d", ErrTooFewPoints, len(x), order)
	}
	if weights != nil && len(weights) != len(x) {
		return nil, fmt.Errorf("%w: %d weights for %d points", ErrLengthMismatch, len(weights), len(x))
	}

	b := &Basis{
		scaled: Scale(x),
		order:  order,
		vander: Vandermonde(Scale(x), order),
	}

	design := b.vander
	if weights != nil {
		b.sqrtW = make([]float64, len(weights))
		for i, w := range weights {
			if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
				return nil, fmt.Errorf("%w: weight[%d] = %v", ErrBadWeights, i, w)
			}
			b.sqrtW[i] = math.Sqrt(w)
		}
		design = mat.DenseCopyOf(b.vander)
		row := make([]float64, order+1)
		for i, s := range b.sqrtW {
			mat.Row(row, i, design)
			for k := range row {
				row[k] *= s
			}
			design.SetRow(i, row)
		}
	}
	b.qr.Factorize(design)
	return b, nil
}

// Len returns the number of sample points.
func (b *Basis) Len() int {
	return len(b.scaled)
}

// Order returns the polynomial order.
func (b *Basis) Order() int {
	return b.order
}

// Fit returns the least-squares coefficients (in the scaled domain) and the
// fitted polynomial evaluated at every sample point.
func (b *Basis) Fit(y []float64) (coef, fitted []float64, err error) {
	if len(y) != len(b.scaled) {
		return nil, nil, fmt.Errorf("%w: %d values for %d points", ErrLengthMismatch, len(y), len(b.scaled))
	}

	rhs := y
	if b.sqrtW != nil {
		rhs = make([]float64, len(y))
		vecmath.MulBlock(rhs, b.sqrtW, y)
	}

	var c mat.VecDense
	if err := b.qr.SolveVecTo(&c, false, mat.NewVecDense(len(rhs), rhs)); err != nil {
		return nil, nil, fmt.Errorf("polyfit: least squares: %w", err)
	}

	coef = make([]float64, b.order+1)
	for k := range coef {
		coef[k] = c.AtVec(k)
	}

	var f mat.VecDense
	f.MulVec(b.vander, &c)
	fitted = make([]float64, len(y))
	for i := range fitted {
		fitted[i] = f.AtVec(i)
	}
	return coef, fitted, nil
}

// Scale maps x linearly onto [-1, 1]. A constant x maps to zeros.
func Scale(x []float64) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}
	lo, hi := x[0], x[0]
	for _, v := range x {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		return out
	}
	for i, v := range x {
		out[i] = 2*(v-lo)/(hi-lo) - 1
	}
	return out
}

// Vandermonde returns the len(x) x (order+1) matrix with columns x^0..x^order.
func Vandermonde(x []float64, order int) *mat.Dense {
	v := mat.NewDense(len(x), order+1, nil)
	for i, xi := range x {
		p := 1.0
		for k := 0; k <= order; k++ {
			v.Set(i, k, p)
			p *= xi
		}
	}
	return v
}

// Eval evaluates sum(coef[k] * x^k) with Horner's scheme.
func Eval(coef []float64, x float64) float64 {
	acc := 0.0
	for k := len(coef) - 1; k >= 0; k-- {
		acc = acc*x + coef[k]
	}
	return acc
}
