package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// Grid returns n evenly spaced wavelengths from start in steps of step.
func Grid(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// Gaussian evaluates an area-normalised Gaussian peak on x.
func Gaussian(x []float64, amplitude, center, sigma float64) []float64 {
	out := make([]float64, len(x))
	norm := amplitude / (sigma * math.Sqrt(2*math.Pi))
	for i, v := range x {
		d := (v - center) / sigma
		out[i] = norm * math.Exp(-0.5*d*d)
	}
	return out
}

// Polynomial evaluates sum(coeffs[k] * x^k) on x.
func Polynomial(x []float64, coeffs ...float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		acc := 0.0
		for k := len(coeffs) - 1; k >= 0; k-- {
			acc = acc*v + coeffs[k]
		}
		out[i] = acc
	}
	return out
}

// DC returns a constant spectrum.
func DC(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

// Noise returns uniform noise in [-amplitude, amplitude] with a fixed seed.
func Noise(seed int64, amplitude float64, n int) []float64 {
	out := make([]float64, n)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Add returns the elementwise sum of equally long slices.
func Add(parts ...[]float64) []float64 {
	if len(parts) == 0 {
		return nil
	}
	out := make([]float64, len(parts[0]))
	for _, p := range parts {
		for i, v := range p {
			out[i] += v
		}
	}
	return out
}

// Dump renders rows as an instrument text file with the given header and
// footer lines around the numeric block.
func Dump(header, footer []string, rows ...[]float64) string {
	var b strings.Builder
	for _, h := range header {
		b.WriteString(h)
		b.WriteByte('\n')
	}
	for _, row := range rows {
		for k, v := range row {
			if k > 0 {
				b.WriteByte('\t')
			}
			fmt.Fprintf(&b, "%g", v)
		}
		b.WriteByte('\n')
	}
	for _, f := range footer {
		b.WriteString(f)
		b.WriteByte('\n')
	}
	return b.String()
}
