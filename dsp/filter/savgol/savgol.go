package savgol

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-spectra/dsp/conv"
	"github.com/cwbudde/algo-spectra/internal/polyfit"
	"gonum.org/v1/gonum/mat"
)

// Errors returned for invalid filter parameters or input.
var (
	ErrWindowLength  = errors.New("savgol: window length must be a positive odd integer")
	ErrPolyOrder     = errors.New("savgol: polyorder must be >= 0 and less than window length")
	ErrWindowTooLong = errors.New("savgol: window length exceeds input length")
	ErrEmptyInput    = errors.New("savgol: empty input")
)

// Config holds the smoothing parameters.
type Config struct {
	WindowLength int
	PolyOrder    int
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns an 11-point quadratic filter.
func DefaultConfig() Config {
	return Config{
		WindowLength: 11,
		PolyOrder:    2,
	}
}

// WithWindowLength sets the window length in samples.
func WithWindowLength(n int) Option {
	return func(cfg *Config) {
		cfg.WindowLength = n
	}
}

// WithPolyOrder sets the order of the fitted polynomial.
func WithPolyOrder(order int) Option {
	return func(cfg *Config) {
		cfg.PolyOrder = order
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Validate checks the window/order combination.
func (c Config) Validate() error {
	if c.WindowLength <= 0 || c.WindowLength%2 == 0 {
		return fmt.Errorf("%w: %d", ErrWindowLength, c.WindowLength)
	}
	if c.PolyOrder < 0 || c.PolyOrder >= c.WindowLength {
		return fmt.Errorf("%w: polyorder %d, window %d", ErrPolyOrder, c.PolyOrder, c.WindowLength)
	}
	return nil
}

// Filter is a configured Savitzky–Golay smoother.
type Filter struct {
	cfg    Config
	kernel []float64
	edge   *polyfit.Basis
}

// New validates the configuration and precomputes the kernel.
func New(opts ...Option) (*Filter, error) {
	cfg := ApplyOptions(opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	coeffs, err := Coefficients(cfg.WindowLength, cfg.PolyOrder)
	if err != nil {
		return nil, err
	}

	pos := make([]float64, cfg.WindowLength)
	for i := range pos {
		pos[i] = float64(i)
	}
	edge, err := polyfit.NewBasis(pos, cfg.PolyOrder, nil)
	if err != nil {
		return nil, err
	}

	// Convolution flips the kernel; store it reversed so the output is the
	// correlation with the fit coefficients.
	kernel := make([]float64, len(coeffs))
	for i, c := range coeffs {
		kernel[len(coeffs)-1-i] = c
	}
	return &Filter{cfg: cfg, kernel: kernel, edge: edge}, nil
}

// Config returns the filter parameters.
func (f *Filter) Config() Config {
	return f.cfg
}

// Apply smooths x and returns a new slice.
func (f *Filter) Apply(x []float64) ([]float64, error) {
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}
	w := f.cfg.WindowLength
	if w > len(x) {
		return nil, fmt.Errorf("%w: window %d, input %d", ErrWindowTooLong, w, len(x))
	}

	out, err := conv.ConvolveMode(x, f.kernel, conv.ModeSame)
	if err != nil {
		return nil, err
	}

	half := w / 2
	if half == 0 {
		return out, nil
	}
	_, head, err := f.edge.Fit(x[:w])
	if err != nil {
		return nil, err
	}
	_, tail, err := f.edge.Fit(x[len(x)-w:])
	if err != nil {
		return nil, err
	}
	copy(out[:half], head[:half])
	copy(out[len(x)-half:], tail[w-half:])
	return out, nil
}

// Smooth is a one-shot helper around [New] and [Filter.Apply].
func Smooth(x []float64, windowLength, polyOrder int) ([]float64, error) {
	f, err := New(WithWindowLength(windowLength), WithPolyOrder(polyOrder))
	if err != nil {
		return nil, err
	}
	return f.Apply(x)
}

// Coefficients returns the smoothing weights h such that the filtered value
// at the window centre is sum(h[j] * x[j]).
//
//	h = V (VᵀV)⁻¹ e₀,   V[j][k] = z_jᵏ,   z_j = (j - half) / half
func Coefficients(windowLength, polyOrder int) ([]float64, error) {
	cfg := Config{WindowLength: windowLength, PolyOrder: polyOrder}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	half := windowLength / 2
	z := make([]float64, windowLength)
	for j := range z {
		z[j] = float64(j - half)
		if half > 0 {
			z[j] /= float64(half)
		}
	}
	v := polyfit.Vandermonde(z, polyOrder)

	var vtv mat.Dense
	vtv.Mul(v.T(), v)
	e0 := mat.NewVecDense(polyOrder+1, nil)
	e0.SetVec(0, 1)

	var c mat.VecDense
	if err := c.SolveVec(&vtv, e0); err != nil {
		return nil, fmt.Errorf("savgol: normal equations: %w", err)
	}
	var h mat.VecDense
	h.MulVec(v, &c)

	out := make([]float64, windowLength)
	for j := range out {
		out[j] = h.AtVec(j)
	}
	return out, nil
}
