package baseline

// Config defines the parameters of the iterative polynomial fit.
type Config struct {
	PolyOrder int
	Tol       float64
	// NumStd is the clipping threshold in residual standard deviations
	// (IModPoly only).
	NumStd  float64
	MaxIter int
	// Weights are optional per-point fit weights; nil means uniform.
	Weights []float64
	// UseOriginal clips the original signal each iteration instead of the
	// previously clipped one.
	UseOriginal bool
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns order 4, tol 1e-3, one standard deviation and 250
// iterations.
func DefaultConfig() Config {
	return Config{
		PolyOrder: 4,
		Tol:       1e-3,
		NumStd:    1,
		MaxIter:   250,
	}
}

// WithPolyOrder sets the baseline polynomial order.
func WithPolyOrder(order int) Option {
	return func(cfg *Config) {
		if order >= 0 {
			cfg.PolyOrder = order
		}
	}
}

// WithTolerance sets the convergence tolerance.
func WithTolerance(tol float64) Option {
	return func(cfg *Config) {
		if tol > 0 {
			cfg.Tol = tol
		}
	}
}

// WithNumStd sets the clipping threshold in standard deviations.
func WithNumStd(n float64) Option {
	return func(cfg *Config) {
		cfg.NumStd = n
	}
}

// WithMaxIter sets the iteration limit.
func WithMaxIter(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.MaxIter = n
		}
	}
}

// WithWeights sets per-point fit weights.
func WithWeights(w []float64) Option {
	return func(cfg *Config) {
		cfg.Weights = w
	}
}

// WithUseOriginal selects clipping against the original signal.
func WithUseOriginal(on bool) Option {
	return func(cfg *Config) {
		cfg.UseOriginal = on
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
