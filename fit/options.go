package fit

// Config controls the Levenberg–Marquardt solver.
type Config struct {
	// MaxIter bounds the number of solver iterations.
	MaxIter int
	// Weights multiply the residuals; nil means uniform.
	Weights []float64
	// Tau scales the initial damping.
	Tau float64
	// GradTol stops the solver when the gradient infinity norm falls below it.
	GradTol float64
	// StepTol stops the solver when the relative step falls below it.
	StepTol float64
	// ObjectiveTol stops the solver when half the chi-square falls below it.
	ObjectiveTol float64
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the solver defaults.
func DefaultConfig() Config {
	return Config{
		MaxIter:      1000,
		Tau:          1e-6,
		GradTol:      1e-10,
		StepTol:      1e-10,
		ObjectiveTol: 1e-30,
	}
}

// WithMaxIter sets the iteration budget.
func WithMaxIter(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.MaxIter = n
		}
	}
}

// WithWeights sets residual weights.
func WithWeights(w []float64) Option {
	return func(cfg *Config) {
		cfg.Weights = w
	}
}

// WithTau sets the initial damping scale.
func WithTau(tau float64) Option {
	return func(cfg *Config) {
		if tau > 0 {
			cfg.Tau = tau
		}
	}
}

// WithTolerances sets the gradient and step stopping tolerances.
func WithTolerances(grad, step float64) Option {
	return func(cfg *Config) {
		if grad > 0 {
			cfg.GradTol = grad
		}
		if step > 0 {
			cfg.StepTol = step
		}
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
