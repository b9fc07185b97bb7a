package fit

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/cwbudde/algo-spectra/internal/testutil"
	"github.com/maorshutman/lm"
)

func TestFitGaussian(t *testing.T) {
	x := testutil.Grid(0, 0.1, 201)
	y := testutil.Gaussian(x, 5, 10, 1.5)

	model := Gaussian("p1_")
	params := model.MakeParams()
	params.MustGet("p1_amplitude").Set(3)
	params.MustGet("p1_center").Set(9.5)
	params.MustGet("p1_sigma").Set(1)

	res, err := Fit(model, params, x, y)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	testutil.RequireNearlyEqual(t, "amplitude", res.Value("p1_amplitude"), 5, 1e-6)
	testutil.RequireNearlyEqual(t, "center", res.Value("p1_center"), 10, 1e-6)
	testutil.RequireNearlyEqual(t, "sigma", res.Value("p1_sigma"), 1.5, 1e-6)
	testutil.RequireSliceNearlyEqual(t, res.BestFit, y, 1e-6)

	if got := params.MustGet("p1_amplitude").Value; got != 3 {
		t.Fatalf("input params modified: amplitude = %v", got)
	}
	if init := res.Params.MustGet("p1_center").Init; init != 9.5 {
		t.Fatalf("init = %v, want 9.5", init)
	}
	if !res.Success {
		t.Fatalf("status %v", res.Status)
	}
}

func TestFitStepPlusLinear(t *testing.T) {
	x := testutil.Grid(0, 0.05, 201)
	model := Sum(Step("step_"), Linear("line_"))
	truth := model.MakeParams()
	truth.MustGet("step_amplitude").Set(0.3)
	truth.MustGet("step_center").Set(4)
	truth.MustGet("step_sigma").Set(0.8)
	truth.MustGet("line_slope").Set(-0.01)
	truth.MustGet("line_intercept").Set(0.5)
	y, err := evaluate(model, x, truth.Values())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	params := model.MakeParams()
	params.MustGet("step_amplitude").Set(0.2)
	params.MustGet("step_center").Set(3.5)
	params.MustGet("line_slope").Set(0)
	params.MustGet("line_intercept").Set(0.4)

	res, err := Fit(model, params, x, y)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	for _, name := range truth.Names() {
		testutil.RequireNearlyEqual(t, name, res.Value(name), truth.MustGet(name).Value, 1e-5)
	}

	comps, err := res.EvalComponents(x)
	if err != nil {
		t.Fatalf("EvalComponents: %v", err)
	}
	if len(comps) != 2 || comps["step_"] == nil || comps["line_"] == nil {
		t.Fatalf("components = %v", comps)
	}
	sum := testutil.Add(comps["step_"], comps["line_"])
	testutil.RequireSliceNearlyEqual(t, sum, res.BestFit, 1e-12)
}

func TestFitExponentialDecay(t *testing.T) {
	x := testutil.Grid(0, 5, 201)
	model := ExponentialDecay("")
	y := make([]float64, len(x))
	for i, xi := range x {
		y[i] = 2*math.Exp(-0.004*xi) + 0.5
	}

	res, err := Fit(model, model.MakeParams(), x, y)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	testutil.RequireNearlyEqual(t, "amplitude", res.Value("amplitude"), 2, 1e-4)
	testutil.RequireNearlyEqual(t, "rate", res.Value("rate"), 0.004, 1e-7)
	testutil.RequireNearlyEqual(t, "offset", res.Value("offset"), 0.5, 1e-4)
}

func TestFitSplineIsLinearInKnots(t *testing.T) {
	knots := []float64{0, 5, 10}
	model, err := Spline("bg_", knots)
	if err != nil {
		t.Fatalf("Spline: %v", err)
	}
	truth := model.MakeParams()
	truth.MustGet("bg_s0").Set(1)
	truth.MustGet("bg_s1").Set(3)
	truth.MustGet("bg_s2").Set(2)
	x := testutil.Grid(0, 0.25, 41)
	y, err := evaluate(model, x, truth.Values())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	testutil.RequireNearlyEqual(t, "y(5)", y[20], 3, 1e-12)

	res, err := Fit(model, model.MakeParams(), x, y)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	for _, name := range truth.Names() {
		testutil.RequireNearlyEqual(t, name, res.Value(name), truth.MustGet(name).Value, 1e-6)
	}
}

func TestSplineKnotValidation(t *testing.T) {
	for _, knots := range [][]float64{nil, {1}, {1, 1}, {3, 2, 4}} {
		if _, err := Spline("", knots); !errors.Is(err, ErrBadKnots) {
			t.Fatalf("knots %v: expected ErrBadKnots, got %v", knots, err)
		}
	}
}

func TestFitRespectsBounds(t *testing.T) {
	x := testutil.Grid(0, 0.1, 201)
	y := testutil.Gaussian(x, 5, 10, 1.5)

	model := Gaussian("")
	params := model.MakeParams()
	params.MustGet("amplitude").Set(4)
	params.MustGet("center").Set(10).SetBounds(9, 11)
	params.MustGet("sigma").Set(1).SetBounds(0.5, 1.2)

	res, err := Fit(model, params, x, y)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if s := res.Value("sigma"); s < 0.5 || s > 1.2 {
		t.Fatalf("sigma = %v outside [0.5, 1.2]", s)
	}
	if c := res.Value("center"); c < 9 || c > 11 {
		t.Fatalf("center = %v outside [9, 11]", c)
	}
}

func TestFitFixedParameter(t *testing.T) {
	x := testutil.Grid(0, 0.1, 201)
	y := testutil.Gaussian(x, 5, 10, 1.5)

	model := Gaussian("")
	params := model.MakeParams()
	params.MustGet("amplitude").Set(4)
	params.MustGet("center").Set(10).Fix()
	params.MustGet("sigma").Set(1)

	res, err := Fit(model, params, x, y)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if got := res.Value("center"); got != 10 {
		t.Fatalf("fixed center moved to %v", got)
	}
	if res.NVarys != 2 || len(res.VarNames) != 2 {
		t.Fatalf("NVarys = %d, VarNames = %v", res.NVarys, res.VarNames)
	}
	if !strings.Contains(res.Report(DefaultMinCorrel), "center:") {
		t.Fatal("report misses fixed parameter")
	}
}

func TestFitUncertainties(t *testing.T) {
	x := testutil.Grid(0, 0.1, 201)
	y := testutil.Add(testutil.Gaussian(x, 5, 10, 1.5), testutil.Noise(3, 0.01, len(x)))

	model := Gaussian("p_")
	params := model.MakeParams()
	params.MustGet("p_amplitude").Set(4)
	params.MustGet("p_center").Set(9.8)
	params.MustGet("p_sigma").Set(1.2)

	res, err := Fit(model, params, x, y)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if !res.ErrorbarsEstimated {
		t.Fatal("error bars not estimated")
	}
	for _, name := range res.VarNames {
		se := res.Params.MustGet(name).Stderr
		if !(se > 0) || math.IsInf(se, 0) {
			t.Fatalf("%s stderr = %v", name, se)
		}
	}
	c, ok := res.Correl("p_amplitude", "p_sigma")
	if !ok || math.Abs(c) > 1 {
		t.Fatalf("correl = %v, %v", c, ok)
	}
	for _, d := range res.DerivedValues() {
		if d.Name == "p_fwhm" {
			testutil.RequireNearlyEqual(t, "fwhm", d.Value, fwhmFactor*res.Value("p_sigma"), 1e-12)
			testutil.RequireNearlyEqual(t, "fwhm stderr", d.Stderr, fwhmFactor*res.Params.MustGet("p_sigma").Stderr, 1e-6)
		}
	}
}

func TestFitWithoutErrorbars(t *testing.T) {
	x := make([]float64, 10)
	y := testutil.DC(1, 10)
	model := Linear("")
	params := model.MakeParams()
	params.MustGet("intercept").Set(1).Fix()

	res, err := Fit(model, params, x, y)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if res.ErrorbarsEstimated || !math.IsNaN(res.Params.MustGet("slope").Stderr) {
		t.Fatalf("expected no error bars, got %v", res.Params.MustGet("slope").Stderr)
	}
	if !strings.Contains(res.Report(0.1), "uncertainties could not be estimated") {
		t.Fatal("report misses warning")
	}
}

func TestFitErrors(t *testing.T) {
	model := Linear("")
	params := model.MakeParams()
	tests := []struct {
		name   string
		params *Params
		x, y   []float64
		opts   []Option
		want   error
	}{
		{"empty", params, nil, nil, nil, ErrEmptyInput},
		{"mismatch", params, []float64{1, 2}, []float64{1}, nil, ErrLengthMismatch},
		{"weights", params, []float64{1, 2}, []float64{1, 2}, []Option{WithWeights([]float64{1})}, ErrLengthMismatch},
		{"missing param", NewParams(), []float64{1, 2}, []float64{1, 2}, nil, ErrUnknownParam},
		{"too few points", params, []float64{1}, []float64{1}, nil, ErrTooFewPoints},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Fit(model, tt.params, tt.x, tt.y, tt.opts...); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}

	fixed := model.MakeParams()
	fixed.MustGet("slope").Fix()
	fixed.MustGet("intercept").Fix()
	if _, err := Fit(model, fixed, []float64{1, 2}, []float64{1, 2}); !errors.Is(err, ErrNoVarying) {
		t.Fatalf("expected ErrNoVarying, got %v", err)
	}

	bad := model.MakeParams()
	bad.MustGet("slope").SetBounds(2, 1)
	if _, err := Fit(model, bad, []float64{1, 2}, []float64{1, 2}); !errors.Is(err, ErrInvalidBounds) {
		t.Fatalf("expected ErrInvalidBounds, got %v", err)
	}
}

func TestSolverPanicBecomesError(t *testing.T) {
	if _, err := solve(lm.LMProblem{}, nil); !errors.Is(err, ErrSingular) {
		t.Fatalf("expected ErrSingular, got %v", err)
	}
}

func TestReportSections(t *testing.T) {
	x := testutil.Grid(0, 0.1, 201)
	y := testutil.Add(testutil.Gaussian(x, 5, 10, 1.5), testutil.Noise(5, 0.01, len(x)))
	model := Sum(Gaussian("p1_"), Linear("bg_"))
	params := model.MakeParams()
	params.MustGet("p1_amplitude").Set(4)
	params.MustGet("p1_center").Set(9.7)
	params.MustGet("bg_slope").Set(0)

	res, err := Fit(model, params, x, y)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	report := res.Report(0)
	for _, want := range []string{
		"[[Model]]",
		"Model(gaussian, prefix='p1_') + Model(linear, prefix='bg_')",
		"[[Fit Statistics]]",
		"# data points      = 201",
		"# variables        = 5",
		"[[Variables]]",
		"p1_fwhm:",
		"== '2.3548200*p1_sigma'",
		"(init = 4)",
		"[[Correlations]]",
		"C(",
	} {
		if !strings.Contains(report, want) {
			t.Fatalf("report misses %q:\n%s", want, report)
		}
	}
}
