package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-spectra/dsp/background"
	"github.com/cwbudde/algo-spectra/dsp/baseline"
	"github.com/cwbudde/algo-spectra/dsp/filter/savgol"
	"github.com/cwbudde/algo-spectra/internal/plotting"
	"github.com/cwbudde/algo-spectra/spectrum"
	"go.uber.org/zap"
)

func (r *runner) path(parts ...string) string {
	return filepath.Join(append([]string{r.cfg.OutputDir}, parts...)...)
}

func (r *runner) writeTable(name string, t *spectrum.Table) error {
	path := r.path(name)
	if err := spectrum.SaveCSV(path, t); err != nil {
		return err
	}
	r.sum.Tables = append(r.sum.Tables, path)
	r.log.Info("table saved", zap.String("path", path))
	return nil
}

func (r *runner) plotted(path string) {
	r.sum.Plots = append(r.sum.Plots, path)
	r.log.Debug("plot saved", zap.String("path", path))
}

func (r *runner) mean(tables []*spectrum.Table) (*spectrum.Table, error) {
	if len(tables) == 0 {
		r.log.Warn("no data to process")
		return &spectrum.Table{}, nil
	}
	m, err := spectrum.Mean(tables...)
	if err != nil {
		return nil, err
	}
	if m.Empty() {
		return m, nil
	}
	if err := r.writeTable(MeanCSV, m); err != nil {
		return nil, err
	}
	r.sum.Stages = append(r.sum.Stages, "mean")
	return m, nil
}

func (r *runner) background(t *spectrum.Table) (*spectrum.Table, error) {
	bg, err := spectrum.LoadBackgroundFile(r.cfg.Background,
		spectrum.WithHeaderLines(r.cfg.BackgroundHeaderLines),
		spectrum.WithFooterLines(r.cfg.BackgroundFooterLines))
	if err != nil {
		return nil, err
	}
	out, err := background.Subtract(t, bg)
	if err != nil {
		return nil, err
	}
	if err := r.writeTable(BackgroundCSV, out); err != nil {
		return nil, err
	}

	for _, j := range r.cfg.BackgroundPlots {
		if j < 0 || j >= t.Cols() {
			r.log.Debug("plot index out of range", zap.Int("index", j), zap.Int("cols", t.Cols()))
			continue
		}
		path := r.path(BackgroundDir, "spectrum_"+fileLabel(t.Labels[j])+".png")
		err := plotting.Spectra(path, "Background Subtraction - "+t.Labels[j], t.Wavelengths,
			plotting.Series{Label: "Original", Y: t.Column(j)},
			plotting.Series{Label: "Subtracted", Y: out.Column(j)},
		)
		if err != nil {
			return nil, err
		}
		r.plotted(path)
	}
	return out, nil
}

func (r *runner) baseline(t *spectrum.Table) (*spectrum.Table, error) {
	bc := r.cfg.BaselineConfig
	opts := []baseline.Option{
		baseline.WithPolyOrder(bc.PolyOrder),
		baseline.WithTolerance(bc.Tol),
		baseline.WithNumStd(bc.NumStd),
		baseline.WithMaxIter(bc.MaxIter),
		baseline.WithWeights(bc.Weights),
		baseline.WithUseOriginal(bc.UseOriginal),
	}

	unconverged := 0
	out, err := t.MapColumns(func(j int, col []float64) ([]float64, error) {
		res, err := baseline.IModPoly(col, t.Wavelengths, opts...)
		if err != nil {
			return nil, err
		}
		if !res.Converged {
			unconverged++
		}
		corrected := baseline.Subtract(col, res.Baseline)
		if j%r.cfg.PlotEvery == 0 {
			path := r.path(BaselineDir, fmt.Sprintf("spectrum_%d.png", j+1))
			err := plotting.Spectra(path, fmt.Sprintf("Baseline Subtraction - Spectrum %d", j+1), t.Wavelengths,
				plotting.Series{Label: "Original Spectrum", Y: col},
				plotting.Series{Label: "Fitted Baseline", Y: res.Baseline, Style: plotting.StyleDashed},
				plotting.Series{Label: "Baseline Subtracted", Y: corrected},
			)
			if err != nil {
				return nil, err
			}
			r.plotted(path)
		}
		return corrected, nil
	})
	if err != nil {
		return nil, err
	}
	if unconverged > 0 {
		r.log.Warn("baseline did not converge for some spectra",
			zap.Int("spectra", unconverged), zap.Int("max_iter", bc.MaxIter))
	}
	if err := r.writeTable(BaselineCSV, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *runner) smooth(t *spectrum.Table) (*spectrum.Table, error) {
	sc := r.cfg.SmoothConfig
	f, err := savgol.New(savgol.WithWindowLength(sc.WindowLength), savgol.WithPolyOrder(sc.PolyOrder))
	if err != nil {
		return nil, err
	}
	out, err := t.MapColumns(func(j int, col []float64) ([]float64, error) {
		smoothed, err := f.Apply(col)
		if err != nil {
			return nil, err
		}
		if j%r.cfg.PlotEvery == 0 {
			path := r.path(SmoothingDir, fmt.Sprintf("spectrum_%d.png", j+1))
			err := plotting.Spectra(path, fmt.Sprintf("Smoothing - Spectrum %d", j+1), t.Wavelengths,
				plotting.Series{Label: "Original Spectrum", Y: col},
				plotting.Series{Label: "Smoothed Spectrum", Y: smoothed},
			)
			if err != nil {
				return nil, err
			}
			r.plotted(path)
		}
		return smoothed, nil
	})
	if err != nil {
		return nil, err
	}
	if err := r.writeTable(SmoothedCSV, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *runner) wavelengthsOverTime(t *spectrum.Table) (*spectrum.Table, error) {
	path := r.path(WavelengthsDir, "wavelengths_time.png")
	if err := plotting.WavelengthsOverTime(path, t, r.cfg.Wavelengths, r.cfg.TickEvery); err != nil {
		return nil, err
	}
	r.plotted(path)
	return t, nil
}

func (r *runner) spectraOverTime(t *spectrum.Table) (*spectrum.Table, error) {
	path := r.path(SpectraDir, "spectra_time.png")
	if err := plotting.SpectraOverTime(path, t, r.cfg.SpectraEvery); err != nil {
		return nil, err
	}
	r.plotted(path)
	return t, nil
}

func (r *runner) final(t *spectrum.Table) (*spectrum.Table, error) {
	if err := r.writeTable(FinalCSV, t); err != nil {
		return nil, err
	}
	if r.cfg.Parquet {
		path := r.path(FinalParquet)
		if err := spectrum.SaveParquet(path, t); err != nil {
			return nil, err
		}
		r.sum.Parquet = path
		r.log.Info("parquet saved", zap.String("path", path))
	}
	return t, nil
}

// fileLabel makes a column label safe to use inside a file name.
func fileLabel(label string) string {
	return strings.NewReplacer("/", "_", "\\", "_", " ", "_").Replace(label)
}
