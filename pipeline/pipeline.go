package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-spectra/internal/logging"
	"github.com/cwbudde/algo-spectra/spectrum"
	"go.uber.org/zap"
)

// Summary lists what a run read and wrote.
type Summary struct {
	RunID     string
	OutputDir string
	// Files are the inputs that contributed data; Skipped were empty.
	Files   []string
	Skipped []string
	Rows    int
	Cols    int
	// Stages names the stages that ran, in order.
	Stages  []string
	Tables  []string
	Plots   []string
	Parquet string
}

type runner struct {
	cfg Config
	log *zap.Logger
	sum *Summary
}

// Run executes the pipeline described by cfg.
func Run(cfg Config) (*Summary, error) {
	if len(cfg.Inputs) == 0 {
		return nil, ErrNoInputs
	}
	paths, err := expandInputs(cfg.Inputs)
	if err != nil {
		return nil, err
	}
	first := cfg.Inputs[0]
	if len(paths) > 0 {
		first = paths[0]
	}
	cfg = normalizeConfig(cfg, first)
	if cfg.RunID == "" {
		cfg.RunID = logging.NewRunID()
	}

	r := &runner{
		cfg: cfg,
		log: cfg.Logger.With(zap.String("run_id", cfg.RunID)),
		sum: &Summary{RunID: cfg.RunID, OutputDir: cfg.OutputDir},
	}
	if len(paths) == 0 {
		r.log.Warn("no input files found", zap.Strings("patterns", cfg.Inputs))
		return r.sum, nil
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	tables, err := r.load(paths)
	if err != nil {
		return nil, err
	}
	table, err := r.mean(tables)
	if err != nil {
		return nil, fmt.Errorf("pipeline: mean: %w", err)
	}

	stages := []struct {
		name    string
		enabled bool
		run     func(*spectrum.Table) (*spectrum.Table, error)
	}{
		{"background", cfg.Background != "", r.background},
		{"baseline", cfg.Baseline, r.baseline},
		{"smoothing", cfg.Smooth, r.smooth},
		{"wavelengths_time", len(cfg.Wavelengths) > 0, r.wavelengthsOverTime},
		{"spectra_time", cfg.SpectraEvery > 0, r.spectraOverTime},
		{"final", true, r.final},
	}
	for _, st := range stages {
		if !st.enabled {
			continue
		}
		if table.Empty() {
			r.log.Warn("table is empty, skipping remaining stages", zap.String("stage", st.name))
			break
		}
		if table, err = st.run(table); err != nil {
			return nil, fmt.Errorf("pipeline: %s: %w", st.name, err)
		}
		r.sum.Stages = append(r.sum.Stages, st.name)
		r.log.Info("stage done",
			zap.String("stage", st.name),
			zap.Int("rows", table.Rows()),
			zap.Int("cols", table.Cols()))
	}

	r.sum.Rows, r.sum.Cols = table.Rows(), table.Cols()
	return r.sum, nil
}

// expandInputs resolves glob patterns in order, dropping duplicates.
func expandInputs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("pipeline: pattern %q: %w", p, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}

// load reads every input. Files without data are skipped with a warning.
func (r *runner) load(paths []string) ([]*spectrum.Table, error) {
	var tables []*spectrum.Table
	for _, p := range paths {
		t, err := spectrum.LoadFile(p,
			spectrum.WithHeaderLines(r.cfg.HeaderLines),
			spectrum.WithFooterLines(r.cfg.FooterLines),
			spectrum.WithInterval(r.cfg.Interval))
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		if t.Empty() {
			r.log.Warn("empty data", zap.String("path", p))
			r.sum.Skipped = append(r.sum.Skipped, p)
			continue
		}
		r.log.Debug("loaded", zap.String("path", p), zap.Int("rows", t.Rows()), zap.Int("cols", t.Cols()))
		r.sum.Files = append(r.sum.Files, p)
		tables = append(tables, t)
	}
	if len(tables) > 1 && !spectrum.SameGrid(tables...) {
		r.log.Warn("replicates use different wavelength grids; averaging without reconciliation",
			zap.Int("files", len(tables)))
	}
	return tables, nil
}
