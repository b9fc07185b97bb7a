// Command specproc processes time-resolved absorbance spectra and fits
// kinetic and spectral models to the result.
//
// Usage:
//
//	specproc process -i 'run*.txt' -b background.txt -H 19 -f 1 --baseline --smooth
//	specproc fit-kinetics --table run_spec/final.csv --wavelength 412
//	specproc fit-decay --table run_spec/final.csv --wavelength 412 --wavelength 430
//	specproc fit-peaks --table run_spec/final.csv --time-index 10
//
// Settings come from an optional YAML file (--config); flags given on the
// command line override it.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/algo-spectra/internal/config"
	"github.com/cwbudde/algo-spectra/internal/logging"
	"github.com/cwbudde/algo-spectra/measure/kinetics"
	"github.com/cwbudde/algo-spectra/measure/peaks"
	"github.com/cwbudde/algo-spectra/pipeline"
	"github.com/cwbudde/algo-spectra/spectrum"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "specproc",
		Short:         "Time-resolved absorbance spectra processing",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "log format: console|json")

	root.AddCommand(newProcessCmd(g))
	root.AddCommand(newFitKineticsCmd(g))
	root.AddCommand(newFitDecayCmd(g))
	root.AddCommand(newFitPeaksCmd(g))
	return root
}

// setup loads the configuration file and builds the logger. The run id is
// not attached to the logger: the pipeline adds it itself, and the fit
// commands add it with [withRunID].
func setup(cmd *cobra.Command, g *globalFlags) (config.File, *zap.Logger, string, error) {
	cfg := config.Default()
	if g.configPath != "" {
		var err error
		if cfg, err = config.Load(g.configPath); err != nil {
			return config.File{}, nil, "", err
		}
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Logging.Format = g.logFormat
	}

	runID := logging.NewRunID()
	log, err := logging.New(
		logging.WithLevel(cfg.Logging.Level),
		logging.WithFormat(cfg.Logging.Format),
		logging.WithOutput(cmd.ErrOrStderr()),
		logging.WithFields(map[string]any{"command": cmd.Name()}),
	)
	if err != nil {
		return config.File{}, nil, "", err
	}
	return cfg, log, runID, nil
}

func newProcessCmd(g *globalFlags) *cobra.Command {
	var (
		inputs       []string
		background   string
		header       int
		footer       int
		output       string
		interval     float64
		doBaseline   bool
		doSmooth     bool
		wavelengths  []float64
		spectraEvery int
		parquet      bool
	)

	cmd := &cobra.Command{
		Use:   "process [input...]",
		Short: "Average, correct and plot raw spectra files",
		// Extra arguments are inputs, so shell-expanded globs after -i
		// are all processed.
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, log, runID, err := setup(cmd, g)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			p := &file.Processing
			flags := cmd.Flags()
			if flags.Changed("input") || len(args) > 0 {
				p.Inputs = append(append([]string(nil), inputs...), args...)
			}
			if flags.Changed("background") {
				p.Background = background
			}
			if flags.Changed("header") {
				p.HeaderLines = header
			}
			if flags.Changed("footer") {
				p.FooterLines = footer
			}
			if flags.Changed("output") {
				p.Output = output
			}
			if flags.Changed("time") {
				p.Interval = interval
			}
			if flags.Changed("baseline") {
				p.Baseline.Enabled = doBaseline
			}
			if flags.Changed("smooth") {
				p.Smoothing.Enabled = doSmooth
			}
			if flags.Changed("wavelength") {
				p.Wavelengths = wavelengths
			}
			if flags.Changed("spectra-time") {
				p.SpectraEvery = spectraEvery
			}
			if flags.Changed("parquet") {
				p.Parquet = parquet
			}

			pc := p.Pipeline()
			pc.Logger = log
			pc.RunID = runID
			sum, err := pipeline.Run(pc)
			if err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), sum)
		},
	}

	f := cmd.Flags()
	f.StringSliceVarP(&inputs, "input", "i", nil, "input file patterns")
	f.StringVarP(&background, "background", "b", "", "background spectrum file")
	f.IntVarP(&header, "header", "H", 0, "header lines to skip in each input")
	f.IntVarP(&footer, "footer", "f", 0, "footer lines to skip in each input")
	f.StringVarP(&output, "output", "o", "", "output directory (default <first input>_spec)")
	f.Float64VarP(&interval, "time", "t", 0, "interval between spectra in seconds")
	f.BoolVar(&doBaseline, "baseline", false, "remove an IModPoly baseline")
	f.BoolVar(&doSmooth, "smooth", false, "apply Savitzky-Golay smoothing")
	f.Float64SliceVarP(&wavelengths, "wavelength", "w", nil, "wavelengths to plot over time")
	f.IntVar(&spectraEvery, "spectra-time", 0, "plot every n-th spectrum over wavelength")
	f.BoolVar(&parquet, "parquet", false, "also write the final table as parquet")
	return cmd
}

func printSummary(w io.Writer, sum *pipeline.Summary) error {
	if _, err := fmt.Fprintf(w, "run %s: %d files, %d wavelengths x %d spectra -> %s\n",
		sum.RunID, len(sum.Files), sum.Rows, sum.Cols, sum.OutputDir); err != nil {
		return err
	}
	for _, path := range sum.Tables {
		if _, err := fmt.Fprintf(w, "  table %s\n", path); err != nil {
			return err
		}
	}
	if sum.Parquet != "" {
		if _, err := fmt.Fprintf(w, "  parquet %s\n", sum.Parquet); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "  %d plots\n", len(sum.Plots))
	return err
}

func withRunID(log *zap.Logger, runID string) *zap.Logger {
	return log.With(zap.String("run_id", runID))
}

type fitFlags struct {
	table   string
	report  string
	plotDir string
}

func (ff *fitFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&ff.table, "table", "", "processed table CSV (wavelength rows x time columns)")
	f.StringVar(&ff.report, "report", "", "fit report log to append to")
	f.StringVar(&ff.plotDir, "plot-dir", "", "directory for fit plots")
	_ = cmd.MarkFlagRequired("table")
}

func (ff *fitFlags) apply(cmd *cobra.Command, file *config.File) {
	if cmd.Flags().Changed("report") {
		file.Fits.Report = ff.report
	}
	if cmd.Flags().Changed("plot-dir") {
		file.Fits.PlotDir = ff.plotDir
	}
}

type reportable interface {
	Heading() string
	Report() string
	AppendReport(path, runID string) error
	Plot(dir string) (string, error)
}

// emit prints a fit result, appends it to the report log and plots it.
func emit(w io.Writer, log *zap.Logger, file config.File, runID string, res reportable) error {
	if _, err := fmt.Fprintf(w, "%s\n%s\n", res.Heading(), res.Report()); err != nil {
		return err
	}
	if file.Fits.Report != "" {
		if err := res.AppendReport(file.Fits.Report, runID); err != nil {
			return err
		}
	}
	if file.Fits.PlotDir != "" {
		path, err := res.Plot(file.Fits.PlotDir)
		if err != nil {
			return err
		}
		log.Info("fit plotted", zap.String("path", path))
	}
	return nil
}

func newFitKineticsCmd(g *globalFlags) *cobra.Command {
	var (
		ff         fitFlags
		wavelength float64
		cut        float64
	)

	cmd := &cobra.Command{
		Use:   "fit-kinetics",
		Short: "Fit an erf step plus a line to one wavelength over time",
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, log, runID, err := setup(cmd, g)
			if err != nil {
				return err
			}
			log = withRunID(log, runID)
			defer func() { _ = log.Sync() }()
			ff.apply(cmd, &file)

			sc := file.Fits.Step.Kinetics()
			if cmd.Flags().Changed("wavelength") {
				sc.Wavelength = wavelength
			}
			if cmd.Flags().Changed("cut") {
				sc.CutTime = cut
			}

			t, err := spectrum.OpenCSV(ff.table)
			if err != nil {
				return err
			}
			res, err := kinetics.Step(t, sc)
			if err != nil {
				return err
			}
			log.Info("step fit done",
				zap.Float64("wavelength", res.Wavelength),
				zap.Bool("success", res.Fit.Success),
				zap.Float64("redchi", res.Fit.Redchi))
			return emit(cmd.OutOrStdout(), log, file, runID, res)
		},
	}
	ff.register(cmd)
	cmd.Flags().Float64Var(&wavelength, "wavelength", 0, "wavelength in nm (nearest row is used)")
	cmd.Flags().Float64Var(&cut, "cut", 0, "drop timepoints after this many seconds")
	return cmd
}

func newFitDecayCmd(g *globalFlags) *cobra.Command {
	var (
		ff          fitFlags
		wavelengths []float64
		cut         float64
	)

	cmd := &cobra.Command{
		Use:   "fit-decay",
		Short: "Fit an exponential decay to one or more wavelengths over time",
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, log, runID, err := setup(cmd, g)
			if err != nil {
				return err
			}
			log = withRunID(log, runID)
			defer func() { _ = log.Sync() }()
			ff.apply(cmd, &file)

			dc := file.Fits.Decay.Kinetics()
			if cmd.Flags().Changed("wavelength") {
				dc.Wavelengths = wavelengths
			}
			if cmd.Flags().Changed("cut") {
				dc.CutTime = cut
			}

			t, err := spectrum.OpenCSV(ff.table)
			if err != nil {
				return err
			}
			results, err := kinetics.Decay(t, dc)
			if err != nil {
				return err
			}
			for _, res := range results {
				log.Info("decay fit done",
					zap.Float64("wavelength", res.Wavelength),
					zap.Bool("success", res.Fit.Success))
				if err := emit(cmd.OutOrStdout(), log, file, runID, res); err != nil {
					return err
				}
			}
			return nil
		},
	}
	ff.register(cmd)
	cmd.Flags().Float64SliceVar(&wavelengths, "wavelength", nil, "wavelengths in nm")
	cmd.Flags().Float64Var(&cut, "cut", 0, "drop timepoints after this many seconds")
	return cmd
}

func newFitPeaksCmd(g *globalFlags) *cobra.Command {
	var (
		ff        fitFlags
		timeIndex int
	)

	cmd := &cobra.Command{
		Use:   "fit-peaks",
		Short: "Decompose one spectrum into Gaussian bands over a spline background",
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, log, runID, err := setup(cmd, g)
			if err != nil {
				return err
			}
			log = withRunID(log, runID)
			defer func() { _ = log.Sync() }()
			ff.apply(cmd, &file)

			pc, err := file.Fits.Peaks.Config()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("time-index") {
				pc.TimeIndex = timeIndex
			}

			t, err := spectrum.OpenCSV(ff.table)
			if err != nil {
				return err
			}
			res, err := peaks.Analyze(t, pc)
			if err != nil {
				return err
			}
			log.Info("peak fit done",
				zap.String("time", res.Label),
				zap.Int("peaks", len(pc.Peaks)),
				zap.Bool("success", res.Fit.Success))
			return emit(cmd.OutOrStdout(), log, file, runID, res)
		},
	}
	ff.register(cmd)
	cmd.Flags().IntVar(&timeIndex, "time-index", 0, "spectrum (column) index to fit")
	return cmd
}
