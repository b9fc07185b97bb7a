package spectrum

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
)

// maxLineBytes bounds a single text row; wide kinetic dumps carry thousands
// of columns per line.
const maxLineBytes = 64 << 20

// LoadConfig controls how a text dump is parsed.
type LoadConfig struct {
	HeaderLines int
	FooterLines int
	// Interval is the spacing between spectra in seconds. Zero selects the
	// 100 ms fallback labels.
	Interval float64
}

// LoadOption mutates a LoadConfig.
type LoadOption func(*LoadConfig)

// DefaultLoadConfig returns a config without header, footer or interval.
func DefaultLoadConfig() LoadConfig {
	return LoadConfig{}
}

// WithHeaderLines sets the number of leading lines to skip.
func WithHeaderLines(n int) LoadOption {
	return func(cfg *LoadConfig) {
		if n >= 0 {
			cfg.HeaderLines = n
		}
	}
}

// WithFooterLines sets the number of trailing lines to drop.
func WithFooterLines(n int) LoadOption {
	return func(cfg *LoadConfig) {
		if n >= 0 {
			cfg.FooterLines = n
		}
	}
}

// WithInterval sets the time between consecutive spectra in seconds.
func WithInterval(seconds float64) LoadOption {
	return func(cfg *LoadConfig) {
		if seconds > 0 {
			cfg.Interval = seconds
		}
	}
}

// ApplyLoadOptions applies zero or more options to the default config.
func ApplyLoadOptions(opts ...LoadOption) LoadConfig {
	cfg := DefaultLoadConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Load parses a sample dump into a table. The first field of each row is the
// wavelength; the remaining fields are absorbance per timepoint. Rows keep
// file order. Input without data rows yields an empty table and no error.
func Load(r io.Reader, opts ...LoadOption) (*Table, error) {
	cfg := ApplyLoadOptions(opts...)

	rows, err := readRows(r, cfg, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}

	nCols := len(rows[0]) - 1
	labels, times := TimeLabels(nCols, cfg.Interval)
	wavelengths := make([]float64, len(rows))
	data := make([][]float64, nCols)
	for j := range data {
		data[j] = make([]float64, len(rows))
	}
	for i, row := range rows {
		wavelengths[i] = row[0]
		for j := range nCols {
			data[j][i] = row[j+1]
		}
	}
	return New(wavelengths, labels, times, data)
}

// LoadFile opens path and parses it with [Load].
func LoadFile(path string, opts ...LoadOption) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Load(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("spectrum: load %s: %w", path, err)
	}
	return t, nil
}

// Background is a reference spectrum on its own wavelength grid, sorted
// ascending without duplicate wavelengths.
type Background struct {
	Wavelengths []float64
	Absorbance  []float64
}

// Len returns the number of reference points.
func (b *Background) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Wavelengths)
}

// LoadBackground parses a two-column reference file with the same rule as
// [Load]. Rows with any other field count are skipped. The result is sorted
// by wavelength; for repeated wavelengths the first row wins.
func LoadBackground(r io.Reader, opts ...LoadOption) (*Background, error) {
	cfg := ApplyLoadOptions(opts...)

	rows, err := readRows(r, cfg, 2)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(rows, func(a, b []float64) int {
		return cmp.Compare(a[0], b[0])
	})

	bg := &Background{}
	for _, row := range rows {
		if n := len(bg.Wavelengths); n > 0 && bg.Wavelengths[n-1] == row[0] {
			continue
		}
		bg.Wavelengths = append(bg.Wavelengths, row[0])
		bg.Absorbance = append(bg.Absorbance, row[1])
	}
	return bg, nil
}

// LoadBackgroundFile opens path and parses it with [LoadBackground].
func LoadBackgroundFile(path string, opts ...LoadOption) (*Background, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bg, err := LoadBackground(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("spectrum: load background %s: %w", path, err)
	}
	return bg, nil
}

// readRows returns the numeric rows of the data region. fields > 0 fixes the
// accepted field count; otherwise the first accepted row sets it.
func readRows(r io.Reader, cfg LoadConfig, fields int) ([][]float64, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	if cfg.HeaderLines >= len(lines) {
		return nil, nil
	}
	lines = lines[cfg.HeaderLines:]
	if cfg.FooterLines >= len(lines) {
		return nil, nil
	}
	lines = lines[:len(lines)-cfg.FooterLines]

	var rows [][]float64
	prevBlank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if prevBlank {
				break
			}
			prevBlank = true
			continue
		}
		prevBlank = false

		row, footer := parseRow(line)
		if footer {
			break
		}
		if row == nil {
			continue
		}
		if fields == 0 {
			fields = len(row)
		}
		if len(row) != fields {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("spectrum: read: %w", err)
	}
	return lines, nil
}

// parseRow converts a whitespace-delimited line. footer is true when the
// first token is not a number; a nil row with footer false marks a
// malformed line, including one whose wavelength is NaN or infinite.
func parseRow(line string) (row []float64, footer bool) {
	tokens := strings.Fields(line)
	first, err := strconv.ParseFloat(tokens[0], 64)
	if err != nil {
		return nil, true
	}
	if math.IsNaN(first) || math.IsInf(first, 0) {
		return nil, false
	}

	row = make([]float64, len(tokens))
	row[0] = first
	for k := 1; k < len(tokens); k++ {
		v, err := strconv.ParseFloat(tokens[k], 64)
		if err != nil {
			return nil, false
		}
		row[k] = v
	}
	return row, false
}
