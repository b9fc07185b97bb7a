package spectrum

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned by table constructors and codecs.
var (
	ErrEmptyTable     = errors.New("spectrum: empty table")
	ErrShapeMismatch  = errors.New("spectrum: column shape mismatch")
	ErrNotAscending   = errors.New("spectrum: wavelengths must be strictly ascending")
	ErrColumnOutRange = errors.New("spectrum: column index out of range")
)

// Table is a wavelength-indexed absorbance table.
//
// Data is column-major: Data[j][i] is the absorbance of wavelength
// Wavelengths[i] at timepoint j. Labels and Times describe the columns in
// temporal order; Times holds elapsed seconds.
type Table struct {
	Wavelengths []float64
	Labels      []string
	Times       []float64
	Data        [][]float64
}

// New builds a table and validates its shape. The slices are used as is.
func New(wavelengths []float64, labels []string, times []float64, data [][]float64) (*Table, error) {
	t := &Table{
		Wavelengths: wavelengths,
		Labels:      labels,
		Times:       times,
		Data:        data,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks that labels, times and columns agree in length.
func (t *Table) Validate() error {
	if len(t.Labels) != len(t.Data) || len(t.Times) != len(t.Data) {
		return fmt.Errorf("%w: %d labels, %d times, %d columns",
			ErrShapeMismatch, len(t.Labels), len(t.Times), len(t.Data))
	}
	for j, col := range t.Data {
		if len(col) != len(t.Wavelengths) {
			return fmt.Errorf("%w: column %d has %d rows, want %d",
				ErrShapeMismatch, j, len(col), len(t.Wavelengths))
		}
	}
	return nil
}

// Rows returns the number of wavelengths.
func (t *Table) Rows() int {
	if t == nil {
		return 0
	}
	return len(t.Wavelengths)
}

// Cols returns the number of timepoints.
func (t *Table) Cols() int {
	if t == nil {
		return 0
	}
	return len(t.Data)
}

// Empty reports whether the table has no rows or no columns.
func (t *Table) Empty() bool {
	return t.Rows() == 0 || t.Cols() == 0
}

// Column returns the spectrum at timepoint j. The slice aliases the table
// and must not be modified.
func (t *Table) Column(j int) []float64 {
	return t.Data[j]
}

// Row returns a copy of the time trace at row i.
func (t *Table) Row(i int) []float64 {
	out := make([]float64, len(t.Data))
	for j, col := range t.Data {
		out[j] = col[i]
	}
	return out
}

// Ascending reports whether the wavelengths are strictly ascending.
func (t *Table) Ascending() bool {
	for i := 1; i < len(t.Wavelengths); i++ {
		if !(t.Wavelengths[i] > t.Wavelengths[i-1]) {
			return false
		}
	}
	return true
}

// NearestRow returns the index of the wavelength closest to wl, or -1 for an
// empty table. Ties resolve to the lower index.
func (t *Table) NearestRow(wl float64) int {
	best := -1
	bestDiff := math.Inf(1)
	for i, w := range t.Wavelengths {
		if d := math.Abs(w - wl); d < bestDiff {
			best, bestDiff = i, d
		}
	}
	return best
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	data := make([][]float64, len(t.Data))
	for j, col := range t.Data {
		data[j] = append([]float64(nil), col...)
	}
	return t.WithData(data)
}

// WithData returns a new table with t's axes and the given columns. Axis
// slices are copied so the result never aliases t.
func (t *Table) WithData(data [][]float64) *Table {
	return &Table{
		Wavelengths: append([]float64(nil), t.Wavelengths...),
		Labels:      append([]string(nil), t.Labels...),
		Times:       append([]float64(nil), t.Times...),
		Data:        data,
	}
}

// MapColumns applies fn to every column and returns the resulting table.
// fn receives the column index and a read-only view of the spectrum and
// must return a new slice of the same length.
func (t *Table) MapColumns(fn func(j int, col []float64) ([]float64, error)) (*Table, error) {
	data := make([][]float64, len(t.Data))
	for j, col := range t.Data {
		out, err := fn(j, col)
		if err != nil {
			return nil, fmt.Errorf("column %d (%s): %w", j, t.Labels[j], err)
		}
		if len(out) != len(col) {
			return nil, fmt.Errorf("%w: column %d returned %d rows, want %d",
				ErrShapeMismatch, j, len(out), len(col))
		}
		data[j] = out
	}
	return t.WithData(data), nil
}

// SliceTime returns the columns whose elapsed time is <= maxTime.
func (t *Table) SliceTime(maxTime float64) *Table {
	var keep []int
	for j, tm := range t.Times {
		if tm <= maxTime {
			keep = append(keep, j)
		}
	}
	out := &Table{Wavelengths: append([]float64(nil), t.Wavelengths...)}
	for _, j := range keep {
		out.Labels = append(out.Labels, t.Labels[j])
		out.Times = append(out.Times, t.Times[j])
		out.Data = append(out.Data, append([]float64(nil), t.Data[j]...))
	}
	return out
}
