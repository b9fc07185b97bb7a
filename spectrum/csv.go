package spectrum

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// WavelengthHeader is the name of the index column in CSV output.
const WavelengthHeader = "Wavelength"

var errNoHeader = errors.New("spectrum: csv has no header row")

// WriteCSV writes t with a header row ("Wavelength", labels...) followed by
// one row per wavelength.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)

	record := make([]string, t.Cols()+1)
	record[0] = WavelengthHeader
	copy(record[1:], t.Labels)
	if err := cw.Write(record); err != nil {
		return err
	}

	for i, wl := range t.Wavelengths {
		record[0] = strconv.FormatFloat(wl, 'g', -1, 64)
		for j, col := range t.Data {
			record[j+1] = strconv.FormatFloat(col[i], 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveCSV writes t to path, replacing any existing file.
func SaveCSV(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, t); err != nil {
		_ = f.Close()
		return fmt.Errorf("spectrum: write %s: %w", path, err)
	}
	return f.Close()
}

// ReadCSV parses a table written by [WriteCSV]. Column labels are converted
// back to elapsed seconds with [ParseTimeLabel].
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errNoHeader
	}
	if err != nil {
		return nil, err
	}

	labels := append([]string(nil), header[1:]...)
	times := make([]float64, len(labels))
	for j, l := range labels {
		if times[j], err = ParseTimeLabel(l); err != nil {
			return nil, err
		}
	}

	var wavelengths []float64
	data := make([][]float64, len(labels))
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("%w: line %d has %d fields, want %d",
				ErrShapeMismatch, line, len(record), len(header))
		}
		wl, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("spectrum: line %d: %w", line, err)
		}
		wavelengths = append(wavelengths, wl)
		for j := range labels {
			v, err := strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("spectrum: line %d column %d: %w", line, j+1, err)
			}
			data[j] = append(data[j], v)
		}
	}
	for j := range data {
		if data[j] == nil {
			data[j] = []float64{}
		}
	}
	return New(wavelengths, labels, times, data)
}

// OpenCSV reads a table from path with [ReadCSV].
func OpenCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("spectrum: read %s: %w", path, err)
	}
	return t, nil
}
