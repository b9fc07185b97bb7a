package spectrum

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
)

// Point is one long-format table cell as stored in Parquet output.
type Point struct {
	Wavelength float64 `parquet:"wavelength"`
	Time       float64 `parquet:"time_s"`
	Label      string  `parquet:"label"`
	Absorbance float64 `parquet:"absorbance"`
}

// WriteParquet writes t in long format, one row per (timepoint, wavelength)
// in column order, Snappy compressed.
func WriteParquet(w io.Writer, t *Table) error {
	pw := parquet.NewGenericWriter[Point](w, parquet.Compression(&parquet.Snappy))

	batch := make([]Point, t.Rows())
	for j, col := range t.Data {
		for i, wl := range t.Wavelengths {
			batch[i] = Point{
				Wavelength: wl,
				Time:       t.Times[j],
				Label:      t.Labels[j],
				Absorbance: col[i],
			}
		}
		if _, err := pw.Write(batch); err != nil {
			_ = pw.Close()
			return fmt.Errorf("spectrum: parquet write: %w", err)
		}
	}
	return pw.Close()
}

// SaveParquet writes t to path with [WriteParquet].
func SaveParquet(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteParquet(f, t); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadParquet returns every point stored in a file written by [WriteParquet].
func ReadParquet(r io.ReaderAt) ([]Point, error) {
	gr := parquet.NewGenericReader[Point](r)
	defer gr.Close()

	out := make([]Point, 0, 1024)
	batch := make([]Point, 1024)
	for {
		n, err := gr.Read(batch)
		if n > 0 {
			out = append(out, batch[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
