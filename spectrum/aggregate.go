package spectrum

import (
	"math"
	"slices"
)

// Mean concatenates the given replicate tables and averages absorbance per
// wavelength and timepoint label. Nil and empty tables are ignored; when
// nothing remains the result is an empty table.
//
// Output rows are sorted by wavelength and columns follow the order in which
// labels were first seen. NaN readings are excluded from the average, and a
// wavelength/label pair without any reading is NaN. Grids are not
// reconciled: a wavelength present in only some tables averages only those.
func Mean(tables ...*Table) (*Table, error) {
	var labels []string
	var times []float64
	labelIdx := make(map[string]int)

	type acc struct {
		sum   []float64
		count []int
	}
	groups := make(map[float64]*acc)

	for _, t := range tables {
		if t.Empty() {
			continue
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		cols := make([]int, t.Cols())
		for j, l := range t.Labels {
			k, ok := labelIdx[l]
			if !ok {
				k = len(labels)
				labelIdx[l] = k
				labels = append(labels, l)
				times = append(times, t.Times[j])
			}
			cols[j] = k
		}
		for i, wl := range t.Wavelengths {
			// NaN keys cannot be looked up again.
			if math.IsNaN(wl) {
				continue
			}
			g, ok := groups[wl]
			if !ok {
				g = &acc{}
				groups[wl] = g
			}
			if n := len(labels); len(g.sum) < n {
				g.sum = append(g.sum, make([]float64, n-len(g.sum))...)
				g.count = append(g.count, make([]int, n-len(g.count))...)
			}
			for j, k := range cols {
				v := t.Data[j][i]
				if math.IsNaN(v) {
					continue
				}
				g.sum[k] += v
				g.count[k]++
			}
		}
	}

	if len(groups) == 0 {
		return &Table{}, nil
	}

	wavelengths := make([]float64, 0, len(groups))
	for wl := range groups {
		wavelengths = append(wavelengths, wl)
	}
	slices.Sort(wavelengths)

	data := make([][]float64, len(labels))
	for k := range data {
		data[k] = make([]float64, len(wavelengths))
	}
	for i, wl := range wavelengths {
		g := groups[wl]
		for k := range labels {
			if k >= len(g.count) || g.count[k] == 0 {
				data[k][i] = math.NaN()
				continue
			}
			data[k][i] = g.sum[k] / float64(g.count[k])
		}
	}
	return New(wavelengths, labels, times, data)
}

// SameGrid reports whether all non-empty tables share one wavelength grid.
func SameGrid(tables ...*Table) bool {
	var ref []float64
	for _, t := range tables {
		if t.Empty() {
			continue
		}
		if ref == nil {
			ref = t.Wavelengths
			continue
		}
		if !slices.Equal(ref, t.Wavelengths) {
			return false
		}
	}
	return true
}
