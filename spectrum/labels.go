package spectrum

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultStep is the spectrum spacing assumed when no interval is known.
const DefaultStep = 0.1

// TimeLabels returns n column labels and their elapsed times in seconds.
// A positive interval yields labels like "0.3s"; otherwise the labels are
// 100 ms steps like "300ms".
func TimeLabels(n int, interval float64) ([]string, []float64) {
	labels := make([]string, n)
	times := make([]float64, n)
	for i := range n {
		if interval > 0 {
			times[i] = float64(i) * interval
			labels[i] = fmt.Sprintf("%.1fs", times[i])
		} else {
			times[i] = float64(i) * DefaultStep
			labels[i] = fmt.Sprintf("%dms", i*100)
		}
	}
	return labels, times
}

// ParseTimeLabel converts a column label back to seconds. It accepts the
// "ms" and "s" suffixes written by [TimeLabels] and bare numbers (seconds).
func ParseTimeLabel(label string) (float64, error) {
	s := strings.TrimSpace(label)
	scale := 1.0
	switch {
	case strings.HasSuffix(s, "ms"):
		s = strings.TrimSuffix(s, "ms")
		scale = 1e-3
	case strings.HasSuffix(s, "s"):
		s = strings.TrimSuffix(s, "s")
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("spectrum: invalid time label %q: %w", label, err)
	}
	return v * scale, nil
}
