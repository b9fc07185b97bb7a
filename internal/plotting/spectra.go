package plotting

import (
	"fmt"

	"github.com/cwbudde/algo-spectra/spectrum"
	"gonum.org/v1/plot"
)

// Axis labels shared by the spectrum figures.
const (
	WavelengthLabel = "Wavelength (nm)"
	TimeLabel       = "Time (s)"
	AbsorbanceLabel = "Absorbance"
)

// WavelengthsOverTime plots, for each requested wavelength, the nearest
// recorded row of t against elapsed time. Every tickEvery-th column label
// is used as an x tick; tickEvery <= 0 keeps the automatic ticks.
func WavelengthsOverTime(path string, t *spectrum.Table, wavelengths []float64, tickEvery int) error {
	if t.Empty() {
		return fmt.Errorf("plotting: %w", spectrum.ErrEmptyTable)
	}
	fig := Figure{
		Title:  "Absorbance over time",
		XLabel: TimeLabel,
		YLabel: AbsorbanceLabel,
	}
	for _, wl := range wavelengths {
		i := t.NearestRow(wl)
		fig.Series = append(fig.Series, Series{
			Label: fmt.Sprintf("%g nm", t.Wavelengths[i]),
			X:     t.Times,
			Y:     t.Row(i),
		})
	}
	if tickEvery > 0 {
		for j := 0; j < t.Cols(); j += tickEvery {
			fig.XTicks = append(fig.XTicks, plot.Tick{Value: t.Times[j], Label: t.Labels[j]})
		}
	}
	return fig.Save(path)
}

// SpectraOverTime overlays every n-th column of t against wavelength.
func SpectraOverTime(path string, t *spectrum.Table, every int) error {
	if t.Empty() {
		return fmt.Errorf("plotting: %w", spectrum.ErrEmptyTable)
	}
	every = max(every, 1)
	fig := Figure{
		Title:  fmt.Sprintf("Spectra over time (every %d)", every),
		XLabel: WavelengthLabel,
		YLabel: AbsorbanceLabel,
	}
	for j := 0; j < t.Cols(); j += every {
		fig.Series = append(fig.Series, Series{
			Label: t.Labels[j],
			X:     t.Wavelengths,
			Y:     t.Column(j),
		})
	}
	return fig.Save(path)
}

// Spectra plots several curves that share the wavelength axis, such as a
// raw spectrum next to its corrected version.
func Spectra(path, title string, wavelengths []float64, series ...Series) error {
	fig := Figure{
		Title:  title,
		XLabel: WavelengthLabel,
		YLabel: AbsorbanceLabel,
	}
	for _, s := range series {
		if s.X == nil {
			s.X = wavelengths
		}
		fig.Series = append(fig.Series, s)
	}
	return fig.Save(path)
}
