package plotting

import (
	"sort"

	"github.com/cwbudde/algo-spectra/fit"
)

// FitResult plots the data, the initial guess, the best fit and, for
// composite models, each component.
func FitResult(path, title, xlabel string, res *fit.Result) error {
	fig := Figure{
		Title:  title,
		XLabel: xlabel,
		YLabel: AbsorbanceLabel,
		Series: []Series{
			{Label: "data", X: res.X, Y: res.Y, Style: StyleScatter},
			{Label: "initial fit", X: res.X, Y: res.InitFit, Style: StyleDashed},
			{Label: "best fit", X: res.X, Y: res.BestFit},
		},
	}
	if len(res.Model.Components()) > 1 {
		comps, err := res.EvalComponents(res.X)
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(comps))
		for k := range comps {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fig.Series = append(fig.Series, Series{Label: k, X: res.X, Y: comps[k], Style: StyleDashed})
		}
	}
	return fig.Save(path)
}
