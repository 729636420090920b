package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// HistogramBins is the number of bins used for total agreement plots.
const HistogramBins = 10

// Histogram renders the distribution of per-frame total agreement to path. The image
// format follows the file extension (png, svg, pdf).
func Histogram(path string, totals []float64, title string) error {
	if len(totals) == 0 {
		return errors.New("histogram: no values to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Total agreement"
	p.Y.Label.Text = "Frames"
	p.X.Min = 0
	p.X.Max = 1

	h, err := plotter.NewHist(plotter.Values(totals), HistogramBins)
	if err != nil {
		return fmt.Errorf("histogram: %w", err)
	}
	p.Add(h)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save histogram: %w", err)
	}
	return nil
}
