// Package chart renders computed series as stacked-pane charts. Two
// backends exist: a gnuplot script writer and a go-echarts HTML page. Both
// consume series content, first-valid index and style tags read-only.
package chart

import (
	"taplot/internal/engine"
	"taplot/internal/market"
	"taplot/internal/series"
)

// Pane is one vertically stacked subfigure with its own y scale.
type Pane interface {
	Name() string
	// DrawReal plots a real series from its first-valid index onward.
	DrawReal(name string, s *series.Real) Pane
	// DrawInt plots an integer series from its first-valid index onward.
	DrawInt(name string, s *series.Int) Pane
	// DrawCandles plots a candle bundle in two passes: bars whose close did
	// not fall below the open, then falling bars, so the backend can color
	// them separately.
	DrawCandles(c *market.Candles, bars bool) Pane
	// DrawVolumes plots the bundle's volume with the same two-pass split.
	DrawVolumes(c *market.Candles) Pane
	// SetLogScale switches the pane's y axis to a logarithmic scale.
	SetLogScale(log bool)
}

// Chart is an ordered stack of panes rendered together.
type Chart interface {
	Name() string
	AddPane(name string) Pane
	Pane(i int) Pane
	PaneCount() int
	Render() error
}

// DrawIndicator plots every output of an indicator onto a pane. With several
// outputs each series is labeled name:outputName; a single output takes the
// given name, falling back to the computation name.
func DrawIndicator(p Pane, ind *engine.Indicator, name string) Pane {
	for _, out := range ind.Outputs() {
		label := name
		if ind.Size() > 1 {
			if name == "" {
				label = out.Name
			} else {
				label = name + ":" + out.Name
			}
		} else if name == "" {
			label = ind.Name()
		}
		switch {
		case out.Real != nil:
			p.DrawReal(label, out.Real)
		case out.Int != nil:
			p.DrawInt(label, out.Int)
		}
	}
	return p
}
