package chart

import (
	"fmt"
	"io"
	"os"
	"strings"

	"taplot/internal/market"
	"taplot/internal/series"
)

// GnuplotChart writes a gnuplot multiplot script. The script embeds the data
// inline, so rendering the image needs nothing but gnuplot itself.
type GnuplotChart struct {
	name       string
	scriptPath string
	imagePath  string
	panes      []*gnuplotPane
}

func NewGnuplotChart(name string) *GnuplotChart {
	return &GnuplotChart{name: name}
}

// NewGnuplotChartWithDefaults adds the conventional first two panes: candles
// on top, volume below.
func NewGnuplotChartWithDefaults(name string, candles *market.Candles) *GnuplotChart {
	c := NewGnuplotChart(name)
	c.AddPane("").DrawCandles(candles, true)
	c.AddPane("").DrawVolumes(candles)
	return c
}

// SetPaths overrides the default <name>.gp / <name>.png output paths.
func (c *GnuplotChart) SetPaths(script, image string) {
	c.scriptPath = script
	c.imagePath = image
}

func (c *GnuplotChart) Name() string { return c.name }

func (c *GnuplotChart) AddPane(name string) Pane {
	p := &gnuplotPane{name: name, first: true}
	c.panes = append(c.panes, p)
	return p
}

func (c *GnuplotChart) Pane(i int) Pane { return c.panes[i] }

func (c *GnuplotChart) PaneCount() int { return len(c.panes) }

func (c *GnuplotChart) Render() error {
	script := c.scriptPath
	if script == "" {
		script = c.name + ".gp"
	}
	f, err := os.Create(script)
	if err != nil {
		return err
	}
	defer f.Close()
	return c.RenderTo(f)
}

// RenderTo writes the script to w.
func (c *GnuplotChart) RenderTo(w io.Writer) error {
	image := c.imagePath
	if image == "" {
		image = c.name + ".png"
	}
	n := len(c.panes)
	if n == 0 {
		return fmt.Errorf("chart: %s has no panes", c.name)
	}
	height := 480 * (2 + n) / 3
	ratio := 1.0 / float64(2+n)

	var b strings.Builder
	fmt.Fprintf(&b, "set terminal png size 800, %d\n", height)
	fmt.Fprintf(&b, "set output %q\n", image)
	b.WriteString("set grid\n\n")
	b.WriteString("set key tmargin left horizontal\n")
	b.WriteString("set lmargin 10\n")
	fmt.Fprintf(&b, "set multiplot layout %d,1\n\n", n)

	// The first pane gets triple height; the rest share the remainder.
	acc := 0.0
	for i, p := range c.panes {
		r := ratio
		if i == 0 {
			r *= 3
		}
		acc += r
		p.dump(&b, r, 1.0-acc)
	}
	b.WriteString("unset multiplot\n")
	_, err := io.WriteString(w, b.String())
	return err
}

type gnuplotPane struct {
	name  string
	log   bool
	first bool
	cmd   strings.Builder
	data  strings.Builder
}

func (p *gnuplotPane) Name() string { return p.name }

func (p *gnuplotPane) SetLogScale(log bool) { p.log = log }

// input emits the plot keyword for the first series on the pane and a
// continuation comma afterwards.
func (p *gnuplotPane) input() string {
	if p.first {
		p.first = false
		return "plot \"-\" "
	}
	return ", \"-\" "
}

func titleClause(name string) string {
	if name == "" {
		return "notitle "
	}
	return fmt.Sprintf("title %q ", name)
}

func styleClause(st series.Style) string {
	switch {
	case st&series.StyleDot != 0:
		return "with dots "
	case st&(series.StyleHistogram|series.StylePatternBool|series.StylePatternBullBear|series.StylePatternStrength) != 0:
		return "with impulses "
	default:
		return "with lines "
	}
}

func barClause(bars bool) string {
	if bars {
		return "with financebars "
	}
	return "with candlesticks "
}

func colorClause(c string) string {
	return fmt.Sprintf("lc rgb %q ", c)
}

func (p *gnuplotPane) DrawReal(name string, s *series.Real) Pane {
	p.cmd.WriteString(p.input() + "using 1:2 " + styleClause(s.Style()) + titleClause(name))
	for i := s.First(); i < s.Len(); i++ {
		fmt.Fprintf(&p.data, "%d\t%g\n", i, s.At(i))
	}
	p.data.WriteString("e\n")
	return p
}

func (p *gnuplotPane) DrawInt(name string, s *series.Int) Pane {
	p.cmd.WriteString(p.input() + "using 1:2 " + styleClause(s.Style()) + titleClause(name))
	for i := s.First(); i < s.Len(); i++ {
		fmt.Fprintf(&p.data, "%d\t%d\n", i, s.At(i))
	}
	p.data.WriteString("e\n")
	return p
}

func (p *gnuplotPane) DrawCandles(c *market.Candles, bars bool) Pane {
	p.cmd.WriteString(p.input() + "using 1:2:3:4:5 notitle " + barClause(bars) + colorClause("green"))
	p.cmd.WriteString(p.input() + "using 1:2:3:4:5 notitle " + barClause(bars) + colorClause("red"))
	p.candlePass(c, false)
	p.candlePass(c, true)
	return p
}

// candlePass emits one color's worth of bars: falling selects bars whose
// close dropped below the open.
func (p *gnuplotPane) candlePass(c *market.Candles, falling bool) {
	for i := 0; i < c.Len(); i++ {
		k := c.At(i)
		if (k.Open > k.Close) != falling {
			continue
		}
		fmt.Fprintf(&p.data, "%d\t%g\t%g\t%g\t%g\n", i, k.Open, k.High, k.Low, k.Close)
	}
	p.data.WriteString("e\n")
}

func (p *gnuplotPane) DrawVolumes(c *market.Candles) Pane {
	p.cmd.WriteString(p.input() + "using 1:2 notitle " + styleClause(series.StyleHistogram) + colorClause("green"))
	p.cmd.WriteString(p.input() + "using 1:2 notitle " + styleClause(series.StyleHistogram) + colorClause("red"))
	p.volumePass(c, false)
	p.volumePass(c, true)
	return p
}

func (p *gnuplotPane) volumePass(c *market.Candles, falling bool) {
	for i := 0; i < c.Len(); i++ {
		k := c.At(i)
		if (k.Open > k.Close) != falling {
			continue
		}
		fmt.Fprintf(&p.data, "%d\t%g\n", i, k.Volume)
	}
	p.data.WriteString("e\n")
}

func (p *gnuplotPane) dump(b *strings.Builder, ratio, offset float64) {
	b.WriteString("set xrange [0:]\n")
	fmt.Fprintf(b, "set size 1, %g\n", ratio)
	fmt.Fprintf(b, "set origin 0, %g\n", offset)
	if p.log {
		b.WriteString("set logscale y\n")
	}
	b.WriteString("\n")
	b.WriteString(p.cmd.String())
	b.WriteString("\n")
	b.WriteString(p.data.String())
	if p.log {
		b.WriteString("unset logscale y\n")
	}
}
