package chart

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"taplot/internal/market"
	"taplot/internal/series"
)

// EChartsChart renders the pane stack as a single HTML page, one chart per
// pane. Candle overlays (moving averages drawn on the candle pane) are
// merged into the kline chart.
type EChartsChart struct {
	name  string
	path  string
	panes []*echartsPane
}

func NewEChartsChart(name string) *EChartsChart {
	return &EChartsChart{name: name}
}

// NewEChartsChartWithDefaults adds the conventional candle and volume panes.
func NewEChartsChartWithDefaults(name string, candles *market.Candles) *EChartsChart {
	c := NewEChartsChart(name)
	c.AddPane("").DrawCandles(candles, false)
	c.AddPane("").DrawVolumes(candles)
	return c
}

// SetPath overrides the default <name>.html output path.
func (c *EChartsChart) SetPath(path string) { c.path = path }

func (c *EChartsChart) Name() string { return c.name }

func (c *EChartsChart) AddPane(name string) Pane {
	p := &echartsPane{name: name}
	c.panes = append(c.panes, p)
	return p
}

func (c *EChartsChart) Pane(i int) Pane { return c.panes[i] }

func (c *EChartsChart) PaneCount() int { return len(c.panes) }

func (c *EChartsChart) Render() error {
	path := c.path
	if path == "" {
		path = c.name + ".html"
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return c.RenderTo(f)
}

// RenderTo writes the HTML page to w.
func (c *EChartsChart) RenderTo(w io.Writer) error {
	if len(c.panes) == 0 {
		return fmt.Errorf("chart: %s has no panes", c.name)
	}
	page := components.NewPage()
	page.PageTitle = c.name
	for _, p := range c.panes {
		for _, ch := range p.charts() {
			page.AddCharts(ch)
		}
	}
	return page.Render(w)
}

type echartsPane struct {
	name   string
	log    bool
	xAxis  []string
	kline  *charts.Kline
	line   *charts.Line
	bar    *charts.Bar
	seq    int
}

func (p *echartsPane) Name() string { return p.name }

func (p *echartsPane) SetLogScale(log bool) { p.log = log }

func (p *echartsPane) yAxisType() string {
	if p.log {
		return "log"
	}
	return "value"
}

func (p *echartsPane) title() string {
	if p.name == "" {
		return ""
	}
	return p.name
}

// labels keeps one shared x axis per pane, extending it when a longer series
// arrives.
func (p *echartsPane) labels(n int) []string {
	for len(p.xAxis) < n {
		p.xAxis = append(p.xAxis, strconv.Itoa(len(p.xAxis)))
	}
	return p.xAxis[:n]
}

func (p *echartsPane) ensureLine(n int) *charts.Line {
	if p.line == nil {
		p.line = charts.NewLine()
		p.line.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{Title: p.title()}),
			charts.WithYAxisOpts(opts.YAxis{Type: p.yAxisType()}),
		)
		p.line.SetXAxis(p.labels(n))
	}
	return p.line
}

func (p *echartsPane) seriesName(name string) string {
	p.seq++
	if name != "" {
		return name
	}
	return fmt.Sprintf("series%d", p.seq)
}

func (p *echartsPane) DrawReal(name string, s *series.Real) Pane {
	data := make([]opts.LineData, s.Len())
	for i := 0; i < s.Len(); i++ {
		if i < s.First() {
			data[i] = opts.LineData{Value: nil}
			continue
		}
		data[i] = opts.LineData{Value: s.At(i)}
	}
	p.ensureLine(s.Len()).AddSeries(p.seriesName(name), data)
	return p
}

func (p *echartsPane) DrawInt(name string, s *series.Int) Pane {
	data := make([]opts.LineData, s.Len())
	for i := 0; i < s.Len(); i++ {
		if i < s.First() {
			data[i] = opts.LineData{Value: nil}
			continue
		}
		data[i] = opts.LineData{Value: s.At(i)}
	}
	p.ensureLine(s.Len()).AddSeries(p.seriesName(name), data)
	return p
}

// DrawCandles ignores the bars flag: the HTML backend always draws candle
// bodies, which echarts already colors by direction.
func (p *echartsPane) DrawCandles(c *market.Candles, bars bool) Pane {
	x := make([]string, c.Len())
	data := make([]opts.KlineData, c.Len())
	for i := 0; i < c.Len(); i++ {
		k := c.At(i)
		x[i] = k.Date.String()
		data[i] = opts.KlineData{Value: [4]float64{k.Open, k.Close, k.Low, k.High}}
	}
	p.xAxis = x
	p.kline = charts.NewKLine()
	p.kline.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: p.title()}),
		charts.WithYAxisOpts(opts.YAxis{Type: p.yAxisType()}),
	)
	p.kline.SetXAxis(x).AddSeries(p.seriesName("candles"), data)
	return p
}

func (p *echartsPane) DrawVolumes(c *market.Candles) Pane {
	x := make([]string, c.Len())
	up := make([]opts.BarData, c.Len())
	down := make([]opts.BarData, c.Len())
	for i := 0; i < c.Len(); i++ {
		k := c.At(i)
		x[i] = k.Date.String()
		if k.Open > k.Close {
			down[i] = opts.BarData{Value: k.Volume}
		} else {
			up[i] = opts.BarData{Value: k.Volume}
		}
	}
	p.xAxis = x
	p.bar = charts.NewBar()
	p.bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: p.title()}),
		charts.WithYAxisOpts(opts.YAxis{Type: p.yAxisType()}),
	)
	p.bar.SetXAxis(x).
		AddSeries(p.seriesName("advancing"), up).
		AddSeries(p.seriesName("declining"), down)
	return p
}

func (p *echartsPane) charts() []components.Charter {
	var out []components.Charter
	if p.kline != nil {
		if p.line != nil {
			p.kline.Overlap(p.line)
			p.line = nil
		}
		out = append(out, p.kline)
	}
	if p.line != nil {
		out = append(out, p.line)
	}
	if p.bar != nil {
		out = append(out, p.bar)
	}
	return out
}
