package chart

import (
	"strings"
	"testing"
	"time"

	"taplot/internal/market"
	"taplot/internal/series"
)

func testCandles(n int) *market.Candles {
	cs := market.NewCandles()
	for i := 0; i < n; i++ {
		open := 10 + float64(i)
		clos := open + 1
		if i%3 == 0 {
			clos = open - 1 // falling bar
		}
		cs.Append(market.Candle{
			Open: open, High: open + 2, Low: open - 2, Close: clos,
			Volume: float64(100 * (i + 1)),
			Date:   series.NewDate(2008, time.May, 1+i),
		})
	}
	return cs
}

func TestGnuplotScriptLayout(t *testing.T) {
	c := NewGnuplotChartWithDefaults("C", testCandles(6))
	s := series.FromValues([]float64{1, 2, 3, 4, 5, 6})
	s.SetFirst(2)
	c.AddPane("RSI").DrawReal("rsi", s)

	var b strings.Builder
	if err := c.RenderTo(&b); err != nil {
		t.Fatal(err)
	}
	script := b.String()
	if !strings.Contains(script, "set multiplot layout 3,1") {
		t.Fatalf("missing multiplot layout:\n%s", script)
	}
	if !strings.Contains(script, `set output "C.png"`) {
		t.Fatal("missing output clause")
	}
	if !strings.Contains(script, `title "rsi"`) {
		t.Fatal("missing series title")
	}
	// Samples before the first-valid index are not plotted.
	if strings.Contains(script, "0\t1\n") {
		t.Fatal("plotted a sample from the unstable prefix")
	}
	if !strings.Contains(script, "2\t3\n") {
		t.Fatal("missing first valid sample")
	}
}

func TestGnuplotTwoPassCandles(t *testing.T) {
	c := NewGnuplotChart("X")
	c.AddPane("").DrawCandles(testCandles(6), true)

	var b strings.Builder
	if err := c.RenderTo(&b); err != nil {
		t.Fatal(err)
	}
	script := b.String()
	if got := strings.Count(script, "with financebars"); got != 2 {
		t.Fatalf("financebars clauses = %d, want 2 (one per color pass)", got)
	}
	if got := strings.Count(script, "e\n"); got != 2 {
		t.Fatalf("data terminators = %d, want 2", got)
	}
	if !strings.Contains(script, `lc rgb "green"`) || !strings.Contains(script, `lc rgb "red"`) {
		t.Fatal("missing two-color clauses")
	}
}

func TestGnuplotLogScale(t *testing.T) {
	c := NewGnuplotChart("L")
	p := c.AddPane("price")
	p.SetLogScale(true)
	p.DrawReal("x", series.FromValues([]float64{1, 10, 100}))

	var b strings.Builder
	if err := c.RenderTo(&b); err != nil {
		t.Fatal(err)
	}
	script := b.String()
	if !strings.Contains(script, "set logscale y\n") || !strings.Contains(script, "unset logscale y\n") {
		t.Fatal("log scale clauses missing")
	}
}

func TestGnuplotStyleClauses(t *testing.T) {
	hist := series.FromValues([]float64{1, 2})
	hist.SetStyle(series.StyleHistogram)
	dots := series.FromValues([]float64{1, 2})
	dots.SetStyle(series.StyleDot)

	c := NewGnuplotChart("S")
	c.AddPane("").DrawReal("h", hist).DrawReal("d", dots)

	var b strings.Builder
	if err := c.RenderTo(&b); err != nil {
		t.Fatal(err)
	}
	script := b.String()
	if !strings.Contains(script, "with impulses") {
		t.Fatal("histogram style not mapped to impulses")
	}
	if !strings.Contains(script, "with dots") {
		t.Fatal("dot style not mapped to dots")
	}
}

func TestGnuplotEmptyChart(t *testing.T) {
	c := NewGnuplotChart("E")
	var b strings.Builder
	if err := c.RenderTo(&b); err == nil {
		t.Fatal("rendering an empty chart should fail")
	}
}
