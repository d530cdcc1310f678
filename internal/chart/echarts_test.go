package chart

import (
	"strings"
	"testing"

	"taplot/internal/engine"
	"taplot/internal/registry/talib"
	"taplot/internal/series"
)

func TestEChartsRenderPage(t *testing.T) {
	c := NewEChartsChartWithDefaults("C", testCandles(8))
	osc := series.FromValues([]float64{1, 2, 3, 4, 5, 6, 7, 8})
	osc.SetFirst(3)
	c.AddPane("osc").DrawReal("rsi", osc)

	var b strings.Builder
	if err := c.RenderTo(&b); err != nil {
		t.Fatal(err)
	}
	html := b.String()
	if !strings.Contains(html, "candles") {
		t.Fatal("kline series missing")
	}
	if !strings.Contains(html, "advancing") || !strings.Contains(html, "declining") {
		t.Fatal("two-pass volume series missing")
	}
	if !strings.Contains(html, "rsi") {
		t.Fatal("line series missing")
	}
	if !strings.Contains(html, "2008-05-01") {
		t.Fatal("date labels missing")
	}
}

func TestEChartsOverlayOnCandlePane(t *testing.T) {
	cs := testCandles(8)
	c := NewEChartsChart("O")
	pane := c.AddPane("")
	pane.DrawCandles(cs, false)
	ma := series.FromValues([]float64{10, 11, 12, 13, 14, 15, 16, 17})
	ma.SetFirst(2)
	pane.DrawReal("ma", ma)

	var b strings.Builder
	if err := c.RenderTo(&b); err != nil {
		t.Fatal(err)
	}
	html := b.String()
	if !strings.Contains(html, "ma") || !strings.Contains(html, "candles") {
		t.Fatal("overlay or kline series missing")
	}
}

func TestDrawIndicatorNaming(t *testing.T) {
	reg := talib.Open()
	defer reg.Close()

	in := series.New[float64](80)
	for i := range in.Values() {
		in.Values()[i] = float64(50 + i%7)
	}
	macd, err := engine.New(reg, "MACD", engine.DefaultOptions(), in)
	if err != nil {
		t.Fatal(err)
	}
	ema, err := engine.New(reg, "EMA", engine.DefaultOptions().AddInt("optInTimePeriod", 5), in)
	if err != nil {
		t.Fatal(err)
	}

	c := NewGnuplotChart("I")
	DrawIndicator(c.AddPane("macd"), macd, "MACD")
	DrawIndicator(c.AddPane("ma"), ema, "")

	var b strings.Builder
	if err := c.RenderTo(&b); err != nil {
		t.Fatal(err)
	}
	script := b.String()
	// Multi-output indicators qualify each series name.
	if !strings.Contains(script, `title "MACD:outMACDHist"`) {
		t.Fatalf("qualified output title missing:\n%s", script)
	}
	// Single-output indicators fall back to the computation name.
	if !strings.Contains(script, `title "EMA"`) {
		t.Fatal("computation-name fallback missing")
	}
}
