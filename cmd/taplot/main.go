package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"

	"taplot/internal/chart"
	"taplot/internal/config"
	"taplot/internal/logger"
	"taplot/internal/market"
	"taplot/internal/registry/talib"
	"taplot/internal/run"
	"taplot/internal/store"
	"taplot/internal/transport/httpapi"
)

func main() {
	var (
		cfgPath = flag.String("config", "taplot.toml", "path to the run configuration")
		serve   = flag.Bool("serve", false, "serve the results over HTTP after computing")
	)
	flag.Parse()

	if err := realMain(*cfgPath, *serve); err != nil {
		logger.Fatalf("%v", err)
	}
}

func realMain(cfgPath string, serve bool) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	logger.Setup(cfg.LogLevel)

	runID := uuid.NewString()
	logger.Infof("[main] run %s starting", runID)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	candles, err := loadCandles(ctx, cfg)
	if err != nil {
		return err
	}
	if candles.Len() == 0 {
		return errors.New("no candles in the configured date window")
	}
	logger.Infof("[main] loaded %d candles, %s .. %s",
		candles.Len(), candles.At(0).Date, candles.At(candles.Len()-1).Date)

	reg := talib.Open()
	defer reg.Close()

	computed, err := run.Indicators(reg, cfg.Indicators, candles)
	if err != nil {
		return err
	}
	printSummary(candles, computed)

	if err := renderCharts(cfg, candles, computed); err != nil {
		return err
	}

	if serve {
		router := httpapi.NewRouter(cfg.Chart.HTML)
		for _, c := range computed {
			router.AddIndicator(c.Label, c.Indicator)
		}
		addr := cfg.Serve.Addr
		if addr == "" {
			addr = ":8080"
		}
		return router.Run(addr)
	}
	logger.Infof("[main] run %s done", runID)
	return nil
}

// loadCandles picks the configured source: a flat file, or an exchange
// symbol optionally cached through a sqlite store.
func loadCandles(ctx context.Context, cfg *config.Config) (*market.Candles, error) {
	begin, _ := cfg.Begin()
	end, _ := cfg.End()

	if cfg.Data.File != "" {
		return market.LoadFile(cfg.Data.File, begin, end)
	}

	var cache store.CandleStore
	if cfg.Data.Store != "" {
		s, err := store.OpenSQLite(cfg.Data.Store)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		cache = s

		cached, err := s.Get(ctx, cfg.Data.Symbol)
		switch {
		case err == nil:
			logger.Debugf("[main] %s served from store %s", cfg.Data.Symbol, cfg.Data.Store)
			return cached.Window(begin, end), nil
		case !errors.Is(err, store.ErrNotFound):
			return nil, err
		}
	}

	logger.Infof("[main] fetching %s from the exchange", cfg.Data.Symbol)
	fetched, err := market.NewBinanceSource().FetchDaily(ctx, cfg.Data.Symbol, cfg.Data.Limit)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		if err := cache.Put(ctx, cfg.Data.Symbol, fetched); err != nil {
			logger.Warnf("[main] store put failed: %v", err)
		}
	}
	return fetched.Window(begin, end), nil
}

func printSummary(candles *market.Candles, computed []run.Computed) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"label", "computation", "lookback", "first", "valid", "last value"})
	for _, c := range computed {
		ind := c.Indicator
		out := ind.Out()
		last := "-"
		if n := out.Len(); n > out.First() {
			if out.Real != nil {
				last = fmt.Sprintf("%.4f", out.Real.At(n-1))
			} else {
				last = fmt.Sprintf("%d", out.Int.At(n-1))
			}
		}
		t.AppendRow(table.Row{
			c.Label, ind.Name(), ind.Lookback(), ind.First(),
			candles.Len() - ind.First(), last,
		})
	}
	t.Render()
}

func renderCharts(cfg *config.Config, candles *market.Candles, computed []run.Computed) error {
	if cfg.Chart.Script == "" && cfg.Chart.HTML == "" {
		return nil
	}
	if cfg.Chart.Script != "" {
		g := chart.NewGnuplotChart(cfg.Chart.Title)
		g.SetPaths(cfg.Chart.Script, cfg.Chart.Image)
		populateChart(g, cfg, candles, computed)
		if err := g.Render(); err != nil {
			return err
		}
		logger.Infof("[main] wrote gnuplot script %s", cfg.Chart.Script)
	}
	if cfg.Chart.HTML != "" {
		e := chart.NewEChartsChart(cfg.Chart.Title)
		e.SetPath(cfg.Chart.HTML)
		populateChart(e, cfg, candles, computed)
		if err := e.Render(); err != nil {
			return err
		}
		logger.Infof("[main] wrote chart page %s", cfg.Chart.HTML)
	}
	return nil
}

// populateChart lays out the conventional stack (candles, volume) and routes
// each indicator to its configured pane by name. "price" overlays the candle
// pane.
func populateChart(c chart.Chart, cfg *config.Config, candles *market.Candles, computed []run.Computed) {
	price := c.AddPane("price")
	price.DrawCandles(candles, cfg.Chart.Bars)
	price.SetLogScale(cfg.Chart.LogPrice)
	c.AddPane("volume").DrawVolumes(candles)

	for _, comp := range computed {
		chart.DrawIndicator(paneFor(c, comp.Pane), comp.Indicator, comp.Label)
	}
}

func paneFor(c chart.Chart, name string) chart.Pane {
	if name == "" {
		name = "indicators"
	}
	for i := 0; i < c.PaneCount(); i++ {
		if c.Pane(i).Name() == name {
			return c.Pane(i)
		}
	}
	return c.AddPane(name)
}
