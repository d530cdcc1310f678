package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"taplot/internal/series"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taplot.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFull(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
log_level = "debug"

[data]
file = "c.txt"
begin = "2008-05-01"
end = "2008-06-01"

[[indicators]]
name = "sma"
label = "fast"
pane = "price"
inputs = ["close"]
options = { optInTimePeriod = 10 }

[[indicators]]
name = "MACD"

[chart]
title = "C"
script = "c.gnuplot"
log_price = true
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level = %q", cfg.LogLevel)
	}
	if cfg.Indicators[0].Name != "SMA" {
		t.Fatalf("name not upper-cased: %q", cfg.Indicators[0].Name)
	}
	if got := cfg.Indicators[0].Options["optInTimePeriod"]; got != int64(10) {
		t.Fatalf("option = %v (%T), want int64 10", got, got)
	}
	if cfg.Indicators[1].Label != "MACD" {
		t.Fatalf("label should default to the name, got %q", cfg.Indicators[1].Label)
	}
	begin, err := cfg.Begin()
	if err != nil {
		t.Fatal(err)
	}
	if begin != series.NewDate(2008, time.May, 1) {
		t.Fatalf("begin = %v", begin)
	}
	if !cfg.Chart.LogPrice {
		t.Fatal("log_price not picked up")
	}
}

func TestLoadOpenDateWindow(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[data]
symbol = "BTCUSDT"
`))
	if err != nil {
		t.Fatal(err)
	}
	begin, _ := cfg.Begin()
	end, _ := cfg.End()
	if begin != series.Beginning || end != series.Ending {
		t.Fatalf("window = [%v, %v), want open on both ends", begin, end)
	}
	if cfg.Chart.Title != "BTCUSDT" {
		t.Fatalf("title should default to the symbol, got %q", cfg.Chart.Title)
	}
	if cfg.Data.Limit != 500 {
		t.Fatalf("limit default = %d", cfg.Data.Limit)
	}
}

func TestLoadRejectsBadConfigs(t *testing.T) {
	cases := map[string]string{
		"no source":        `[chart]` + "\n" + `title = "x"`,
		"both sources":     "[data]\nfile = \"a\"\nsymbol = \"B\"",
		"bad begin":        "[data]\nfile = \"a\"\nbegin = \"yesterday\"",
		"unnamed":          "[data]\nfile = \"a\"\n[[indicators]]\nlabel = \"x\"",
		"duplicate labels": "[data]\nfile = \"a\"\n[[indicators]]\nname = \"SMA\"\n[[indicators]]\nname = \"SMA\"",
		"string option":    "[data]\nfile = \"a\"\n[[indicators]]\nname = \"SMA\"\noptions = { optInTimePeriod = \"ten\" }",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Errorf("%s: accepted", name)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("missing file accepted")
	}
}
