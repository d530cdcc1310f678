// Package config loads the TOML run configuration: where candles come from,
// which computations to run over them, and where the charts go.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"taplot/internal/series"
)

// Config is the top-level document.
type Config struct {
	LogLevel   string            `toml:"log_level,omitempty"`
	Data       DataConfig        `toml:"data"`
	Indicators []IndicatorConfig `toml:"indicators,omitempty"`
	Chart      ChartConfig       `toml:"chart,omitempty"`
	Serve      ServeConfig       `toml:"serve,omitempty"`
}

// DataConfig selects exactly one candle source: a flat file or an exchange
// symbol, optionally cached through a sqlite store.
type DataConfig struct {
	File   string `toml:"file,omitempty"`
	Symbol string `toml:"symbol,omitempty"`
	Begin  string `toml:"begin,omitempty"`
	End    string `toml:"end,omitempty"`
	Store  string `toml:"store,omitempty"`
	Limit  int    `toml:"limit,omitempty"`
}

// IndicatorConfig describes one computation to dispatch. Inputs name price
// fields ("close", "price", ...) or earlier indicators by "@label". Options
// hold integers or reals keyed by the provider's parameter names.
type IndicatorConfig struct {
	Name    string         `toml:"name"`
	Label   string         `toml:"label,omitempty"`
	Pane    string         `toml:"pane,omitempty"`
	Inputs  []string       `toml:"inputs,omitempty"`
	Options map[string]any `toml:"options,omitempty"`
}

type ChartConfig struct {
	Title    string `toml:"title,omitempty"`
	Script   string `toml:"script,omitempty"`
	Image    string `toml:"image,omitempty"`
	HTML     string `toml:"html,omitempty"`
	LogPrice bool   `toml:"log_price,omitempty"`
	Bars     bool   `toml:"bars,omitempty"`
}

type ServeConfig struct {
	Addr string `toml:"addr,omitempty"`
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Chart.Title == "" {
		if c.Data.Symbol != "" {
			c.Chart.Title = c.Data.Symbol
		} else {
			c.Chart.Title = "chart"
		}
	}
	if c.Data.Limit == 0 {
		c.Data.Limit = 500
	}
	for i := range c.Indicators {
		ind := &c.Indicators[i]
		ind.Name = strings.ToUpper(strings.TrimSpace(ind.Name))
		if ind.Label == "" {
			ind.Label = ind.Name
		}
	}
}

func (c *Config) validate() error {
	if c.Data.File == "" && c.Data.Symbol == "" {
		return fmt.Errorf("data: either file or symbol is required")
	}
	if c.Data.File != "" && c.Data.Symbol != "" {
		return fmt.Errorf("data: file and symbol are mutually exclusive")
	}
	if _, err := c.Begin(); err != nil {
		return fmt.Errorf("data: begin: %w", err)
	}
	if _, err := c.End(); err != nil {
		return fmt.Errorf("data: end: %w", err)
	}
	seen := make(map[string]bool, len(c.Indicators))
	for _, ind := range c.Indicators {
		if ind.Name == "" {
			return fmt.Errorf("indicators: name is required")
		}
		if seen[ind.Label] {
			return fmt.Errorf("indicators: duplicate label %q", ind.Label)
		}
		seen[ind.Label] = true
		for opt, v := range ind.Options {
			switch v.(type) {
			case int64, float64:
			default:
				return fmt.Errorf("indicators: %s: option %q must be an integer or a real", ind.Label, opt)
			}
		}
	}
	return nil
}

// Begin returns the inclusive start of the date window, or the open
// beginning when unset.
func (c *Config) Begin() (series.Date, error) {
	if c.Data.Begin == "" {
		return series.Beginning, nil
	}
	return series.ParseDate(c.Data.Begin)
}

// End returns the exclusive end of the date window, or the open ending
// when unset.
func (c *Config) End() (series.Date, error) {
	if c.Data.End == "" {
		return series.Ending, nil
	}
	return series.ParseDate(c.Data.End)
}
