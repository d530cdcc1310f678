// Package run turns a configured indicator list into computed indicators
// over a candle bundle. Indicators that reference other indicators by
// "@label" wait for their dependencies; the rest compute concurrently.
package run

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"taplot/internal/config"
	"taplot/internal/engine"
	"taplot/internal/logger"
	"taplot/internal/market"
	"taplot/internal/registry"
)

// Computed pairs one configured indicator with its result.
type Computed struct {
	Label     string
	Pane      string
	Indicator *engine.Indicator
}

// Indicators computes every configured indicator against the bundle.
// Results come back in configuration order.
func Indicators(reg registry.Registry, cfgs []config.IndicatorConfig, candles *market.Candles) ([]Computed, error) {
	results := make([]Computed, len(cfgs))
	byLabel := make(map[string]*engine.Indicator, len(cfgs))
	var mu sync.Mutex

	var deferred []int
	var g errgroup.Group
	for i, ic := range cfgs {
		if referencesIndicator(ic.Inputs) {
			deferred = append(deferred, i)
			continue
		}
		i, ic := i, ic
		g.Go(func() error {
			ind, err := compute(reg, ic, candles, nil)
			if err != nil {
				return err
			}
			mu.Lock()
			results[i] = Computed{Label: ic.Label, Pane: ic.Pane, Indicator: ind}
			byLabel[ic.Label] = ind
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Dependent indicators run in configuration order, so a chain of @refs
	// resolves front to back.
	for _, i := range deferred {
		ic := cfgs[i]
		ind, err := compute(reg, ic, candles, byLabel)
		if err != nil {
			return nil, err
		}
		results[i] = Computed{Label: ic.Label, Pane: ic.Pane, Indicator: ind}
		byLabel[ic.Label] = ind
	}
	return results, nil
}

func referencesIndicator(inputs []string) bool {
	for _, in := range inputs {
		if strings.HasPrefix(in, "@") {
			return true
		}
	}
	return false
}

func compute(reg registry.Registry, ic config.IndicatorConfig, candles *market.Candles, byLabel map[string]*engine.Indicator) (*engine.Indicator, error) {
	opts, err := buildOptions(ic.Options)
	if err != nil {
		return nil, fmt.Errorf("run: %s: %w", ic.Label, err)
	}

	names := ic.Inputs
	if len(names) == 0 {
		names, err = defaultInputs(reg, ic.Name)
		if err != nil {
			return nil, err
		}
	}
	operands := make([]engine.Operand, len(names))
	for i, n := range names {
		op, err := operand(n, candles, byLabel)
		if err != nil {
			return nil, fmt.Errorf("run: %s: %w", ic.Label, err)
		}
		operands[i] = op
	}

	logger.Debugf("[run] computing %s as %q over %d inputs", ic.Name, ic.Label, len(operands))
	return engine.New(reg, ic.Name, opts, operands...)
}

// defaultInputs derives operands from the computation's input schema: price
// slots take the whole bundle, series slots take the close.
func defaultInputs(reg registry.Registry, name string) ([]string, error) {
	fn, err := reg.Acquire(name)
	if err != nil {
		return nil, fmt.Errorf("run: %s: %w", name, err)
	}
	schema := fn.InputSchema()
	names := make([]string, len(schema))
	for i, kind := range schema {
		if kind == registry.InputPrice {
			names[i] = "price"
		} else {
			names[i] = "close"
		}
	}
	return names, nil
}

func operand(name string, candles *market.Candles, byLabel map[string]*engine.Indicator) (engine.Operand, error) {
	if ref, ok := strings.CutPrefix(name, "@"); ok {
		ind, ok := byLabel[ref]
		if !ok {
			return nil, fmt.Errorf("input %q references an indicator that was not computed first", name)
		}
		out := ind.Out()
		if out.Kind == registry.KindInteger {
			return out.Int, nil
		}
		return out.Real, nil
	}
	switch strings.ToLower(name) {
	case "price":
		return candles, nil
	case "open":
		return candles.Open(), nil
	case "high":
		return candles.High(), nil
	case "low":
		return candles.Low(), nil
	case "close":
		return candles.Close(), nil
	case "volume":
		return candles.Volume(), nil
	case "open_interest":
		return candles.OpenInterest(), nil
	}
	return nil, fmt.Errorf("unknown input %q", name)
}

// buildOptions maps TOML option values onto the fluent option set. Names
// bind in sorted order for reproducible runs.
func buildOptions(m map[string]any) (engine.Options, error) {
	opts := engine.DefaultOptions()
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		switch v := m[k].(type) {
		case int64:
			opts = opts.AddInt(k, int(v))
		case float64:
			opts = opts.AddReal(k, v)
		default:
			return nil, fmt.Errorf("option %q has unsupported type %T", k, v)
		}
	}
	return opts, nil
}
