// Package engine dispatches named computations over series operands and
// propagates the first-valid index through the result. Construction is
// all-or-nothing: an Indicator either holds fully computed outputs or the
// constructor returns an error.
package engine

import (
	"errors"
	"fmt"

	"taplot/internal/logger"
	"taplot/internal/market"
	"taplot/internal/registry"
	"taplot/internal/series"
)

var (
	ErrUnknownComputation = errors.New("engine: unknown computation")
	ErrArityMismatch      = errors.New("engine: input arity mismatch")
	ErrUnknownOption      = errors.New("engine: unknown option")
	ErrOptionTypeMismatch = errors.New("engine: option type mismatch")
	ErrInputKindMismatch  = errors.New("engine: input kind mismatch")
	ErrInsufficientData   = errors.New("engine: insufficient data")
	// ErrInvariantViolation reports a contract breach between the engine and
	// the computation provider. It is never a recoverable user error.
	ErrInvariantViolation = errors.New("engine: invariant violation")
)

// Operand is an input to a computation: a real series, an integer series or
// a candle bundle. The closed set of accepted concrete types is
// *series.Real, *series.Int and *market.Candles.
type Operand interface {
	First() int
	Len() int
}

// Output is one produced series. Exactly one of Real and Int is set,
// matching Kind.
type Output struct {
	Name string
	Kind registry.Kind
	Real *series.Real
	Int  *series.Int
}

// First returns the first-valid index of the produced series.
func (o Output) First() int {
	if o.Kind == registry.KindInteger {
		return o.Int.First()
	}
	return o.Real.First()
}

// Len returns the length of the produced series.
func (o Output) Len() int {
	if o.Kind == registry.KindInteger {
		return o.Int.Len()
	}
	return o.Real.Len()
}

// Indicator is one computed invocation: immutable after New, owning its
// output series exclusively. Independent Indicator instances may be
// constructed in parallel as long as their operands are already complete.
type Indicator struct {
	name     string
	lookback int
	first    int
	outputs  []Output
}

// New resolves name against reg, binds opts and one or two operands,
// computes, and wraps the outputs as series whose first-valid index is the
// combined input first plus the computation's lookback.
func New(reg registry.Registry, name string, opts Options, inputs ...Operand) (*Indicator, error) {
	fn, err := reg.Acquire(name)
	if err != nil {
		if errors.Is(err, registry.ErrUnknownFunc) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownComputation, name)
		}
		return nil, err
	}

	optSchema := fn.OptionSchema()
	inSchema := fn.InputSchema()
	outSchema := fn.OutputSchema()

	if len(inputs) != len(inSchema) {
		return nil, fmt.Errorf("%w: %s takes %d inputs, got %d",
			ErrArityMismatch, name, len(inSchema), len(inputs))
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: %s declares no inputs", ErrArityMismatch, name)
	}

	if err := bindOptions(fn, name, optSchema, opts); err != nil {
		return nil, err
	}

	// The narrower common window governs: no computation may read before an
	// input's own first-valid index, nor write past the shortest input.
	combinedFirst := 0
	visible := inputs[0].Len()
	for _, in := range inputs {
		if f := in.First(); f > combinedFirst {
			combinedFirst = f
		}
		if n := in.Len(); n < visible {
			visible = n
		}
	}

	// Lookback depends only on the bound options, so the window is checked
	// before any input is sliced. This also rejects disjoint input windows
	// (combinedFirst past the shortest input), where [from:to] would be
	// inverted.
	lookback := fn.Lookback()
	outputFirst := combinedFirst + lookback
	if outputFirst > visible {
		return nil, fmt.Errorf("%w: %s needs %d context samples but only %d are visible past index %d",
			ErrInsufficientData, name, lookback, visible-combinedFirst, combinedFirst)
	}

	for i, in := range inputs {
		if err := bindInput(fn, name, i, inSchema[i], in, combinedFirst, visible); err != nil {
			return nil, err
		}
	}

	ind := &Indicator{name: name, lookback: lookback, first: outputFirst}
	ind.outputs = make([]Output, len(outSchema))
	for i, od := range outSchema {
		out := Output{Name: od.Name, Kind: od.Kind}
		switch od.Kind {
		case registry.KindReal:
			s := series.New[float64](visible)
			s.SetFirst(outputFirst)
			s.SetStyle(od.Style)
			out.Real = s
			err = fn.BindRealOutput(i, s.Values()[outputFirst:])
		case registry.KindInteger:
			s := series.New[int](visible)
			s.SetFirst(outputFirst)
			s.SetStyle(od.Style)
			out.Int = s
			err = fn.BindIntOutput(i, s.Values()[outputFirst:])
		default:
			err = fmt.Errorf("%w: %s output %d has unknown kind", ErrInvariantViolation, name, i)
		}
		if err != nil {
			return nil, err
		}
		ind.outputs[i] = out
	}

	begIdx, produced, err := fn.Execute(0, visible-combinedFirst-1)
	if err != nil {
		return nil, fmt.Errorf("engine: %s execute: %w", name, err)
	}
	if begIdx != lookback || produced != visible-outputFirst {
		logger.Errorf("engine: %s reported output window (start=%d, count=%d), expected (start=%d, count=%d)",
			name, begIdx, produced, lookback, visible-outputFirst)
		return nil, fmt.Errorf("%w: %s reported output window (%d,%d), want (%d,%d)",
			ErrInvariantViolation, name, begIdx, produced, lookback, visible-outputFirst)
	}
	return ind, nil
}

func bindOptions(fn registry.Func, name string, schema []registry.OptionInfo, opts Options) error {
	byName := make(map[string]int, len(schema))
	for i, o := range schema {
		byName[o.Name] = i
	}
	// Options bind in caller order; a repeated name overwrites the earlier
	// binding.
	for _, o := range opts {
		idx, ok := byName[o.name]
		if !ok {
			return fmt.Errorf("%w: %s has no option %q", ErrUnknownOption, name, o.name)
		}
		declared := schema[idx].Kind
		var err error
		switch {
		case declared == registry.KindInteger && o.kind == optionInt:
			err = fn.BindIntOption(idx, o.i)
		case declared == registry.KindReal && o.kind == optionReal:
			err = fn.BindRealOption(idx, o.r)
		default:
			return fmt.Errorf("%w: option %q of %s is %s, got %s",
				ErrOptionTypeMismatch, o.name, name, declared, o.kind)
		}
		if err != nil {
			return fmt.Errorf("engine: bind option %q: %w", o.name, err)
		}
	}
	return nil
}

// bindInput hands the operand's [from, to) window to the provider, checking
// the operand's runtime kind against the declared slot kind.
func bindInput(fn registry.Func, name string, idx int, declared registry.InputKind, in Operand, from, to int) error {
	switch declared {
	case registry.InputRealSeries:
		r, ok := in.(*series.Real)
		if !ok {
			return fmt.Errorf("%w: input %d of %s must be a real series, got %T",
				ErrInputKindMismatch, idx, name, in)
		}
		return fn.BindRealInput(idx, r.Values()[from:to])
	case registry.InputIntegerSeries:
		s, ok := in.(*series.Int)
		if !ok {
			return fmt.Errorf("%w: input %d of %s must be an integer series, got %T",
				ErrInputKindMismatch, idx, name, in)
		}
		return fn.BindIntInput(idx, s.Values()[from:to])
	case registry.InputPrice:
		c, ok := in.(*market.Candles)
		if !ok {
			return fmt.Errorf("%w: input %d of %s must be a candle bundle, got %T",
				ErrInputKindMismatch, idx, name, in)
		}
		return fn.BindPriceInput(idx,
			c.Open().Values()[from:to],
			c.High().Values()[from:to],
			c.Low().Values()[from:to],
			c.Close().Values()[from:to],
			c.Volume().Values()[from:to],
			c.OpenInterest().Values()[from:to])
	}
	return fmt.Errorf("%w: input %d of %s has unsupported declared kind", ErrInputKindMismatch, idx, name)
}

// Name is the resolved computation name.
func (ind *Indicator) Name() string { return ind.name }

// Lookback is the number of context samples the computation consumed.
func (ind *Indicator) Lookback() int { return ind.lookback }

// First is the first-valid index of every output series.
func (ind *Indicator) First() int { return ind.first }

// Size is the number of output series.
func (ind *Indicator) Size() int { return len(ind.outputs) }

// Outputs returns all produced series.
func (ind *Indicator) Outputs() []Output { return ind.outputs }

// Output returns the produced series at position i.
func (ind *Indicator) Output(i int) Output { return ind.outputs[i] }

// Out returns the sole output of a single-output computation.
func (ind *Indicator) Out() Output { return ind.outputs[0] }
