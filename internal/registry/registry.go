// Package registry defines the computation-provider contract consumed by the
// dispatch engine. A provider exposes, per named computation, its option
// schema, input/output schemas, a lookback under the current option
// bindings, and an execute step writing into caller-supplied buffers.
package registry

import (
	"errors"

	"taplot/internal/series"
)

// Kind tags the value type of an option or an output series.
type Kind int

const (
	KindInteger Kind = iota
	KindReal
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	}
	return "unknown"
}

// InputKind tags the declared type of a computation input slot.
type InputKind int

const (
	InputRealSeries InputKind = iota
	InputIntegerSeries
	InputPrice
)

func (k InputKind) String() string {
	switch k {
	case InputRealSeries:
		return "real series"
	case InputIntegerSeries:
		return "integer series"
	case InputPrice:
		return "price bundle"
	}
	return "unknown"
}

// OptionInfo describes one optional parameter slot.
type OptionInfo struct {
	Name string
	Kind Kind
}

// OutputInfo describes one output slot.
type OutputInfo struct {
	Name  string
	Kind  Kind
	Style series.Style
}

var (
	// ErrUnknownFunc is returned by Acquire for an unregistered name.
	ErrUnknownFunc = errors.New("registry: unknown function")
	// ErrBadBinding is returned when a bind call does not match the schema.
	ErrBadBinding = errors.New("registry: bad binding")
	// ErrClosed is returned when the registry handle has been shut down.
	ErrClosed = errors.New("registry: closed")
)

// Func is the per-invocation state of one computation: option and input
// bindings accumulate on it, then Execute runs over the bound window.
// Implementations are not safe for concurrent use; the engine owns exactly
// one Func per invocation.
type Func interface {
	Name() string

	OptionSchema() []OptionInfo
	InputSchema() []InputKind
	OutputSchema() []OutputInfo

	BindIntOption(index int, v int) error
	BindRealOption(index int, v float64) error

	BindRealInput(index int, vals []float64) error
	BindIntInput(index int, vals []int) error
	BindPriceInput(index int, open, high, low, clos, volume, openInterest []float64) error

	BindRealOutput(index int, buf []float64) error
	BindIntOutput(index int, buf []int) error

	// Lookback reports how many leading samples are consumed as context
	// under the currently bound options.
	Lookback() int

	// Execute runs over [start, end] of the bound inputs, writing into the
	// bound output buffers from position 0. It reports the index of the
	// first produced element relative to the input window and the number of
	// elements produced.
	Execute(start, end int) (begIdx, count int, err error)
}

// Registry resolves computation names. Acquire returns fresh, unbound Func
// state for each call.
type Registry interface {
	Acquire(name string) (Func, error)
}
