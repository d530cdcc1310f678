// Package talib implements the computation registry on top of the pure-Go
// TA-Lib port. Descriptors carry TA-Lib's canonical function, option and
// output names so callers can address computations the way TA-Lib documents
// them.
package talib

import (
	"fmt"
	"sync"

	"taplot/internal/registry"
)

// Registry is the process-wide provider handle. The caller opens it once
// before constructing indicators and closes it when done.
type Registry struct {
	mu     sync.RWMutex
	closed bool
	funcs  map[string]*descriptor
}

func Open() *Registry {
	return &Registry{funcs: builtins()}
}

func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return registry.ErrClosed
	}
	r.closed = true
	return nil
}

// Names lists the registered computation names, for diagnostics.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		out = append(out, name)
	}
	return out
}

// Acquire returns fresh, unbound state for the named computation.
func (r *Registry) Acquire(name string) (registry.Func, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, registry.ErrClosed
	}
	d, ok := r.funcs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", registry.ErrUnknownFunc, name)
	}
	return newState(d), nil
}

type optionDesc struct {
	name    string
	kind    registry.Kind
	defInt  int
	defReal float64
}

type descriptor struct {
	name     string
	options  []optionDesc
	inputs   []registry.InputKind
	outputs  []registry.OutputInfo
	lookback func(st *state) int
	run      func(st *state) error
}

type optValue struct {
	i int
	r float64
}

type priceInput struct {
	open, high, low, close, volume, openInterest []float64
}

type boundInput struct {
	real  []float64
	ints  []int
	price *priceInput
}

type boundOutput struct {
	real []float64
	ints []int
}

// state implements registry.Func for one invocation of one descriptor.
type state struct {
	desc   *descriptor
	opts   []optValue
	inputs []boundInput
	outs   []boundOutput
}

func newState(d *descriptor) *state {
	st := &state{
		desc:   d,
		opts:   make([]optValue, len(d.options)),
		inputs: make([]boundInput, len(d.inputs)),
		outs:   make([]boundOutput, len(d.outputs)),
	}
	for i, o := range d.options {
		st.opts[i] = optValue{i: o.defInt, r: o.defReal}
	}
	return st
}

func (st *state) Name() string { return st.desc.name }

func (st *state) OptionSchema() []registry.OptionInfo {
	out := make([]registry.OptionInfo, len(st.desc.options))
	for i, o := range st.desc.options {
		out[i] = registry.OptionInfo{Name: o.name, Kind: o.kind}
	}
	return out
}

func (st *state) InputSchema() []registry.InputKind {
	out := make([]registry.InputKind, len(st.desc.inputs))
	copy(out, st.desc.inputs)
	return out
}

func (st *state) OutputSchema() []registry.OutputInfo {
	out := make([]registry.OutputInfo, len(st.desc.outputs))
	copy(out, st.desc.outputs)
	return out
}

func (st *state) BindIntOption(index int, v int) error {
	if index < 0 || index >= len(st.opts) {
		return fmt.Errorf("%w: %s has no option %d", registry.ErrBadBinding, st.desc.name, index)
	}
	if st.desc.options[index].kind != registry.KindInteger {
		return fmt.Errorf("%w: option %q is %s", registry.ErrBadBinding,
			st.desc.options[index].name, st.desc.options[index].kind)
	}
	st.opts[index].i = v
	return nil
}

func (st *state) BindRealOption(index int, v float64) error {
	if index < 0 || index >= len(st.opts) {
		return fmt.Errorf("%w: %s has no option %d", registry.ErrBadBinding, st.desc.name, index)
	}
	if st.desc.options[index].kind != registry.KindReal {
		return fmt.Errorf("%w: option %q is %s", registry.ErrBadBinding,
			st.desc.options[index].name, st.desc.options[index].kind)
	}
	st.opts[index].r = v
	return nil
}

func (st *state) BindRealInput(index int, vals []float64) error {
	if err := st.checkInput(index, registry.InputRealSeries); err != nil {
		return err
	}
	st.inputs[index] = boundInput{real: vals}
	return nil
}

func (st *state) BindIntInput(index int, vals []int) error {
	if err := st.checkInput(index, registry.InputIntegerSeries); err != nil {
		return err
	}
	st.inputs[index] = boundInput{ints: vals}
	return nil
}

func (st *state) BindPriceInput(index int, open, high, low, clos, volume, openInterest []float64) error {
	if err := st.checkInput(index, registry.InputPrice); err != nil {
		return err
	}
	st.inputs[index] = boundInput{price: &priceInput{
		open: open, high: high, low: low, close: clos,
		volume: volume, openInterest: openInterest,
	}}
	return nil
}

func (st *state) checkInput(index int, kind registry.InputKind) error {
	if index < 0 || index >= len(st.inputs) {
		return fmt.Errorf("%w: %s has no input %d", registry.ErrBadBinding, st.desc.name, index)
	}
	if st.desc.inputs[index] != kind {
		return fmt.Errorf("%w: input %d of %s is a %s", registry.ErrBadBinding,
			index, st.desc.name, st.desc.inputs[index])
	}
	return nil
}

func (st *state) BindRealOutput(index int, buf []float64) error {
	if err := st.checkOutput(index, registry.KindReal); err != nil {
		return err
	}
	st.outs[index] = boundOutput{real: buf}
	return nil
}

func (st *state) BindIntOutput(index int, buf []int) error {
	if err := st.checkOutput(index, registry.KindInteger); err != nil {
		return err
	}
	st.outs[index] = boundOutput{ints: buf}
	return nil
}

func (st *state) checkOutput(index int, kind registry.Kind) error {
	if index < 0 || index >= len(st.outs) {
		return fmt.Errorf("%w: %s has no output %d", registry.ErrBadBinding, st.desc.name, index)
	}
	if st.desc.outputs[index].Kind != kind {
		return fmt.Errorf("%w: output %d of %s is %s", registry.ErrBadBinding,
			index, st.desc.name, st.desc.outputs[index].Kind)
	}
	return nil
}

func (st *state) Lookback() int {
	return st.desc.lookback(st)
}

func (st *state) Execute(start, end int) (int, int, error) {
	n := st.inputLen()
	if n < 0 {
		return 0, 0, fmt.Errorf("%w: %s executed with unbound inputs", registry.ErrBadBinding, st.desc.name)
	}
	if start != 0 || end != n-1 {
		return 0, 0, fmt.Errorf("%w: %s execute window [%d,%d] must cover the bound inputs (length %d)",
			registry.ErrBadBinding, st.desc.name, start, end, n)
	}
	lb := st.Lookback()
	produced := n - lb
	if produced <= 0 {
		return lb, 0, nil
	}
	for i, out := range st.outs {
		if len(out.real) < produced && len(out.ints) < produced {
			return 0, 0, fmt.Errorf("%w: output %d of %s holds %d samples, need %d",
				registry.ErrBadBinding, i, st.desc.name, len(out.real)+len(out.ints), produced)
		}
	}
	if err := st.desc.run(st); err != nil {
		return 0, 0, err
	}
	return lb, produced, nil
}

// inputLen returns the common bound-window length, or -1 when an input is
// missing. The engine binds every input over the same window.
func (st *state) inputLen() int {
	n := -1
	for _, in := range st.inputs {
		var l int
		switch {
		case in.price != nil:
			l = len(in.price.close)
		case in.real != nil:
			l = len(in.real)
		case in.ints != nil:
			l = len(in.ints)
		default:
			return -1
		}
		if n < 0 || l < n {
			n = l
		}
	}
	return n
}

func (st *state) intOpt(i int) int      { return st.opts[i].i }
func (st *state) realOpt(i int) float64 { return st.opts[i].r }

// emitReal copies the stable suffix of a full-length result into the bound
// output buffer for slot.
func (st *state) emitReal(slot int, res []float64) {
	lb := st.Lookback()
	if lb > len(res) {
		lb = len(res)
	}
	copy(st.outs[slot].real, res[lb:])
}

// emitInt converts and copies a full-length result carrying integral values.
func (st *state) emitInt(slot int, res []float64) {
	lb := st.Lookback()
	if lb > len(res) {
		lb = len(res)
	}
	dst := st.outs[slot].ints
	for i, v := range res[lb:] {
		if i >= len(dst) {
			break
		}
		dst[i] = int(v)
	}
}
