// Package series holds ordered sample sequences annotated with the index of
// their first meaningful element. Indicator computations have an unstable
// period: applying a 30-period average to a series leaves the first 29
// results without meaning. The first property records where meaningful data
// starts, and downstream computations grow it by their own lookback.
package series

// Style is a rendering hint set by the computation that produced a series.
// The engine never interprets it; chart renderers map it to a draw style.
type Style uint32

const (
	StyleLine Style = 1 << iota
	StyleDotLine
	StyleDashLine
	StyleDot
	StyleHistogram
	StylePatternBool
	StylePatternBullBear
	StylePatternStrength
)

// Value is the set of sample types a series may carry.
type Value interface {
	~int | ~int32 | ~float64
}

// Series is an ordered sequence of samples plus the first-valid index and a
// render style. Elements before First exist for positional uniformity with
// the source data but are not meaningful.
type Series[T Value] struct {
	vals  []T
	first int
	style Style
}

// New returns a zero-filled series of length n.
func New[T Value](n int) *Series[T] {
	return &Series[T]{vals: make([]T, n)}
}

// FromValues wraps vals without copying.
func FromValues[T Value](vals []T) *Series[T] {
	return &Series[T]{vals: vals}
}

func (s *Series[T]) Len() int {
	return len(s.vals)
}

// At returns the sample at position i. The caller guarantees i < Len.
func (s *Series[T]) At(i int) T {
	return s.vals[i]
}

// Values exposes the backing slice, including the unstable prefix.
func (s *Series[T]) Values() []T {
	return s.vals
}

// Valid returns the meaningful suffix vals[First:].
func (s *Series[T]) Valid() []T {
	if s.first >= len(s.vals) {
		return nil
	}
	return s.vals[s.first:]
}

func (s *Series[T]) Append(v T) {
	s.vals = append(s.vals, v)
}

// Resize grows or truncates the series to length n.
func (s *Series[T]) Resize(n int) {
	if n <= len(s.vals) {
		s.vals = s.vals[:n]
		return
	}
	grown := make([]T, n)
	copy(grown, s.vals)
	s.vals = grown
}

func (s *Series[T]) First() int {
	return s.first
}

func (s *Series[T]) SetFirst(f int) {
	s.first = f
}

func (s *Series[T]) Style() Style {
	return s.style
}

func (s *Series[T]) SetStyle(st Style) {
	s.style = st
}

// Real is a series of float64 samples.
type Real = Series[float64]

// Int is a series of integer samples.
type Int = Series[int]

// Dates is a series of calendar dates.
type Dates = Series[Date]
