// Package market holds candle data: the single Candle value, the Candles
// bundle of aligned price series, and loaders that fill a bundle from a flat
// file or an exchange.
package market

import "taplot/internal/series"

// Candle is one bar of market data.
type Candle struct {
	Open         float64
	High         float64
	Low          float64
	Close        float64
	Volume       float64
	OpenInterest float64
	Date         series.Date
}

// Merge folds another candle of the same instrument into this one, extending
// high/low, carrying the latest close and accumulating volume.
func (c *Candle) Merge(other Candle) {
	if other.High > c.High {
		c.High = other.High
	}
	if other.Low < c.Low {
		c.Low = other.Low
	}
	c.Close = other.Close
	c.Volume += other.Volume
}

// Candles bundles six aligned price series plus the calendar dates. The
// bundle-level first-valid index and style are kept synchronized across all
// seven members: they can never diverge.
type Candles struct {
	open         *series.Real
	high         *series.Real
	low          *series.Real
	close        *series.Real
	volume       *series.Real
	openInterest *series.Real
	dates        *series.Dates

	first int
	style series.Style
}

// NewCandles returns an empty bundle.
func NewCandles() *Candles {
	return &Candles{
		open:         series.New[float64](0),
		high:         series.New[float64](0),
		low:          series.New[float64](0),
		close:        series.New[float64](0),
		volume:       series.New[float64](0),
		openInterest: series.New[float64](0),
		dates:        series.New[series.Date](0),
	}
}

func (c *Candles) Len() int {
	return c.open.Len()
}

// Append adds one candle to the tail of every member series.
func (c *Candles) Append(k Candle) {
	c.open.Append(k.Open)
	c.high.Append(k.High)
	c.low.Append(k.Low)
	c.close.Append(k.Close)
	c.volume.Append(k.Volume)
	c.openInterest.Append(k.OpenInterest)
	c.dates.Append(k.Date)
}

// At synthesizes a single-candle view at position i without copying the
// underlying arrays. The caller guarantees i < Len.
func (c *Candles) At(i int) Candle {
	return Candle{
		Open:         c.open.At(i),
		High:         c.high.At(i),
		Low:          c.low.At(i),
		Close:        c.close.At(i),
		Volume:       c.volume.At(i),
		OpenInterest: c.openInterest.At(i),
		Date:         c.dates.At(i),
	}
}

// Resample merges every n consecutive candles into one (daily bars into
// weekly, for example). Each group keeps the open and date of its first bar;
// a short tail group is kept as-is.
func (c *Candles) Resample(n int) *Candles {
	if n <= 1 {
		return c.Window(series.Beginning, series.Ending)
	}
	out := NewCandles()
	for i := 0; i < c.Len(); i += n {
		k := c.At(i)
		for j := i + 1; j < i+n && j < c.Len(); j++ {
			k.Merge(c.At(j))
		}
		out.Append(k)
	}
	return out
}

// Window returns a new bundle holding only the candles whose date falls in
// [begin, end). The input must be date-ordered.
func (c *Candles) Window(begin, end series.Date) *Candles {
	out := NewCandles()
	for i := 0; i < c.Len(); i++ {
		k := c.At(i)
		if k.Date.Before(begin) {
			continue
		}
		if !k.Date.Before(end) {
			break
		}
		out.Append(k)
	}
	return out
}

func (c *Candles) Open() *series.Real         { return c.open }
func (c *Candles) High() *series.Real         { return c.high }
func (c *Candles) Low() *series.Real          { return c.low }
func (c *Candles) Close() *series.Real        { return c.close }
func (c *Candles) Volume() *series.Real       { return c.volume }
func (c *Candles) OpenInterest() *series.Real { return c.openInterest }
func (c *Candles) Dates() *series.Dates       { return c.dates }

func (c *Candles) First() int {
	return c.first
}

// SetFirst updates the first-valid index of the bundle and fans it out to
// every member series.
func (c *Candles) SetFirst(f int) {
	c.first = f
	c.open.SetFirst(f)
	c.high.SetFirst(f)
	c.low.SetFirst(f)
	c.close.SetFirst(f)
	c.volume.SetFirst(f)
	c.openInterest.SetFirst(f)
	c.dates.SetFirst(f)
}

func (c *Candles) Style() series.Style {
	return c.style
}

// SetStyle updates the render style of the bundle and every member series.
func (c *Candles) SetStyle(st series.Style) {
	c.style = st
	c.open.SetStyle(st)
	c.high.SetStyle(st)
	c.low.SetStyle(st)
	c.close.SetStyle(st)
	c.volume.SetStyle(st)
	c.openInterest.SetStyle(st)
	c.dates.SetStyle(st)
}
