package talib

import (
	ta "github.com/markcheno/go-talib"

	"taplot/internal/registry"
	"taplot/internal/series"
)

// Lookback formulas follow TA-Lib's per-function definitions.

func identLookback(p int) int { return p }
func pm1Lookback(p int) int   { return p - 1 }

// maLookback is the lookback of a moving average of the given type, used by
// composed functions like STOCH.
func maLookback(period int, maType int) int {
	switch ta.MaType(maType) {
	case ta.DEMA:
		return 2 * (period - 1)
	case ta.TEMA:
		return 3 * (period - 1)
	case ta.MAMA:
		return 32
	default:
		return period - 1
	}
}

func realOut(name string, style series.Style) registry.OutputInfo {
	return registry.OutputInfo{Name: name, Kind: registry.KindReal, Style: style}
}

func periodOption(def int) optionDesc {
	return optionDesc{name: "optInTimePeriod", kind: registry.KindInteger, defInt: def}
}

// noOptionReal covers single-input transforms with no parameters and no
// unstable period.
func noOptionReal(name string, fn func([]float64) []float64) *descriptor {
	return &descriptor{
		name:     name,
		inputs:   []registry.InputKind{registry.InputRealSeries},
		outputs:  []registry.OutputInfo{realOut("outReal", series.StyleLine)},
		lookback: func(*state) int { return 0 },
		run: func(st *state) error {
			st.emitReal(0, fn(st.inputs[0].real))
			return nil
		},
	}
}

func singleRealPeriod(name string, def int, look func(int) int, fn func([]float64, int) []float64) *descriptor {
	return &descriptor{
		name:     name,
		options:  []optionDesc{periodOption(def)},
		inputs:   []registry.InputKind{registry.InputRealSeries},
		outputs:  []registry.OutputInfo{realOut("outReal", series.StyleLine)},
		lookback: func(st *state) int { return look(st.intOpt(0)) },
		run: func(st *state) error {
			st.emitReal(0, fn(st.inputs[0].real, st.intOpt(0)))
			return nil
		},
	}
}

func twoRealNoOption(name string, fn func([]float64, []float64) []float64) *descriptor {
	return &descriptor{
		name:     name,
		inputs:   []registry.InputKind{registry.InputRealSeries, registry.InputRealSeries},
		outputs:  []registry.OutputInfo{realOut("outReal", series.StyleLine)},
		lookback: func(*state) int { return 0 },
		run: func(st *state) error {
			st.emitReal(0, fn(st.inputs[0].real, st.inputs[1].real))
			return nil
		},
	}
}

func twoRealPeriod(name string, def int, look func(int) int, fn func([]float64, []float64, int) []float64) *descriptor {
	return &descriptor{
		name:     name,
		options:  []optionDesc{periodOption(def)},
		inputs:   []registry.InputKind{registry.InputRealSeries, registry.InputRealSeries},
		outputs:  []registry.OutputInfo{realOut("outReal", series.StyleLine)},
		lookback: func(st *state) int { return look(st.intOpt(0)) },
		run: func(st *state) error {
			st.emitReal(0, fn(st.inputs[0].real, st.inputs[1].real, st.intOpt(0)))
			return nil
		},
	}
}

// priceHLCPeriod covers price-bundle functions computed from high/low/close.
func priceHLCPeriod(name string, def int, look func(int) int, fn func([]float64, []float64, []float64, int) []float64) *descriptor {
	return &descriptor{
		name:     name,
		options:  []optionDesc{periodOption(def)},
		inputs:   []registry.InputKind{registry.InputPrice},
		outputs:  []registry.OutputInfo{realOut("outReal", series.StyleLine)},
		lookback: func(st *state) int { return look(st.intOpt(0)) },
		run: func(st *state) error {
			p := st.inputs[0].price
			st.emitReal(0, fn(p.high, p.low, p.close, st.intOpt(0)))
			return nil
		},
	}
}

func stdDevDesc() *descriptor {
	return &descriptor{
		name: "STDDEV",
		options: []optionDesc{
			periodOption(5),
			{name: "optInNbDev", kind: registry.KindReal, defReal: 1.0},
		},
		inputs:   []registry.InputKind{registry.InputRealSeries},
		outputs:  []registry.OutputInfo{realOut("outReal", series.StyleLine)},
		lookback: func(st *state) int { return st.intOpt(0) - 1 },
		run: func(st *state) error {
			st.emitReal(0, ta.StdDev(st.inputs[0].real, st.intOpt(0), st.realOpt(1)))
			return nil
		},
	}
}

func macdDesc() *descriptor {
	return &descriptor{
		name: "MACD",
		options: []optionDesc{
			{name: "optInFastPeriod", kind: registry.KindInteger, defInt: 12},
			{name: "optInSlowPeriod", kind: registry.KindInteger, defInt: 26},
			{name: "optInSignalPeriod", kind: registry.KindInteger, defInt: 9},
		},
		inputs: []registry.InputKind{registry.InputRealSeries},
		outputs: []registry.OutputInfo{
			realOut("outMACD", series.StyleLine),
			realOut("outMACDSignal", series.StyleDashLine),
			realOut("outMACDHist", series.StyleHistogram),
		},
		lookback: func(st *state) int {
			return (st.intOpt(1) - 1) + (st.intOpt(2) - 1)
		},
		run: func(st *state) error {
			macd, signal, hist := ta.Macd(st.inputs[0].real, st.intOpt(0), st.intOpt(1), st.intOpt(2))
			st.emitReal(0, macd)
			st.emitReal(1, signal)
			st.emitReal(2, hist)
			return nil
		},
	}
}

func bbandsDesc() *descriptor {
	return &descriptor{
		name: "BBANDS",
		options: []optionDesc{
			periodOption(5),
			{name: "optInNbDevUp", kind: registry.KindReal, defReal: 2.0},
			{name: "optInNbDevDn", kind: registry.KindReal, defReal: 2.0},
			{name: "optInMAType", kind: registry.KindInteger, defInt: int(ta.SMA)},
		},
		inputs: []registry.InputKind{registry.InputRealSeries},
		outputs: []registry.OutputInfo{
			realOut("outRealUpperBand", series.StyleDashLine),
			realOut("outRealMiddleBand", series.StyleLine),
			realOut("outRealLowerBand", series.StyleDashLine),
		},
		lookback: func(st *state) int { return maLookback(st.intOpt(0), st.intOpt(3)) },
		run: func(st *state) error {
			up, mid, low := ta.BBands(st.inputs[0].real, st.intOpt(0),
				st.realOpt(1), st.realOpt(2), ta.MaType(st.intOpt(3)))
			st.emitReal(0, up)
			st.emitReal(1, mid)
			st.emitReal(2, low)
			return nil
		},
	}
}

func mfiDesc() *descriptor {
	return &descriptor{
		name:     "MFI",
		options:  []optionDesc{periodOption(14)},
		inputs:   []registry.InputKind{registry.InputPrice},
		outputs:  []registry.OutputInfo{realOut("outReal", series.StyleLine)},
		lookback: func(st *state) int { return st.intOpt(0) },
		run: func(st *state) error {
			p := st.inputs[0].price
			st.emitReal(0, ta.Mfi(p.high, p.low, p.close, p.volume, st.intOpt(0)))
			return nil
		},
	}
}

func stochDesc() *descriptor {
	return &descriptor{
		name: "STOCH",
		options: []optionDesc{
			{name: "optInFastK_Period", kind: registry.KindInteger, defInt: 5},
			{name: "optInSlowK_Period", kind: registry.KindInteger, defInt: 3},
			{name: "optInSlowK_MAType", kind: registry.KindInteger, defInt: int(ta.SMA)},
			{name: "optInSlowD_Period", kind: registry.KindInteger, defInt: 3},
			{name: "optInSlowD_MAType", kind: registry.KindInteger, defInt: int(ta.SMA)},
		},
		inputs: []registry.InputKind{registry.InputPrice},
		outputs: []registry.OutputInfo{
			realOut("outSlowK", series.StyleLine),
			realOut("outSlowD", series.StyleDashLine),
		},
		lookback: func(st *state) int {
			return (st.intOpt(0) - 1) +
				maLookback(st.intOpt(1), st.intOpt(2)) +
				maLookback(st.intOpt(3), st.intOpt(4))
		},
		run: func(st *state) error {
			p := st.inputs[0].price
			k, d := ta.Stoch(p.high, p.low, p.close,
				st.intOpt(0), st.intOpt(1), ta.MaType(st.intOpt(2)),
				st.intOpt(3), ta.MaType(st.intOpt(4)))
			st.emitReal(0, k)
			st.emitReal(1, d)
			return nil
		},
	}
}

func htTrendModeDesc() *descriptor {
	return &descriptor{
		name:   "HT_TRENDMODE",
		inputs: []registry.InputKind{registry.InputRealSeries},
		outputs: []registry.OutputInfo{
			{Name: "outInteger", Kind: registry.KindInteger, Style: series.StyleLine},
		},
		lookback: func(*state) int { return 63 },
		run: func(st *state) error {
			st.emitInt(0, ta.HtTrendMode(st.inputs[0].real))
			return nil
		},
	}
}

func builtins() map[string]*descriptor {
	ds := []*descriptor{
		noOptionReal("SQRT", ta.Sqrt),
		noOptionReal("LN", ta.Ln),

		singleRealPeriod("SMA", 30, pm1Lookback, ta.Sma),
		singleRealPeriod("EMA", 30, pm1Lookback, ta.Ema),
		singleRealPeriod("WMA", 30, pm1Lookback, ta.Wma),
		singleRealPeriod("TRIMA", 30, pm1Lookback, ta.Trima),
		singleRealPeriod("DEMA", 30, func(p int) int { return 2 * (p - 1) }, ta.Dema),
		singleRealPeriod("TEMA", 30, func(p int) int { return 3 * (p - 1) }, ta.Tema),
		singleRealPeriod("KAMA", 30, identLookback, ta.Kama),
		singleRealPeriod("RSI", 14, identLookback, ta.Rsi),
		singleRealPeriod("ROC", 10, identLookback, ta.Roc),
		singleRealPeriod("MOM", 10, identLookback, ta.Mom),
		stdDevDesc(),
		macdDesc(),
		bbandsDesc(),

		twoRealNoOption("ADD", ta.Add),
		twoRealNoOption("SUB", ta.Sub),
		twoRealNoOption("MULT", ta.Mult),
		twoRealNoOption("DIV", ta.Div),
		twoRealNoOption("OBV", ta.Obv),
		twoRealPeriod("CORREL", 30, pm1Lookback, ta.Correl),
		twoRealPeriod("BETA", 5, identLookback, ta.Beta),

		priceHLCPeriod("ATR", 14, identLookback, ta.Atr),
		priceHLCPeriod("NATR", 14, identLookback, ta.Natr),
		priceHLCPeriod("ADX", 14, func(p int) int { return 2*p - 1 }, ta.Adx),
		priceHLCPeriod("CCI", 14, pm1Lookback, ta.Cci),
		priceHLCPeriod("WILLR", 14, pm1Lookback, ta.WillR),
		mfiDesc(),
		stochDesc(),

		htTrendModeDesc(),
	}
	m := make(map[string]*descriptor, len(ds))
	for _, d := range ds {
		m[d.name] = d
	}
	return m
}
