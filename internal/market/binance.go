package market

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"

	"taplot/internal/logger"
	"taplot/internal/series"
)

const maxKlineLimit = 1000

// BinanceSource fetches daily klines from Binance spot into a Candles
// bundle. Spot klines carry no open interest; the field is left zero.
type BinanceSource struct {
	client *binance.Client
}

func NewBinanceSource() *BinanceSource {
	// Public kline endpoints need no credentials.
	return &BinanceSource{client: binance.NewClient("", "")}
}

// FetchDaily pulls the most recent limit daily candles for symbol, oldest
// first.
func (s *BinanceSource) FetchDaily(ctx context.Context, symbol string, limit int) (*Candles, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("market: symbol is required")
	}
	if limit <= 0 {
		limit = 500
	}
	if limit > maxKlineLimit {
		limit = maxKlineLimit
	}
	logger.Debugf("[binance] fetch %s 1d limit=%d", symbol, limit)
	klines, err := s.client.NewKlinesService().
		Symbol(symbol).
		Interval("1d").
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("market: binance klines: %w", err)
	}
	out := NewCandles()
	for _, k := range klines {
		c, err := candleFromKline(k)
		if err != nil {
			return nil, err
		}
		out.Append(c)
	}
	return out, nil
}

func candleFromKline(k *binance.Kline) (Candle, error) {
	var c Candle
	for _, field := range []struct {
		raw string
		dst *float64
	}{
		{k.Open, &c.Open},
		{k.High, &c.High},
		{k.Low, &c.Low},
		{k.Close, &c.Close},
		{k.Volume, &c.Volume},
	} {
		v, err := strconv.ParseFloat(field.raw, 64)
		if err != nil {
			return Candle{}, fmt.Errorf("market: binance kline field %q: %w", field.raw, err)
		}
		*field.dst = v
	}
	c.Date = series.DateOf(time.UnixMilli(k.OpenTime).UTC())
	return c, nil
}
