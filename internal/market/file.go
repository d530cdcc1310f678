package market

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"taplot/internal/series"
)

var (
	ErrFileNotFound    = errors.New("market: file not found")
	ErrMalformedRecord = errors.New("market: malformed record")
)

// LoadFile reads whitespace-separated candle records from path, keeping only
// records whose date falls in [begin, end). Pass series.Beginning and
// series.Ending for an unbounded range.
func LoadFile(path string, begin, end series.Date) (*Candles, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}
	defer f.Close()
	cs, err := Read(f, begin, end)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cs, nil
}

// Read parses candle records from r, one per line:
//
//	<date> <open> <high> <low> <close> <volume> <open interest>
//
// The source is assumed date-ascending; once a record with date >= end is
// seen, reading stops without re-sorting. Records before begin are skipped.
// A record that fails to parse terminates the read with ErrMalformedRecord.
func Read(r io.Reader, begin, end series.Date) (*Candles, error) {
	out := NewCandles()
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 7 {
			return nil, fmt.Errorf("%w: line %d has %d fields, want 7", ErrMalformedRecord, line, len(fields))
		}
		date, err := series.ParseDate(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRecord, line, err)
		}
		var k Candle
		k.Date = date
		for i, dst := range []*float64{&k.Open, &k.High, &k.Low, &k.Close, &k.Volume, &k.OpenInterest} {
			v, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d field %d: %v", ErrMalformedRecord, line, i+2, err)
			}
			*dst = v
		}
		if k.Date.Before(begin) {
			continue
		}
		if !k.Date.Before(end) {
			break
		}
		out.Append(k)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
