// Package store caches loaded candle bundles by symbol so repeated runs skip
// reparsing flat files or refetching an exchange.
package store

import (
	"context"
	"errors"
	"sync"

	"taplot/internal/market"
)

// ErrNotFound reports a symbol with no cached candles.
var ErrNotFound = errors.New("store: symbol not found")

// CandleStore reads and writes whole candle bundles keyed by symbol.
type CandleStore interface {
	Put(ctx context.Context, symbol string, candles *market.Candles) error
	Get(ctx context.Context, symbol string) (*market.Candles, error)
	Close() error
}

// MemoryStore keeps bundles in a map. Copies are stored and returned, so
// callers can never alias the cached data.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]*market.Candles
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]*market.Candles)}
}

func (s *MemoryStore) Put(ctx context.Context, symbol string, candles *market.Candles) error {
	if symbol == "" {
		return errors.New("store: symbol is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[symbol] = cloneCandles(candles)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, symbol string) (*market.Candles, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cs, ok := s.data[symbol]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneCandles(cs), nil
}

func (s *MemoryStore) Close() error { return nil }

func cloneCandles(src *market.Candles) *market.Candles {
	dst := market.NewCandles()
	for i := 0; i < src.Len(); i++ {
		dst.Append(src.At(i))
	}
	dst.SetFirst(src.First())
	return dst
}
