package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"taplot/internal/market"
	"taplot/internal/series"
)

func testBundle(n int) *market.Candles {
	cs := market.NewCandles()
	for i := 0; i < n; i++ {
		base := 20 + float64(i)
		cs.Append(market.Candle{
			Open: base, High: base + 1, Low: base - 1, Close: base + 0.5,
			Volume: float64(1000 + i), OpenInterest: float64(i),
			Date: series.NewDate(2008, time.May, 1+i),
		})
	}
	return cs
}

func roundTrip(t *testing.T, s CandleStore) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "C"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get before put: err = %v, want ErrNotFound", err)
	}
	want := testBundle(5)
	if err := s.Put(ctx, "C", want); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "C")
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != want.Len() {
		t.Fatalf("len = %d, want %d", got.Len(), want.Len())
	}
	for i := 0; i < want.Len(); i++ {
		if got.At(i) != want.At(i) {
			t.Fatalf("candle %d = %+v, want %+v", i, got.At(i), want.At(i))
		}
	}

	// Put replaces the whole bundle.
	if err := s.Put(ctx, "C", testBundle(3)); err != nil {
		t.Fatal(err)
	}
	got, err = s.Get(ctx, "C")
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 3 {
		t.Fatalf("len after replace = %d, want 3", got.Len())
	}

	if err := s.Put(ctx, "", testBundle(1)); err == nil {
		t.Fatal("empty symbol accepted")
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	roundTrip(t, s)
}

func TestMemoryStoreCopies(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()
	src := testBundle(2)
	if err := s.Put(ctx, "C", src); err != nil {
		t.Fatal(err)
	}
	src.Close().Values()[0] = -1
	got, err := s.Get(ctx, "C")
	if err != nil {
		t.Fatal(err)
	}
	if got.At(0).Close == -1 {
		t.Fatal("store aliased the caller's bundle")
	}
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	roundTrip(t, s)
}

func TestSQLiteStoreOrdersByDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()
	if err := s.Put(ctx, "C", testBundle(4)); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "C")
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < got.Len(); i++ {
		if !got.At(i - 1).Date.Before(got.At(i).Date) {
			t.Fatalf("dates out of order at %d: %v then %v", i, got.At(i-1).Date, got.At(i).Date)
		}
	}
}
