package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"taplot/internal/market"
	"taplot/internal/series"
)

const schema = `
CREATE TABLE IF NOT EXISTS candles (
	symbol        TEXT    NOT NULL,
	date          INTEGER NOT NULL,
	open          REAL    NOT NULL,
	high          REAL    NOT NULL,
	low           REAL    NOT NULL,
	close         REAL    NOT NULL,
	volume        REAL    NOT NULL,
	open_interest REAL    NOT NULL,
	PRIMARY KEY (symbol, date)
);`

// SQLiteStore persists candle bundles in a single-file database.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Put(ctx context.Context, symbol string, candles *market.Candles) error {
	if symbol == "" {
		return errors.New("store: symbol is required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM candles WHERE symbol = ?`, symbol); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO candles
		(symbol, date, open, high, low, close, volume, open_interest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i := 0; i < candles.Len(); i++ {
		k := candles.At(i)
		if _, err := stmt.ExecContext(ctx, symbol, int64(k.Date),
			k.Open, k.High, k.Low, k.Close, k.Volume, k.OpenInterest); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Get(ctx context.Context, symbol string) (*market.Candles, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT date, open, high, low, close, volume, open_interest
		FROM candles WHERE symbol = ? ORDER BY date ASC`, symbol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := market.NewCandles()
	for rows.Next() {
		var date int64
		var k market.Candle
		if err := rows.Scan(&date, &k.Open, &k.High, &k.Low, &k.Close, &k.Volume, &k.OpenInterest); err != nil {
			return nil, err
		}
		k.Date = series.Date(date)
		out.Append(k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if out.Len() == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
