package market

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"taplot/internal/series"
)

const sampleFile = `2008-04-29 24.0 25.0 23.5 24.5 1000 10
2008-04-30 24.5 25.5 24.0 25.0 1100 11
2008-05-01 25.0 26.0 24.5 25.5 1200 12
2008-05-02 25.5 26.5 25.0 26.0 1300 13
2008-05-05 26.0 27.0 25.5 26.5 1400 14
`

func TestReadRangeFilter(t *testing.T) {
	begin, err := series.ParseDate("2008-05-01")
	if err != nil {
		t.Fatal(err)
	}
	cs, err := Read(strings.NewReader(sampleFile), begin, series.Ending)
	if err != nil {
		t.Fatal(err)
	}
	if cs.Len() != 3 {
		t.Fatalf("len = %d, want 3", cs.Len())
	}
	// begin is inclusive: the record exactly on 2008-05-01 is kept.
	if got := cs.At(0).Date; got != begin {
		t.Fatalf("first date = %v, want %v", got, begin)
	}
	if got := cs.At(0).Close; got != 25.5 {
		t.Fatalf("first close = %v, want 25.5", got)
	}
}

func TestReadEndExclusive(t *testing.T) {
	end := series.NewDate(2008, time.May, 2)
	cs, err := Read(strings.NewReader(sampleFile), series.Beginning, end)
	if err != nil {
		t.Fatal(err)
	}
	if cs.Len() != 3 {
		t.Fatalf("len = %d, want 3", cs.Len())
	}
	if last := cs.At(cs.Len() - 1).Date; !last.Before(end) {
		t.Fatalf("last date %v not before end %v", last, end)
	}
}

func TestReadMalformedRecord(t *testing.T) {
	_, err := Read(strings.NewReader("2008-05-01 1 2 3 4 5\n"), series.Beginning, series.Ending)
	if !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("err = %v, want ErrMalformedRecord", err)
	}
	_, err = Read(strings.NewReader("2008-05-01 a 2 3 4 5 6\n"), series.Beginning, series.Ending)
	if !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("err = %v, want ErrMalformedRecord", err)
	}
	_, err = Read(strings.NewReader("not-a-date 1 2 3 4 5 6\n"), series.Beginning, series.Ending)
	if !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("err = %v, want ErrMalformedRecord", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "C")
	if err := os.WriteFile(path, []byte(sampleFile), 0o644); err != nil {
		t.Fatal(err)
	}
	cs, err := LoadFile(path, series.Beginning, series.Ending)
	if err != nil {
		t.Fatal(err)
	}
	if cs.Len() != 5 {
		t.Fatalf("len = %d, want 5", cs.Len())
	}

	_, err = LoadFile(filepath.Join(dir, "missing"), series.Beginning, series.Ending)
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("err = %v, want ErrFileNotFound", err)
	}
}
