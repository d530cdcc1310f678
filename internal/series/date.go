package series

import (
	"fmt"
	"math"
	"time"
)

// Date is a single calendar day without time-of-day, encoded so that the
// natural integer ordering matches chronological order.
type Date int32

// Sentinels for open-ended date range filters.
const (
	Beginning Date = math.MinInt32
	Ending    Date = math.MaxInt32
)

// NewDate builds a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date(int32(year)*10000 + int32(month)*100 + int32(day))
}

var dateLayouts = []string{"2006-01-02", "2006/01/02"}

// ParseDate parses tokens like "2008-05-01" or "2008/05/01".
func ParseDate(s string) (Date, error) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return NewDate(t.Year(), t.Month(), t.Day()), nil
		}
	}
	return 0, fmt.Errorf("series: cannot parse date %q", s)
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// AddDays shifts the date by n calendar days. The sentinels are fixed
// points.
func (d Date) AddDays(n int) Date {
	if d == Beginning || d == Ending {
		return d
	}
	t := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return DateOf(t.AddDate(0, 0, n))
}

func (d Date) Year() int {
	return int(d) / 10000
}

func (d Date) Month() time.Month {
	return time.Month(int(d) / 100 % 100)
}

func (d Date) Day() int {
	return int(d) % 100
}

func (d Date) Before(o Date) bool {
	return d < o
}

func (d Date) After(o Date) bool {
	return d > o
}

func (d Date) String() string {
	switch d {
	case Beginning:
		return "beginning"
	case Ending:
		return "ending"
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year(), int(d.Month()), d.Day())
}
