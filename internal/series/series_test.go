package series

import (
	"testing"
	"time"
)

func TestSeriesFirstAndValid(t *testing.T) {
	s := New[float64](10)
	for i := 0; i < s.Len(); i++ {
		s.Values()[i] = float64(i)
	}
	if s.First() != 0 {
		t.Fatalf("fresh series first = %d, want 0", s.First())
	}
	s.SetFirst(4)
	valid := s.Valid()
	if len(valid) != 6 {
		t.Fatalf("valid length = %d, want 6", len(valid))
	}
	if valid[0] != 4 {
		t.Fatalf("valid[0] = %v, want 4", valid[0])
	}
	// Elements before first still exist for positional indexing.
	if s.At(2) != 2 {
		t.Fatalf("At(2) = %v, want 2", s.At(2))
	}
}

func TestSeriesValidPastEnd(t *testing.T) {
	s := New[float64](3)
	s.SetFirst(3)
	if got := s.Valid(); len(got) != 0 {
		t.Fatalf("valid length = %d, want 0", len(got))
	}
	s.SetFirst(5)
	if got := s.Valid(); got != nil {
		t.Fatalf("valid = %v, want nil", got)
	}
}

func TestSeriesResize(t *testing.T) {
	s := FromValues([]int{1, 2, 3})
	s.Resize(5)
	if s.Len() != 5 || s.At(1) != 2 || s.At(4) != 0 {
		t.Fatalf("resize grow produced %v", s.Values())
	}
	s.Resize(2)
	if s.Len() != 2 || s.At(1) != 2 {
		t.Fatalf("resize shrink produced %v", s.Values())
	}
}

func TestSeriesStyle(t *testing.T) {
	s := New[float64](1)
	s.SetStyle(StyleHistogram)
	if s.Style() != StyleHistogram {
		t.Fatalf("style = %v, want histogram", s.Style())
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"2008-05-01", NewDate(2008, time.May, 1), true},
		{"2008/05/01", NewDate(2008, time.May, 1), true},
		{"1999-12-31", NewDate(1999, time.December, 31), true},
		{"2008-13-01", 0, false},
		{"yesterday", 0, false},
	}
	for _, c := range cases {
		got, err := ParseDate(c.in)
		if c.ok && (err != nil || got != c.want) {
			t.Fatalf("ParseDate(%q) = %v, %v; want %v", c.in, got, err, c.want)
		}
		if !c.ok && err == nil {
			t.Fatalf("ParseDate(%q) succeeded, want error", c.in)
		}
	}
}

func TestDateOrderingAndSentinels(t *testing.T) {
	a := NewDate(2008, time.April, 30)
	b := NewDate(2008, time.May, 1)
	if !a.Before(b) || b.Before(a) {
		t.Fatalf("ordering broken: %v vs %v", a, b)
	}
	if !Beginning.Before(a) || !a.Before(Ending) {
		t.Fatalf("sentinels do not bracket %v", a)
	}
	if got := b.String(); got != "2008-05-01" {
		t.Fatalf("String() = %q", got)
	}
}

func TestDateAddDays(t *testing.T) {
	d := NewDate(2008, time.April, 29)
	if got := d.AddDays(2); got != NewDate(2008, time.May, 1) {
		t.Fatalf("AddDays crossed month wrong: %v", got)
	}
	if got := d.AddDays(0); got != d {
		t.Fatalf("AddDays(0) = %v", got)
	}
	if Beginning.AddDays(5) != Beginning || Ending.AddDays(-5) != Ending {
		t.Fatal("sentinels must be fixed points")
	}
}
