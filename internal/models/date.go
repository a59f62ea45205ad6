package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date at local midnight.
type Date struct {
	time.Time
}

// NewDate builds a date in the local calendar.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.Local)}
}

// DateOf drops the clock part of t, keeping its calendar fields.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses YYYY-MM-DD. Longer ISO timestamps are cut to their date part.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) && s[len(DateLayout)] == 'T' {
		s = s[:len(DateLayout)]
	}
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q; expected YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

// AddDays moves the date by n calendar days.
func (d Date) AddDays(n int) Date {
	return NewDate(d.Year(), d.Month(), d.Day()+n)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Interval is a half-open range of days [Start, End).
type Interval struct {
	Start Date
	End   Date
}

// NewInterval covers days starting at start.
func NewInterval(start Date, days int) Interval {
	return Interval{Start: start, End: start.AddDays(days)}
}

// Overlaps reports whether [s1,e1) and [s2,e2) share a day: s1 < e2 && s2 < e1.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End.Time) && other.Start.Before(i.End.Time)
}

// Contains reports whether d falls inside the interval.
func (i Interval) Contains(d Date) bool {
	return !d.Before(i.Start.Time) && d.Before(i.End.Time)
}
