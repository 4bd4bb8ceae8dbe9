package model

import (
	"fmt"
	"time"
)

// PeriodKind identifies how a reporting window was derived.
type PeriodKind string

// Supported period kinds.
const (
	PeriodMonth      PeriodKind = "MONTH"
	PeriodYear       PeriodKind = "YEAR"
	PeriodCustom     PeriodKind = "CUSTOM"
	PeriodTrailing12 PeriodKind = "TRAILING_12"
)

// PeriodWindow is an inclusive date range supplied by callers and consumed
// read-only by the engine. The end date is inclusive through the last
// millisecond of that day.
type PeriodWindow struct {
	From time.Time  `json:"fromDate"`
	To   time.Time  `json:"toDate"`
	Kind PeriodKind `json:"kind"`
}

// NewPeriodWindow derives a window from a kind relative to a reference time.
// PeriodCustom requires explicit dates and is not derivable here.
func NewPeriodWindow(kind PeriodKind, now time.Time) (PeriodWindow, error) {
	switch kind {
	case PeriodMonth:
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return PeriodWindow{From: from, To: from.AddDate(0, 1, -1), Kind: kind}, nil
	case PeriodYear:
		from := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return PeriodWindow{From: from, To: time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, now.Location()), Kind: kind}, nil
	case PeriodTrailing12:
		to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return PeriodWindow{From: to.AddDate(-1, 0, 1), To: to, Kind: kind}, nil
	case PeriodCustom:
		return PeriodWindow{}, fmt.Errorf("custom windows require explicit from/to dates")
	default:
		return PeriodWindow{}, fmt.Errorf("unknown period kind: %s", kind)
	}
}

// CustomWindow builds a window from explicit inclusive dates.
func CustomWindow(from, to time.Time) PeriodWindow {
	return PeriodWindow{From: from, To: to, Kind: PeriodCustom}
}

// EndOfDay returns the last representable millisecond of the window's end
// date. A record stamped one millisecond later falls outside the window.
func (w PeriodWindow) EndOfDay() time.Time {
	return time.Date(w.To.Year(), w.To.Month(), w.To.Day(), 23, 59, 59, 999_000_000, w.To.Location())
}

// Contains reports whether t falls within the window, end date inclusive.
func (w PeriodWindow) Contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.EndOfDay())
}
