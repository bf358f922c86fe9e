package core

import (
	"time"
)

// Range selectors accepted by Resolve.
const (
	Last7Days   = "last7days"
	Last30Days  = "last30days"
	Last90Days  = "last90days"
	Last365Days = "last365days"

	DefaultSelector = Last30Days
)

// Selector pairs a range selector with its display label.
type Selector struct {
	Value string
	Label string
}

var selectors = []Selector{
	{Last7Days, "Last 7 days"},
	{Last30Days, "Last 30 days"},
	{Last90Days, "Last 90 days"},
	{Last365Days, "Last 365 days"},
}

// Selectors lists the supported selectors in picker order.
func Selectors() []Selector {
	out := make([]Selector, len(selectors))
	copy(out, selectors)
	return out
}

// IsSelector reports whether s is one of the supported selectors.
func IsSelector(s string) bool {
	for _, sel := range selectors {
		if sel.Value == s {
			return true
		}
	}
	return false
}

// NormalizeSelector maps unknown values to DefaultSelector.
func NormalizeSelector(s string) string {
	if IsSelector(s) {
		return s
	}
	return DefaultSelector
}

// DateRange is an inclusive span of calendar dates.
type DateRange struct {
	Start Date
	End   Date
}

// Resolve turns a selector into a concrete range ending on now's UTC calendar
// date. Unknown selectors behave like last30days. last365days steps back one
// calendar year, so the span is 365 or 366 days depending on leap years.
func Resolve(selector string, now time.Time) DateRange {
	now = now.UTC()
	end := DateOf(now)

	var start time.Time
	switch selector {
	case Last7Days:
		start = now.AddDate(0, 0, -7)
	case Last90Days:
		start = now.AddDate(0, 0, -90)
	case Last365Days:
		start = now.AddDate(-1, 0, 0)
	default:
		start = now.AddDate(0, 0, -30)
	}

	return DateRange{Start: DateOf(start), End: end}
}

// Days is the number of calendar dates in the range, bounds included.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start.Time).Hours()/24) + 1
}

// Contains reports whether t falls on a date inside the range, judged in UTC.
func (r DateRange) Contains(t time.Time) bool {
	d := DateOf(t.UTC())
	return !d.Before(r.Start.Time) && !d.After(r.End.Time)
}

// StartTime is the first instant of the range in UTC.
func (r DateRange) StartTime() time.Time {
	return r.Start.Time
}

// EndExclusive is the first instant after the range in UTC.
func (r DateRange) EndExclusive() time.Time {
	return r.End.AddDays(1).Time
}

// Previous returns the range of equal length that ends the day before r starts.
func (r DateRange) Previous() DateRange {
	end := r.Start.AddDays(-1)
	return DateRange{Start: end.AddDays(-(r.Days() - 1)), End: end}
}

func (r DateRange) String() string {
	return r.Start.String() + ".." + r.End.String()
}
