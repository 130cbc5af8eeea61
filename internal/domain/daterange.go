package domain

import "time"

// DateRange is a day-granularity rental window. Start and End are normalized
// to midnight UTC; the time of day never participates in comparisons.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange normalizes both dates to midnight UTC and requires End to be
// strictly after Start.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: TruncateToDay(start), End: TruncateToDay(end)}
	if !r.End.After(r.Start) {
		return DateRange{}, NewInvalidDateRangeError("end date must be after start date")
	}
	return r, nil
}

// TruncateToDay zeroes the time-of-day component in UTC.
func TruncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Overlaps reports whether the two ranges conflict. Boundaries are inclusive
// on both ends: a booking ending on day D conflicts with one starting on day D.
// No same-day handover in a day-rate rental.
func (r DateRange) Overlaps(o DateRange) bool {
	return !r.Start.After(o.End) && !r.End.Before(o.Start)
}

// Days returns the number of chargeable rental days.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start) / (24 * time.Hour))
}

// ValidateNotPast requires Start to be today or later relative to now,
// compared date-only.
func (r DateRange) ValidateNotPast(now time.Time) error {
	if r.Start.Before(TruncateToDay(now)) {
		return NewInvalidDateRangeError("start date must not be in the past")
	}
	return nil
}
