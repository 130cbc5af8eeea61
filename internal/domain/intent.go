package domain

import "time"

// BookingIntent is the not-yet-persisted booking held in the pending
// transaction store between payment initiation and the gateway callback.
// It carries no durability guarantee: a process restart loses it and the
// callback then reports UNKNOWN_TRANSACTION.
type BookingIntent struct {
	TransactionID string

	RequesterID string
	ResourceID  string

	StartDate   time.Time
	EndDate     time.Time
	TotalDays   int
	UnitPrice   float64
	TotalAmount float64

	Notes         string
	WithInsurance bool

	CreatedAt time.Time
}

// Range returns the intent's requested rental window.
func (i *BookingIntent) Range() DateRange {
	return DateRange{Start: i.StartDate, End: i.EndDate}
}
