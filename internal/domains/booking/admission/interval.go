package admission

import (
	"lodge/internal/domains/booking/model"
	"lodge/shared/timezone"
	"time"
)

// Interval is the half-open day range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Span is the interval occupied by nights consecutive nights from checkIn.
func Span(checkIn time.Time, nights int) Interval {
	start := timezone.StartOfDay(checkIn)

	return Interval{Start: start, End: start.AddDate(0, 0, nights)}
}

func StayOf(booking model.Booking) Interval {
	return Span(booking.CheckInDate, booking.NumberOfNights)
}

// Overlaps uses strict comparisons on both ends so touching intervals do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}
