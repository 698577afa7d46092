package model

import (
	"lodge/shared/model"
	"lodge/shared/timezone"
	"time"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID             = "id"
	FieldGuestName      = "guest_name"
	FieldUnitID         = "unit_id"
	FieldCheckInDate    = "check_in_date"
	FieldNumberOfNights = "number_of_nights"
)

// MaxNights caps the length of a single stay, on creation and after every extension.
const MaxNights = 3650

// Booking reserves a unit for NumberOfNights consecutive nights starting at CheckInDate.
type Booking struct {
	ID             int64     `db:"id"               insert:"false"`
	GuestName      string    `db:"guest_name"`
	UnitID         string    `db:"unit_id"`
	CheckInDate    time.Time `db:"check_in_date"`
	NumberOfNights int       `db:"number_of_nights"`
	model.Metadata
}

// CheckOutDate is the first day the unit is free again. It is derived, never stored.
func (b Booking) CheckOutDate() time.Time {
	return timezone.StartOfDay(b.CheckInDate).AddDate(0, 0, b.NumberOfNights)
}

// NightsUpdate is the only mutable part of a booking.
type NightsUpdate struct {
	NumberOfNights int `db:"number_of_nights"`
}
