// Package admission decides whether a booking may be created or extended given
// snapshots of the bookings already stored. It performs no I/O and never mutates its
// inputs; a "no" is an Outcome, not an error.
package admission

import (
	"lodge/internal/domains/booking/model"
)

const (
	ReasonSameGuestSameUnit    = "guest already booked same unit"
	ReasonSameGuestOtherUnit   = "guest already booked a different unit"
	ReasonUnitOccupied         = "unit occupied for requested dates"
	ReasonExtensionConflict    = "extension conflicts with existing booking"
	ReasonNonPositiveExtension = "additional nights must be positive"
	ReasonStayTooLong          = "stay exceeds maximum number of nights"
)

// Violation classifies a rejection so the boundary can pick a response class.
type Violation int

const (
	ViolationNone Violation = iota
	// ViolationInput is a malformed request.
	ViolationInput
	// ViolationRule is a presence rule, such as a guest holding another booking.
	ViolationRule
	// ViolationConflict is an overlap with another booking on the unit.
	ViolationConflict
)

type Outcome struct {
	Admit     bool
	Reason    string
	Violation Violation
}

// ExtensionOutcome carries the night count to persist when the extension is admitted.
type ExtensionOutcome struct {
	Outcome
	Nights int
}

// Candidates are the store snapshots a new booking is judged against.
type Candidates struct {
	// SameGuestSameUnit holds bookings by the guest on the requested unit.
	SameGuestSameUnit []model.Booking
	// SameGuest holds every booking by the guest.
	SameGuest []model.Booking
	// SameUnit holds bookings on the unit that check in before the requested check-out.
	SameUnit []model.Booking
}

func admitted() Outcome {
	return Outcome{Admit: true}
}

func rejected(violation Violation, reason string) Outcome {
	return Outcome{Reason: reason, Violation: violation}
}

// CheckSameGuestSameUnit rejects when the guest already holds any booking on the unit,
// whatever its dates.
func CheckSameGuestSameUnit(guestName, unitID string, candidates []model.Booking) Outcome {
	for _, booking := range candidates {
		if booking.GuestName == guestName && booking.UnitID == unitID {
			return rejected(ViolationRule, ReasonSameGuestSameUnit)
		}
	}

	return admitted()
}

// CheckSameGuestMultipleUnits rejects when the guest holds any booking at all.
func CheckSameGuestMultipleUnits(guestName string, candidates []model.Booking) Outcome {
	for _, booking := range candidates {
		if booking.GuestName == guestName {
			return rejected(ViolationRule, ReasonSameGuestOtherUnit)
		}
	}

	return admitted()
}

// CheckUnitAvailability rejects when the requested stay overlaps another stay on the
// same unit. A stay may start on the day another ends.
func CheckUnitAvailability(request model.Booking, candidates []model.Booking) Outcome {
	requested := StayOf(request)

	for _, booking := range candidates {
		if booking.UnitID != request.UnitID {
			continue
		}

		if requested.Overlaps(StayOf(booking)) {
			return rejected(ViolationConflict, ReasonUnitOccupied)
		}
	}

	return admitted()
}

// IsExtensionPossible checks the stay enlarged by additionalNights against the other
// bookings on its unit, ignoring the booking itself.
func IsExtensionPossible(existing model.Booking, additionalNights int, others []model.Booking) ExtensionOutcome {
	if additionalNights < 1 {
		return ExtensionOutcome{Outcome: rejected(ViolationInput, ReasonNonPositiveExtension)}
	}

	// Compared before adding so a huge request cannot wrap around.
	if additionalNights > model.MaxNights-existing.NumberOfNights {
		return ExtensionOutcome{Outcome: rejected(ViolationInput, ReasonStayTooLong)}
	}

	nights := existing.NumberOfNights + additionalNights
	enlarged := Span(existing.CheckInDate, nights)

	for _, booking := range others {
		if booking.ID == existing.ID || booking.UnitID != existing.UnitID {
			continue
		}

		if enlarged.Overlaps(StayOf(booking)) {
			return ExtensionOutcome{Outcome: rejected(ViolationConflict, ReasonExtensionConflict)}
		}
	}

	return ExtensionOutcome{Outcome: admitted(), Nights: nights}
}

// Admit runs the creation checks in order and returns the first rejection.
func Admit(request model.Booking, candidates Candidates) Outcome {
	if outcome := CheckSameGuestSameUnit(request.GuestName, request.UnitID, candidates.SameGuestSameUnit); !outcome.Admit {
		return outcome
	}

	if outcome := CheckSameGuestMultipleUnits(request.GuestName, candidates.SameGuest); !outcome.Admit {
		return outcome
	}

	return CheckUnitAvailability(request, candidates.SameUnit)
}
