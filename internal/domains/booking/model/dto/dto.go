package dto

import (
	"lodge/internal/domains/booking/model"
	"lodge/shared"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/timezone"
	"net/http"
	"strings"
	"time"
)

const (
	QueryParamGuestName = "guest_name"
	QueryParamUnitID    = "unit_id"
)

type CreateBookingRequest struct {
	GuestName      string `json:"guestName"      validate:"required,notblank,max=255"`
	UnitID         string `json:"unitID"         validate:"required,notblank,max=255"`
	CheckInDate    string `json:"checkInDate"    validate:"required,date"`
	NumberOfNights int    `json:"numberOfNights" validate:"gte=1,lte=3650"`
}

// ToModel assumes the request has been validated.
func (c *CreateBookingRequest) ToModel(now time.Time) (model.Booking, error) {
	checkIn, err := timezone.ParseDate(c.CheckInDate)
	if err != nil {
		return model.Booking{}, err //nolint:wrapcheck
	}

	booking := model.Booking{
		GuestName:      c.GuestName,
		UnitID:         c.UnitID,
		CheckInDate:    checkIn,
		NumberOfNights: c.NumberOfNights,
	}
	booking.Touch(now)

	return booking, nil
}

// ExtendBookingRequest is checked by the service, not the validator, so an unknown
// booking is reported as not found whatever the night count.
type ExtendBookingRequest struct {
	AdditionalNights int `json:"additionalNights"`
}

type BookingResponse struct {
	ID             int64  `json:"id"`
	GuestName      string `json:"guestName"`
	UnitID         string `json:"unitID"`
	CheckInDate    string `json:"checkInDate"`
	NumberOfNights int    `json:"numberOfNights"`
	CheckOutDate   string `json:"checkOutDate"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.GuestName = model.GuestName
	r.UnitID = model.UnitID
	r.CheckInDate = timezone.StartOfDay(model.CheckInDate).Format(constant.CalendarFormat)
	r.NumberOfNights = model.NumberOfNights
	r.CheckOutDate = model.CheckOutDate().Format(constant.CalendarFormat)
	r.Metadata.FromModel(model.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"totalPage"`
	TotalData int               `json:"totalData"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

// BookingFilter narrows a listing by exact guest name and unit.
type BookingFilter struct {
	GuestName string
	UnitID    string
}

func (f *BookingFilter) FromRequest(r *http.Request) {
	query := r.URL.Query()

	f.GuestName = strings.TrimSpace(query.Get(QueryParamGuestName))
	f.UnitID = strings.TrimSpace(query.Get(QueryParamUnitID))
}

func (f BookingFilter) ToFilterGroup() gDto.FilterGroup {
	var filters []gDto.Filter

	if f.GuestName != "" {
		filters = append(filters, gDto.Filter{Field: model.FieldGuestName, Value: f.GuestName, Operator: gDto.FilterOperatorEq})
	}

	if f.UnitID != "" {
		filters = append(filters, gDto.Filter{Field: model.FieldUnitID, Value: f.UnitID, Operator: gDto.FilterOperatorEq})
	}

	return gDto.And(filters...)
}

// CacheParts feeds shared.BuildCacheKeyWithQuery.
func (f BookingFilter) CacheParts() map[string]string {
	return map[string]string{
		QueryParamGuestName: f.GuestName,
		QueryParamUnitID:    f.UnitID,
	}
}

const (
	EventBookingCreated  = "booking.created"
	EventBookingExtended = "booking.extended"
)

// BookingEvent is published after a booking change has been committed.
type BookingEvent struct {
	Type       string          `json:"type"`
	OccurredAt string          `json:"occurredAt"`
	Booking    BookingResponse `json:"booking"`
}

func NewBookingEvent(eventType string, booking BookingResponse, at time.Time) BookingEvent {
	return BookingEvent{
		Type:       eventType,
		OccurredAt: at.Format(constant.DateFormat),
		Booking:    booking,
	}
}
