package dto_test

import (
	"lodge/internal/domains/booking/model"
	"lodge/internal/domains/booking/model/dto"
	gModel "lodge/shared/model"
	"lodge/shared/validator"
	"math"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBookingRequest_ToModel(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

	t.Run("calendar date", func(t *testing.T) {
		req := dto.CreateBookingRequest{GuestName: "GuestA", UnitID: "1", CheckInDate: "2026-10-20", NumberOfNights: 3}

		booking, err := req.ToModel(now)
		require.NoError(t, err)

		assert.Zero(t, booking.ID)
		assert.Equal(t, "GuestA", booking.GuestName)
		assert.Equal(t, "1", booking.UnitID)
		assert.True(t, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC).Equal(booking.CheckInDate))
		assert.Equal(t, 3, booking.NumberOfNights)
		assert.Equal(t, now, booking.CreatedAt)
		assert.Equal(t, now, booking.ModifiedAt)
	})

	t.Run("timestamp is truncated to its day", func(t *testing.T) {
		req := dto.CreateBookingRequest{GuestName: "GuestA", UnitID: "1", CheckInDate: "2026-10-20T15:04:05Z", NumberOfNights: 1}

		booking, err := req.ToModel(now)
		require.NoError(t, err)
		assert.True(t, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC).Equal(booking.CheckInDate))
	})

	t.Run("bad date", func(t *testing.T) {
		req := dto.CreateBookingRequest{CheckInDate: "someday"}

		_, err := req.ToModel(now)
		assert.Error(t, err)
	})
}

func TestBookingResponse_FromModel(t *testing.T) {
	created := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)

	var res dto.BookingResponse
	res.FromModel(model.Booking{
		ID:             7,
		GuestName:      "GuestA",
		UnitID:         "1",
		CheckInDate:    time.Date(2026, 10, 30, 0, 0, 0, 0, time.UTC),
		NumberOfNights: 3,
		Metadata:       gModel.Metadata{CreatedAt: created, ModifiedAt: created},
	})

	assert.Equal(t, int64(7), res.ID)
	assert.Equal(t, "2026-10-30", res.CheckInDate)
	assert.Equal(t, "2026-11-02", res.CheckOutDate)
	assert.Equal(t, 3, res.NumberOfNights)
	assert.NotEmpty(t, res.CreatedAt)
}

func TestGetBookingsResponse_FromModels(t *testing.T) {
	var res dto.GetBookingsResponse
	res.FromModels([]model.Booking{{ID: 1, NumberOfNights: 1}, {ID: 2, NumberOfNights: 1}}, 12, 5)

	assert.Len(t, res.Bookings, 2)
	assert.Equal(t, 12, res.TotalData)
	assert.Equal(t, 3, res.TotalPage)

	var empty dto.GetBookingsResponse
	empty.FromModels(nil, 0, 10)

	assert.NotNil(t, empty.Bookings)
	assert.Equal(t, 1, empty.TotalPage)
}

func TestBookingFilter(t *testing.T) {
	req := &http.Request{URL: &url.URL{RawQuery: url.Values{"guest_name": {" GuestA "}, "unit_id": {"1"}}.Encode()}}

	var filter dto.BookingFilter
	filter.FromRequest(req)

	assert.Equal(t, dto.BookingFilter{GuestName: "GuestA", UnitID: "1"}, filter)

	group := filter.ToFilterGroup()
	where, args := group.GetWhereClause()
	assert.Equal(t, "(guest_name = :guest_name AND unit_id = :unit_id)", where)
	assert.Equal(t, map[string]any{"guest_name": "GuestA", "unit_id": "1"}, args)
	assert.Equal(t, map[string]string{"guest_name": "GuestA", "unit_id": "1"}, filter.CacheParts())

	empty := dto.BookingFilter{}.ToFilterGroup()
	where, _ = empty.GetWhereClause()
	assert.Empty(t, where)
}

func TestCreateBookingRequest_NightsBounds(t *testing.T) {
	tests := []struct {
		name    string
		nights  int
		wantMsg string
	}{
		{name: "single night", nights: 1},
		{name: "longest stay", nights: model.MaxNights},
		{name: "zero", nights: 0, wantMsg: "numberOfNights must be greater than or equal to 1"},
		{name: "past the cap", nights: model.MaxNights + 1, wantMsg: "numberOfNights must be less than or equal to 3650"},
		{name: "beyond an sql integer", nights: math.MaxInt32 + 1, wantMsg: "numberOfNights must be less than or equal to 3650"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := dto.CreateBookingRequest{GuestName: "GuestA", UnitID: "1", CheckInDate: "2026-10-20", NumberOfNights: tt.nights}

			err := validator.ValidateStruct(&req)
			if tt.wantMsg == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}
