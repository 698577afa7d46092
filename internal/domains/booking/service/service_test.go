package service_test

import (
	"context"
	"errors"
	"lodge/config"
	kafkaMocks "lodge/infras/kafka/mocks"
	otelMocks "lodge/infras/otel/mocks"
	"lodge/internal/domains/booking/admission"
	"lodge/internal/domains/booking/mocks"
	"lodge/internal/domains/booking/model"
	"lodge/internal/domains/booking/model/dto"
	"lodge/internal/domains/booking/repository"
	"lodge/internal/domains/booking/service"
	"lodge/shared/cache"
	gDto "lodge/shared/dto"
	"lodge/shared/failure"
	"lodge/shared/mutex"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	day0     = time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	errStore = errors.New("connection refused")
)

func day(offset int) time.Time {
	return day0.AddDate(0, 0, offset)
}

type fixture struct {
	repo   *mocks.MockBooking
	kafka  *kafkaMocks.MockClient
	cache  *memoryCache
	svc    service.Booking
	locker mutex.Locker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Cache.TTL = 60
	cfg.Cache.InvalidationDelayMillis = 200
	cfg.Kafka.Topics.Booking = "booking-events"

	f := &fixture{
		repo:   mocks.NewMockBooking(ctrl),
		kafka:  kafkaMocks.NewMockClient(ctrl),
		cache:  newMemoryCache(),
		locker: mutex.NewLocal(time.Second),
	}
	f.svc = service.New(f.repo, f.locker, f.kafka, cfg, f.cache, otelMocks.NewOtel())

	return f
}

func createRequest(guest, unit string, checkIn time.Time, nights int) dto.CreateBookingRequest {
	return dto.CreateBookingRequest{
		GuestName:      guest,
		UnitID:         unit,
		CheckInDate:    checkIn.Format("2006-01-02"),
		NumberOfNights: nights,
	}
}

func stored(id int64, guest, unit string, checkIn time.Time, nights int) model.Booking {
	return model.Booking{ID: id, GuestName: guest, UnitID: unit, CheckInDate: checkIn, NumberOfNights: nights}
}

func assertFailure(t *testing.T, err error, code int, message string) {
	t.Helper()

	require.Error(t, err)
	assert.Equal(t, code, failure.GetCode(err))
	assert.Equal(t, message, err.Error())
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("admits and publishes", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().FindByGuestAndUnit(gomock.Any(), "GuestA", "1").Return(nil, nil)
		f.repo.EXPECT().FindByGuestName(gomock.Any(), "GuestA").Return(nil, nil)
		f.repo.EXPECT().FindByUnitBefore(gomock.Any(), "1", day(5)).Return([]model.Booking{stored(3, "GuestB", "1", day(-2), 2)}, nil)
		f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b model.Booking) (model.Booking, error) {
			assert.True(t, day(0).Equal(b.CheckInDate))
			assert.Equal(t, 5, b.NumberOfNights)

			b.ID = 9

			return b, nil
		})
		f.kafka.EXPECT().SendMessages(gomock.Any(), "booking-events", gomock.Any()).Return(nil)

		res, err := f.svc.Create(ctx, createRequest("GuestA", "1", day(0), 5))

		require.NoError(t, err)
		assert.Equal(t, int64(9), res.ID)
		assert.Equal(t, day(5).Format("2006-01-02"), res.CheckOutDate)
	})

	t.Run("same guest same unit is a bad request", func(t *testing.T) {
		f := newFixture(t)

		prior := stored(1, "GuestA", "1", day(20), 1)
		f.repo.EXPECT().FindByGuestAndUnit(gomock.Any(), "GuestA", "1").Return([]model.Booking{prior}, nil)
		f.repo.EXPECT().FindByGuestName(gomock.Any(), "GuestA").Return([]model.Booking{prior}, nil)
		f.repo.EXPECT().FindByUnitBefore(gomock.Any(), "1", gomock.Any()).Return(nil, nil)

		_, err := f.svc.Create(ctx, createRequest("GuestA", "1", day(0), 5))

		assertFailure(t, err, http.StatusBadRequest, admission.ReasonSameGuestSameUnit)
	})

	t.Run("same guest other unit is a bad request", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().FindByGuestAndUnit(gomock.Any(), "GuestA", "2").Return(nil, nil)
		f.repo.EXPECT().FindByGuestName(gomock.Any(), "GuestA").Return([]model.Booking{stored(1, "GuestA", "1", day(0), 5)}, nil)
		f.repo.EXPECT().FindByUnitBefore(gomock.Any(), "2", gomock.Any()).Return(nil, nil)

		_, err := f.svc.Create(ctx, createRequest("GuestA", "2", day(0), 5))

		assertFailure(t, err, http.StatusBadRequest, admission.ReasonSameGuestOtherUnit)
	})

	t.Run("overlap is a conflict", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().FindByGuestAndUnit(gomock.Any(), "GuestB", "1").Return(nil, nil)
		f.repo.EXPECT().FindByGuestName(gomock.Any(), "GuestB").Return(nil, nil)
		f.repo.EXPECT().FindByUnitBefore(gomock.Any(), "1", gomock.Any()).Return([]model.Booking{stored(1, "GuestA", "1", day(0), 5)}, nil)

		_, err := f.svc.Create(ctx, createRequest("GuestB", "1", day(0), 5))

		assertFailure(t, err, http.StatusConflict, admission.ReasonUnitOccupied)
	})

	t.Run("database exclusion constraint is a conflict", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().FindByGuestAndUnit(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		f.repo.EXPECT().FindByGuestName(gomock.Any(), gomock.Any()).Return(nil, nil)
		f.repo.EXPECT().FindByUnitBefore(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(model.Booking{}, repository.ErrOverlap)

		_, err := f.svc.Create(ctx, createRequest("GuestB", "1", day(0), 5))

		assertFailure(t, err, http.StatusConflict, admission.ReasonUnitOccupied)
	})

	t.Run("store failure is internal", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().FindByGuestAndUnit(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errStore)

		_, err := f.svc.Create(ctx, createRequest("GuestB", "1", day(0), 5))

		require.Error(t, err)
		assert.False(t, failure.IsFailure(err))
		assert.ErrorIs(t, err, errStore)
	})

	t.Run("publish failure keeps the booking", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().FindByGuestAndUnit(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		f.repo.EXPECT().FindByGuestName(gomock.Any(), gomock.Any()).Return(nil, nil)
		f.repo.EXPECT().FindByUnitBefore(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b model.Booking) (model.Booking, error) {
			b.ID = 1

			return b, nil
		})
		f.kafka.EXPECT().SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

		res, err := f.svc.Create(ctx, createRequest("GuestB", "1", day(0), 5))

		require.NoError(t, err)
		assert.Equal(t, int64(1), res.ID)
	})

	t.Run("lock timeout is internal and reads nothing", func(t *testing.T) {
		f := newFixture(t)

		release, err := f.locker.Acquire(ctx, "unit:1")
		require.NoError(t, err)
		defer release()

		shortCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()

		_, err = f.svc.Create(shortCtx, createRequest("GuestB", "1", day(0), 5))

		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
		assert.ErrorIs(t, err, mutex.ErrLockTimeout)
	})
}

func TestExtend(t *testing.T) {
	ctx := context.Background()

	t.Run("extends into a free window", func(t *testing.T) {
		f := newFixture(t)

		existing := stored(1, "GuestA", "1", day(0), 3)
		f.repo.EXPECT().FindByID(gomock.Any(), int64(1)).Return(existing, nil).Times(2)
		f.repo.EXPECT().FindByUnitExcluding(gomock.Any(), "1", int64(1)).Return([]model.Booking{stored(2, "GuestB", "1", day(5), 2)}, nil)
		f.repo.EXPECT().UpdateNumberOfNights(gomock.Any(), int64(1), 5).Return(stored(1, "GuestA", "1", day(0), 5), nil)
		f.kafka.EXPECT().SendMessages(gomock.Any(), "booking-events", gomock.Any()).Return(nil)

		res, err := f.svc.Extend(ctx, 1, dto.ExtendBookingRequest{AdditionalNights: 2})

		require.NoError(t, err)
		assert.Equal(t, 5, res.NumberOfNights)
	})

	t.Run("cached booking never outlives the extension", func(t *testing.T) {
		f := newFixture(t)

		existing := stored(1, "GuestA", "1", day(0), 3)
		staleRes := dto.BookingResponse{}
		staleRes.FromModel(existing)
		require.NoError(t, f.cache.Save(ctx, "booking:get:1", staleRes, 60))

		f.repo.EXPECT().FindByID(gomock.Any(), int64(1)).Return(existing, nil).Times(2)
		f.repo.EXPECT().FindByUnitExcluding(gomock.Any(), "1", int64(1)).Return(nil, nil)
		f.repo.EXPECT().UpdateNumberOfNights(gomock.Any(), int64(1), 5).Return(stored(1, "GuestA", "1", day(0), 5), nil)
		f.kafka.EXPECT().SendMessages(gomock.Any(), "booking-events", gomock.Any()).Return(nil)

		_, err := f.svc.Extend(ctx, 1, dto.ExtendBookingRequest{AdditionalNights: 2})
		require.NoError(t, err)

		var cached dto.BookingResponse
		assert.ErrorIs(t, f.cache.Get(ctx, "booking:get:1", &cached), cache.Nil, "evicted before Extend returns")

		// A read that started before the update stores what it saw.
		require.NoError(t, f.cache.Save(ctx, "booking:get:1", staleRes, 60))

		require.Eventually(t, func() bool {
			return errors.Is(f.cache.Get(ctx, "booking:get:1", &cached), cache.Nil)
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("occupied window is a conflict", func(t *testing.T) {
		f := newFixture(t)

		existing := stored(1, "GuestA", "1", day(0), 3)
		f.repo.EXPECT().FindByID(gomock.Any(), int64(1)).Return(existing, nil).Times(2)
		f.repo.EXPECT().FindByUnitExcluding(gomock.Any(), "1", int64(1)).Return([]model.Booking{stored(2, "GuestB", "1", day(4), 2)}, nil)

		_, err := f.svc.Extend(ctx, 1, dto.ExtendBookingRequest{AdditionalNights: 2})

		assertFailure(t, err, http.StatusConflict, admission.ReasonExtensionConflict)
	})

	t.Run("unknown id is not found whatever the nights", func(t *testing.T) {
		for _, nights := range []int{-3, 0, 2} {
			f := newFixture(t)

			f.repo.EXPECT().FindByID(gomock.Any(), int64(404)).Return(model.Booking{}, repository.ErrNotFound)

			_, err := f.svc.Extend(ctx, 404, dto.ExtendBookingRequest{AdditionalNights: nights})

			assertFailure(t, err, http.StatusNotFound, "booking not found")
		}
	})

	t.Run("non positive nights stop before any conflict check", func(t *testing.T) {
		for _, nights := range []int{0, -1} {
			f := newFixture(t)

			f.repo.EXPECT().FindByID(gomock.Any(), int64(1)).Return(stored(1, "GuestA", "1", day(0), 3), nil)

			_, err := f.svc.Extend(ctx, 1, dto.ExtendBookingRequest{AdditionalNights: nights})

			assertFailure(t, err, http.StatusBadRequest, admission.ReasonNonPositiveExtension)
		}
	})

	t.Run("invalid id never reaches the store", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Extend(ctx, 0, dto.ExtendBookingRequest{AdditionalNights: 1})

		assertFailure(t, err, http.StatusBadRequest, "invalid booking id")
	})

	t.Run("booking vanishing during update is not found", func(t *testing.T) {
		f := newFixture(t)

		existing := stored(1, "GuestA", "1", day(0), 3)
		f.repo.EXPECT().FindByID(gomock.Any(), int64(1)).Return(existing, nil).Times(2)
		f.repo.EXPECT().FindByUnitExcluding(gomock.Any(), "1", int64(1)).Return(nil, nil)
		f.repo.EXPECT().UpdateNumberOfNights(gomock.Any(), int64(1), 4).Return(model.Booking{}, repository.ErrNotFound)

		_, err := f.svc.Extend(ctx, 1, dto.ExtendBookingRequest{AdditionalNights: 1})

		assertFailure(t, err, http.StatusNotFound, "booking not found")
	})

	t.Run("store failure is internal", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().FindByID(gomock.Any(), int64(1)).Return(model.Booking{}, errStore)

		_, err := f.svc.Extend(ctx, 1, dto.ExtendBookingRequest{AdditionalNights: 1})

		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
	})
}

func TestGet(t *testing.T) {
	ctx := context.Background()

	t.Run("reads through the cache", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().FindByID(gomock.Any(), int64(1)).Return(stored(1, "GuestA", "1", day(0), 3), nil)

		res, err := f.svc.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "GuestA", res.GuestName)

		require.Eventually(t, func() bool {
			var cached dto.BookingResponse

			return f.cache.Get(ctx, "booking:get:1", &cached) == nil
		}, time.Second, 5*time.Millisecond)

		again, err := f.svc.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, res, again)
	})

	t.Run("missing booking", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().FindByID(gomock.Any(), int64(2)).Return(model.Booking{}, repository.ErrNotFound)

		_, err := f.svc.Get(ctx, 2)

		assertFailure(t, err, http.StatusNotFound, "booking not found")
	})
}

func TestGetAll(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	filter := dto.BookingFilter{UnitID: "1"}
	params := paramsPage(1, 2)

	f.repo.EXPECT().Count(gomock.Any(), filter.ToFilterGroup()).Return(3, nil)
	f.repo.EXPECT().FindAll(gomock.Any(), params, filter.ToFilterGroup()).Return([]model.Booking{
		stored(1, "GuestA", "1", day(0), 1),
		stored(2, "GuestB", "1", day(1), 1),
	}, nil)

	res, err := f.svc.GetAll(ctx, params, filter)

	require.NoError(t, err)
	assert.Len(t, res.Bookings, 2)
	assert.Equal(t, 3, res.TotalData)
	assert.Equal(t, 2, res.TotalPage)
}

func paramsPage(page, limit int) gDto.QueryParams {
	return gDto.QueryParams{Page: page, Limit: limit, SortBy: "id", SortDir: "ASC"}
}
