package repository_test

import (
	"context"
	"lodge/config"
	"lodge/helper"
	"lodge/infras/database"
	"lodge/infras/otel/mocks"
	"lodge/internal/domains/booking/model"
	"lodge/internal/domains/booking/repository"
	gDto "lodge/shared/dto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return day0.AddDate(0, 0, offset)
}

func newRepository(t *testing.T) repository.Booking {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	conn := &database.Connection{Driver: database.DriverSQLite, Read: db, Write: db}
	require.NoError(t, helper.Up(&config.Config{}, conn))

	return repository.New(conn, mocks.NewOtel())
}

func create(t *testing.T, repo repository.Booking, guest, unit string, checkIn time.Time, nights int) model.Booking {
	t.Helper()

	booking := model.Booking{GuestName: guest, UnitID: unit, CheckInDate: checkIn, NumberOfNights: nights}
	booking.Touch(day0)

	created, err := repo.Create(context.Background(), booking)
	require.NoError(t, err)

	return created
}

func ids(bookings []model.Booking) []int64 {
	out := make([]int64, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, b.ID)
	}

	return out
}

func TestCreateAndFindByID(t *testing.T) {
	repo := newRepository(t)
	ctx := context.Background()

	created := create(t, repo, "GuestA", "1", day(0).Add(13*time.Hour), 5)
	assert.Equal(t, int64(1), created.ID)
	assert.True(t, day(0).Equal(created.CheckInDate), "check-in is stored as a calendar date")

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "GuestA", found.GuestName)
	assert.Equal(t, "1", found.UnitID)
	assert.Equal(t, 5, found.NumberOfNights)
	assert.True(t, day(0).Equal(found.CheckInDate))

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCandidateQueries(t *testing.T) {
	repo := newRepository(t)
	ctx := context.Background()

	a1 := create(t, repo, "GuestA", "1", day(0), 2)
	a2 := create(t, repo, "GuestA", "2", day(10), 2)
	b1 := create(t, repo, "GuestB", "1", day(5), 2)
	c1 := create(t, repo, "GuestC", "1", day(2), 1)

	t.Run("by guest and unit", func(t *testing.T) {
		got, err := repo.FindByGuestAndUnit(ctx, "GuestA", "1")
		require.NoError(t, err)
		assert.Equal(t, []int64{a1.ID}, ids(got))

		got, err = repo.FindByGuestAndUnit(ctx, "guesta", "1")
		require.NoError(t, err)
		assert.Empty(t, got, "guest names match exactly")
	})

	t.Run("by guest", func(t *testing.T) {
		got, err := repo.FindByGuestName(ctx, "GuestA")
		require.NoError(t, err)
		assert.Equal(t, []int64{a1.ID, a2.ID}, ids(got))
	})

	t.Run("by unit before cutoff is strict", func(t *testing.T) {
		got, err := repo.FindByUnitBefore(ctx, "1", day(5))
		require.NoError(t, err)
		assert.Equal(t, []int64{a1.ID, c1.ID}, ids(got))

		got, err = repo.FindByUnitBefore(ctx, "1", day(6))
		require.NoError(t, err)
		assert.Equal(t, []int64{a1.ID, c1.ID, b1.ID}, ids(got))
	})

	t.Run("by unit excluding one id", func(t *testing.T) {
		got, err := repo.FindByUnitExcluding(ctx, "1", c1.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{a1.ID, b1.ID}, ids(got))
	})
}

func TestUpdateNumberOfNights(t *testing.T) {
	repo := newRepository(t)
	ctx := context.Background()

	created := create(t, repo, "GuestA", "1", day(0), 3)

	updated, err := repo.UpdateNumberOfNights(ctx, created.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.NumberOfNights)
	assert.Equal(t, created.ID, updated.ID)
	assert.False(t, updated.ModifiedAt.Before(created.ModifiedAt))

	_, err = repo.UpdateNumberOfNights(ctx, 404, 2)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFindAllAndCount(t *testing.T) {
	repo := newRepository(t)
	ctx := context.Background()

	create(t, repo, "GuestA", "1", day(0), 1)
	create(t, repo, "GuestB", "1", day(1), 1)
	create(t, repo, "GuestC", "2", day(0), 1)

	byUnit := gDto.And(gDto.Filter{Field: model.FieldUnitID, Value: "1", Operator: gDto.FilterOperatorEq})

	got, err := repo.FindAll(ctx, gDto.QueryParams{Page: 1, Limit: 1, SortBy: "id", SortDir: "DESC"}, byUnit)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "GuestB", got[0].GuestName)

	total, err := repo.Count(ctx, byUnit)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	total, err = repo.Count(ctx, gDto.FilterGroup{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}
