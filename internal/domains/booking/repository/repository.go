package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"lodge/infras/database"
	"lodge/infras/otel"
	"lodge/internal/domains/booking/model"
	"lodge/shared"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	gRepo "lodge/shared/repository"
	"lodge/shared/timezone"
	"time"

	"github.com/lib/pq"
)

// exclusionViolation is raised by the bookings_unit_no_overlap constraint.
const exclusionViolation = "23P01"

var (
	ErrNotFound = gRepo.ErrNotFound
	// ErrOverlap means the database itself refused an overlapping stay.
	ErrOverlap = errors.New("booking overlaps an existing booking")
)

// Booking is the store contract the admission flow reads candidates from and writes to.
type Booking interface {
	FindByID(ctx context.Context, id int64) (model.Booking, error)
	FindAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.Booking, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	FindByGuestAndUnit(ctx context.Context, guestName, unitID string) ([]model.Booking, error)
	FindByGuestName(ctx context.Context, guestName string) ([]model.Booking, error)
	FindByUnitBefore(ctx context.Context, unitID string, cutoff time.Time) ([]model.Booking, error)
	FindByUnitExcluding(ctx context.Context, unitID string, excludeID int64) ([]model.Booking, error)
	Create(ctx context.Context, booking model.Booking) (model.Booking, error)
	UpdateNumberOfNights(ctx context.Context, id int64, nights int) (model.Booking, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	otel otel.Otel
}

func New(db *database.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		otel:       otel,
	}
}

var byCheckIn = gDto.QueryParams{SortBy: model.FieldCheckInDate, SortDir: "ASC"}

func (r *repositoryImpl) FindByID(ctx context.Context, id int64) (model.Booking, error) {
	return r.Get(ctx, shared.FilterByID(id, model.FieldID, "")) //nolint:wrapcheck
}

func (r *repositoryImpl) FindAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.Booking, error) {
	return r.GetAll(ctx, params, filter) //nolint:wrapcheck
}

func (r *repositoryImpl) FindByGuestAndUnit(ctx context.Context, guestName, unitID string) ([]model.Booking, error) {
	return r.GetAll(ctx, byCheckIn, gDto.And( //nolint:wrapcheck
		gDto.Filter{Field: model.FieldGuestName, Value: guestName, Operator: gDto.FilterOperatorEq},
		gDto.Filter{Field: model.FieldUnitID, Value: unitID, Operator: gDto.FilterOperatorEq},
	))
}

func (r *repositoryImpl) FindByGuestName(ctx context.Context, guestName string) ([]model.Booking, error) {
	return r.GetAll(ctx, byCheckIn, gDto.And( //nolint:wrapcheck
		gDto.Filter{Field: model.FieldGuestName, Value: guestName, Operator: gDto.FilterOperatorEq},
	))
}

// FindByUnitBefore is a coarse pre-filter: a booking checking in on or after cutoff
// cannot overlap a stay that ends at cutoff.
func (r *repositoryImpl) FindByUnitBefore(ctx context.Context, unitID string, cutoff time.Time) ([]model.Booking, error) {
	return r.GetAll(ctx, byCheckIn, gDto.And( //nolint:wrapcheck
		gDto.Filter{Field: model.FieldUnitID, Value: unitID, Operator: gDto.FilterOperatorEq},
		gDto.Filter{Field: model.FieldCheckInDate, Value: timezone.StartOfDay(cutoff), Operator: gDto.FilterOperatorLess},
	))
}

func (r *repositoryImpl) FindByUnitExcluding(ctx context.Context, unitID string, excludeID int64) ([]model.Booking, error) {
	return r.GetAll(ctx, byCheckIn, gDto.And( //nolint:wrapcheck
		gDto.Filter{Field: model.FieldUnitID, Value: unitID, Operator: gDto.FilterOperatorEq},
		gDto.Filter{ArgName: "exclude_id", Field: model.FieldID, Value: excludeID, Operator: gDto.FilterOperatorNotEq},
	))
}

func (r *repositoryImpl) Create(ctx context.Context, booking model.Booking) (model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.Create")
	defer scope.End()

	booking.CheckInDate = timezone.StartOfDay(booking.CheckInDate)

	id, err := r.InsertReturningID(ctx, booking)
	if err != nil {
		return model.Booking{}, translate(err)
	}

	booking.ID = id

	return booking, nil
}

func (r *repositoryImpl) UpdateNumberOfNights(ctx context.Context, id int64, nights int) (model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.UpdateNumberOfNights")
	defer scope.End()

	fields := shared.TransformFields(model.NightsUpdate{NumberOfNights: nights})

	if err := r.Update(ctx, fields, shared.FilterByID(id, model.FieldID, "")); err != nil {
		return model.Booking{}, translate(err)
	}

	return r.FindByID(ctx, id)
}

func translate(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == exclusionViolation {
		return fmt.Errorf("%w: %s", ErrOverlap, pqErr.Constraint)
	}

	return err
}
