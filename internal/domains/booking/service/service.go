package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Booking=MockBookingService

import (
	"context"
	"errors"
	"fmt"
	"lodge/config"
	"lodge/infras/kafka"
	"lodge/infras/otel"
	"lodge/internal/domains/booking/admission"
	"lodge/internal/domains/booking/model"
	"lodge/internal/domains/booking/model/dto"
	"lodge/internal/domains/booking/repository"
	"lodge/shared"
	"lodge/shared/cache"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/failure"
	"lodge/shared/mutex"
	"lodge/shared/timezone"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking    = "booking:get"
	cacheGetAllBooking = "booking:gets"

	lockPrefixGuest = "guest:"
	lockPrefixUnit  = "unit:"

	msgBookingNotFound = "booking not found"
)

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	Extend(ctx context.Context, id int64, req dto.ExtendBookingRequest) (dto.BookingResponse, error)
	Get(ctx context.Context, id int64) (dto.BookingResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter dto.BookingFilter) (dto.GetBookingsResponse, error)
}

type serviceImpl struct {
	repo   repository.Booking
	locker mutex.Locker
	kafka  kafka.Client
	cfg    *config.Config
	cache  cache.RedisCache
	otel   otel.Otel
}

func New(repo repository.Booking, locker mutex.Locker, kafka kafka.Client, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Booking {
	return &serviceImpl{
		repo:   repo,
		locker: locker,
		kafka:  kafka,
		cfg:    cfg,
		cache:  cache,
		otel:   otel,
	}
}

// Create admits a new booking. Candidates are read and the booking written while the
// guest and the unit are locked, so no concurrent request can slip in between.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := req.ToModel(timezone.Now().UTC())
	if err != nil {
		return res, failure.BadRequest(err) //nolint:wrapcheck
	}

	scope.SetAttributes(map[string]any{"booking.unit_id": booking.UnitID, "booking.nights": booking.NumberOfNights})

	release, err := s.locker.Acquire(ctx, lockPrefixGuest+booking.GuestName, lockPrefixUnit+booking.UnitID)
	if err != nil {
		log.Error().Err(err).Str("unitID", booking.UnitID).Msg("failed to lock booking admission")

		return res, fmt.Errorf("failed to lock booking admission: %w", err)
	}
	defer release()

	candidates, err := s.candidates(ctx, booking)
	if err != nil {
		return res, err
	}

	if outcome := admission.Admit(booking, candidates); !outcome.Admit {
		log.Info().Str("guestName", booking.GuestName).Str("unitID", booking.UnitID).Str("reason", outcome.Reason).Msg("booking rejected")

		return res, reject(outcome)
	}

	created, err := s.repo.Create(ctx, booking)
	if errors.Is(err, repository.ErrOverlap) {
		return res, failure.Conflict(admission.ReasonUnitOccupied) //nolint:wrapcheck
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to create booking")

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	res.FromModel(created)

	log.Info().Int64("bookingID", created.ID).Str("unitID", created.UnitID).Msg("booking created")

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
	}()

	s.publish(ctx, dto.EventBookingCreated, res)

	return res, nil
}

func (s *serviceImpl) candidates(ctx context.Context, booking model.Booking) (admission.Candidates, error) {
	var (
		candidates admission.Candidates
		err        error
	)

	candidates.SameGuestSameUnit, err = s.repo.FindByGuestAndUnit(ctx, booking.GuestName, booking.UnitID)
	if err != nil {
		log.Error().Err(err).Msg("failed to find bookings by guest and unit")

		return candidates, fmt.Errorf("failed to find bookings by guest and unit: %w", err)
	}

	candidates.SameGuest, err = s.repo.FindByGuestName(ctx, booking.GuestName)
	if err != nil {
		log.Error().Err(err).Msg("failed to find bookings by guest")

		return candidates, fmt.Errorf("failed to find bookings by guest: %w", err)
	}

	candidates.SameUnit, err = s.repo.FindByUnitBefore(ctx, booking.UnitID, booking.CheckOutDate())
	if err != nil {
		log.Error().Err(err).Msg("failed to find bookings by unit")

		return candidates, fmt.Errorf("failed to find bookings by unit: %w", err)
	}

	return candidates, nil
}

// Extend adds nights to an existing booking. An unknown id is reported before the
// night count is looked at.
func (s *serviceImpl) Extend(ctx context.Context, id int64, req dto.ExtendBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Extend")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttributes(map[string]any{"booking.id": id, "booking.additional_nights": req.AdditionalNights})

	if id <= 0 {
		return res, failure.InvalidBookingID
	}

	existing, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	if req.AdditionalNights < 1 {
		return res, failure.BadRequestFromString(admission.ReasonNonPositiveExtension) //nolint:wrapcheck
	}

	release, err := s.locker.Acquire(ctx, lockPrefixUnit+existing.UnitID)
	if err != nil {
		log.Error().Err(err).Int64("bookingID", id).Msg("failed to lock booking extension")

		return res, fmt.Errorf("failed to lock booking extension: %w", err)
	}
	defer release()

	// The night count may have moved while we waited for the lock.
	existing, err = s.find(ctx, id)
	if err != nil {
		return res, err
	}

	others, err := s.repo.FindByUnitExcluding(ctx, existing.UnitID, existing.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to find bookings by unit")

		return res, fmt.Errorf("failed to find bookings by unit: %w", err)
	}

	outcome := admission.IsExtensionPossible(existing, req.AdditionalNights, others)
	if !outcome.Admit {
		log.Info().Int64("bookingID", id).Str("reason", outcome.Reason).Msg("extension rejected")

		return res, reject(outcome.Outcome)
	}

	updated, err := s.repo.UpdateNumberOfNights(ctx, existing.ID, outcome.Nights)

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return res, failure.NotFound(msgBookingNotFound) //nolint:wrapcheck
	case errors.Is(err, repository.ErrOverlap):
		return res, failure.Conflict(admission.ReasonExtensionConflict) //nolint:wrapcheck
	case err != nil:
		log.Error().Err(err).Int64("bookingID", id).Msg("failed to extend booking")

		return res, fmt.Errorf("failed to extend booking: %w", err)
	}

	res.FromModel(updated)

	log.Info().Int64("bookingID", id).Int("nights", updated.NumberOfNights).Msg("booking extended")

	// Dropped while the unit is still locked so no later read sees the old night count.
	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)
	s.evict(context.WithoutCancel(ctx), cacheKey)

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)

		// A Get that read the row before the update may store it after the eviction above.
		time.Sleep(time.Duration(s.cfg.Cache.InvalidationDelayMillis) * time.Millisecond)
		s.evict(c, cacheKey)
	}()

	s.publish(ctx, dto.EventBookingExtended, res)

	return res, nil
}

func (s *serviceImpl) evict(ctx context.Context, cacheKey string) {
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		log.Error().Err(err).Str("cacheKey", cacheKey).Msg("failed to delete booking cache")
	}
}

func (s *serviceImpl) find(ctx context.Context, id int64) (model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return booking, failure.NotFound(msgBookingNotFound) //nolint:wrapcheck
	}

	if err != nil {
		log.Error().Err(err).Int64("bookingID", id).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	return booking, nil
}

func (s *serviceImpl) Get(ctx context.Context, id int64) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if id <= 0 {
		return res, failure.InvalidBookingID
	}

	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		return res, nil
	}

	booking, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(booking)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter dto.BookingFilter) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, params, filter.CacheParts())

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	group := filter.ToFilterGroup()

	total, err := s.repo.Count(ctx, group)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.FindAll(ctx, params, group)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

// publish never fails the request: the booking is already committed.
func (s *serviceImpl) publish(ctx context.Context, eventType string, booking dto.BookingResponse) {
	ctx, scope := s.otel.NewScope(context.WithoutCancel(ctx), constant.OtelEventScopeName, constant.OtelEventScopeName+"."+eventType)
	defer scope.End()

	message := kafka.Message{
		Key:   strconv.FormatInt(booking.ID, 10),
		Value: dto.NewBookingEvent(eventType, booking, timezone.Now()),
	}

	if err := s.kafka.SendMessages(ctx, s.cfg.Kafka.Topics.Booking, message); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("event", eventType).Int64("bookingID", booking.ID).Msg("failed to publish booking event")
	}
}

func reject(outcome admission.Outcome) error {
	if outcome.Violation == admission.ViolationConflict {
		return failure.Conflict(outcome.Reason) //nolint:wrapcheck
	}

	return failure.BadRequestFromString(outcome.Reason) //nolint:wrapcheck
}
