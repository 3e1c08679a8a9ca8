package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingserrors "evcharge/internal/bookings/errors"
	"evcharge/internal/bookings/index"
	"evcharge/internal/bookings/ledger"
	"evcharge/internal/bookings/repository"
	"evcharge/internal/bookings/validator"
	"evcharge/pkg/config"
	apperrors "evcharge/pkg/errors"
	"evcharge/pkg/kafka"
	"evcharge/pkg/metrics"
	"evcharge/pkg/model"
	"evcharge/pkg/sanitizer"

	"github.com/google/uuid"
)

type BookingService interface {
	Create(ctx context.Context, userID string, req *model.BookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, userID, id string) (*model.Booking, error)
	ListByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error)
	Cancel(ctx context.Context, userID, id string) (*model.Booking, error)
}

// StationFinder lists stations nearest-first. Implemented by index.StationIndex.
type StationFinder interface {
	Candidates(point model.GeoPoint, chargerType model.ChargerType, maxDistanceKm float64, limit int) []index.Candidate
}

// SlotLedger holds per-station reservations. Implemented by ledger.Ledger.
type SlotLedger interface {
	Reserve(ctx context.Context, stationID string, slot model.ChargingSlot, bookingID string) error
	Release(stationID, bookingID string) bool
}

type bookingService struct {
	repo      repository.BookingRepository
	stations  StationFinder
	slots     SlotLedger
	validator *validator.BookingValidator
	publisher kafka.EventPublisher
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	stations StationFinder,
	slots SlotLedger,
	validator *validator.BookingValidator,
	publisher kafka.EventPublisher,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = kafka.NoopPublisher{}
	}
	return &bookingService{
		repo:      repo,
		stations:  stations,
		slots:     slots,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Create admits a booking: validate, pick the nearest matching station whose
// slot is free (retrying the next-nearest on conflict), then persist it as
// confirmed. A rejected request leaves no reservation behind.
func (s *bookingService) Create(ctx context.Context, userID string, req *model.BookingRequest) (*model.Booking, error) {
	started := s.now()
	booking, outcome, err := s.admit(ctx, userID, req)
	metrics.ObserveAdmission(s.now().Sub(started))
	metrics.IncAdmission(outcome)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, model.EventBookingConfirmed, booking)
	s.cfg.Log.Info("Booking confirmed",
		"id", booking.ID,
		"user", booking.User,
		"station_id", booking.StationID,
		"start_time", booking.ChargingSlot.StartTime,
		"end_time", booking.ChargingSlot.EndTime,
		"distance_km", booking.DistanceKm,
	)
	return booking, nil
}

func (s *bookingService) admit(ctx context.Context, userID string, req *model.BookingRequest) (*model.Booking, string, error) {
	if req.User == "" {
		req.User = userID
	}
	if userID != "" && req.User != userID {
		return nil, metrics.OutcomeValidation, apperrors.Validation("Invalid booking request",
			map[string]any{"User": "user must match the authenticated user"})
	}

	s.sanitize(req)
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "user", req.User, "error", err)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, metrics.OutcomeValidation, apperrors.Validation("Invalid booking request", verrs.Details())
		}
		return nil, metrics.OutcomeValidation, apperrors.Validation("Invalid booking request", map[string]any{"error": err.Error()})
	}

	if ctx.Err() != nil {
		return nil, metrics.OutcomeTimeout, timeoutError(ctx)
	}

	maxKm := s.cfg.MaxStationDistanceKm
	if req.MaxDistanceKm > 0 && req.MaxDistanceKm < maxKm {
		maxKm = req.MaxDistanceKm
	}

	candidates := s.stations.Candidates(req.Location, req.ChargerType, maxKm, 1+s.cfg.BookingRetryCount)
	if len(candidates) == 0 {
		return nil, metrics.OutcomeNoStation, apperrors.NoStationAvailable(
			fmt.Sprintf("No %s charging station within %g km", req.ChargerType, maxKm),
		).WithCause(bookingserrors.ErrNoStation)
	}

	bookingID := uuid.NewString()
	chosen, err := s.reserve(ctx, candidates, bookingID, req.ChargingSlot)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeTimeout) {
			return nil, metrics.OutcomeTimeout, err
		}
		return nil, metrics.OutcomeAllBusy, err
	}

	booking := &model.Booking{
		ID:              bookingID,
		User:            req.User,
		CarType:         req.CarType,
		CarNumber:       req.CarNumber,
		ChargerType:     req.ChargerType,
		Location:        req.Location,
		NearestLocation: req.NearestLocation,
		StationID:       chosen.Station.ID,
		ChargingSlot:    req.ChargingSlot,
		DistanceKm:      chosen.DistanceKm,
		Status:          model.BookingStatusConfirmed,
		CreatedAt:       s.now().UTC().Truncate(time.Millisecond),
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		s.slots.Release(chosen.Station.ID, bookingID)
		if ctx.Err() != nil {
			s.cfg.Log.Warn("Booking persistence timed out, reservation released",
				"id", bookingID, "station_id", chosen.Station.ID, "error", err)
			return nil, metrics.OutcomeTimeout, timeoutError(ctx)
		}
		s.cfg.Log.Error("Failed to persist booking, reservation released",
			"id", bookingID, "station_id", chosen.Station.ID, "error", err)
		return nil, metrics.OutcomePersistence, apperrors.Internal("Failed to create booking", err)
	}

	return booking, metrics.OutcomeConfirmed, nil
}

// reserve walks candidates nearest-first. The first is the initial attempt and
// each further candidate counts as one retry.
func (s *bookingService) reserve(ctx context.Context, candidates []index.Candidate, bookingID string, slot model.ChargingSlot) (index.Candidate, error) {
	for i, c := range candidates {
		if i > 0 {
			metrics.IncRetry()
		}

		rctx, cancel := context.WithTimeout(ctx, s.cfg.LedgerWaitTimeout)
		err := s.slots.Reserve(rctx, c.Station.ID, slot, bookingID)
		cancel()

		switch {
		case err == nil:
			return c, nil
		case ctx.Err() != nil:
			return index.Candidate{}, timeoutError(ctx)
		case errors.Is(err, ledger.ErrConflict):
			s.cfg.Log.Debug("Slot taken, trying next station",
				"station_id", c.Station.ID, "attempt", i+1)
		default:
			s.cfg.Log.Warn("Station ledger busy, trying next station",
				"station_id", c.Station.ID, "attempt", i+1, "error", err)
		}
	}

	return index.Candidate{}, apperrors.AllStationsBusy("All nearby charging stations are busy for the requested slot").
		WithDetails(map[string]any{"attempts": len(candidates)}).
		WithCause(ledger.ErrConflict)
}

func (s *bookingService) GetByID(ctx context.Context, userID, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.User != userID {
		return nil, apperrors.NotFoundWithID("Booking", id)
	}
	return booking, nil
}

func (s *bookingService) ListByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if userID == "" {
		return nil, 0, apperrors.InvalidInput("User ID cannot be empty")
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByUser(ctx, userID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "user", userID, "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindByUser(ctx, userID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "user", userID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// Cancel frees the booking's slot. Cancelling an already cancelled booking
// returns it unchanged.
func (s *bookingService) Cancel(ctx context.Context, userID, id string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == model.BookingStatusCancelled {
		return booking, nil
	}

	updated, err := s.repo.UpdateStatus(ctx, id, model.BookingStatusConfirmed, model.BookingStatusCancelled, s.now())
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			// Lost a race with another cancel.
			return s.find(ctx, id)
		}
		s.cfg.Log.Error("Failed to cancel booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to cancel booking", err)
	}

	s.slots.Release(updated.StationID, updated.ID)
	metrics.IncAdmission(metrics.OutcomeCancelled)
	s.publish(ctx, model.EventBookingCancelled, updated)
	s.cfg.Log.Info("Booking cancelled", "id", id, "station_id", updated.StationID)
	return updated, nil
}

func (s *bookingService) find(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

// publish is best-effort: the booking is already durable.
func (s *bookingService) publish(ctx context.Context, eventType string, booking *model.Booking) {
	event := model.BookingEvent{EventType: eventType, Booking: *booking, At: s.now().UTC()}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), booking.ID, eventType, event); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event", "id", booking.ID, "event", eventType, "error", err)
	}
}

func (s *bookingService) sanitize(req *model.BookingRequest) {
	req.CarType = sanitizer.TrimAndNormalize(req.CarType)
	req.CarNumber = sanitizer.NormalizeCarNumber(req.CarNumber)
}

func timeoutError(ctx context.Context) error {
	return apperrors.Timeout("Booking request deadline exceeded").WithCause(ctx.Err())
}
