package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	stationserrors "evcharge/internal/stations/errors"
	"evcharge/internal/stations/repository"
	"evcharge/internal/stations/validator"
	"evcharge/pkg/config"
	apperrors "evcharge/pkg/errors"
	"evcharge/pkg/kafka"
	"evcharge/pkg/model"
	"evcharge/pkg/sanitizer"
)

type StationService interface {
	Create(ctx context.Context, station *model.Station) error
	GetByID(ctx context.Context, id string) (*model.Station, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Station, int64, error)
	Deactivate(ctx context.Context, id string) error
}

type stationService struct {
	repo      repository.StationRepository
	validator *validator.StationValidator
	publisher kafka.EventPublisher
	cfg       *config.Config
}

func NewStationService(
	repo repository.StationRepository,
	validator *validator.StationValidator,
	publisher kafka.EventPublisher,
	cfg *config.Config,
) StationService {
	if publisher == nil {
		publisher = kafka.NoopPublisher{}
	}
	return &stationService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *stationService) Create(ctx context.Context, station *model.Station) error {
	s.applyDefaults(station)
	if err := s.validator.Validate(station); err != nil {
		s.cfg.Log.Warn("Station validation failed", "error", err)
		return apperrors.Validation("Invalid charging station", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, station); err != nil {
		s.cfg.Log.Error("Failed to create station", "error", err)
		return apperrors.Internal("Failed to create charging station", err)
	}

	s.publish(ctx, model.EventStationUpserted, *station)
	s.cfg.Log.Info("Station created successfully",
		"id", station.ID,
		"charger_type", station.ChargerType,
		"latitude", station.Latitude,
		"longitude", station.Longitude,
	)
	return nil
}

func (s *stationService) GetByID(ctx context.Context, id string) (*model.Station, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Station ID cannot be empty")
	}

	station, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, stationserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Charging station", id)
		}
		if errors.Is(err, stationserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid station ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve charging station", err)
	}

	return station, nil
}

func (s *stationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Station, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var stations []*model.Station
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count stations", "error", errCount)
			errCount = apperrors.Internal("Failed to count charging stations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		stations, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list stations", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve charging stations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return stations, count, nil
}

// Deactivate hides a station from new bookings. Existing bookings stay valid.
func (s *stationService) Deactivate(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Station ID cannot be empty")
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, stationserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Charging station", id)
		}
		if errors.Is(err, stationserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid station ID format")
		}
		s.cfg.Log.Error("Failed to deactivate station", "id", id, "error", err)
		return apperrors.Internal("Failed to deactivate charging station", err)
	}

	s.publish(ctx, model.EventStationDeactivated, model.Station{ID: id})
	s.cfg.Log.Info("Station deactivated", "id", id)
	return nil
}

func (s *stationService) applyDefaults(station *model.Station) {
	station.ID = ""
	station.Active = true
	station.Name = sanitizer.NormalizeName(station.Name)
	station.ChargerType = model.ChargerType(strings.ToLower(strings.TrimSpace(string(station.ChargerType))))
	if !station.Location.Valid() {
		station.Location = model.NewGeoPoint(station.Latitude, station.Longitude)
	} else {
		station.Latitude = station.Location.Lat()
		station.Longitude = station.Location.Lng()
	}
}

func (s *stationService) publish(ctx context.Context, eventType string, station model.Station) {
	event := model.StationEvent{EventType: eventType, Station: station, At: time.Now().UTC()}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), station.ID, eventType, event); err != nil {
		s.cfg.Log.Warn("Failed to publish station event", "id", station.ID, "event", eventType, "error", err)
	}
}
