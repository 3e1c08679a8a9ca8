package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	stationserrors "evcharge/internal/stations/errors"
	"evcharge/internal/stations/validator"
	"evcharge/pkg/config"
	apperrors "evcharge/pkg/errors"
	"evcharge/pkg/logger"
	"evcharge/pkg/model"
)

// ────────────────────────────────────────────────
// Mock repository for testing
// ────────────────────────────────────────────────

type mockStationRepository struct {
	createFunc     func(ctx context.Context, station *model.Station) error
	findByIDFunc   func(ctx context.Context, id string) (*model.Station, error)
	findAllFunc    func(ctx context.Context, limit int, offset int64) ([]*model.Station, error)
	countFunc      func(ctx context.Context) (int64, error)
	deactivateFunc func(ctx context.Context, id string) error
}

func (m *mockStationRepository) Create(ctx context.Context, station *model.Station) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, station)
	}
	station.ID = "65a000000000000000000001"
	return nil
}

func (m *mockStationRepository) FindByID(ctx context.Context, id string) (*model.Station, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, stationserrors.ErrNotFound
}

func (m *mockStationRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Station, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Station{}, nil
}

func (m *mockStationRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockStationRepository) FindActive(ctx context.Context) ([]*model.Station, error) {
	return nil, nil
}

func (m *mockStationRepository) Deactivate(ctx context.Context, id string) error {
	if m.deactivateFunc != nil {
		return m.deactivateFunc(ctx, id)
	}
	return nil
}

type capturedEvent struct {
	key       string
	eventType string
	payload   model.StationEvent
}

type capturingPublisher struct {
	events []capturedEvent
	err    error
}

func (p *capturingPublisher) Publish(_ context.Context, key, eventType string, payload any) error {
	p.events = append(p.events, capturedEvent{key: key, eventType: eventType, payload: payload.(model.StationEvent)})
	return p.err
}

func (p *capturingPublisher) Close() error { return nil }

func newService(repo *mockStationRepository, pub *capturingPublisher) StationService {
	cfg := &config.Config{Log: logger.Discard(), ReadTimeout: 5 * time.Second}
	return NewStationService(repo, validator.NewStationValidator(cfg.Log), pub, cfg)
}

// ────────────────────────────────────────────────
// Tests
// ────────────────────────────────────────────────

func TestCreate_FillsLocationAndPublishes(t *testing.T) {
	pub := &capturingPublisher{}
	svc := newService(&mockStationRepository{}, pub)

	station := &model.Station{ChargerType: " DC_Fast ", Latitude: 12.5, Longitude: 77.25}
	if err := svc.Create(context.Background(), station); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if station.ChargerType != model.ChargerDCFast {
		t.Errorf("charger type not normalized: %q", station.ChargerType)
	}
	if !station.Active {
		t.Error("new stations must be active")
	}
	if station.Location.Lat() != 12.5 || station.Location.Lng() != 77.25 {
		t.Errorf("location not derived from lat/lng: %+v", station.Location)
	}
	if len(pub.events) != 1 || pub.events[0].eventType != model.EventStationUpserted || pub.events[0].key != station.ID {
		t.Fatalf("expected one upserted event keyed by id, got %+v", pub.events)
	}
	if pub.events[0].payload.Station.ID != station.ID {
		t.Errorf("event carries wrong station: %+v", pub.events[0].payload.Station)
	}
}

func TestCreate_GeoJSONLocationWins(t *testing.T) {
	svc := newService(&mockStationRepository{}, &capturingPublisher{})

	station := &model.Station{ChargerType: model.ChargerACSlow, Location: model.NewGeoPoint(-33.86, 151.2)}
	if err := svc.Create(context.Background(), station); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if station.Latitude != -33.86 || station.Longitude != 151.2 {
		t.Errorf("lat/lng not mirrored from location: %v %v", station.Latitude, station.Longitude)
	}
}

func TestCreate_Errors(t *testing.T) {
	pub := &capturingPublisher{}
	svc := newService(&mockStationRepository{}, pub)

	err := svc.Create(context.Background(), &model.Station{ChargerType: "tesla", Latitude: 1, Longitude: 1})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}

	failing := newService(&mockStationRepository{
		createFunc: func(context.Context, *model.Station) error { return errors.New("insert failed") },
	}, pub)
	err = failing.Create(context.Background(), &model.Station{ChargerType: model.ChargerACFast})
	if !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Errorf("expected internal error, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Errorf("no event expected on failure, got %d", len(pub.events))
	}
}

func TestCreate_PublishFailureIsNotFatal(t *testing.T) {
	svc := newService(&mockStationRepository{}, &capturingPublisher{err: errors.New("broker down")})
	if err := svc.Create(context.Background(), &model.Station{ChargerType: model.ChargerACFast}); err != nil {
		t.Errorf("publish failure must not fail the request, got %v", err)
	}
}

func TestGetByID_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		repoErr  error
		wantCode string
	}{
		{"not found", stationserrors.ErrNotFound, apperrors.CodeNotFound},
		{"invalid id", fmt.Errorf("%w: x", stationserrors.ErrInvalidID), apperrors.CodeInvalidInput},
		{"store failure", errors.New("boom"), apperrors.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(&mockStationRepository{
				findByIDFunc: func(context.Context, string) (*model.Station, error) { return nil, tt.repoErr },
			}, &capturingPublisher{})
			_, err := svc.GetByID(context.Background(), "x")
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}

	svc := newService(&mockStationRepository{}, &capturingPublisher{})
	if _, err := svc.GetByID(context.Background(), ""); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid input for empty id, got %v", err)
	}
}

func TestGetAll_LimitNormalization(t *testing.T) {
	var receivedLimit int
	var receivedOffset int64
	svc := newService(&mockStationRepository{
		findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Station, error) {
			receivedLimit, receivedOffset = limit, offset
			return []*model.Station{{ID: "1"}}, nil
		},
		countFunc: func(context.Context) (int64, error) { return 42, nil },
	}, &capturingPublisher{})

	tests := []struct {
		limit      int
		offset     int64
		wantLimit  int
		wantOffset int64
	}{
		{0, 0, config.DefaultPageSize, 0},
		{-1, -10, config.DefaultPageSize, 0},
		{10, 5, 10, 5},
		{10000, 0, config.DefaultPaginationLimit, 0},
	}
	for _, tt := range tests {
		stations, count, err := svc.GetAll(context.Background(), tt.limit, tt.offset)
		if err != nil {
			t.Fatalf("GetAll(%d,%d) error = %v", tt.limit, tt.offset, err)
		}
		if count != 42 || len(stations) != 1 {
			t.Errorf("unexpected result: %d stations, count %d", len(stations), count)
		}
		if receivedLimit != tt.wantLimit || receivedOffset != tt.wantOffset {
			t.Errorf("GetAll(%d,%d): repo got limit=%d offset=%d", tt.limit, tt.offset, receivedLimit, receivedOffset)
		}
	}
}

func TestDeactivate(t *testing.T) {
	pub := &capturingPublisher{}
	svc := newService(&mockStationRepository{}, pub)

	if err := svc.Deactivate(context.Background(), "65a000000000000000000001"); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}
	if len(pub.events) != 1 || pub.events[0].eventType != model.EventStationDeactivated {
		t.Errorf("expected deactivated event, got %+v", pub.events)
	}

	missing := newService(&mockStationRepository{
		deactivateFunc: func(context.Context, string) error { return stationserrors.ErrNotFound },
	}, pub)
	if err := missing.Deactivate(context.Background(), "65a000000000000000000002"); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
