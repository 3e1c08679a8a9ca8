package stationsync

import (
	"context"
	"fmt"
	"time"

	"evcharge/internal/bookings/index"
	"evcharge/internal/bookings/ledger"
	"evcharge/pkg/kafka"
	"evcharge/pkg/logger"
	"evcharge/pkg/metrics"
	"evcharge/pkg/model"
)

type StationSource interface {
	FindActive(ctx context.Context) ([]*model.Station, error)
}

type ReservationSource interface {
	FindConfirmedEndingAfter(ctx context.Context, t time.Time) ([]*model.Booking, error)
}

// Syncer keeps the in-memory station index and slot ledger in step with the store.
type Syncer struct {
	stations     StationSource
	reservations ReservationSource
	index        *index.StationIndex
	ledger       *ledger.Ledger
	log          *logger.Logger
	now          func() time.Time
}

func New(stations StationSource, reservations ReservationSource, idx *index.StationIndex, l *ledger.Ledger, log *logger.Logger) *Syncer {
	return &Syncer{
		stations:     stations,
		reservations: reservations,
		index:        idx,
		ledger:       l,
		log:          log,
		now:          time.Now,
	}
}

// Bootstrap loads active stations and still-running confirmed bookings.
func (s *Syncer) Bootstrap(ctx context.Context) error {
	if err := s.RefreshStations(ctx); err != nil {
		return err
	}

	bookings, err := s.reservations.FindConfirmedEndingAfter(ctx, s.now())
	if err != nil {
		return fmt.Errorf("failed to load reservations: %w", err)
	}
	reservations := make([]ledger.Reservation, 0, len(bookings))
	for _, b := range bookings {
		reservations = append(reservations, ledger.Reservation{
			StationID: b.StationID,
			BookingID: b.ID,
			Slot:      b.ChargingSlot,
		})
	}
	s.ledger.Load(reservations)

	s.log.Info("Booking state restored", "stations", s.index.Len(), "reservations", len(reservations))
	return nil
}

func (s *Syncer) RefreshStations(ctx context.Context) error {
	stations, err := s.stations.FindActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to load stations: %w", err)
	}
	list := make([]model.Station, 0, len(stations))
	for _, st := range stations {
		list = append(list, *st)
	}
	s.index.Replace(list)
	metrics.SetIndexedStations(s.index.Len())
	return nil
}

// Run refreshes the station index every interval until ctx is done.
func (s *Syncer) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RefreshStations(ctx); err != nil && ctx.Err() == nil {
				s.log.Warn("Station refresh failed, keeping previous index", "error", err)
			}
		}
	}
}

// HandleStationEvent applies a station event from the broker to the index.
func (s *Syncer) HandleStationEvent(ctx context.Context, msg kafka.Message) error {
	var event model.StationEvent
	if err := msg.DecodeValue(&event); err != nil {
		return err
	}

	switch event.EventType {
	case model.EventStationUpserted:
		s.index.Upsert(event.Station)
	case model.EventStationDeactivated:
		s.index.Deactivate(event.Station.ID)
	default:
		s.log.Debug("Ignoring station event", "event_type", event.EventType, "event_id", msg.GetEventID())
		return nil
	}

	metrics.SetIndexedStations(s.index.Len())
	s.log.Info("Station index updated from event",
		"event_type", event.EventType,
		"station_id", event.Station.ID,
		"stations", s.index.Len(),
	)
	return nil
}
