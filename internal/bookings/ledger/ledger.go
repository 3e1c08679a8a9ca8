package ledger

import (
	"context"
	"sync"
	"time"

	bookingserrors "evcharge/internal/bookings/errors"
	"evcharge/pkg/model"
)

var ErrConflict = bookingserrors.ErrSlotConflict

type Reservation struct {
	StationID string
	BookingID string
	Slot      model.ChargingSlot
}

// Ledger tracks reserved charging slots per station. Operations on one station
// are serialized; different stations never contend with each other.
type Ledger struct {
	mu       sync.Mutex
	stations map[string]*stationSlots
	now      func() time.Time
}

type stationSlots struct {
	// sem is a one-slot semaphore so waiting honours the caller's context.
	sem   chan struct{}
	slots map[string]model.ChargingSlot
}

func New() *Ledger {
	return &Ledger{
		stations: make(map[string]*stationSlots),
		now:      time.Now,
	}
}

func (l *Ledger) station(id string) *stationSlots {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.stations[id]
	if !ok {
		s = &stationSlots{
			sem:   make(chan struct{}, 1),
			slots: make(map[string]model.ChargingSlot),
		}
		l.stations[id] = s
	}
	return s
}

func (s *stationSlots) acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *stationSlots) release() {
	<-s.sem
}

func (s *stationSlots) overlapping(slot model.ChargingSlot, ignore string) bool {
	for bookingID, existing := range s.slots {
		if bookingID != ignore && existing.Overlaps(slot) {
			return true
		}
	}
	return false
}

// IsFree reports whether slot overlaps no reservation at the station.
func (l *Ledger) IsFree(ctx context.Context, stationID string, slot model.ChargingSlot) (bool, error) {
	s := l.station(stationID)
	if err := s.acquire(ctx); err != nil {
		return false, err
	}
	defer s.release()

	return !s.overlapping(slot, ""), nil
}

// Reserve records slot for bookingID unless it overlaps another reservation,
// in which case ErrConflict is returned. A context error is returned when the
// station could not be locked before ctx was done.
func (l *Ledger) Reserve(ctx context.Context, stationID string, slot model.ChargingSlot, bookingID string) error {
	s := l.station(stationID)
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	s.prune(l.now())
	if s.overlapping(slot, bookingID) {
		return ErrConflict
	}
	s.slots[bookingID] = slot
	return nil
}

// Release drops the reservation held by bookingID and reports whether one existed.
// It takes no context: a compensating release must succeed after a deadline.
func (l *Ledger) Release(stationID, bookingID string) bool {
	s := l.station(stationID)
	s.sem <- struct{}{}
	defer s.release()

	if _, ok := s.slots[bookingID]; !ok {
		return false
	}
	delete(s.slots, bookingID)
	return true
}

// Load inserts persisted reservations without overlap checks.
func (l *Ledger) Load(reservations []Reservation) {
	for _, r := range reservations {
		s := l.station(r.StationID)
		s.sem <- struct{}{}
		s.slots[r.BookingID] = r.Slot
		s.release()
	}
}

// Count returns the number of live reservations at a station.
func (l *Ledger) Count(stationID string) int {
	s := l.station(stationID)
	s.sem <- struct{}{}
	defer s.release()
	return len(s.slots)
}

func (s *stationSlots) prune(now time.Time) {
	for bookingID, slot := range s.slots {
		if !slot.EndTime.After(now) {
			delete(s.slots, bookingID)
		}
	}
}
