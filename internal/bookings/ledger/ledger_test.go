package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"evcharge/pkg/model"
)

var base = time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)

func slot(startMin, endMin int) model.ChargingSlot {
	return model.ChargingSlot{
		StartTime: base.Add(time.Duration(startMin) * time.Minute),
		EndTime:   base.Add(time.Duration(endMin) * time.Minute),
	}
}

func newLedger() *Ledger {
	l := New()
	l.now = func() time.Time { return base.Add(-time.Hour) }
	return l
}

func TestReserve(t *testing.T) {
	ctx := context.Background()
	l := newLedger()

	if err := l.Reserve(ctx, "A", slot(0, 30), "b1"); err != nil {
		t.Fatalf("first reservation failed: %v", err)
	}

	tests := []struct {
		name    string
		station string
		slot    model.ChargingSlot
		wantErr error
	}{
		{"overlapping start", "A", slot(15, 45), ErrConflict},
		{"contained", "A", slot(5, 10), ErrConflict},
		{"adjacent after", "A", slot(30, 60), nil},
		{"adjacent before", "A", slot(-30, 0), nil},
		{"other station", "B", slot(0, 30), nil},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := l.Reserve(ctx, tt.station, tt.slot, fmt.Sprintf("t%d", i))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Reserve() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReserve_SameBookingIsIdempotent(t *testing.T) {
	ctx := context.Background()
	l := newLedger()

	if err := l.Reserve(ctx, "A", slot(0, 30), "b1"); err != nil {
		t.Fatal(err)
	}
	if err := l.Reserve(ctx, "A", slot(0, 30), "b1"); err != nil {
		t.Errorf("re-reserving the same booking should succeed, got %v", err)
	}
	if n := l.Count("A"); n != 1 {
		t.Errorf("expected 1 reservation, got %d", n)
	}
}

func TestReserve_ConcurrentOverlapsAdmitExactlyOne(t *testing.T) {
	l := newLedger()
	const n = 64

	var wg sync.WaitGroup
	var successes, conflicts atomic.Int32
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			err := l.Reserve(context.Background(), "A", slot(i%10, 30+i%10), fmt.Sprintf("b%d", i))
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, ErrConflict):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	if successes.Load() != 1 {
		t.Errorf("expected exactly one success, got %d", successes.Load())
	}
	if conflicts.Load() != n-1 {
		t.Errorf("expected %d conflicts, got %d", n-1, conflicts.Load())
	}
}

func TestRelease(t *testing.T) {
	ctx := context.Background()
	l := newLedger()

	if err := l.Reserve(ctx, "A", slot(0, 30), "b1"); err != nil {
		t.Fatal(err)
	}
	if !l.Release("A", "b1") {
		t.Error("expected release to report an existing reservation")
	}
	if l.Release("A", "b1") {
		t.Error("second release should report nothing released")
	}
	if err := l.Reserve(ctx, "A", slot(0, 30), "b2"); err != nil {
		t.Errorf("slot should be free after release, got %v", err)
	}
}

func TestIsFree(t *testing.T) {
	ctx := context.Background()
	l := newLedger()
	_ = l.Reserve(ctx, "A", slot(0, 30), "b1")

	free, err := l.IsFree(ctx, "A", slot(10, 20))
	if err != nil || free {
		t.Errorf("IsFree(overlap) = %v, %v; want false, nil", free, err)
	}
	free, err = l.IsFree(ctx, "A", slot(30, 40))
	if err != nil || !free {
		t.Errorf("IsFree(adjacent) = %v, %v; want true, nil", free, err)
	}
}

func TestReserve_HonoursDeadlineWhileStationBusy(t *testing.T) {
	l := newLedger()
	s := l.station("A")
	s.sem <- struct{}{}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Reserve(ctx, "A", slot(0, 30), "b1")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}

	// Other stations stay available.
	if err := l.Reserve(context.Background(), "B", slot(0, 30), "b2"); err != nil {
		t.Errorf("independent station blocked: %v", err)
	}
	s.release()
}

func TestLoadAndPrune(t *testing.T) {
	l := newLedger()
	l.Load([]Reservation{
		{StationID: "A", BookingID: "old", Slot: slot(-120, -90)},
		{StationID: "A", BookingID: "live", Slot: slot(0, 30)},
	})
	if n := l.Count("A"); n != 2 {
		t.Fatalf("expected 2 loaded reservations, got %d", n)
	}

	if err := l.Reserve(context.Background(), "A", slot(10, 20), "new"); !errors.Is(err, ErrConflict) {
		t.Errorf("loaded reservation should conflict, got %v", err)
	}
	if n := l.Count("A"); n != 1 {
		t.Errorf("ended reservation should be pruned on reserve, got %d", n)
	}

	if err := l.Reserve(context.Background(), "A", slot(60, 90), "later"); err != nil {
		t.Fatal(err)
	}
	if n := l.Count("A"); n != 2 {
		t.Errorf("expected 2 live reservations, got %d", n)
	}
}
