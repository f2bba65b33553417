package sweeper

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"courtside/pkg/logger"
)

type mockBookingSweeps struct {
	expired   atomic.Int32
	completed atomic.Int32
}

func (m *mockBookingSweeps) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	m.expired.Add(1)
	return 0, nil
}

func (m *mockBookingSweeps) CompleteElapsed(ctx context.Context, now time.Time) (int, error) {
	m.completed.Add(1)
	return 0, nil
}

type mockSlotSweeps struct {
	swept atomic.Int32
}

func (m *mockSlotSweeps) Sweep(ctx context.Context, now time.Time) (int64, error) {
	m.swept.Add(1)
	return 0, nil
}

func TestRunOnce_SweepsAllLedgers(t *testing.T) {
	bookings := &mockBookingSweeps{}
	slots := &mockSlotSweeps{}

	s := New(bookings, slots, time.Minute, logger.New(logger.Config{Level: logger.ERROR}))
	s.RunOnce()

	if bookings.expired.Load() != 1 {
		t.Errorf("expected 1 expiry sweep, got %d", bookings.expired.Load())
	}
	if bookings.completed.Load() != 1 {
		t.Errorf("expected 1 completion sweep, got %d", bookings.completed.Load())
	}
	if slots.swept.Load() != 1 {
		t.Errorf("expected 1 slot sweep, got %d", slots.swept.Load())
	}
}

func TestStartStop(t *testing.T) {
	bookings := &mockBookingSweeps{}
	slots := &mockSlotSweeps{}

	s := New(bookings, slots, 10*time.Millisecond, logger.New(logger.Config{Level: logger.ERROR}))
	s.Start()

	deadline := time.After(2 * time.Second)
	for bookings.expired.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("sweeper never ticked")
		case <-time.After(5 * time.Millisecond):
		}
	}

	s.Stop()
	after := bookings.expired.Load()
	time.Sleep(30 * time.Millisecond)
	if bookings.expired.Load() != after {
		t.Error("sweeper kept ticking after Stop")
	}
}
