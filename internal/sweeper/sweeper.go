package sweeper

import (
	"context"
	"sync"
	"time"

	"courtside/pkg/logger"
)

// BookingSweeps is the slice of the booking service the sweeper drives.
type BookingSweeps interface {
	SweepExpired(ctx context.Context, now time.Time) (int, error)
	CompleteElapsed(ctx context.Context, now time.Time) (int, error)
}

// SlotSweeps removes expired holds left behind by aborted creations.
type SlotSweeps interface {
	Sweep(ctx context.Context, now time.Time) (int64, error)
}

// Sweeper is the engine's timer. It is the only writer that expires
// PENDING_PAYMENT bookings and the only one that closes out elapsed
// sessions; callers never cancel on timeout themselves.
type Sweeper struct {
	bookings BookingSweeps
	slots    SlotSweeps
	interval time.Duration
	log      *logger.Logger

	stop chan struct{}
	wg   sync.WaitGroup
}

func New(bookings BookingSweeps, slots SlotSweeps, interval time.Duration, log *logger.Logger) *Sweeper {
	return &Sweeper{
		bookings: bookings,
		slots:    slots,
		interval: interval,
		log:      log,
		stop:     make(chan struct{}),
	}
}

func (s *Sweeper) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.log.Info("Sweeper started", "interval", s.interval)
		for {
			select {
			case <-ticker.C:
				s.runOnce()
			case <-s.stop:
				s.log.Info("Sweeper stopped")
				return
			}
		}
	}()
}

func (s *Sweeper) Stop() {
	close(s.stop)
	s.wg.Wait()
}

// RunOnce executes a single sweep pass. Exposed so operators can trigger a
// pass out of band.
func (s *Sweeper) RunOnce() {
	s.runOnce()
}

func (s *Sweeper) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	now := time.Now().UTC()

	if _, err := s.bookings.SweepExpired(ctx, now); err != nil {
		s.log.Error("Expiry sweep failed", "error", err)
	}

	if _, err := s.bookings.CompleteElapsed(ctx, now); err != nil {
		s.log.Error("Completion sweep failed", "error", err)
	}

	if _, err := s.slots.Sweep(ctx, now); err != nil {
		s.log.Error("Slot hold sweep failed", "error", err)
	}
}
