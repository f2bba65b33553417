package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	slotserrors "courtside/internal/slots/errors"
	"courtside/pkg/config"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/logger"
	"courtside/pkg/model"
)

type mockSlotHoldRepository struct {
	InsertFunc             func(ctx context.Context, hold *model.SlotHold) error
	FindByTokenFunc        func(ctx context.Context, token string) (*model.SlotHold, error)
	FindByResourceDateFunc func(ctx context.Context, resourceID, date string) ([]*model.SlotHold, error)
	CommitFunc             func(ctx context.Context, token string) error
	DeleteFunc             func(ctx context.Context, token string) error
	DeleteExpiredFunc      func(ctx context.Context, now time.Time) (int64, error)
}

func (m *mockSlotHoldRepository) Insert(ctx context.Context, hold *model.SlotHold) error {
	return m.InsertFunc(ctx, hold)
}

func (m *mockSlotHoldRepository) FindByToken(ctx context.Context, token string) (*model.SlotHold, error) {
	return m.FindByTokenFunc(ctx, token)
}

func (m *mockSlotHoldRepository) FindByResourceDate(ctx context.Context, resourceID, date string) ([]*model.SlotHold, error) {
	return m.FindByResourceDateFunc(ctx, resourceID, date)
}

func (m *mockSlotHoldRepository) Commit(ctx context.Context, token string) error {
	return m.CommitFunc(ctx, token)
}

func (m *mockSlotHoldRepository) Delete(ctx context.Context, token string) error {
	return m.DeleteFunc(ctx, token)
}

func (m *mockSlotHoldRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return m.DeleteExpiredFunc(ctx, now)
}

type mockSlotLockRepository struct {
	CreateFunc func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error)
	DeleteFunc func(ctx context.Context, lockID string) error
}

func (m *mockSlotLockRepository) Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	return m.CreateFunc(ctx, lock)
}

func (m *mockSlotLockRepository) Delete(ctx context.Context, lockID string) error {
	return m.DeleteFunc(ctx, lockID)
}

func testConfig() *config.Config {
	return &config.Config{
		Log:         logger.New(logger.Config{Level: logger.ERROR}),
		DayStart:    "06:00",
		DayEnd:      "23:00",
		SlotLockTTL: 10 * time.Second,
	}
}

func openLockRepo() *mockSlotLockRepository {
	return &mockSlotLockRepository{
		CreateFunc: func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
			return lock, nil
		},
		DeleteFunc: func(ctx context.Context, lockID string) error { return nil },
	}
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad test time %q: %v", value, err)
	}
	return parsed
}

func TestTryHold_Success(t *testing.T) {
	var inserted *model.SlotHold
	holdRepo := &mockSlotHoldRepository{
		FindByResourceDateFunc: func(ctx context.Context, resourceID, date string) ([]*model.SlotHold, error) {
			return nil, nil
		},
		InsertFunc: func(ctx context.Context, hold *model.SlotHold) error {
			inserted = hold
			return nil
		},
	}

	svc := NewSlotService(holdRepo, openLockRepo(), testConfig())

	start := mustTime(t, "2026-09-01T10:00:00Z")
	end := mustTime(t, "2026-09-01T11:00:00Z")

	token, err := svc.TryHold(context.Background(), "venue-1", "2026-09-01", start, end, 10*time.Minute, "bk-1")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if token == "" {
		t.Fatal("expected a hold token")
	}
	if inserted == nil {
		t.Fatal("expected hold to be inserted")
	}
	if inserted.State != model.SlotHeld {
		t.Errorf("expected state HELD, got %s", inserted.State)
	}
	if inserted.ExpiresAt == nil {
		t.Fatal("expected hold to carry an expiry")
	}
	if inserted.BookingID != "bk-1" {
		t.Errorf("expected booking id bk-1, got %s", inserted.BookingID)
	}
}

func TestTryHold_OverlapConflict(t *testing.T) {
	expiry := time.Now().UTC().Add(5 * time.Minute)

	tests := []struct {
		name          string
		existingStart string
		existingEnd   string
		wantConflict  bool
	}{
		{
			name:          "identical range",
			existingStart: "2026-09-01T10:00:00Z",
			existingEnd:   "2026-09-01T11:00:00Z",
			wantConflict:  true,
		},
		{
			name:          "partial overlap at end",
			existingStart: "2026-09-01T10:30:00Z",
			existingEnd:   "2026-09-01T11:30:00Z",
			wantConflict:  true,
		},
		{
			name:          "contained within",
			existingStart: "2026-09-01T09:00:00Z",
			existingEnd:   "2026-09-01T12:00:00Z",
			wantConflict:  true,
		},
		{
			name:          "back to back is free",
			existingStart: "2026-09-01T11:00:00Z",
			existingEnd:   "2026-09-01T12:00:00Z",
			wantConflict:  false,
		},
		{
			name:          "earlier back to back is free",
			existingStart: "2026-09-01T09:00:00Z",
			existingEnd:   "2026-09-01T10:00:00Z",
			wantConflict:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			holdRepo := &mockSlotHoldRepository{
				FindByResourceDateFunc: func(ctx context.Context, resourceID, date string) ([]*model.SlotHold, error) {
					return []*model.SlotHold{{
						Token:      "existing",
						ResourceID: resourceID,
						Date:       date,
						StartTime:  mustTime(t, tt.existingStart),
						EndTime:    mustTime(t, tt.existingEnd),
						State:      model.SlotHeld,
						ExpiresAt:  &expiry,
					}}, nil
				},
				InsertFunc: func(ctx context.Context, hold *model.SlotHold) error { return nil },
			}

			svc := NewSlotService(holdRepo, openLockRepo(), testConfig())

			start := mustTime(t, "2026-09-01T10:00:00Z")
			end := mustTime(t, "2026-09-01T11:00:00Z")

			_, err := svc.TryHold(context.Background(), "venue-1", "2026-09-01", start, end, 10*time.Minute, "bk-1")
			if tt.wantConflict {
				if !apperrors.IsCode(err, apperrors.CodeConflict) {
					t.Fatalf("expected conflict, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("expected success, got %v", err)
			}
		})
	}
}

// A HELD entry past its deadline still blocks until the sweeper deletes it.
// Anything else opens a double-booking window: the stale hold can still be
// committed when its booking's late payment settles, so the slot is not free
// until the entry is actually gone.
func TestTryHold_UnsweptExpiredHoldStillBlocks(t *testing.T) {
	ledger := newMemoryLedger()
	svc := NewSlotService(ledger.holdRepo(), ledger.lockRepo(), testConfig())

	expired := time.Now().UTC().Add(-1 * time.Minute)
	ledger.seed(&model.SlotHold{
		Token:      "stale",
		ResourceID: "venue-1",
		Date:       "2026-09-01",
		StartTime:  mustTime(t, "2026-09-01T10:00:00Z"),
		EndTime:    mustTime(t, "2026-09-01T11:00:00Z"),
		State:      model.SlotHeld,
		BookingID:  "bk-1",
		ExpiresAt:  &expired,
	})

	start := mustTime(t, "2026-09-01T10:00:00Z")
	end := mustTime(t, "2026-09-01T11:00:00Z")

	_, err := svc.TryHold(context.Background(), "venue-1", "2026-09-01", start, end, 10*time.Minute, "bk-2")
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected conflict against unswept expired hold, got %v", err)
	}

	removed, err := svc.Sweep(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected sweep to remove 1 hold, got %d", removed)
	}

	if _, err := svc.TryHold(context.Background(), "venue-1", "2026-09-01", start, end, 10*time.Minute, "bk-2"); err != nil {
		t.Fatalf("expected slot to be free after sweep, got %v", err)
	}
}

// The flip side of the same model: a stale HELD entry is committable right
// up until the sweeper deletes it, and once committed it is permanent.
func TestCommit_AfterDeadlineBeforeSweep(t *testing.T) {
	ledger := newMemoryLedger()
	svc := NewSlotService(ledger.holdRepo(), ledger.lockRepo(), testConfig())

	expired := time.Now().UTC().Add(-1 * time.Minute)
	ledger.seed(&model.SlotHold{
		Token:      "stale",
		ResourceID: "venue-1",
		Date:       "2026-09-01",
		StartTime:  mustTime(t, "2026-09-01T10:00:00Z"),
		EndTime:    mustTime(t, "2026-09-01T11:00:00Z"),
		State:      model.SlotHeld,
		BookingID:  "bk-1",
		ExpiresAt:  &expired,
	})

	if err := svc.Commit(context.Background(), "stale"); err != nil {
		t.Fatalf("expected commit of unswept hold to succeed, got %v", err)
	}

	if removed, err := svc.Sweep(context.Background(), time.Now().UTC()); err != nil || removed != 0 {
		t.Fatalf("expected sweep to leave the committed hold, got removed=%d err=%v", removed, err)
	}

	start := mustTime(t, "2026-09-01T10:00:00Z")
	end := mustTime(t, "2026-09-01T11:00:00Z")
	_, err := svc.TryHold(context.Background(), "venue-1", "2026-09-01", start, end, 10*time.Minute, "bk-2")
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected conflict against committed hold, got %v", err)
	}
}

func TestTryHold_CommittedHoldNeverExpires(t *testing.T) {
	past := time.Now().UTC().Add(-1 * time.Minute)
	holdRepo := &mockSlotHoldRepository{
		FindByResourceDateFunc: func(ctx context.Context, resourceID, date string) ([]*model.SlotHold, error) {
			return []*model.SlotHold{{
				Token:     "committed",
				StartTime: mustTime(t, "2026-09-01T10:00:00Z"),
				EndTime:   mustTime(t, "2026-09-01T11:00:00Z"),
				State:     model.SlotCommitted,
				ExpiresAt: &past,
			}}, nil
		},
		InsertFunc: func(ctx context.Context, hold *model.SlotHold) error { return nil },
	}

	svc := NewSlotService(holdRepo, openLockRepo(), testConfig())

	start := mustTime(t, "2026-09-01T10:00:00Z")
	end := mustTime(t, "2026-09-01T11:00:00Z")

	_, err := svc.TryHold(context.Background(), "venue-1", "2026-09-01", start, end, 10*time.Minute, "bk-1")
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected conflict against committed hold, got %v", err)
	}
}

func TestTryHold_InvalidRange(t *testing.T) {
	svc := NewSlotService(&mockSlotHoldRepository{}, openLockRepo(), testConfig())

	start := mustTime(t, "2026-09-01T11:00:00Z")
	end := mustTime(t, "2026-09-01T10:00:00Z")

	_, err := svc.TryHold(context.Background(), "venue-1", "2026-09-01", start, end, 10*time.Minute, "bk-1")
	if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestTryHold_LockHeldMapsToConflict(t *testing.T) {
	lockRepo := &mockSlotLockRepository{
		CreateFunc: func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
			return nil, slotserrors.ErrLockHeld
		},
		DeleteFunc: func(ctx context.Context, lockID string) error { return nil },
	}

	svc := NewSlotService(&mockSlotHoldRepository{}, lockRepo, testConfig())

	start := mustTime(t, "2026-09-01T10:00:00Z")
	end := mustTime(t, "2026-09-01T11:00:00Z")

	_, err := svc.TryHold(context.Background(), "venue-1", "2026-09-01", start, end, 10*time.Minute, "bk-1")
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected conflict when lock is held, got %v", err)
	}
}

func TestTryHold_ReleasesLockAfterConflict(t *testing.T) {
	var deletedLock string
	lockRepo := openLockRepo()
	lockRepo.DeleteFunc = func(ctx context.Context, lockID string) error {
		deletedLock = lockID
		return nil
	}

	expiry := time.Now().UTC().Add(5 * time.Minute)
	holdRepo := &mockSlotHoldRepository{
		FindByResourceDateFunc: func(ctx context.Context, resourceID, date string) ([]*model.SlotHold, error) {
			return []*model.SlotHold{{
				Token:     "existing",
				StartTime: mustTime(t, "2026-09-01T10:00:00Z"),
				EndTime:   mustTime(t, "2026-09-01T11:00:00Z"),
				State:     model.SlotHeld,
				ExpiresAt: &expiry,
			}}, nil
		},
	}

	svc := NewSlotService(holdRepo, lockRepo, testConfig())

	start := mustTime(t, "2026-09-01T10:00:00Z")
	end := mustTime(t, "2026-09-01T11:00:00Z")

	_, _ = svc.TryHold(context.Background(), "venue-1", "2026-09-01", start, end, 10*time.Minute, "bk-1")
	if !strings.Contains(deletedLock, "venue-1") {
		t.Errorf("expected venue-1 day lock to be released, got %q", deletedLock)
	}
}

// An in-memory ledger backed by the same lock-then-check-then-insert protocol
// the Mongo repositories implement. Used to exercise concurrent TryHold calls.
type memoryLedger struct {
	mu    sync.Mutex
	holds map[string]*model.SlotHold
	locks map[string]bool
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{
		holds: make(map[string]*model.SlotHold),
		locks: make(map[string]bool),
	}
}

func (l *memoryLedger) holdRepo() *mockSlotHoldRepository {
	return &mockSlotHoldRepository{
		InsertFunc: func(ctx context.Context, hold *model.SlotHold) error {
			l.mu.Lock()
			defer l.mu.Unlock()
			l.holds[hold.Token] = hold
			return nil
		},
		FindByResourceDateFunc: func(ctx context.Context, resourceID, date string) ([]*model.SlotHold, error) {
			l.mu.Lock()
			defer l.mu.Unlock()
			var out []*model.SlotHold
			for _, h := range l.holds {
				if h.ResourceID == resourceID && h.Date == date {
					out = append(out, h)
				}
			}
			return out, nil
		},
		CommitFunc: func(ctx context.Context, token string) error {
			l.mu.Lock()
			defer l.mu.Unlock()
			h, ok := l.holds[token]
			if !ok || h.State != model.SlotHeld {
				return slotserrors.ErrNotFound
			}
			h.State = model.SlotCommitted
			h.ExpiresAt = nil
			return nil
		},
		DeleteFunc: func(ctx context.Context, token string) error {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.holds, token)
			return nil
		},
		DeleteExpiredFunc: func(ctx context.Context, now time.Time) (int64, error) {
			l.mu.Lock()
			defer l.mu.Unlock()
			var removed int64
			for token, h := range l.holds {
				if h.State == model.SlotHeld && h.ExpiresAt != nil && !h.ExpiresAt.After(now) {
					delete(l.holds, token)
					removed++
				}
			}
			return removed, nil
		},
	}
}

func (l *memoryLedger) seed(hold *model.SlotHold) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.holds[hold.Token] = hold
}

func (l *memoryLedger) lockRepo() *mockSlotLockRepository {
	return &mockSlotLockRepository{
		CreateFunc: func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
			l.mu.Lock()
			defer l.mu.Unlock()
			if l.locks[lock.ID] {
				return nil, slotserrors.ErrLockHeld
			}
			l.locks[lock.ID] = true
			return lock, nil
		},
		DeleteFunc: func(ctx context.Context, lockID string) error {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.locks, lockID)
			return nil
		},
	}
}

func TestTryHold_ConcurrentRequestsOneWinner(t *testing.T) {
	ledger := newMemoryLedger()
	svc := NewSlotService(ledger.holdRepo(), ledger.lockRepo(), testConfig())

	start := mustTime(t, "2026-09-01T10:00:00Z")
	end := mustTime(t, "2026-09-01T11:00:00Z")

	const attempts = 20
	results := make(chan error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.TryHold(context.Background(), "venue-1", "2026-09-01", start, end, 10*time.Minute, "bk-1")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case apperrors.IsCode(err, apperrors.CodeConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if wins != 1 {
		t.Errorf("expected exactly one winner, got %d (conflicts: %d)", wins, conflicts)
	}
	if wins+conflicts != attempts {
		t.Errorf("expected %d total outcomes, got %d", attempts, wins+conflicts)
	}
}

func TestHoldPair_ReleasesVenueOnCoachConflict(t *testing.T) {
	expiry := time.Now().UTC().Add(5 * time.Minute)
	var released []string

	holdRepo := &mockSlotHoldRepository{
		FindByResourceDateFunc: func(ctx context.Context, resourceID, date string) ([]*model.SlotHold, error) {
			if resourceID == "coach-1" {
				return []*model.SlotHold{{
					Token:     "coach-busy",
					StartTime: mustTime(t, "2026-09-01T10:00:00Z"),
					EndTime:   mustTime(t, "2026-09-01T11:00:00Z"),
					State:     model.SlotHeld,
					ExpiresAt: &expiry,
				}}, nil
			}
			return nil, nil
		},
		InsertFunc: func(ctx context.Context, hold *model.SlotHold) error { return nil },
		DeleteFunc: func(ctx context.Context, token string) error {
			released = append(released, token)
			return nil
		},
	}

	svc := NewSlotService(holdRepo, openLockRepo(), testConfig())

	start := mustTime(t, "2026-09-01T10:00:00Z")
	end := mustTime(t, "2026-09-01T11:00:00Z")

	_, _, err := svc.HoldPair(context.Background(), "venue-1", "coach-1", "2026-09-01", start, end, 10*time.Minute, "bk-1")
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(released) != 1 {
		t.Fatalf("expected the venue hold to be released, got %d releases", len(released))
	}
}

func TestHoldPair_Success(t *testing.T) {
	holdRepo := &mockSlotHoldRepository{
		FindByResourceDateFunc: func(ctx context.Context, resourceID, date string) ([]*model.SlotHold, error) {
			return nil, nil
		},
		InsertFunc: func(ctx context.Context, hold *model.SlotHold) error { return nil },
	}

	svc := NewSlotService(holdRepo, openLockRepo(), testConfig())

	start := mustTime(t, "2026-09-01T10:00:00Z")
	end := mustTime(t, "2026-09-01T11:00:00Z")

	venueToken, coachToken, err := svc.HoldPair(context.Background(), "venue-1", "coach-1", "2026-09-01", start, end, 10*time.Minute, "bk-1")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if venueToken == "" || coachToken == "" {
		t.Fatal("expected both tokens")
	}
	if venueToken == coachToken {
		t.Error("expected distinct tokens for venue and coach holds")
	}
}

func TestCommit_UnknownToken(t *testing.T) {
	holdRepo := &mockSlotHoldRepository{
		CommitFunc: func(ctx context.Context, token string) error {
			return slotserrors.ErrNotFound
		},
	}

	svc := NewSlotService(holdRepo, openLockRepo(), testConfig())

	err := svc.Commit(context.Background(), "missing")
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSweep_ReportsRemovedCount(t *testing.T) {
	holdRepo := &mockSlotHoldRepository{
		DeleteExpiredFunc: func(ctx context.Context, now time.Time) (int64, error) {
			return 3, nil
		},
	}

	svc := NewSlotService(holdRepo, openLockRepo(), testConfig())

	removed, err := svc.Sweep(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if removed != 3 {
		t.Errorf("expected 3 removed, got %d", removed)
	}
}

func TestDaySchedule_FreeGaps(t *testing.T) {
	expiry := time.Now().UTC().Add(5 * time.Minute)
	holdRepo := &mockSlotHoldRepository{
		FindByResourceDateFunc: func(ctx context.Context, resourceID, date string) ([]*model.SlotHold, error) {
			return []*model.SlotHold{
				{
					Token:     "a",
					StartTime: mustTime(t, "2026-09-01T10:00:00Z"),
					EndTime:   mustTime(t, "2026-09-01T11:00:00Z"),
					State:     model.SlotCommitted,
				},
				{
					Token:     "b",
					StartTime: mustTime(t, "2026-09-01T14:00:00Z"),
					EndTime:   mustTime(t, "2026-09-01T15:30:00Z"),
					State:     model.SlotHeld,
					ExpiresAt: &expiry,
				},
			}, nil
		},
	}

	svc := NewSlotService(holdRepo, openLockRepo(), testConfig())

	schedule, err := svc.DaySchedule(context.Background(), "venue-1", "2026-09-01")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if len(schedule.BookedSlots) != 2 {
		t.Fatalf("expected 2 booked slots, got %d", len(schedule.BookedSlots))
	}

	want := []model.Interval{
		{Start: mustTime(t, "2026-09-01T06:00:00Z"), End: mustTime(t, "2026-09-01T10:00:00Z")},
		{Start: mustTime(t, "2026-09-01T11:00:00Z"), End: mustTime(t, "2026-09-01T14:00:00Z")},
		{Start: mustTime(t, "2026-09-01T15:30:00Z"), End: mustTime(t, "2026-09-01T23:00:00Z")},
	}
	if len(schedule.AvailableSlots) != len(want) {
		t.Fatalf("expected %d free gaps, got %d: %+v", len(want), len(schedule.AvailableSlots), schedule.AvailableSlots)
	}
	for i, gap := range schedule.AvailableSlots {
		if !gap.Start.Equal(want[i].Start) || !gap.End.Equal(want[i].End) {
			t.Errorf("gap %d: expected %v-%v, got %v-%v", i, want[i].Start, want[i].End, gap.Start, gap.End)
		}
	}
}

func TestDaySchedule_FullyFreeDay(t *testing.T) {
	holdRepo := &mockSlotHoldRepository{
		FindByResourceDateFunc: func(ctx context.Context, resourceID, date string) ([]*model.SlotHold, error) {
			return nil, nil
		},
	}

	svc := NewSlotService(holdRepo, openLockRepo(), testConfig())

	schedule, err := svc.DaySchedule(context.Background(), "venue-1", "2026-09-01")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(schedule.AvailableSlots) != 1 {
		t.Fatalf("expected a single full-day gap, got %d", len(schedule.AvailableSlots))
	}
	if len(schedule.BookedSlots) != 0 {
		t.Errorf("expected no booked slots, got %d", len(schedule.BookedSlots))
	}
}

func TestDaySchedule_BadDate(t *testing.T) {
	svc := NewSlotService(&mockSlotHoldRepository{}, openLockRepo(), testConfig())

	_, err := svc.DaySchedule(context.Background(), "venue-1", "not-a-date")
	if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
