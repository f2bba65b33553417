package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	slotserrors "courtside/internal/slots/errors"
	"courtside/internal/slots/repository"
	"courtside/pkg/config"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/model"
)

// SlotService is the slot ledger: the single authority on which time ranges
// of a resource's day are taken. A resource is a venue or a coach; the two
// are independent calendars even when a booking spans both.
type SlotService interface {
	TryHold(ctx context.Context, resourceID, date string, start, end time.Time, holdFor time.Duration, bookingID string) (string, error)
	HoldPair(ctx context.Context, venueID, coachID, date string, start, end time.Time, holdFor time.Duration, bookingID string) (string, string, error)
	Commit(ctx context.Context, token string) error
	Release(ctx context.Context, token string) error
	Sweep(ctx context.Context, now time.Time) (int64, error)
	DaySchedule(ctx context.Context, resourceID, date string) (*model.DaySchedule, error)
}

type slotService struct {
	repo     repository.SlotHoldRepository
	lockRepo repository.SlotLockRepository
	cfg      *config.Config
}

func NewSlotService(repo repository.SlotHoldRepository, lockRepo repository.SlotLockRepository, cfg *config.Config) SlotService {
	return &slotService{
		repo:     repo,
		lockRepo: lockRepo,
		cfg:      cfg,
	}
}

// TryHold claims [start, end) on one resource day. The advisory resource-day
// lock serializes the overlap check and the insert, so of two concurrent
// calls for overlapping ranges exactly one succeeds; the loser gets a
// conflict and leaves no state behind.
func (s *slotService) TryHold(ctx context.Context, resourceID, date string, start, end time.Time, holdFor time.Duration, bookingID string) (string, error) {
	if !end.After(start) {
		return "", apperrors.InvalidInput("end time must be after start time")
	}

	lockID, err := s.acquireDayLock(ctx, resourceID, date)
	if err != nil {
		return "", err
	}
	defer func() {
		if releaseErr := s.lockRepo.Delete(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	now := time.Now().UTC()
	existing, err := s.repo.FindByResourceDate(ctx, resourceID, date)
	if err != nil {
		return "", apperrors.Internal("Failed to check existing slot holds", err)
	}

	// Every entry on the ledger blocks, including HELD entries whose
	// deadline has passed but which the sweeper has not deleted yet.
	// Expiry is decided by deletion alone; treating the timestamp as
	// expiry here would free a slot whose hold can still be committed.
	requested := model.Interval{Start: start, End: end}
	for _, h := range existing {
		if requested.Overlaps(model.Interval{Start: h.StartTime, End: h.EndTime}) {
			return "", apperrors.Conflict(fmt.Sprintf(
				"Requested slot overlaps an existing booking (%s - %s)",
				h.StartTime.Format(time.RFC3339),
				h.EndTime.Format(time.RFC3339),
			))
		}
	}

	expiresAt := now.Add(holdFor)
	hold := &model.SlotHold{
		Token:      uuid.New().String(),
		ResourceID: resourceID,
		Date:       date,
		StartTime:  start,
		EndTime:    end,
		State:      model.SlotHeld,
		BookingID:  bookingID,
		ExpiresAt:  &expiresAt,
	}
	if err := s.repo.Insert(ctx, hold); err != nil {
		return "", apperrors.Internal("Failed to create slot hold", err)
	}

	s.cfg.Log.Debug("Slot held",
		"token", hold.Token,
		"resource_id", resourceID,
		"date", date,
		"booking_id", bookingID,
	)
	return hold.Token, nil
}

// HoldPair takes the venue hold, then the coach hold. The two calendars are
// independent ledgers, so this is not atomic across resources: if the coach
// hold fails, the venue hold is released before the error is returned.
func (s *slotService) HoldPair(ctx context.Context, venueID, coachID, date string, start, end time.Time, holdFor time.Duration, bookingID string) (string, string, error) {
	venueToken, err := s.TryHold(ctx, venueID, date, start, end, holdFor, bookingID)
	if err != nil {
		return "", "", err
	}

	coachToken, err := s.TryHold(ctx, coachID, date, start, end, holdFor, bookingID)
	if err != nil {
		if releaseErr := s.Release(ctx, venueToken); releaseErr != nil {
			s.cfg.Log.Error("Failed to release venue hold after coach hold conflict",
				"venue_token", venueToken,
				"booking_id", bookingID,
				"error", releaseErr,
			)
		}
		return "", "", err
	}

	return venueToken, coachToken, nil
}

func (s *slotService) Commit(ctx context.Context, token string) error {
	err := s.repo.Commit(ctx, token)
	if err != nil {
		if errors.Is(err, slotserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Slot hold", token)
		}
		return apperrors.Internal("Failed to commit slot hold", err)
	}
	return nil
}

func (s *slotService) Release(ctx context.Context, token string) error {
	if err := s.repo.Delete(ctx, token); err != nil {
		return apperrors.Internal("Failed to release slot hold", err)
	}
	return nil
}

// Sweep removes every HELD entry whose expiry has passed. Committed entries
// are untouched. The booking sweeper cancels the owning bookings first, so a
// swept hold never belongs to a live booking.
func (s *slotService) Sweep(ctx context.Context, now time.Time) (int64, error) {
	removed, err := s.repo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, apperrors.Internal("Failed to sweep expired slot holds", err)
	}
	if removed > 0 {
		s.cfg.Log.Info("Swept expired slot holds", "removed", removed)
	}
	return removed, nil
}

// DaySchedule projects one resource day as booked intervals plus the free
// gaps between them, bounded by the configured operating day.
func (s *slotService) DaySchedule(ctx context.Context, resourceID, date string) (*model.DaySchedule, error) {
	dayStart, err := combineDateClock(date, s.cfg.DayStart)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid date, must be YYYY-MM-DD")
	}
	dayEnd, _ := combineDateClock(date, s.cfg.DayEnd)

	holds, err := s.repo.FindByResourceDate(ctx, resourceID, date)
	if err != nil {
		return nil, apperrors.Internal("Failed to load day schedule", err)
	}

	booked := make([]model.Interval, 0, len(holds))
	for _, h := range holds {
		booked = append(booked, model.Interval{Start: h.StartTime, End: h.EndTime})
	}

	return &model.DaySchedule{
		ResourceID:     resourceID,
		Date:           date,
		BookedSlots:    booked,
		AvailableSlots: freeGaps(dayStart, dayEnd, booked),
	}, nil
}

// freeGaps assumes booked intervals are sorted by start time and disjoint,
// which the no-overlap invariant guarantees.
func freeGaps(dayStart, dayEnd time.Time, booked []model.Interval) []model.Interval {
	gaps := []model.Interval{}
	cursor := dayStart

	for _, b := range booked {
		if b.End.Before(dayStart) || !b.Start.Before(dayEnd) {
			continue
		}
		if b.Start.After(cursor) {
			gaps = append(gaps, model.Interval{Start: cursor, End: b.Start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}

	if cursor.Before(dayEnd) {
		gaps = append(gaps, model.Interval{Start: cursor, End: dayEnd})
	}

	return gaps
}

func combineDateClock(date, clock string) (time.Time, error) {
	return time.Parse("2006-01-02 15:04", date+" "+clock)
}

// acquireDayLock creates the advisory lock document for one resource day.
// Uniqueness of the _id gives mutual exclusion; the TTL index reaps locks
// left behind by crashed requests.
func (s *slotService) acquireDayLock(ctx context.Context, resourceID, date string) (string, error) {
	lockID := fmt.Sprintf("slot_lock_%s_%s", resourceID, date)

	lock := &model.SlotLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.SlotLockTTL),
	}

	if _, err := s.lockRepo.Create(ctx, lock); err != nil {
		if errors.Is(err, slotserrors.ErrLockHeld) {
			return "", apperrors.Conflict("This time slot is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}

	return lockID, nil
}
