package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	bookingserrors "courtside/internal/bookings/errors"
	"courtside/internal/bookings/repository"
	"courtside/internal/bookings/validator"
	"courtside/internal/events"
	paymentservice "courtside/internal/payments/service"
	promoservice "courtside/internal/promos/service"
	slotservice "courtside/internal/slots/service"
	"courtside/pkg/client"
	"courtside/pkg/config"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/model"
	"courtside/pkg/sanitizer"
)

// BookingService is the authoritative state machine. The slot ledger, promo
// engine and payment ledger are subordinate: every lifecycle decision is
// made here, through conditional status transitions that lose races safely.
type BookingService interface {
	Initiate(ctx context.Context, req *model.BookingRequest) (*model.BookingReceipt, error)
	Status(ctx context.Context, id, requesterID string) (*model.Booking, error)
	Cancel(ctx context.Context, id, requesterID string) (*model.Booking, error)
	CheckIn(ctx context.Context, id, code, requesterID string) (*model.Booking, error)
	HandleSettlement(ctx context.Context, paymentID, outcome, reason string) error
	Availability(ctx context.Context, resourceID, date string) (*model.DaySchedule, error)
	SweepExpired(ctx context.Context, now time.Time) (int, error)
	CompleteElapsed(ctx context.Context, now time.Time) (int, error)
}

// Catalog is the read-only pricing collaborator.
type Catalog interface {
	VenueRate(ctx context.Context, venueID, sport string) (int64, error)
	CoachProfile(ctx context.Context, coachID string) (*client.CoachProfile, error)
}

// EventPublisher emits lifecycle events; publishing never fails the caller.
type EventPublisher interface {
	Publish(ctx context.Context, event, bookingID string, data any)
}

// Settlement outcomes accepted from the payment collaborator.
const (
	OutcomePaid     = "PAID"
	OutcomeFailed   = "FAILED"
	OutcomeRefunded = "REFUNDED"
)

type bookingService struct {
	repo      repository.BookingRepository
	slots     slotservice.SlotService
	promos    promoservice.PromoService
	payments  paymentservice.PaymentService
	catalog   Catalog
	publisher EventPublisher
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	slots slotservice.SlotService,
	promos promoservice.PromoService,
	payments paymentservice.PaymentService,
	catalog Catalog,
	publisher EventPublisher,
	v *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		slots:     slots,
		promos:    promos,
		payments:  payments,
		catalog:   catalog,
		publisher: publisher,
		validator: v,
		cfg:       cfg,
	}
}

// Initiate runs the creation sequence: validate, price, check the promo,
// hold the slots, open the payment ledger, persist. Any failure after a hold
// is acquired releases it before returning; no partial state survives an
// aborted creation.
func (s *bookingService) Initiate(ctx context.Context, req *model.BookingRequest) (*model.BookingReceipt, error) {
	req.Sport = sanitizer.SanitizeSport(req.Sport)
	req.PlayerID = sanitizer.SanitizeID(req.PlayerID)
	req.VenueID = sanitizer.SanitizeID(req.VenueID)
	req.CoachID = sanitizer.SanitizeID(req.CoachID)

	if err := s.validator.Validate(req); err != nil {
		return nil, apperrors.Validation("Booking validation failed", map[string]any{
			"validation_errors": err.Error(),
		})
	}

	start, end, err := resolveSchedule(req.Date, req.Start, req.End)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid date or time")
	}

	now := time.Now().UTC()
	if err := s.validator.ValidateSchedule(start, now); err != nil {
		return nil, apperrors.Validation("Booking validation failed", map[string]any{
			"validation_errors": err.Error(),
		})
	}

	venueShare, coachShare, err := s.price(ctx, req, start, end)
	if err != nil {
		return nil, err
	}
	gross := venueShare + coachShare

	var discount int64
	var scope model.PromoApplicability
	if req.PromoCode != "" {
		discount, scope, err = s.promos.Validate(ctx, req.PromoCode, req.PlayerID, gross, req.CoachID != "", now)
		if err != nil {
			return nil, err
		}
	}

	bookingID := primitive.NewObjectID().Hex()

	venueToken, coachToken, err := s.hold(ctx, req, bookingID, start, end)
	if err != nil {
		return nil, err
	}

	venueNet, coachNet := s.payments.Apportion(venueShare, coachShare, discount, scope)
	records := s.payments.OpenRecords(req.VenueID, req.CoachID, venueNet, coachNet)

	expiresAt := now.Add(s.cfg.HoldWindow)
	booking := &model.Booking{
		ID:             bookingID,
		PlayerID:       req.PlayerID,
		VenueID:        req.VenueID,
		CoachID:        req.CoachID,
		DependentID:    req.DependentID,
		Sport:          req.Sport,
		Date:           req.Date,
		StartTime:      start,
		EndTime:        end,
		Status:         model.BookingPendingPayment,
		HoldExpiresAt:  &expiresAt,
		TotalAmount:    venueNet + coachNet,
		DiscountAmount: discount,
		PromoCode:      sanitizer.SanitizePromoCode(req.PromoCode),
		VenueHoldToken: venueToken,
		CoachHoldToken: coachToken,
		Payments:       records,
	}

	if err := s.repo.Insert(ctx, booking); err != nil {
		s.releaseHolds(ctx, booking)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking initiated",
		"booking_id", bookingID,
		"player_id", req.PlayerID,
		"venue_id", req.VenueID,
		"coach_id", req.CoachID,
		"total_amount", booking.TotalAmount,
	)

	instructions := make([]model.PaymentInstruction, 0, len(records))
	for _, rec := range records {
		instructions = append(instructions, model.PaymentInstruction{
			PaymentID: rec.ID,
			PayeeType: rec.PayeeType,
			Amount:    rec.Amount,
		})
	}

	return &model.BookingReceipt{
		BookingID:           bookingID,
		TotalAmount:         booking.TotalAmount,
		DiscountAmount:      discount,
		HoldExpiresAt:       expiresAt,
		PaymentInstructions: instructions,
	}, nil
}

func (s *bookingService) price(ctx context.Context, req *model.BookingRequest, start, end time.Time) (int64, int64, error) {
	venueRate, err := s.catalog.VenueRate(ctx, req.VenueID, req.Sport)
	if err != nil {
		return 0, 0, err
	}

	minutes := int64(end.Sub(start).Minutes())
	venueShare := venueRate * minutes / 60

	var coachShare int64
	if req.CoachID != "" {
		profile, err := s.catalog.CoachProfile(ctx, req.CoachID)
		if err != nil {
			return 0, 0, err
		}
		if profile.HomeVenueID == "" {
			return 0, 0, apperrors.InvalidInput(fmt.Sprintf(
				"coach %s has no associated venue and cannot be booked", req.CoachID))
		}
		coachShare = profile.HourlyRate * minutes / 60
	}

	return venueShare, coachShare, nil
}

func (s *bookingService) hold(ctx context.Context, req *model.BookingRequest, bookingID string, start, end time.Time) (string, string, error) {
	if req.CoachID != "" {
		return s.slots.HoldPair(ctx, req.VenueID, req.CoachID, req.Date, start, end, s.cfg.HoldWindow, bookingID)
	}

	venueToken, err := s.slots.TryHold(ctx, req.VenueID, req.Date, start, end, s.cfg.HoldWindow, bookingID)
	return venueToken, "", err
}

func (s *bookingService) Status(ctx context.Context, id, requesterID string) (*model.Booking, error) {
	booking, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// The check-in code is only for the booking's own player.
	if booking.PlayerID != requesterID {
		redacted := *booking
		redacted.CheckInCode = ""
		return &redacted, nil
	}
	return booking, nil
}

// Cancel is the explicit player cancel. Allowed from PENDING_PAYMENT at any
// time and from CONFIRMED strictly before the start time. Money already
// collected is queued for refund; the records stay PAID until the gateway
// confirms the refund through the settlement callback.
func (s *bookingService) Cancel(ctx context.Context, id, requesterID string) (*model.Booking, error) {
	booking, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.PlayerID != requesterID {
		return nil, apperrors.Forbidden("only the booking's player may cancel it")
	}

	switch booking.Status {
	case model.BookingPendingPayment:
	case model.BookingConfirmed:
		if !time.Now().UTC().Before(booking.StartTime) {
			return nil, apperrors.InvalidState("booking cannot be cancelled at or after its start time")
		}
	default:
		return nil, apperrors.InvalidState(fmt.Sprintf(
			"booking in status %s cannot be cancelled", booking.Status))
	}

	cancelled, err := s.repo.Cancel(ctx, id, []model.BookingStatus{
		model.BookingPendingPayment,
		model.BookingConfirmed,
	})
	if err != nil {
		if errors.Is(err, bookingserrors.ErrStateMismatch) {
			return nil, apperrors.InvalidState("booking changed state while cancelling, please retry")
		}
		return nil, apperrors.Internal("Failed to cancel booking", err)
	}

	s.releaseHolds(ctx, cancelled)
	s.queueRefunds(ctx, cancelled)
	s.publisher.Publish(ctx, events.BookingCancelled, cancelled.ID, cancelled)

	s.cfg.Log.Info("Booking cancelled", "booking_id", id, "player_id", requesterID)
	return cancelled, nil
}

// CheckIn redeems the code at the venue, moving CONFIRMED to IN_PROGRESS.
func (s *bookingService) CheckIn(ctx context.Context, id, code, requesterID string) (*model.Booking, error) {
	booking, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.PlayerID != requesterID {
		return nil, apperrors.Forbidden("only the booking's player may check in")
	}
	if booking.Status != model.BookingConfirmed {
		return nil, apperrors.InvalidState(fmt.Sprintf(
			"booking in status %s cannot be checked in", booking.Status))
	}
	if booking.CheckInCode != code {
		return nil, apperrors.InvalidInput("invalid check-in code")
	}
	if time.Now().UTC().Before(booking.StartTime) {
		return nil, apperrors.InvalidState("check-in opens at the booking start time")
	}

	started, err := s.repo.Start(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrStateMismatch) {
			return nil, apperrors.InvalidState("booking changed state while checking in, please retry")
		}
		return nil, apperrors.Internal("Failed to check in booking", err)
	}

	s.cfg.Log.Info("Booking checked in", "booking_id", id)
	return started, nil
}

// HandleSettlement applies one payment outcome from the collaborator's
// callback. PAID may complete the ledger and confirm the booking; FAILED is
// terminal for its record only; REFUNDED closes out a queued refund.
func (s *bookingService) HandleSettlement(ctx context.Context, paymentID, outcome, reason string) error {
	switch outcome {
	case OutcomePaid:
		return s.settlePaid(ctx, paymentID)
	case OutcomeFailed:
		_, _, err := s.payments.MarkFailed(ctx, paymentID, reason)
		return err
	case OutcomeRefunded:
		_, _, err := s.payments.MarkRefunded(ctx, paymentID)
		return err
	default:
		return apperrors.InvalidInput(fmt.Sprintf("unknown settlement outcome: %s", outcome))
	}
}

func (s *bookingService) settlePaid(ctx context.Context, paymentID string) error {
	booking, changed, err := s.payments.MarkPaid(ctx, paymentID)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	if booking.Status == model.BookingCancelled {
		// Settlement arrived after the sweep or an explicit cancel; the
		// money belongs to a dead booking and goes back.
		s.queueRefund(ctx, booking, paymentID)
		return nil
	}

	if booking.Status != model.BookingPendingPayment || !booking.AllPaymentsPaid() {
		// Partial payment: the booking stays PENDING_PAYMENT and the payer
		// keeps the rest of the hold window to settle the other leg.
		return nil
	}

	confirmed, err := s.repo.Confirm(ctx, booking.ID, generateCheckInCode())
	if err != nil {
		if errors.Is(err, bookingserrors.ErrStateMismatch) {
			// The sweep won the race. The money just collected belongs to a
			// cancelled booking, so send it back.
			s.cfg.Log.Warn("Payment settled after booking left PENDING_PAYMENT",
				"booking_id", booking.ID,
				"payment_id", paymentID,
			)
			s.queueRefund(ctx, booking, paymentID)
			return nil
		}
		return apperrors.Internal("Failed to confirm booking", err)
	}

	for _, token := range confirmed.HoldTokens() {
		if commitErr := s.slots.Commit(ctx, token); commitErr != nil {
			s.cfg.Log.Error("Failed to commit slot hold for confirmed booking",
				"booking_id", confirmed.ID,
				"token", token,
				"error", commitErr,
			)
		}
	}

	if confirmed.PromoCode != "" {
		if redeemErr := s.promos.Redeem(ctx, confirmed.PromoCode, confirmed.PlayerID, confirmed.ID, confirmed.DiscountAmount); redeemErr != nil {
			s.cfg.Log.Error("Failed to redeem promo code for confirmed booking",
				"booking_id", confirmed.ID,
				"promo_code", confirmed.PromoCode,
				"error", redeemErr,
			)
		}
	}

	s.publisher.Publish(ctx, events.BookingConfirmed, confirmed.ID, confirmed)
	s.cfg.Log.Info("Booking confirmed", "booking_id", confirmed.ID)
	return nil
}

func (s *bookingService) Availability(ctx context.Context, resourceID, date string) (*model.DaySchedule, error) {
	return s.slots.DaySchedule(ctx, sanitizer.SanitizeID(resourceID), date)
}

// SweepExpired cancels every PENDING_PAYMENT booking whose hold window has
// passed. The conditional cancel makes it safe against a concurrent
// confirmation: whichever transition lands first wins and the other is a
// no-op.
func (s *bookingService) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.repo.FindExpiredPending(ctx, now)
	if err != nil {
		return 0, apperrors.Internal("Failed to find expired bookings", err)
	}

	swept := 0
	for _, b := range expired {
		cancelled, err := s.repo.Cancel(ctx, b.ID, []model.BookingStatus{model.BookingPendingPayment})
		if err != nil {
			if errors.Is(err, bookingserrors.ErrStateMismatch) {
				continue
			}
			s.cfg.Log.Error("Failed to expire booking", "booking_id", b.ID, "error", err)
			continue
		}

		s.releaseHolds(ctx, cancelled)
		s.queueRefunds(ctx, cancelled)
		s.publisher.Publish(ctx, events.BookingCancelled, cancelled.ID, cancelled)
		swept++
	}

	if swept > 0 {
		s.cfg.Log.Info("Expired bookings cancelled", "count", swept)
	}
	return swept, nil
}

// CompleteElapsed closes IN_PROGRESS bookings whose end time has passed.
func (s *bookingService) CompleteElapsed(ctx context.Context, now time.Time) (int, error) {
	elapsed, err := s.repo.FindElapsedInProgress(ctx, now)
	if err != nil {
		return 0, apperrors.Internal("Failed to find elapsed bookings", err)
	}

	completed := 0
	for _, b := range elapsed {
		done, err := s.repo.Complete(ctx, b.ID)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrStateMismatch) {
				continue
			}
			s.cfg.Log.Error("Failed to complete booking", "booking_id", b.ID, "error", err)
			continue
		}
		s.publisher.Publish(ctx, events.BookingCompleted, done.ID, done)
		completed++
	}

	return completed, nil
}

func (s *bookingService) findByID(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, sanitizer.SanitizeID(id))
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		return nil, apperrors.Internal("Failed to get booking", err)
	}
	return booking, nil
}

func (s *bookingService) releaseHolds(ctx context.Context, booking *model.Booking) {
	for _, token := range booking.HoldTokens() {
		if token == "" {
			continue
		}
		if err := s.slots.Release(ctx, token); err != nil {
			s.cfg.Log.Error("Failed to release slot hold",
				"booking_id", booking.ID,
				"token", token,
				"error", err,
			)
		}
	}
}

func (s *bookingService) queueRefunds(ctx context.Context, booking *model.Booking) {
	for _, rec := range booking.Payments {
		if rec.Status == model.PaymentPaid {
			s.queueRefund(ctx, booking, rec.ID)
		}
	}
}

func (s *bookingService) queueRefund(ctx context.Context, booking *model.Booking, paymentID string) {
	for _, rec := range booking.Payments {
		if rec.ID != paymentID {
			continue
		}
		s.publisher.Publish(ctx, events.RefundRequested, booking.ID, events.RefundRequest{
			BookingID: booking.ID,
			PaymentID: rec.ID,
			PayeeType: string(rec.PayeeType),
			Amount:    rec.Amount,
		})
		return
	}
}

func resolveSchedule(date, start, end string) (time.Time, time.Time, error) {
	startAt, err := time.Parse("2006-01-02 15:04", date+" "+start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endAt, err := time.Parse("2006-01-02 15:04", date+" "+end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return startAt, endAt, nil
}

// generateCheckInCode returns a short opaque token presented at the venue.
func generateCheckInCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}
