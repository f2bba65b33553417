package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	paymentserrors "courtside/internal/payments/errors"
	"courtside/internal/payments/repository"
	"courtside/pkg/config"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/model"
)

// PaymentService owns the split-payment ledger embedded in each booking.
// Settlement updates are idempotent: replaying an outcome that already
// applied reports changed=false rather than an error.
type PaymentService interface {
	Apportion(venueShare, coachShare, discount int64, scope model.PromoApplicability) (int64, int64)
	OpenRecords(venueID, coachID string, venueNet, coachNet int64) []model.PaymentRecord
	MarkPaid(ctx context.Context, paymentID string) (*model.Booking, bool, error)
	MarkFailed(ctx context.Context, paymentID, reason string) (*model.Booking, bool, error)
	MarkRefunded(ctx context.Context, paymentID string) (*model.Booking, bool, error)
}

type paymentService struct {
	repo repository.PaymentRepository
	cfg  *config.Config
}

func NewPaymentService(repo repository.PaymentRepository, cfg *config.Config) PaymentService {
	return &paymentService{
		repo: repo,
		cfg:  cfg,
	}
}

// Apportion splits a booking-level discount across the payee shares. A
// whole-booking discount comes out of the venue's share first and any
// remainder out of the coach's; a payee-scoped discount only ever reduces
// that payee and is capped there. No share goes below zero.
func (s *paymentService) Apportion(venueShare, coachShare, discount int64, scope model.PromoApplicability) (int64, int64) {
	if discount <= 0 {
		return venueShare, coachShare
	}

	switch scope {
	case model.PromoApplyVenueOnly:
		return venueShare - min(discount, venueShare), coachShare
	case model.PromoApplyCoachOnly:
		return venueShare, coachShare - min(discount, coachShare)
	default:
		fromVenue := min(discount, venueShare)
		fromCoach := min(discount-fromVenue, coachShare)
		return venueShare - fromVenue, coachShare - fromCoach
	}
}

// OpenRecords creates one PENDING record per payee. A zero coachNet with no
// coach id yields a venue-only ledger; a zero amount for a present payee
// still gets a record so settlement callbacks have something to resolve.
func (s *paymentService) OpenRecords(venueID, coachID string, venueNet, coachNet int64) []model.PaymentRecord {
	records := []model.PaymentRecord{
		{
			ID:        uuid.New().String(),
			PayeeType: model.PayeeVenue,
			PayeeID:   venueID,
			Amount:    venueNet,
			Status:    model.PaymentPending,
		},
	}

	if coachID != "" {
		records = append(records, model.PaymentRecord{
			ID:        uuid.New().String(),
			PayeeType: model.PayeeCoach,
			PayeeID:   coachID,
			Amount:    coachNet,
			Status:    model.PaymentPending,
		})
	}

	return records
}

func (s *paymentService) MarkPaid(ctx context.Context, paymentID string) (*model.Booking, bool, error) {
	return s.transition(ctx, paymentID, model.PaymentPending, model.PaymentPaid, "")
}

func (s *paymentService) MarkFailed(ctx context.Context, paymentID, reason string) (*model.Booking, bool, error) {
	return s.transition(ctx, paymentID, model.PaymentPending, model.PaymentFailed, reason)
}

func (s *paymentService) MarkRefunded(ctx context.Context, paymentID string) (*model.Booking, bool, error) {
	return s.transition(ctx, paymentID, model.PaymentPaid, model.PaymentRefunded, "")
}

func (s *paymentService) transition(ctx context.Context, paymentID string, from, to model.PaymentStatus, reason string) (*model.Booking, bool, error) {
	booking, err := s.repo.TransitionPayment(ctx, paymentID, from, to, reason)
	if err == nil {
		s.cfg.Log.Info("Payment settled",
			"payment_id", paymentID,
			"booking_id", booking.ID,
			"status", to,
		)
		return booking, true, nil
	}

	if errors.Is(err, paymentserrors.ErrNotFound) {
		return nil, false, apperrors.NotFoundWithID("Payment record", paymentID)
	}

	if errors.Is(err, paymentserrors.ErrStateMismatch) {
		booking, findErr := s.repo.FindByPaymentID(ctx, paymentID)
		if findErr != nil {
			return nil, false, apperrors.Internal("Failed to load payment record", findErr)
		}

		current := paymentStatus(booking, paymentID)
		if current == to {
			// Duplicate callback; the outcome already applied.
			s.cfg.Log.Warn("Ignoring replayed settlement callback",
				"payment_id", paymentID,
				"booking_id", booking.ID,
				"status", to,
			)
			return booking, false, nil
		}
		return nil, false, apperrors.InvalidState(
			"payment record cannot move from " + string(current) + " to " + string(to))
	}

	return nil, false, apperrors.Internal("Failed to settle payment", err)
}

func paymentStatus(booking *model.Booking, paymentID string) model.PaymentStatus {
	for _, p := range booking.Payments {
		if p.ID == paymentID {
			return p.Status
		}
	}
	return ""
}

func min(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
