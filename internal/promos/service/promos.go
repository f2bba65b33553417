package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	promoserrors "courtside/internal/promos/errors"
	"courtside/internal/promos/repository"
	"courtside/internal/promos/validator"
	"courtside/pkg/config"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/model"
	"courtside/pkg/sanitizer"
)

// PromoService validates promotional codes against a prospective charge and
// records redemptions once the money has actually been collected. Validation
// is a pure read; nothing is consumed until Redeem.
type PromoService interface {
	Create(ctx context.Context, promo *model.PromoCode) (*model.PromoCode, error)
	GetByCode(ctx context.Context, code string) (*model.PromoCode, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.PromoCode, int64, error)
	SetActive(ctx context.Context, code string, active bool) (*model.PromoCode, error)
	Validate(ctx context.Context, code, userID string, bookingAmount int64, hasCoach bool, now time.Time) (int64, model.PromoApplicability, error)
	Redeem(ctx context.Context, code, userID, bookingID string, discountApplied int64) error
}

type promoService struct {
	repo      repository.PromoRepository
	validator *validator.PromoValidator
	cfg       *config.Config
}

func NewPromoService(repo repository.PromoRepository, v *validator.PromoValidator, cfg *config.Config) PromoService {
	return &promoService{
		repo:      repo,
		validator: v,
		cfg:       cfg,
	}
}

func (s *promoService) Create(ctx context.Context, promo *model.PromoCode) (*model.PromoCode, error) {
	promo.Code = sanitizer.SanitizePromoCode(promo.Code)
	promo.UsageCount = 0
	if promo.MaxUsagePerUser == 0 {
		promo.MaxUsagePerUser = s.cfg.PromoPerUserCap
	}

	if err := s.validator.Validate(promo); err != nil {
		return nil, apperrors.Validation("Promo code validation failed", map[string]any{
			"validation_errors": err.Error(),
		})
	}

	if err := s.repo.Create(ctx, promo); err != nil {
		if errors.Is(err, promoserrors.ErrDuplicateCode) {
			return nil, apperrors.Conflict(fmt.Sprintf("Promo code %s already exists", promo.Code))
		}
		return nil, apperrors.Internal("Failed to create promo code", err)
	}

	s.cfg.Log.Info("Promo code created", "code", promo.Code, "discount_type", promo.DiscountType)
	return promo, nil
}

func (s *promoService) GetByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	code = sanitizer.SanitizePromoCode(code)

	promo, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, promoserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Promo code", code)
		}
		return nil, apperrors.Internal("Failed to get promo code", err)
	}
	return promo, nil
}

func (s *promoService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.PromoCode, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	promos, total, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to list promo codes", err)
	}
	return promos, total, nil
}

// SetActive flips the active flag. Codes are never deleted so the redemption
// log keeps its referent.
func (s *promoService) SetActive(ctx context.Context, code string, active bool) (*model.PromoCode, error) {
	code = sanitizer.SanitizePromoCode(code)

	if err := s.repo.SetActive(ctx, code, active); err != nil {
		if errors.Is(err, promoserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Promo code", code)
		}
		return nil, apperrors.Internal("Failed to update promo code", err)
	}

	s.cfg.Log.Info("Promo code active flag changed", "code", code, "is_active", active)
	return s.GetByCode(ctx, code)
}

// Validate runs the ordered eligibility checks and computes the discount.
// The first failing check wins so the caller always gets one deterministic,
// user-legible reason. A failure is advisory: the booking can still proceed
// at full price.
func (s *promoService) Validate(ctx context.Context, code, userID string, bookingAmount int64, hasCoach bool, now time.Time) (int64, model.PromoApplicability, error) {
	code = sanitizer.SanitizePromoCode(code)

	promo, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, promoserrors.ErrNotFound) {
			return 0, "", apperrors.PromoInvalid("promo code does not exist")
		}
		return 0, "", apperrors.Internal("Failed to look up promo code", err)
	}

	if !promo.IsActive {
		return 0, "", apperrors.PromoInvalid("promo code is not active")
	}

	if now.Before(promo.ValidFrom) || now.After(promo.ValidUntil) {
		return 0, "", apperrors.PromoInvalid("promo code is not valid at this time")
	}

	if promo.MinBookingAmount > 0 && bookingAmount < promo.MinBookingAmount {
		return 0, "", apperrors.PromoInvalid(fmt.Sprintf(
			"booking amount is below the minimum of %d required by this promo code", promo.MinBookingAmount))
	}

	if promo.MaxUsageTotal > 0 && promo.UsageCount >= promo.MaxUsageTotal {
		return 0, "", apperrors.PromoInvalid("promo code usage limit has been reached")
	}

	perUserCap := promo.MaxUsagePerUser
	if perUserCap == 0 {
		perUserCap = s.cfg.PromoPerUserCap
	}
	used, err := s.repo.CountUserRedemptions(ctx, code, userID)
	if err != nil {
		return 0, "", apperrors.Internal("Failed to count promo redemptions", err)
	}
	if used >= int64(perUserCap) {
		return 0, "", apperrors.PromoInvalid("promo code has already been used the maximum number of times by this user")
	}

	if promo.ApplicableTo == model.PromoApplyCoachOnly && !hasCoach {
		return 0, "", apperrors.PromoInvalid("promo code applies only to bookings that include a coach")
	}

	return computeDiscount(promo, bookingAmount), promo.ApplicableTo, nil
}

// Redeem permanently consumes one use. Callers invoke it only after the
// corresponding payment has settled; consuming a slot for money never
// collected is not recoverable.
func (s *promoService) Redeem(ctx context.Context, code, userID, bookingID string, discountApplied int64) error {
	code = sanitizer.SanitizePromoCode(code)

	redemption := &model.PromoRedemption{
		ID:              uuid.New().String(),
		Code:            code,
		UserID:          userID,
		BookingID:       bookingID,
		DiscountApplied: discountApplied,
		RedeemedAt:      time.Now().UTC(),
	}
	if err := s.repo.Redeem(ctx, redemption); err != nil {
		if errors.Is(err, promoserrors.ErrUsageExhausted) {
			return apperrors.Conflict(fmt.Sprintf("Promo code %s usage limit reached", code))
		}
		return apperrors.Internal("Failed to record promo redemption", err)
	}

	s.cfg.Log.Info("Promo code redeemed",
		"code", code,
		"user_id", userID,
		"booking_id", bookingID,
		"discount_applied", discountApplied,
	)
	return nil
}

// computeDiscount never returns a value below zero or above bookingAmount.
// Percentage discounts round half-up in the smallest currency unit.
func computeDiscount(promo *model.PromoCode, bookingAmount int64) int64 {
	var discount int64

	switch promo.DiscountType {
	case model.DiscountPercentage:
		discount = (bookingAmount*promo.DiscountValue + 50) / 100
		if promo.MaxDiscountAmount > 0 && discount > promo.MaxDiscountAmount {
			discount = promo.MaxDiscountAmount
		}
	case model.DiscountFixed:
		discount = promo.DiscountValue
	}

	if discount > bookingAmount {
		discount = bookingAmount
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
