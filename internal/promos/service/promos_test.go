package service

import (
	"context"
	"strings"
	"testing"
	"time"

	promoserrors "courtside/internal/promos/errors"
	"courtside/internal/promos/validator"
	"courtside/pkg/config"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/logger"
	"courtside/pkg/model"
)

type mockPromoRepository struct {
	CreateFunc               func(ctx context.Context, promo *model.PromoCode) error
	UpdateFunc               func(ctx context.Context, promo *model.PromoCode) error
	FindByCodeFunc           func(ctx context.Context, code string) (*model.PromoCode, error)
	FindAllFunc              func(ctx context.Context, limit int, offset int64) ([]*model.PromoCode, int64, error)
	SetActiveFunc            func(ctx context.Context, code string, active bool) error
	RedeemFunc               func(ctx context.Context, redemption *model.PromoRedemption) error
	CountUserRedemptionsFunc func(ctx context.Context, code, userID string) (int64, error)
}

func (m *mockPromoRepository) Create(ctx context.Context, promo *model.PromoCode) error {
	return m.CreateFunc(ctx, promo)
}

func (m *mockPromoRepository) Update(ctx context.Context, promo *model.PromoCode) error {
	return m.UpdateFunc(ctx, promo)
}

func (m *mockPromoRepository) FindByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	return m.FindByCodeFunc(ctx, code)
}

func (m *mockPromoRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.PromoCode, int64, error) {
	return m.FindAllFunc(ctx, limit, offset)
}

func (m *mockPromoRepository) SetActive(ctx context.Context, code string, active bool) error {
	return m.SetActiveFunc(ctx, code, active)
}

func (m *mockPromoRepository) Redeem(ctx context.Context, redemption *model.PromoRedemption) error {
	return m.RedeemFunc(ctx, redemption)
}

func (m *mockPromoRepository) CountUserRedemptions(ctx context.Context, code, userID string) (int64, error) {
	return m.CountUserRedemptionsFunc(ctx, code, userID)
}

func testConfig() *config.Config {
	return &config.Config{
		Log:             logger.New(logger.Config{Level: logger.ERROR}),
		PromoPerUserCap: 1,
	}
}

func newService(repo *mockPromoRepository) PromoService {
	cfg := testConfig()
	return NewPromoService(repo, validator.NewPromoValidator(cfg.Log), cfg)
}

func validPromo() *model.PromoCode {
	return &model.PromoCode{
		Code:          "SUMMER20",
		DiscountType:  model.DiscountPercentage,
		DiscountValue: 20,
		ApplicableTo:  model.PromoApplyAll,
		ValidFrom:     time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:    time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		IsActive:      true,
	}
}

func promoReason(t *testing.T, err error) string {
	t.Helper()
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodePromoInvalid {
		t.Fatalf("expected promo invalid, got %s", appErr.Code)
	}
	reason, _ := appErr.Details["reason"].(string)
	return reason
}

func TestValidate_OrderedChecks(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		mutate     func(p *model.PromoCode)
		userUses   int64
		amount     int64
		hasCoach   bool
		wantReason string
	}{
		{
			name:       "inactive",
			mutate:     func(p *model.PromoCode) { p.IsActive = false },
			amount:     2000,
			wantReason: "not active",
		},
		{
			name:       "before window",
			mutate:     func(p *model.PromoCode) { p.ValidFrom = now.Add(24 * time.Hour) },
			amount:     2000,
			wantReason: "not valid at this time",
		},
		{
			name:       "after window",
			mutate:     func(p *model.PromoCode) { p.ValidUntil = now.Add(-24 * time.Hour) },
			amount:     2000,
			wantReason: "not valid at this time",
		},
		{
			name:       "below minimum amount",
			mutate:     func(p *model.PromoCode) { p.MinBookingAmount = 5000 },
			amount:     2000,
			wantReason: "below the minimum",
		},
		{
			name: "total usage exhausted",
			mutate: func(p *model.PromoCode) {
				p.MaxUsageTotal = 10
				p.UsageCount = 10
			},
			amount:     2000,
			wantReason: "usage limit",
		},
		{
			name:       "per user cap reached",
			mutate:     func(p *model.PromoCode) {},
			userUses:   1,
			amount:     2000,
			wantReason: "maximum number of times by this user",
		},
		{
			name:       "coach only without coach",
			mutate:     func(p *model.PromoCode) { p.ApplicableTo = model.PromoApplyCoachOnly },
			amount:     2000,
			hasCoach:   false,
			wantReason: "include a coach",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			promo := validPromo()
			tt.mutate(promo)

			repo := &mockPromoRepository{
				FindByCodeFunc: func(ctx context.Context, code string) (*model.PromoCode, error) {
					return promo, nil
				},
				CountUserRedemptionsFunc: func(ctx context.Context, code, userID string) (int64, error) {
					return tt.userUses, nil
				},
			}

			_, _, err := newService(repo).Validate(context.Background(), "SUMMER20", "user-1", tt.amount, tt.hasCoach, now)
			reason := promoReason(t, err)
			if !strings.Contains(reason, tt.wantReason) {
				t.Errorf("expected reason containing %q, got %q", tt.wantReason, reason)
			}
		})
	}
}

// A venue-scoped promo stays valid on a booking that also includes a coach;
// the scope caps the discount to the venue share during apportionment rather
// than rejecting the booking. Only COACH_ONLY constrains the booking shape.
func TestValidate_VenueOnlyAcceptsCoachBooking(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	promo := validPromo()
	promo.ApplicableTo = model.PromoApplyVenueOnly

	repo := &mockPromoRepository{
		FindByCodeFunc: func(ctx context.Context, code string) (*model.PromoCode, error) {
			return promo, nil
		},
		CountUserRedemptionsFunc: func(ctx context.Context, code, userID string) (int64, error) {
			return 0, nil
		},
	}

	discount, scope, err := newService(repo).Validate(context.Background(), "SUMMER20", "user-1", 2700, true, now)
	if err != nil {
		t.Fatalf("expected venue-only promo to accept a coach booking, got %v", err)
	}
	if discount != 540 {
		t.Errorf("expected discount 540, got %d", discount)
	}
	if scope != model.PromoApplyVenueOnly {
		t.Errorf("expected VENUE_ONLY scope, got %s", scope)
	}
}

func TestValidate_UnknownCode(t *testing.T) {
	repo := &mockPromoRepository{
		FindByCodeFunc: func(ctx context.Context, code string) (*model.PromoCode, error) {
			return nil, promoserrors.ErrNotFound
		},
	}

	_, _, err := newService(repo).Validate(context.Background(), "NOPE99", "user-1", 2000, false, time.Now().UTC())
	reason := promoReason(t, err)
	if !strings.Contains(reason, "does not exist") {
		t.Errorf("unexpected reason %q", reason)
	}
}

// Inactive wins over the expired window when both apply: the checks run in a
// fixed order and the first failure is the one reported.
func TestValidate_FirstFailureWins(t *testing.T) {
	promo := validPromo()
	promo.IsActive = false
	promo.ValidUntil = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	repo := &mockPromoRepository{
		FindByCodeFunc: func(ctx context.Context, code string) (*model.PromoCode, error) {
			return promo, nil
		},
		CountUserRedemptionsFunc: func(ctx context.Context, code, userID string) (int64, error) {
			return 0, nil
		},
	}

	_, _, err := newService(repo).Validate(context.Background(), "SUMMER20", "user-1", 2000, false,
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	reason := promoReason(t, err)
	if !strings.Contains(reason, "not active") {
		t.Errorf("expected the inactive reason first, got %q", reason)
	}
}

func TestValidate_DiscountComputation(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		mutate       func(p *model.PromoCode)
		amount       int64
		wantDiscount int64
	}{
		{
			name:         "percentage",
			mutate:       func(p *model.PromoCode) {},
			amount:       2700,
			wantDiscount: 540,
		},
		{
			name: "percentage rounds half up",
			mutate: func(p *model.PromoCode) {
				p.DiscountValue = 15
			},
			amount:       1110, // 166.5 rounds to 167
			wantDiscount: 167,
		},
		{
			name: "percentage clamped to cap",
			mutate: func(p *model.PromoCode) {
				p.MaxDiscountAmount = 300
			},
			amount:       2700,
			wantDiscount: 300,
		},
		{
			name: "fixed amount",
			mutate: func(p *model.PromoCode) {
				p.DiscountType = model.DiscountFixed
				p.DiscountValue = 300
			},
			amount:       2700,
			wantDiscount: 300,
		},
		{
			name: "fixed amount never exceeds the charge",
			mutate: func(p *model.PromoCode) {
				p.DiscountType = model.DiscountFixed
				p.DiscountValue = 5000
			},
			amount:       2700,
			wantDiscount: 2700,
		},
		{
			name: "full percentage caps at the charge",
			mutate: func(p *model.PromoCode) {
				p.DiscountValue = 100
			},
			amount:       2700,
			wantDiscount: 2700,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			promo := validPromo()
			tt.mutate(promo)

			repo := &mockPromoRepository{
				FindByCodeFunc: func(ctx context.Context, code string) (*model.PromoCode, error) {
					return promo, nil
				},
				CountUserRedemptionsFunc: func(ctx context.Context, code, userID string) (int64, error) {
					return 0, nil
				},
			}

			discount, scope, err := newService(repo).Validate(context.Background(), "SUMMER20", "user-1", tt.amount, true, now)
			if err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			if discount != tt.wantDiscount {
				t.Errorf("expected discount %d, got %d", tt.wantDiscount, discount)
			}
			if scope != promo.ApplicableTo {
				t.Errorf("expected scope %s, got %s", promo.ApplicableTo, scope)
			}
		})
	}
}

func TestValidate_CodeSanitized(t *testing.T) {
	var lookedUp string
	repo := &mockPromoRepository{
		FindByCodeFunc: func(ctx context.Context, code string) (*model.PromoCode, error) {
			lookedUp = code
			return validPromo(), nil
		},
		CountUserRedemptionsFunc: func(ctx context.Context, code, userID string) (int64, error) {
			return 0, nil
		},
	}

	_, _, err := newService(repo).Validate(context.Background(), "  summer20 ", "user-1", 2000, false,
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if lookedUp != "SUMMER20" {
		t.Errorf("expected sanitized lookup SUMMER20, got %q", lookedUp)
	}
}

func TestRedeem_RecordsRedemption(t *testing.T) {
	var recorded *model.PromoRedemption

	repo := &mockPromoRepository{
		RedeemFunc: func(ctx context.Context, redemption *model.PromoRedemption) error {
			recorded = redemption
			return nil
		},
	}

	err := newService(repo).Redeem(context.Background(), "summer20", "user-1", "bk-1", 540)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if recorded == nil {
		t.Fatal("expected a redemption log entry")
	}
	if recorded.Code != "SUMMER20" {
		t.Errorf("expected sanitized code SUMMER20, got %q", recorded.Code)
	}
	if recorded.BookingID != "bk-1" || recorded.DiscountApplied != 540 {
		t.Errorf("unexpected redemption entry: %+v", recorded)
	}
	if recorded.ID == "" {
		t.Error("expected redemption entry to have an id")
	}
}

func TestRedeem_ExhaustedMapsToConflict(t *testing.T) {
	repo := &mockPromoRepository{
		RedeemFunc: func(ctx context.Context, redemption *model.PromoRedemption) error {
			return promoserrors.ErrUsageExhausted
		},
	}

	err := newService(repo).Redeem(context.Background(), "SUMMER20", "user-1", "bk-1", 540)
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreate_DuplicateCode(t *testing.T) {
	repo := &mockPromoRepository{
		CreateFunc: func(ctx context.Context, promo *model.PromoCode) error {
			return promoserrors.ErrDuplicateCode
		},
	}

	_, err := newService(repo).Create(context.Background(), validPromo())
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreate_DefaultsPerUserCap(t *testing.T) {
	var created *model.PromoCode
	repo := &mockPromoRepository{
		CreateFunc: func(ctx context.Context, promo *model.PromoCode) error {
			created = promo
			return nil
		},
	}

	if _, err := newService(repo).Create(context.Background(), validPromo()); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if created.MaxUsagePerUser != 1 {
		t.Errorf("expected default per-user cap of 1, got %d", created.MaxUsagePerUser)
	}
}

func TestCreate_RejectsOverHundredPercent(t *testing.T) {
	promo := validPromo()
	promo.DiscountValue = 150

	_, err := newService(&mockPromoRepository{}).Create(context.Background(), promo)
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
