package model

import "time"

type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED_AMOUNT"
)

type PromoApplicability string

const (
	PromoApplyAll       PromoApplicability = "ALL"
	PromoApplyVenueOnly PromoApplicability = "VENUE_ONLY"
	PromoApplyCoachOnly PromoApplicability = "COACH_ONLY"
)

// PromoCode is an operator-created discount. Codes are stored uppercase and
// matched case-insensitively. Codes are never hard-deleted; deactivation
// preserves the redemption history.
type PromoCode struct {
	Code              string             `json:"code" bson:"_id" validate:"required,min=2,max=32,promo_code"`
	Description       string             `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=200"`
	DiscountType      DiscountType       `json:"discount_type" bson:"discount_type" validate:"required,oneof=PERCENTAGE FIXED_AMOUNT"`
	DiscountValue     int64              `json:"discount_value" bson:"discount_value" validate:"required,min=1"`
	MaxDiscountAmount int64              `json:"max_discount_amount,omitempty" bson:"max_discount_amount,omitempty" validate:"omitempty,min=1"`
	MinBookingAmount  int64              `json:"min_booking_amount,omitempty" bson:"min_booking_amount,omitempty" validate:"omitempty,min=1"`
	ApplicableTo      PromoApplicability `json:"applicable_to" bson:"applicable_to" validate:"required,oneof=ALL VENUE_ONLY COACH_ONLY"`
	ValidFrom         time.Time          `json:"valid_from" bson:"valid_from" validate:"required"`
	ValidUntil        time.Time          `json:"valid_until" bson:"valid_until" validate:"required,gtfield=ValidFrom"`
	IsActive          bool               `json:"is_active" bson:"is_active"`
	MaxUsageTotal     int                `json:"max_usage_total,omitempty" bson:"max_usage_total,omitempty" validate:"omitempty,min=1"`
	MaxUsagePerUser   int                `json:"max_usage_per_user,omitempty" bson:"max_usage_per_user,omitempty" validate:"omitempty,min=1"`
	UsageCount        int                `json:"usage_count" bson:"usage_count"`
	CreatedAt         time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" bson:"updated_at"`
}

// PromoRedemption is one append-only log entry per consumed use. Entries are
// kept in their own collection keyed by code so the promo document does not
// grow without bound.
type PromoRedemption struct {
	ID              string    `json:"id" bson:"_id"`
	Code            string    `json:"code" bson:"code"`
	UserID          string    `json:"user_id" bson:"user_id"`
	BookingID       string    `json:"booking_id" bson:"booking_id"`
	DiscountApplied int64     `json:"discount_applied" bson:"discount_applied"`
	RedeemedAt      time.Time `json:"redeemed_at" bson:"redeemed_at"`
}
