package model

import (
	"time"
)

type BookingStatus string

const (
	BookingPendingPayment BookingStatus = "PENDING_PAYMENT"
	BookingConfirmed      BookingStatus = "CONFIRMED"
	BookingInProgress     BookingStatus = "IN_PROGRESS"
	BookingCompleted      BookingStatus = "COMPLETED"
	BookingCancelled      BookingStatus = "CANCELLED"
)

// Booking is the authoritative record of one reservation: the slot it holds,
// the split-payment ledger for it, and its lifecycle status. Payments are
// embedded and ordered; they are created with the booking and never deleted.
type Booking struct {
	ID          string `json:"id,omitempty" bson:"_id,omitempty"`
	PlayerID    string `json:"player_id" bson:"player_id"`
	VenueID     string `json:"venue_id" bson:"venue_id"`
	CoachID     string `json:"coach_id,omitempty" bson:"coach_id,omitempty"`
	DependentID string `json:"dependent_id,omitempty" bson:"dependent_id,omitempty"`
	Sport       string `json:"sport" bson:"sport"`

	Date      string    `json:"date" bson:"date"`
	StartTime time.Time `json:"start_time" bson:"start_time"`
	EndTime   time.Time `json:"end_time" bson:"end_time"`

	Status        BookingStatus `json:"status" bson:"status"`
	HoldExpiresAt *time.Time    `json:"hold_expires_at,omitempty" bson:"hold_expires_at,omitempty"`

	TotalAmount    int64  `json:"total_amount" bson:"total_amount"`
	DiscountAmount int64  `json:"discount_amount,omitempty" bson:"discount_amount,omitempty"`
	PromoCode      string `json:"promo_code,omitempty" bson:"promo_code,omitempty"`

	CheckInCode string `json:"check_in_code,omitempty" bson:"check_in_code,omitempty"`

	VenueHoldToken string `json:"-" bson:"venue_hold_token"`
	CoachHoldToken string `json:"-" bson:"coach_hold_token,omitempty"`

	Payments []PaymentRecord `json:"payments" bson:"payments"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// HoldTokens lists the slot-ledger tokens this booking owns, venue first.
func (b *Booking) HoldTokens() []string {
	tokens := []string{b.VenueHoldToken}
	if b.CoachHoldToken != "" {
		tokens = append(tokens, b.CoachHoldToken)
	}
	return tokens
}

func (b *Booking) AllPaymentsPaid() bool {
	if len(b.Payments) == 0 {
		return false
	}
	for _, p := range b.Payments {
		if p.Status != PaymentPaid {
			return false
		}
	}
	return true
}

func (b *Booking) HasPaidPayment() bool {
	for _, p := range b.Payments {
		if p.Status == PaymentPaid {
			return true
		}
	}
	return false
}

// BookingRequest is the initiate payload. Times are local wall-clock HH:MM on
// the given date; the service resolves them to UTC instants.
type BookingRequest struct {
	PlayerID    string `json:"player_id" validate:"required,min=1,max=64"`
	VenueID     string `json:"venue_id" validate:"required,min=1,max=64"`
	CoachID     string `json:"coach_id,omitempty" validate:"omitempty,min=1,max=64"`
	DependentID string `json:"dependent_id,omitempty" validate:"omitempty,min=1,max=64"`
	Sport       string `json:"sport" validate:"required,min=2,max=40"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Start       string `json:"start" validate:"required,clock_hhmm"`
	End         string `json:"end" validate:"required,clock_hhmm"`
	PromoCode   string `json:"promo_code,omitempty" validate:"omitempty,min=2,max=32"`
}

// BookingReceipt is what initiate returns to the player: enough to pay
// within the hold window.
type BookingReceipt struct {
	BookingID           string               `json:"booking_id"`
	TotalAmount         int64                `json:"total_amount"`
	DiscountAmount      int64                `json:"discount_amount,omitempty"`
	HoldExpiresAt       time.Time            `json:"hold_expires_at"`
	PaymentInstructions []PaymentInstruction `json:"payment_instructions"`
}

type PaymentInstruction struct {
	PaymentID string    `json:"payment_id"`
	PayeeType PayeeType `json:"payee_type"`
	Amount    int64     `json:"amount"`
}
