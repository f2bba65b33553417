package model

import "time"

type PayeeType string

const (
	PayeeVenue PayeeType = "VENUE"
	PayeeCoach PayeeType = "COACH"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// PaymentRecord is one leg of a booking's split payment: at most one per
// payee type. Amounts are in the smallest currency unit and already net of
// any discount apportionment. Records are mutated only by settlement
// callbacks and never deleted.
type PaymentRecord struct {
	ID            string        `json:"id" bson:"id"`
	PayeeType     PayeeType     `json:"payee_type" bson:"payee_type"`
	PayeeID       string        `json:"payee_id" bson:"payee_id"`
	Amount        int64         `json:"amount" bson:"amount"`
	Status        PaymentStatus `json:"status" bson:"status"`
	FailureReason string        `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
	SettledAt     *time.Time    `json:"settled_at,omitempty" bson:"settled_at,omitempty"`
}

// ValidPaymentTransition reports whether a settlement may move a record from
// one status to another. PENDING→PAID, PENDING→FAILED and PAID→REFUNDED are
// the only permitted moves.
func ValidPaymentTransition(from, to PaymentStatus) bool {
	switch from {
	case PaymentPending:
		return to == PaymentPaid || to == PaymentFailed
	case PaymentPaid:
		return to == PaymentRefunded
	default:
		return false
	}
}
