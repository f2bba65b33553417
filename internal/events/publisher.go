package events

import (
	"context"
	"time"

	"courtside/pkg/kafka"
	"courtside/pkg/logger"
)

const (
	BookingConfirmed = "booking.confirmed"
	BookingCancelled = "booking.cancelled"
	BookingCompleted = "booking.completed"
	RefundRequested  = "payment.refund.requested"

	schemaVersion = "1"
	source        = "courtside-bookings"
)

// Envelope is the wire shape shared by every lifecycle event.
type Envelope struct {
	Event      string    `json:"event"`
	Version    string    `json:"version"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// RefundRequest asks the payment gateway worker to return money for one
// settled payment leg. The booking record stays PAID until the gateway
// confirms the refund through the settlement callback.
type RefundRequest struct {
	BookingID string `json:"booking_id"`
	PaymentID string `json:"payment_id"`
	PayeeType string `json:"payee_type"`
	Amount    int64  `json:"amount"`
}

type producer interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// Publisher emits booking lifecycle events keyed by booking id. Publishing
// is best effort: a broker outage must never fail the booking operation that
// triggered the event, so errors are logged and swallowed.
type Publisher struct {
	producer producer
	log      *logger.Logger
}

func NewPublisher(p producer, log *logger.Logger) *Publisher {
	return &Publisher{
		producer: p,
		log:      log,
	}
}

func (p *Publisher) Publish(ctx context.Context, event, bookingID string, data any) {
	msg := kafka.NewMessage().
		WithKey(bookingID).
		WithEventType(event).
		WithSource(source).
		WithValue(Envelope{
			Event:      event,
			Version:    schemaVersion,
			OccurredAt: time.Now().UTC(),
			Data:       data,
		}).
		Build()
	msg.Headers[kafka.HeaderSchemaVersion] = schemaVersion

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish lifecycle event",
			"event", event,
			"booking_id", bookingID,
			"error", err,
		)
	}
}
