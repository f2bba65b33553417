package model

import "time"

type SlotState string

const (
	SlotHeld      SlotState = "HELD"
	SlotCommitted SlotState = "COMMITTED"
)

// SlotHold is one claim on a resource's calendar: a [start, end) interval on
// one date for one resource (a venue court or a coach). Every entry blocks
// overlapping holds until it is deleted; expires_at is the deadline after
// which the sweeper deletes HELD entries, not an expiry other readers apply
// themselves. COMMITTED entries carry no deadline. The token doubles as the
// document id.
type SlotHold struct {
	Token      string     `json:"token" bson:"_id"`
	ResourceID string     `json:"resource_id" bson:"resource_id"`
	Date       string     `json:"date" bson:"date"`
	StartTime  time.Time  `json:"start_time" bson:"start_time"`
	EndTime    time.Time  `json:"end_time" bson:"end_time"`
	State      SlotState  `json:"state" bson:"state"`
	BookingID  string     `json:"booking_id,omitempty" bson:"booking_id,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
}

// SlotLock is an advisory lock serializing writes for one (resource, date)
// pair. Uniqueness of the _id gives mutual exclusion; a TTL index reaps
// locks abandoned by crashed requests.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
