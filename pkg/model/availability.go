package model

import "time"

type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps uses the half-open convention: [a,b) and [c,d) conflict iff
// a < d && c < b.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// DaySchedule is the read-only availability projection of the slot ledger
// for one resource and date.
type DaySchedule struct {
	ResourceID     string     `json:"resource_id"`
	Date           string     `json:"date"`
	AvailableSlots []Interval `json:"available_slots"`
	BookedSlots    []Interval `json:"booked_slots"`
}
