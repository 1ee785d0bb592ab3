package models

import "time"

// AvailableSlot is a candidate interval during which a professional could be
// booked. Transient, never persisted.
type AvailableSlot struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Duration int       `json:"duration"` // minutes
}

// AvailableDate is one open date within the booking window.
type AvailableDate struct {
	Date           string `json:"date"` // "YYYY-MM-DD" in clinic time
	DayName        string `json:"day_name"`
	AvailableSlots int    `json:"available_slots"` // remaining daily capacity
}
