package models

import "time"

// Appointment statuses.
const (
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"
	AppointmentStatusNoShow    = "no_show"
)

// Appointment represents a confirmed appointment record. Immutable after
// creation except for status changes and calendar linkage.
type Appointment struct {
	ID              string            `bson:"id" json:"id"`
	ClinicID        string            `bson:"clinic_id" json:"clinic_id"`
	PatientPhone    string            `bson:"patient_phone" json:"patient_phone"`
	PatientName     string            `bson:"patient_name" json:"patient_name"`
	ProfessionalID  string            `bson:"professional_id" json:"professional_id"`
	ServiceID       string            `bson:"service_id" json:"service_id"`
	ScheduledStart  time.Time         `bson:"scheduled_start" json:"scheduled_start"`
	ScheduledEnd    time.Time         `bson:"scheduled_end" json:"scheduled_end"`
	Status          string            `bson:"status" json:"status"`
	CalendarEventID string            `bson:"calendar_event_id,omitempty" json:"calendar_event_id,omitempty"`
	Metadata        map[string]string `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt       time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `bson:"updated_at" json:"updated_at"`
}

// Overlaps reports whether the appointment interval intersects [start, end)
// using the half-open interval test.
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.ScheduledStart.Before(end) && a.ScheduledEnd.After(start)
}
