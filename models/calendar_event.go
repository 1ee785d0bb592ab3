package models

import "time"

// CalendarEvent sync statuses.
const (
	SyncStatusSynced            = "synced"
	SyncStatusPending           = "pending"
	SyncStatusDeletedFromRemote = "deleted_from_remote"
)

// CalendarEvent statuses.
const (
	EventStatusConfirmed = "confirmed"
	EventStatusTentative = "tentative"
	EventStatusCancelled = "cancelled"
)

// CalendarEvent mirrors (or is waiting to mirror) a remote calendar event.
// AppointmentID is empty for calendar-originated events; ExternalEventID is
// empty while a locally-originated event is still pending remote creation.
type CalendarEvent struct {
	ID              string            `bson:"id" json:"id"`
	ClinicID        string            `bson:"clinic_id" json:"clinic_id"`
	AppointmentID   string            `bson:"appointment_id,omitempty" json:"appointment_id,omitempty"`
	ProfessionalID  string            `bson:"professional_id,omitempty" json:"professional_id,omitempty"`
	ExternalEventID string            `bson:"external_event_id,omitempty" json:"external_event_id,omitempty"`
	Title           string            `bson:"title" json:"title"`
	Description     string            `bson:"description,omitempty" json:"description,omitempty"`
	Start           time.Time         `bson:"start" json:"start"`
	End             time.Time         `bson:"end" json:"end"`
	Status          string            `bson:"status" json:"status"`
	SyncStatus      string            `bson:"sync_status" json:"sync_status"`
	LastSyncAt      time.Time         `bson:"last_sync_at,omitempty" json:"last_sync_at,omitempty"`
	Metadata        map[string]string `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt       time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `bson:"updated_at" json:"updated_at"`
}

// Overlaps reports whether the event interval intersects [start, end).
func (e *CalendarEvent) Overlaps(start, end time.Time) bool {
	return e.Start.Before(end) && e.End.After(start)
}

// RemoteEvent is the transport-level view of an event on the remote calendar,
// identified by an opaque external id.
type RemoteEvent struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Status         string    `json:"status"`
	AppointmentID  string    `json:"appointmentId,omitempty"`
	ProfessionalID string    `json:"professionalId,omitempty"`
	ClinicID       string    `json:"clinicId,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// SyncSummary reports the outcome of one reconciliation pass.
type SyncSummary struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
	Errors  int `json:"errors"`
}

// Conflict describes a booked interval that overlaps a candidate range.
type Conflict struct {
	Source         string    `json:"source"` // "appointment" or "calendar_event"
	ID             string    `json:"id"`
	ProfessionalID string    `json:"professionalId,omitempty"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
}
