package appointmentRepo

import (
	"context"
	"time"

	"clinicflow/models"
)

// AppointmentRepository defines durable storage for confirmed appointments.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	// ListConfirmedInRange returns confirmed appointments for a clinic whose
	// interval overlaps [start, end).
	ListConfirmedInRange(ctx context.Context, clinicID string, start, end time.Time) ([]models.Appointment, error)
	// ListForProfessional restricts the range query to one professional.
	ListForProfessional(ctx context.Context, clinicID, professionalID string, start, end time.Time) ([]models.Appointment, error)
	// ListUnsynced returns confirmed appointments in range that have no
	// calendar event linked yet.
	ListUnsynced(ctx context.Context, clinicID string, start, end time.Time) ([]models.Appointment, error)
	// CountForDay counts non-cancelled appointments overlapping one clinic day.
	CountForDay(ctx context.Context, clinicID string, dayStart, dayEnd time.Time) (int64, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SetCalendarEventID(ctx context.Context, id, eventID string) error
}
