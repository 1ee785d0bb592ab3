package flow

import (
	"context"
	"time"

	appointmentRepo "clinicflow/database/repository/appointment"
	clinicRepo "clinicflow/database/repository/clinic"
	"clinicflow/models"
)

// FlowService defines the interface for driving the step-by-step appointment
// conversation.
type FlowService interface {
	StartFlow(ctx context.Context, clinicID, patientPhone, patientName string) (*models.BookingFlow, error)
	GetCurrentFlow(ctx context.Context, clinicID, patientPhone string) (*models.BookingFlow, error)
	TransitionToState(ctx context.Context, clinicID, patientPhone, targetState string, payload map[string]string) (*models.BookingFlow, error)
	ConfirmAppointment(ctx context.Context, clinicID, patientPhone string, extra map[string]string) (*models.Appointment, error)
	CancelFlow(ctx context.Context, clinicID, patientPhone, reason string) error
	GetFlowSummary(ctx context.Context, clinicID, patientPhone string) (*models.FlowSummary, error)
}

// ConflictChecker re-validates slot freedom at confirmation time. Implemented
// by the calendar sync engine.
type ConflictChecker interface {
	GetConflicts(ctx context.Context, clinicID string, start, end time.Time, excludeID string) ([]models.Conflict, error)
}

// CalendarPublisher pushes a confirmed appointment to the remote calendar and
// returns the external event id. Implemented by the calendar sync engine.
type CalendarPublisher interface {
	PublishAppointment(ctx context.Context, appt *models.Appointment) (string, error)
}

// DefaultFlowService implements FlowService.
type DefaultFlowService struct {
	Store        Store
	Directory    clinicRepo.DirectoryRepository
	Appointments appointmentRepo.AppointmentRepository
	Conflicts    ConflictChecker
	Publisher    CalendarPublisher
	// CleanupTTL is how long a terminal flow stays readable before expiry.
	CleanupTTL time.Duration
}
