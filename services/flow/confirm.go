package flow

import (
	"context"
	"fmt"
	"time"

	"clinicflow/models"
	"clinicflow/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var requiredForConfirmation = []string{"service_id", "professional_id", "date", "time"}

// ConfirmAppointment finalizes the booking: it requires the flow to be at the
// time selection stage with all fields collected, re-validates the chosen
// interval against current conflicts, writes the durable Appointment record,
// attempts (but does not require) the remote calendar create, and moves the
// flow to the terminal confirmed stage.
func (s *DefaultFlowService) ConfirmAppointment(ctx context.Context, clinicID, patientPhone string, extra map[string]string) (*models.Appointment, error) {
	logger := utils.GetLogger()

	f, err := s.Store.Get(ctx, clinicID, patientPhone)
	if err != nil {
		return nil, err
	}
	if f.State != models.FlowStateTimeSelection {
		return nil, &InvalidTransitionError{From: f.State, To: models.FlowStateConfirmed}
	}

	if f.Data == nil {
		f.Data = map[string]string{}
	}
	for k, v := range extra {
		f.Data[k] = v
	}
	for _, field := range requiredForConfirmation {
		if f.Data[field] == "" {
			return nil, &ValidationError{Field: field, Message: "required to confirm appointment"}
		}
	}

	clinic, err := s.Directory.GetClinic(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	svc, err := s.Directory.GetService(ctx, clinicID, f.Data["service_id"])
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(clinic.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid clinic timezone %q: %w", clinic.Timezone, err)
	}
	start, err := time.ParseInLocation("2006-01-02 15:04", f.Data["date"]+" "+f.Data["time"], loc)
	if err != nil {
		return nil, &ValidationError{Field: "date/time", Message: err.Error()}
	}
	end := start.Add(time.Duration(svc.DurationMinutes) * time.Minute)

	// Race protection: the slot may have been taken since time selection.
	professionalID := f.Data["professional_id"]
	conflicts, err := s.Conflicts.GetConflicts(ctx, clinicID, start, end, "")
	if err != nil {
		return nil, fmt.Errorf("failed to re-validate slot: %w", err)
	}
	for _, c := range conflicts {
		if c.ProfessionalID == "" || c.ProfessionalID == professionalID {
			return nil, &BookingConflictError{
				ProfessionalID: professionalID,
				Message:        fmt.Sprintf("slot %s is no longer available", start.Format(time.RFC3339)),
			}
		}
	}

	now := time.Now()
	appt := &models.Appointment{
		ID:             uuid.New().String(),
		ClinicID:       clinicID,
		PatientPhone:   patientPhone,
		PatientName:    f.PatientName,
		ProfessionalID: professionalID,
		ServiceID:      svc.ID,
		ScheduledStart: start,
		ScheduledEnd:   end,
		Status:         models.AppointmentStatusConfirmed,
		Metadata:       map[string]string{"service_name": svc.Name, "source": "booking_flow"},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Appointments.Create(ctx, appt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	// The local record is the durability boundary; calendar presence is
	// best-effort and reconciled later by the periodic sync pass.
	if s.Publisher != nil {
		eventID, pubErr := s.Publisher.PublishAppointment(ctx, appt)
		if pubErr != nil {
			logger.Warn("calendar create deferred to next sync pass",
				zap.String("appointmentID", appt.ID), zap.Error(pubErr))
		} else {
			appt.CalendarEventID = eventID
		}
	}

	f.State = models.FlowStateConfirmed
	f.Data["appointment_id"] = appt.ID
	if err := s.Store.Save(ctx, f, models.FlowStateTimeSelection); err != nil {
		// The appointment is already durable; a concurrent flow change only
		// affects the session projection.
		logger.Warn("failed to finalize confirmed flow state",
			zap.String("appointmentID", appt.ID), zap.Error(err))
	} else if err := s.Store.Expire(ctx, clinicID, patientPhone, s.CleanupTTL); err != nil {
		logger.Warn("failed to schedule confirmed flow cleanup", zap.Error(err))
	}

	logger.Info("appointment confirmed",
		zap.String("appointmentID", appt.ID), zap.String("clinicID", clinicID),
		zap.String("professionalID", professionalID), zap.Time("start", start))
	return appt, nil
}
