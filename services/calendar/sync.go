package calendar

import (
	"context"
	"time"

	appointmentRepo "clinicflow/database/repository/appointment"
	calendareventRepo "clinicflow/database/repository/calendarevent"
	"clinicflow/models"
	"clinicflow/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Conflict resolution policies for events that changed on both sides.
const (
	PolicyRemoteWins = "remote_wins"
	PolicyLocalWins  = "local_wins"
)

// SyncEngine reconciles the local event mirror with the remote calendar and
// publishes confirmed appointments that have no remote event yet. The local
// appointment store stays authoritative for bookings; the remote calendar is
// authoritative for externally created events.
type SyncEngine struct {
	Client       RemoteCalendar
	Events       calendareventRepo.CalendarEventRepository
	Appointments appointmentRepo.AppointmentRepository

	ConflictPolicy string
	Bidirectional  bool

	// Clock is injectable for tests; defaults to time.Now.
	Clock func() time.Time
}

func (s *SyncEngine) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *SyncEngine) policy() string {
	if s.ConflictPolicy == PolicyLocalWins {
		return PolicyLocalWins
	}
	return PolicyRemoteWins
}

// SyncEvents runs one reconciliation pass over [start, end). Remote events are
// imported or updated locally and remote cancellations soft-delete the local
// mirror. With bidirectional sync enabled, deletions reconcile both ways:
// vanished remote events soft-cancel their mirror and local cancellations are
// pushed out. Individual event failures are counted and never abort the pass.
func (s *SyncEngine) SyncEvents(ctx context.Context, clinicID string, start, end time.Time) (*models.SyncSummary, error) {
	logger := utils.GetLogger()

	remote, err := s.Client.ListEvents(ctx, clinicID, start, end)
	if err != nil {
		return nil, err
	}

	summary := &models.SyncSummary{}
	seen := make(map[string]bool, len(remote))
	for i := range remote {
		ev := &remote[i]
		seen[ev.ID] = true
		if err := s.reconcileRemote(ctx, clinicID, ev, summary); err != nil {
			summary.Errors++
			logger.Warn("failed to reconcile remote event",
				zap.String("clinicID", clinicID), zap.String("eventID", ev.ID), zap.Error(err))
		}
	}

	// Deletion reconciliation only runs with bidirectional sync enabled:
	// local mirrors whose remote counterpart vanished are soft-cancelled
	// (never removed, so booking history survives remote cleanup), and
	// locally cancelled events still pending propagation are deleted on the
	// remote calendar.
	if s.Bidirectional {
		local, err := s.Events.ListInRange(ctx, clinicID, start, end)
		if err != nil {
			return summary, err
		}
		for i := range local {
			le := &local[i]
			if le.ExternalEventID == "" || seen[le.ExternalEventID] {
				continue
			}
			if le.SyncStatus != models.SyncStatusSynced || le.Status == models.EventStatusCancelled {
				continue
			}
			if err := s.Events.MarkCancelled(ctx, le.ID, models.SyncStatusDeletedFromRemote); err != nil {
				summary.Errors++
				logger.Warn("failed to soft-delete local event",
					zap.String("clinicID", clinicID), zap.String("eventID", le.ID), zap.Error(err))
				continue
			}
			summary.Deleted++
		}

		s.pushLocalCancellations(ctx, clinicID, local, summary)
	}

	logger.Info("calendar sync pass finished",
		zap.String("clinicID", clinicID),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("deleted", summary.Deleted),
		zap.Int("errors", summary.Errors))
	return summary, nil
}

// pushLocalCancellations deletes remote events whose local mirror was
// cancelled on our side and is still waiting to propagate.
func (s *SyncEngine) pushLocalCancellations(ctx context.Context, clinicID string, local []models.CalendarEvent, summary *models.SyncSummary) {
	logger := utils.GetLogger()

	for i := range local {
		le := &local[i]
		if le.Status != models.EventStatusCancelled || le.SyncStatus != models.SyncStatusPending {
			continue
		}
		if le.ExternalEventID == "" {
			continue
		}
		if err := s.Client.DeleteEvent(ctx, clinicID, le.ExternalEventID); err != nil {
			summary.Errors++
			logger.Warn("failed to push local cancellation to remote calendar",
				zap.String("clinicID", clinicID), zap.String("eventID", le.ID), zap.Error(err))
			continue
		}
		if err := s.Events.MarkCancelled(ctx, le.ID, models.SyncStatusSynced); err != nil {
			summary.Errors++
			continue
		}
		summary.Deleted++
	}
}

// reconcileRemote applies one remote event to the local mirror. Matching is by
// external event id, which makes repeated passes idempotent.
func (s *SyncEngine) reconcileRemote(ctx context.Context, clinicID string, ev *models.RemoteEvent, summary *models.SyncSummary) error {
	local, err := s.Events.GetByExternalID(ctx, clinicID, ev.ID)
	if err != nil {
		return err
	}

	if local == nil {
		if ev.Status == models.EventStatusCancelled {
			return nil
		}
		now := s.now()
		event := &models.CalendarEvent{
			ID:              uuid.New().String(),
			ClinicID:        clinicID,
			AppointmentID:   ev.AppointmentID,
			ProfessionalID:  ev.ProfessionalID,
			ExternalEventID: ev.ID,
			Title:           ev.Title,
			Description:     ev.Description,
			Start:           ev.Start,
			End:             ev.End,
			Status:          normalizeStatus(ev.Status),
			SyncStatus:      models.SyncStatusSynced,
			LastSyncAt:      now,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.Events.Create(ctx, event); err != nil {
			return err
		}
		summary.Created++
		return nil
	}

	if ev.Status == models.EventStatusCancelled {
		if local.Status == models.EventStatusCancelled {
			return nil
		}
		if err := s.Events.MarkCancelled(ctx, local.ID, models.SyncStatusDeletedFromRemote); err != nil {
			return err
		}
		summary.Deleted++

		// A cancellation that mirrors a booked appointment propagates to the
		// appointment record so availability opens back up.
		if local.AppointmentID != "" {
			if err := s.Appointments.UpdateStatus(ctx, local.AppointmentID, models.AppointmentStatusCancelled); err != nil {
				return err
			}
		}
		return nil
	}

	// A local cancellation still awaiting propagation outranks remote content.
	if local.Status == models.EventStatusCancelled && local.SyncStatus == models.SyncStatusPending {
		return nil
	}

	if !s.remoteDiffers(local, ev) {
		return nil
	}
	if s.policy() == PolicyLocalWins && local.UpdatedAt.After(ev.UpdatedAt) {
		return nil
	}

	local.Title = ev.Title
	local.Description = ev.Description
	local.Start = ev.Start
	local.End = ev.End
	local.Status = normalizeStatus(ev.Status)
	local.SyncStatus = models.SyncStatusSynced
	local.LastSyncAt = s.now()
	if err := s.Events.Update(ctx, local); err != nil {
		return err
	}
	summary.Updated++
	return nil
}

func (s *SyncEngine) remoteDiffers(local *models.CalendarEvent, ev *models.RemoteEvent) bool {
	return local.Title != ev.Title ||
		local.Description != ev.Description ||
		!local.Start.Equal(ev.Start) ||
		!local.End.Equal(ev.End) ||
		local.Status != normalizeStatus(ev.Status)
}

func normalizeStatus(status string) string {
	switch status {
	case models.EventStatusTentative:
		return models.EventStatusTentative
	case models.EventStatusCancelled:
		return models.EventStatusCancelled
	default:
		return models.EventStatusConfirmed
	}
}

// GetConflicts returns every confirmed appointment and active calendar event
// overlapping [start, end) for the clinic. excludeID skips one appointment and
// the event mirroring it, so re-checking an existing booking never reports
// itself.
func (s *SyncEngine) GetConflicts(ctx context.Context, clinicID string, start, end time.Time, excludeID string) ([]models.Conflict, error) {
	appts, err := s.Appointments.ListConfirmedInRange(ctx, clinicID, start, end)
	if err != nil {
		return nil, err
	}
	events, err := s.Events.ListActiveInRange(ctx, clinicID, start, end)
	if err != nil {
		return nil, err
	}

	var conflicts []models.Conflict
	for i := range appts {
		a := &appts[i]
		if a.ID == excludeID {
			continue
		}
		if !a.Overlaps(start, end) {
			continue
		}
		conflicts = append(conflicts, models.Conflict{
			Source:         "appointment",
			ID:             a.ID,
			ProfessionalID: a.ProfessionalID,
			Start:          a.ScheduledStart,
			End:            a.ScheduledEnd,
		})
	}
	for i := range events {
		e := &events[i]
		if e.AppointmentID != "" && e.AppointmentID == excludeID {
			continue
		}
		// Events mirroring a confirmed appointment are already reported above.
		if e.AppointmentID != "" && hasAppointment(appts, e.AppointmentID) {
			continue
		}
		if !e.Overlaps(start, end) {
			continue
		}
		conflicts = append(conflicts, models.Conflict{
			Source:         "calendar_event",
			ID:             e.ID,
			ProfessionalID: e.ProfessionalID,
			Start:          e.Start,
			End:            e.End,
		})
	}
	return conflicts, nil
}

func hasAppointment(appts []models.Appointment, id string) bool {
	for i := range appts {
		if appts[i].ID == id {
			return true
		}
	}
	return false
}

// PublishAppointment creates the remote event for a confirmed appointment and
// records the local mirror. Publishing an appointment that already carries a
// calendar event id is a no-op returning the existing id.
func (s *SyncEngine) PublishAppointment(ctx context.Context, appt *models.Appointment) (string, error) {
	if appt.CalendarEventID != "" {
		return appt.CalendarEventID, nil
	}

	title := appt.Metadata["service_name"]
	if title == "" {
		title = "Appointment"
	}
	if appt.PatientName != "" {
		title = title + " - " + appt.PatientName
	}

	created, err := s.Client.CreateEvent(ctx, appt.ClinicID, &models.RemoteEvent{
		Title:          title,
		Description:    "Booked via clinicflow",
		Start:          appt.ScheduledStart,
		End:            appt.ScheduledEnd,
		Status:         models.EventStatusConfirmed,
		AppointmentID:  appt.ID,
		ProfessionalID: appt.ProfessionalID,
		ClinicID:       appt.ClinicID,
	})
	if err != nil {
		return "", err
	}

	now := s.now()
	event := &models.CalendarEvent{
		ID:              uuid.New().String(),
		ClinicID:        appt.ClinicID,
		AppointmentID:   appt.ID,
		ProfessionalID:  appt.ProfessionalID,
		ExternalEventID: created.ID,
		Title:           title,
		Start:           appt.ScheduledStart,
		End:             appt.ScheduledEnd,
		Status:          models.EventStatusConfirmed,
		SyncStatus:      models.SyncStatusSynced,
		LastSyncAt:      now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Events.Create(ctx, event); err != nil {
		return "", err
	}
	if err := s.Appointments.SetCalendarEventID(ctx, appt.ID, event.ID); err != nil {
		return "", err
	}
	appt.CalendarEventID = event.ID
	return event.ID, nil
}

// CancelAppointment cancels a booked appointment. The mirrored calendar event
// is marked cancelled with a pending sync status; the next bidirectional sync
// pass propagates the deletion to the remote calendar. The local status change
// is the durability boundary, so a mirror failure never fails the cancel.
func (s *SyncEngine) CancelAppointment(ctx context.Context, appointmentID string) error {
	logger := utils.GetLogger()

	appt, err := s.Appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	if appt.Status == models.AppointmentStatusCancelled {
		return nil
	}
	if err := s.Appointments.UpdateStatus(ctx, appointmentID, models.AppointmentStatusCancelled); err != nil {
		return err
	}

	if appt.CalendarEventID != "" {
		if err := s.Events.MarkCancelled(ctx, appt.CalendarEventID, models.SyncStatusPending); err != nil {
			logger.Warn("failed to mark mirrored event cancelled",
				zap.String("appointmentID", appointmentID),
				zap.String("eventID", appt.CalendarEventID), zap.Error(err))
		}
	}

	logger.Info("appointment cancelled",
		zap.String("appointmentID", appointmentID), zap.String("clinicID", appt.ClinicID))
	return nil
}

// PushAppointments publishes every confirmed appointment in range that has no
// calendar event yet. It picks up bookings whose confirm-time publish was
// deferred by an open breaker or a remote outage.
func (s *SyncEngine) PushAppointments(ctx context.Context, clinicID string, start, end time.Time) (int, error) {
	logger := utils.GetLogger()

	unsynced, err := s.Appointments.ListUnsynced(ctx, clinicID, start, end)
	if err != nil {
		return 0, err
	}

	pushed := 0
	for i := range unsynced {
		appt := &unsynced[i]
		if _, err := s.PublishAppointment(ctx, appt); err != nil {
			logger.Warn("failed to push appointment to calendar",
				zap.String("appointmentID", appt.ID), zap.Error(err))
			continue
		}
		pushed++
	}
	return pushed, nil
}
