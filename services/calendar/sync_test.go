package calendar

import (
	"context"
	"fmt"
	"testing"
	"time"

	"clinicflow/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memEventRepo is an in-memory CalendarEventRepository.
type memEventRepo struct {
	events map[string]*models.CalendarEvent
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{events: map[string]*models.CalendarEvent{}}
}

func (r *memEventRepo) Create(ctx context.Context, event *models.CalendarEvent) error {
	cp := *event
	r.events[event.ID] = &cp
	return nil
}

func (r *memEventRepo) Update(ctx context.Context, event *models.CalendarEvent) error {
	cp := *event
	r.events[event.ID] = &cp
	return nil
}

func (r *memEventRepo) GetByID(ctx context.Context, id string) (*models.CalendarEvent, error) {
	if e, ok := r.events[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, assert.AnError
}

func (r *memEventRepo) GetByExternalID(ctx context.Context, clinicID, externalID string) (*models.CalendarEvent, error) {
	for _, e := range r.events {
		if e.ClinicID == clinicID && e.ExternalEventID == externalID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memEventRepo) ListInRange(ctx context.Context, clinicID string, start, end time.Time) ([]models.CalendarEvent, error) {
	var out []models.CalendarEvent
	for _, e := range r.events {
		if e.ClinicID == clinicID && e.Start.Before(end) && e.End.After(start) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *memEventRepo) ListActiveInRange(ctx context.Context, clinicID string, start, end time.Time) ([]models.CalendarEvent, error) {
	var out []models.CalendarEvent
	for _, e := range r.events {
		if e.ClinicID == clinicID && e.Start.Before(end) && e.End.After(start) &&
			e.Status != models.EventStatusCancelled && e.SyncStatus == models.SyncStatusSynced {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *memEventRepo) MarkCancelled(ctx context.Context, id, syncStatus string) error {
	e, ok := r.events[id]
	if !ok {
		return assert.AnError
	}
	e.Status = models.EventStatusCancelled
	e.SyncStatus = syncStatus
	return nil
}

// memApptRepo is an in-memory AppointmentRepository.
type memApptRepo struct {
	appts map[string]*models.Appointment
}

func newMemApptRepo() *memApptRepo {
	return &memApptRepo{appts: map[string]*models.Appointment{}}
}

func (r *memApptRepo) Create(ctx context.Context, appt *models.Appointment) error {
	cp := *appt
	r.appts[appt.ID] = &cp
	return nil
}

func (r *memApptRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	if a, ok := r.appts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, assert.AnError
}

func (r *memApptRepo) ListConfirmedInRange(ctx context.Context, clinicID string, start, end time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range r.appts {
		if a.ClinicID == clinicID && a.Status == models.AppointmentStatusConfirmed && a.Overlaps(start, end) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memApptRepo) ListForProfessional(ctx context.Context, clinicID, professionalID string, start, end time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range r.appts {
		if a.ClinicID == clinicID && a.ProfessionalID == professionalID &&
			a.Status == models.AppointmentStatusConfirmed && a.Overlaps(start, end) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memApptRepo) ListUnsynced(ctx context.Context, clinicID string, start, end time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range r.appts {
		if a.ClinicID == clinicID && a.Status == models.AppointmentStatusConfirmed &&
			a.CalendarEventID == "" && a.Overlaps(start, end) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memApptRepo) CountForDay(ctx context.Context, clinicID string, dayStart, dayEnd time.Time) (int64, error) {
	var count int64
	for _, a := range r.appts {
		if a.ClinicID == clinicID && a.Status != models.AppointmentStatusCancelled && a.Overlaps(dayStart, dayEnd) {
			count++
		}
	}
	return count, nil
}

func (r *memApptRepo) UpdateStatus(ctx context.Context, id, status string) error {
	a, ok := r.appts[id]
	if !ok {
		return assert.AnError
	}
	a.Status = status
	return nil
}

func (r *memApptRepo) SetCalendarEventID(ctx context.Context, id, eventID string) error {
	a, ok := r.appts[id]
	if !ok {
		return assert.AnError
	}
	a.CalendarEventID = eventID
	return nil
}

// memRemote is a fake remote calendar whose listing is scripted per test.
type memRemote struct {
	listed  []models.RemoteEvent
	listErr error
	created []models.RemoteEvent
	deleted []string
	nextID  int
}

func (r *memRemote) CreateEvent(ctx context.Context, clinicID string, ev *models.RemoteEvent) (*models.RemoteEvent, error) {
	r.nextID++
	created := *ev
	created.ID = fmt.Sprintf("ext-%d", r.nextID)
	r.created = append(r.created, created)
	return &created, nil
}

func (r *memRemote) UpdateEvent(ctx context.Context, clinicID, eventID string, ev *models.RemoteEvent) (*models.RemoteEvent, error) {
	return ev, nil
}

func (r *memRemote) DeleteEvent(ctx context.Context, clinicID, eventID string) error {
	r.deleted = append(r.deleted, eventID)
	return nil
}

func (r *memRemote) ListEvents(ctx context.Context, clinicID string, start, end time.Time) ([]models.RemoteEvent, error) {
	return r.listed, r.listErr
}

func newTestEngine() (*SyncEngine, *memRemote, *memEventRepo, *memApptRepo) {
	remote := &memRemote{}
	events := newMemEventRepo()
	appts := newMemApptRepo()
	engine := &SyncEngine{
		Client:       remote,
		Events:       events,
		Appointments: appts,
	}
	return engine, remote, events, appts
}

var (
	windowStart = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
)

func remoteConsult(id string) models.RemoteEvent {
	return models.RemoteEvent{
		ID:     id,
		Title:  "Consultation",
		Start:  time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC),
		End:    time.Date(2026, 9, 10, 9, 30, 0, 0, time.UTC),
		Status: models.EventStatusConfirmed,
	}
}

func TestSyncEventsImportsNewRemoteEvents(t *testing.T) {
	engine, remote, events, _ := newTestEngine()
	remote.listed = []models.RemoteEvent{remoteConsult("ext-a")}

	summary, err := engine.SyncEvents(context.Background(), "clinic-1", windowStart, windowEnd)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Zero(t, summary.Updated)
	assert.Zero(t, summary.Errors)

	local, err := events.GetByExternalID(context.Background(), "clinic-1", "ext-a")
	require.NoError(t, err)
	require.NotNil(t, local)
	assert.Equal(t, models.SyncStatusSynced, local.SyncStatus)
	assert.Equal(t, "Consultation", local.Title)
}

func TestSyncEventsIsIdempotent(t *testing.T) {
	engine, remote, events, _ := newTestEngine()
	remote.listed = []models.RemoteEvent{remoteConsult("ext-a")}

	_, err := engine.SyncEvents(context.Background(), "clinic-1", windowStart, windowEnd)
	require.NoError(t, err)

	summary, err := engine.SyncEvents(context.Background(), "clinic-1", windowStart, windowEnd)
	require.NoError(t, err)
	assert.Zero(t, summary.Created)
	assert.Zero(t, summary.Updated)
	assert.Zero(t, summary.Deleted)
	assert.Len(t, events.events, 1)
}

func TestSyncEventsUpdatesChangedRemoteEvents(t *testing.T) {
	engine, remote, events, _ := newTestEngine()
	remote.listed = []models.RemoteEvent{remoteConsult("ext-a")}

	_, err := engine.SyncEvents(context.Background(), "clinic-1", windowStart, windowEnd)
	require.NoError(t, err)

	moved := remoteConsult("ext-a")
	moved.Start = moved.Start.Add(time.Hour)
	moved.End = moved.End.Add(time.Hour)
	remote.listed = []models.RemoteEvent{moved}

	summary, err := engine.SyncEvents(context.Background(), "clinic-1", windowStart, windowEnd)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)

	local, err := events.GetByExternalID(context.Background(), "clinic-1", "ext-a")
	require.NoError(t, err)
	assert.True(t, local.Start.Equal(moved.Start))
}

func TestSyncEventsSoftDeletesCancelledRemoteEvents(t *testing.T) {
	engine, remote, events, appts := newTestEngine()

	// A local appointment mirrored by the remote event.
	require.NoError(t, appts.Create(context.Background(), &models.Appointment{
		ID:             "appt-1",
		ClinicID:       "clinic-1",
		Status:         models.AppointmentStatusConfirmed,
		ScheduledStart: time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC),
		ScheduledEnd:   time.Date(2026, 9, 10, 9, 30, 0, 0, time.UTC),
	}))
	ev := remoteConsult("ext-a")
	ev.AppointmentID = "appt-1"
	remote.listed = []models.RemoteEvent{ev}
	_, err := engine.SyncEvents(context.Background(), "clinic-1", windowStart, windowEnd)
	require.NoError(t, err)

	cancelled := ev
	cancelled.Status = models.EventStatusCancelled
	remote.listed = []models.RemoteEvent{cancelled}

	summary, err := engine.SyncEvents(context.Background(), "clinic-1", windowStart, windowEnd)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Deleted)

	local, err := events.GetByExternalID(context.Background(), "clinic-1", "ext-a")
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusCancelled, local.Status)
	assert.Equal(t, models.SyncStatusDeletedFromRemote, local.SyncStatus)

	appt, err := appts.GetByID(context.Background(), "appt-1")
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCancelled, appt.Status)
}

func TestSyncEventsSoftDeletesVanishedRemoteEventsWhenBidirectional(t *testing.T) {
	engine, remote, events, _ := newTestEngine()
	engine.Bidirectional = true
	remote.listed = []models.RemoteEvent{remoteConsult("ext-a")}

	_, err := engine.SyncEvents(context.Background(), "clinic-1", windowStart, windowEnd)
	require.NoError(t, err)

	remote.listed = nil
	summary, err := engine.SyncEvents(context.Background(), "clinic-1", windowStart, windowEnd)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Deleted)

	local, err := events.GetByExternalID(context.Background(), "clinic-1", "ext-a")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusDeletedFromRemote, local.SyncStatus)
}

func TestSyncEventsKeepsVanishedRemoteEventsByDefault(t *testing.T) {
	engine, remote, events, _ := newTestEngine()
	remote.listed = []models.RemoteEvent{remoteConsult("ext-a")}

	_, err := engine.SyncEvents(context.Background(), "clinic-1", windowStart, windowEnd)
	require.NoError(t, err)

	// Without bidirectional sync a listing gap must not cancel local mirrors.
	remote.listed = nil
	summary, err := engine.SyncEvents(context.Background(), "clinic-1", windowStart, windowEnd)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Deleted)

	local, err := events.GetByExternalID(context.Background(), "clinic-1", "ext-a")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSynced, local.SyncStatus)
	assert.Equal(t, models.EventStatusConfirmed, local.Status)
}

func TestSyncEventsPushesLocalCancellationsWhenBidirectional(t *testing.T) {
	engine, remote, events, _ := newTestEngine()
	engine.Bidirectional = true
	ctx := context.Background()

	// A locally cancelled event still present on the remote calendar.
	require.NoError(t, events.Create(ctx, &models.CalendarEvent{
		ID:              "evt-1",
		ClinicID:        "clinic-1",
		ExternalEventID: "ext-a",
		Start:           time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC),
		End:             time.Date(2026, 9, 10, 9, 30, 0, 0, time.UTC),
		Status:          models.EventStatusCancelled,
		SyncStatus:      models.SyncStatusPending,
	}))
	remote.listed = []models.RemoteEvent{remoteConsult("ext-a")}

	summary, err := engine.SyncEvents(ctx, "clinic-1", windowStart, windowEnd)
	require.NoError(t, err)
	assert.Equal(t, []string{"ext-a"}, remote.deleted)
	assert.Equal(t, 1, summary.Deleted)

	local, err := events.GetByExternalID(ctx, "clinic-1", "ext-a")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSynced, local.SyncStatus)
}

func TestSyncEventsPropagatesListFailure(t *testing.T) {
	engine, remote, _, _ := newTestEngine()
	remote.listErr = assert.AnError

	_, err := engine.SyncEvents(context.Background(), "clinic-1", windowStart, windowEnd)
	assert.Error(t, err)
}

func TestGetConflictsExcludesAppointment(t *testing.T) {
	engine, _, events, appts := newTestEngine()
	ctx := context.Background()

	start := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)
	require.NoError(t, appts.Create(ctx, &models.Appointment{
		ID:             "appt-1",
		ClinicID:       "clinic-1",
		ProfessionalID: "prof-1",
		Status:         models.AppointmentStatusConfirmed,
		ScheduledStart: start,
		ScheduledEnd:   end,
	}))
	require.NoError(t, events.Create(ctx, &models.CalendarEvent{
		ID:         "evt-1",
		ClinicID:   "clinic-1",
		Start:      start.Add(15 * time.Minute),
		End:        end.Add(15 * time.Minute),
		Status:     models.EventStatusConfirmed,
		SyncStatus: models.SyncStatusSynced,
	}))

	conflicts, err := engine.GetConflicts(ctx, "clinic-1", start, end, "")
	require.NoError(t, err)
	assert.Len(t, conflicts, 2)

	conflicts, err = engine.GetConflicts(ctx, "clinic-1", start, end, "appt-1")
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "calendar_event", conflicts[0].Source)

	// Adjacent intervals do not conflict under half-open comparison.
	conflicts, err = engine.GetConflicts(ctx, "clinic-1", end.Add(15*time.Minute), end.Add(45*time.Minute), "")
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestGetConflictsSkipsMirroredEvents(t *testing.T) {
	engine, _, events, appts := newTestEngine()
	ctx := context.Background()

	start := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)
	require.NoError(t, appts.Create(ctx, &models.Appointment{
		ID:             "appt-1",
		ClinicID:       "clinic-1",
		Status:         models.AppointmentStatusConfirmed,
		ScheduledStart: start,
		ScheduledEnd:   end,
	}))
	require.NoError(t, events.Create(ctx, &models.CalendarEvent{
		ID:            "evt-1",
		ClinicID:      "clinic-1",
		AppointmentID: "appt-1",
		Start:         start,
		End:           end,
		Status:        models.EventStatusConfirmed,
		SyncStatus:    models.SyncStatusSynced,
	}))

	// The appointment and its mirror count once, not twice.
	conflicts, err := engine.GetConflicts(ctx, "clinic-1", start, end, "")
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "appointment", conflicts[0].Source)
}

func TestPublishAppointmentIsIdempotent(t *testing.T) {
	engine, remote, events, appts := newTestEngine()
	ctx := context.Background()

	appt := &models.Appointment{
		ID:             "appt-1",
		ClinicID:       "clinic-1",
		ProfessionalID: "prof-1",
		PatientName:    "Maria",
		Status:         models.AppointmentStatusConfirmed,
		ScheduledStart: time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC),
		ScheduledEnd:   time.Date(2026, 9, 10, 9, 30, 0, 0, time.UTC),
		Metadata:       map[string]string{"service_name": "Consultation"},
	}
	require.NoError(t, appts.Create(ctx, appt))

	eventID, err := engine.PublishAppointment(ctx, appt)
	require.NoError(t, err)
	require.NotEmpty(t, eventID)
	require.Len(t, remote.created, 1)
	assert.Equal(t, "appt-1", remote.created[0].AppointmentID)
	assert.Equal(t, "Consultation - Maria", remote.created[0].Title)

	stored, err := appts.GetByID(ctx, "appt-1")
	require.NoError(t, err)
	assert.Equal(t, eventID, stored.CalendarEventID)

	// Publishing again creates nothing new.
	again, err := engine.PublishAppointment(ctx, appt)
	require.NoError(t, err)
	assert.Equal(t, eventID, again)
	assert.Len(t, remote.created, 1)
	assert.Len(t, events.events, 1)
}

func TestCancelAppointmentMarksMirrorPendingAndPushes(t *testing.T) {
	engine, remote, events, appts := newTestEngine()
	ctx := context.Background()

	require.NoError(t, appts.Create(ctx, &models.Appointment{
		ID:              "appt-1",
		ClinicID:        "clinic-1",
		Status:          models.AppointmentStatusConfirmed,
		CalendarEventID: "evt-1",
		ScheduledStart:  time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC),
		ScheduledEnd:    time.Date(2026, 9, 10, 9, 30, 0, 0, time.UTC),
	}))
	require.NoError(t, events.Create(ctx, &models.CalendarEvent{
		ID:              "evt-1",
		ClinicID:        "clinic-1",
		AppointmentID:   "appt-1",
		ExternalEventID: "ext-a",
		Start:           time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC),
		End:             time.Date(2026, 9, 10, 9, 30, 0, 0, time.UTC),
		Status:          models.EventStatusConfirmed,
		SyncStatus:      models.SyncStatusSynced,
	}))

	require.NoError(t, engine.CancelAppointment(ctx, "appt-1"))

	appt, err := appts.GetByID(ctx, "appt-1")
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCancelled, appt.Status)

	mirror, err := events.GetByID(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusCancelled, mirror.Status)
	assert.Equal(t, models.SyncStatusPending, mirror.SyncStatus)

	// Cancelling again is a no-op.
	require.NoError(t, engine.CancelAppointment(ctx, "appt-1"))

	// The next bidirectional pass propagates the deletion to the remote.
	engine.Bidirectional = true
	remote.listed = []models.RemoteEvent{remoteConsult("ext-a")}
	summary, err := engine.SyncEvents(ctx, "clinic-1", windowStart, windowEnd)
	require.NoError(t, err)
	assert.Equal(t, []string{"ext-a"}, remote.deleted)
	assert.Equal(t, 1, summary.Deleted)

	mirror, err = events.GetByID(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSynced, mirror.SyncStatus)
}

func TestPushAppointmentsPublishesOnlyUnsynced(t *testing.T) {
	engine, remote, _, appts := newTestEngine()
	ctx := context.Background()

	require.NoError(t, appts.Create(ctx, &models.Appointment{
		ID:             "appt-1",
		ClinicID:       "clinic-1",
		Status:         models.AppointmentStatusConfirmed,
		ScheduledStart: time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC),
		ScheduledEnd:   time.Date(2026, 9, 10, 9, 30, 0, 0, time.UTC),
	}))
	require.NoError(t, appts.Create(ctx, &models.Appointment{
		ID:              "appt-2",
		ClinicID:        "clinic-1",
		Status:          models.AppointmentStatusConfirmed,
		CalendarEventID: "already-synced",
		ScheduledStart:  time.Date(2026, 9, 11, 9, 0, 0, 0, time.UTC),
		ScheduledEnd:    time.Date(2026, 9, 11, 9, 30, 0, 0, time.UTC),
	}))

	pushed, err := engine.PushAppointments(ctx, "clinic-1", windowStart, windowEnd)
	require.NoError(t, err)
	assert.Equal(t, 1, pushed)
	assert.Len(t, remote.created, 1)
	assert.Equal(t, "appt-1", remote.created[0].AppointmentID)
}
