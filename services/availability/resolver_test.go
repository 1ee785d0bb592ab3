package availability

import (
	"context"
	"testing"
	"time"

	clinicRepo "clinicflow/database/repository/clinic"
	"clinicflow/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	clinic        *models.Clinic
	services      []models.Service
	professionals []models.Professional
}

func (d *fakeDirectory) GetClinic(ctx context.Context, id string) (*models.Clinic, error) {
	if d.clinic == nil || d.clinic.ID != id {
		return nil, clinicRepo.ErrNotFound
	}
	return d.clinic, nil
}

func (d *fakeDirectory) ListClinics(ctx context.Context) ([]models.Clinic, error) {
	return []models.Clinic{*d.clinic}, nil
}

func (d *fakeDirectory) GetService(ctx context.Context, clinicID, serviceID string) (*models.Service, error) {
	for i := range d.services {
		if d.services[i].ID == serviceID {
			return &d.services[i], nil
		}
	}
	return nil, clinicRepo.ErrNotFound
}

func (d *fakeDirectory) ListServices(ctx context.Context, clinicID, category string) ([]models.Service, error) {
	var out []models.Service
	for _, s := range d.services {
		if !s.IsActive {
			continue
		}
		if category != "" && s.Category != category {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (d *fakeDirectory) GetProfessional(ctx context.Context, clinicID, professionalID string) (*models.Professional, error) {
	for i := range d.professionals {
		if d.professionals[i].ID == professionalID {
			return &d.professionals[i], nil
		}
	}
	return nil, clinicRepo.ErrNotFound
}

func (d *fakeDirectory) ListProfessionals(ctx context.Context, clinicID string) ([]models.Professional, error) {
	return d.professionals, nil
}

type fakeAppointments struct {
	appts []models.Appointment
}

func (r *fakeAppointments) Create(ctx context.Context, appt *models.Appointment) error {
	r.appts = append(r.appts, *appt)
	return nil
}

func (r *fakeAppointments) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	return nil, nil
}

func (r *fakeAppointments) ListConfirmedInRange(ctx context.Context, clinicID string, start, end time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range r.appts {
		if a.Overlaps(start, end) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAppointments) ListForProfessional(ctx context.Context, clinicID, professionalID string, start, end time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range r.appts {
		if a.ProfessionalID == professionalID && a.Overlaps(start, end) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAppointments) ListUnsynced(ctx context.Context, clinicID string, start, end time.Time) ([]models.Appointment, error) {
	return nil, nil
}

func (r *fakeAppointments) CountForDay(ctx context.Context, clinicID string, dayStart, dayEnd time.Time) (int64, error) {
	var count int64
	for _, a := range r.appts {
		if a.Overlaps(dayStart, dayEnd) {
			count++
		}
	}
	return count, nil
}

func (r *fakeAppointments) UpdateStatus(ctx context.Context, id, status string) error {
	return nil
}

func (r *fakeAppointments) SetCalendarEventID(ctx context.Context, id, eventID string) error {
	return nil
}

type fakeEvents struct {
	events []models.CalendarEvent
}

func (r *fakeEvents) Create(ctx context.Context, event *models.CalendarEvent) error {
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeEvents) Update(ctx context.Context, event *models.CalendarEvent) error { return nil }

func (r *fakeEvents) GetByID(ctx context.Context, id string) (*models.CalendarEvent, error) {
	return nil, nil
}

func (r *fakeEvents) GetByExternalID(ctx context.Context, clinicID, externalID string) (*models.CalendarEvent, error) {
	return nil, nil
}

func (r *fakeEvents) ListInRange(ctx context.Context, clinicID string, start, end time.Time) ([]models.CalendarEvent, error) {
	return r.events, nil
}

func (r *fakeEvents) ListActiveInRange(ctx context.Context, clinicID string, start, end time.Time) ([]models.CalendarEvent, error) {
	var out []models.CalendarEvent
	for _, e := range r.events {
		if e.Overlaps(start, end) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEvents) MarkCancelled(ctx context.Context, id, syncStatus string) error { return nil }

// testNow is a Monday noon, so the whole test week sits inside the window.
var testNow = time.Date(2026, 9, 7, 12, 0, 0, 0, time.UTC)

func weekdayHours() map[string]models.WorkingHours {
	hours := map[string]models.WorkingHours{}
	for _, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday"} {
		hours[day] = models.WorkingHours{Open: "09:00", Close: "12:00"}
	}
	return hours
}

func newTestResolver() (*DefaultResolver, *fakeAppointments, *fakeEvents) {
	appts := &fakeAppointments{}
	events := &fakeEvents{}
	resolver := &DefaultResolver{
		Directory: &fakeDirectory{
			clinic: &models.Clinic{
				ID:           "clinic-1",
				Name:         "Downtown Clinic",
				Timezone:     "UTC",
				WorkingHours: weekdayHours(),
				Holidays:     []string{"2026-09-09"},
				Policy: models.AppointmentPolicy{
					MinAdvanceHours:        1,
					MaxAdvanceDays:         7,
					SlotGranularityMinutes: 30,
					MaxDailyAppointments:   10,
				},
			},
			services: []models.Service{
				{ID: "svc-1", ClinicID: "clinic-1", Name: "Consultation", Category: "general", Specialty: "dermatology", DurationMinutes: 30, IsActive: true},
				{ID: "svc-2", ClinicID: "clinic-1", Name: "Cleaning", Category: "dental", DurationMinutes: 60, IsActive: true},
				{ID: "svc-3", ClinicID: "clinic-1", Name: "Retired", Category: "general", DurationMinutes: 30, IsActive: false},
			},
			professionals: []models.Professional{
				{ID: "prof-1", ClinicID: "clinic-1", Name: "Dr. Silva", Specialties: []string{"Dermatology"}, IsActive: true, AcceptsNewPatients: true},
				{ID: "prof-2", ClinicID: "clinic-1", Name: "Dr. Costa", Specialties: []string{"cardiology"}, IsActive: true, AcceptsNewPatients: true},
				{ID: "prof-3", ClinicID: "clinic-1", Name: "Dr. Souza", Specialties: []string{"dermatology"}, IsActive: false, AcceptsNewPatients: true},
				{ID: "prof-4", ClinicID: "clinic-1", Name: "Dr. Lima", Specialties: []string{"dermatology"}, IsActive: true, AcceptsNewPatients: false},
			},
		},
		Appointments: appts,
		Events:       events,
		Clock:        func() time.Time { return testNow },
	}
	return resolver, appts, events
}

func TestGetAvailableServicesFiltersByCategory(t *testing.T) {
	resolver, _, _ := newTestResolver()

	services, err := resolver.GetAvailableServices(context.Background(), "clinic-1", "")
	require.NoError(t, err)
	assert.Len(t, services, 2)

	services, err = resolver.GetAvailableServices(context.Background(), "clinic-1", "dental")
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "svc-2", services[0].ID)
}

func TestGetAvailableProfessionalsMatchesSpecialty(t *testing.T) {
	resolver, _, _ := newTestResolver()

	// Specialty comparison is case-insensitive; inactive professionals and
	// those not accepting new patients are excluded.
	professionals, err := resolver.GetAvailableProfessionals(context.Background(), "clinic-1", "svc-1")
	require.NoError(t, err)
	require.Len(t, professionals, 1)
	assert.Equal(t, "prof-1", professionals[0].ID)
}

func TestGetAvailableProfessionalsNoSpecialtyRequirement(t *testing.T) {
	resolver, _, _ := newTestResolver()

	professionals, err := resolver.GetAvailableProfessionals(context.Background(), "clinic-1", "svc-2")
	require.NoError(t, err)
	assert.Len(t, professionals, 2)
}

func TestGetAvailableProfessionalsUnknownService(t *testing.T) {
	resolver, _, _ := newTestResolver()

	_, err := resolver.GetAvailableProfessionals(context.Background(), "clinic-1", "svc-missing")
	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "service", nfErr.Resource)
}

func TestGetAvailableTimesExcludesBookedSlots(t *testing.T) {
	resolver, appts, _ := newTestResolver()

	// prof-1 is booked 09:00 to 09:30 on the Thursday.
	appts.appts = append(appts.appts, models.Appointment{
		ID:             "appt-1",
		ClinicID:       "clinic-1",
		ProfessionalID: "prof-1",
		Status:         models.AppointmentStatusConfirmed,
		ScheduledStart: time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC),
		ScheduledEnd:   time.Date(2026, 9, 10, 9, 30, 0, 0, time.UTC),
	})

	slots, err := resolver.GetAvailableTimes(context.Background(), "clinic-1", "svc-1", "prof-1", "2026-09-10")
	require.NoError(t, err)
	require.Len(t, slots, 5)
	assert.Equal(t, time.Date(2026, 9, 10, 9, 30, 0, 0, time.UTC), slots[0].Start)
	assert.Equal(t, time.Date(2026, 9, 10, 11, 30, 0, 0, time.UTC), slots[4].Start)
	for _, s := range slots {
		assert.Equal(t, 30, s.Duration)
		assert.Equal(t, 30*time.Minute, s.End.Sub(s.Start))
	}
}

func TestGetAvailableTimesClinicWideEventBlocksAll(t *testing.T) {
	resolver, _, events := newTestResolver()

	// An event with no professional blocks the whole clinic.
	events.events = append(events.events, models.CalendarEvent{
		ID:         "evt-1",
		ClinicID:   "clinic-1",
		Start:      time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC),
		End:        time.Date(2026, 9, 10, 11, 0, 0, 0, time.UTC),
		Status:     models.EventStatusConfirmed,
		SyncStatus: models.SyncStatusSynced,
	})

	slots, err := resolver.GetAvailableTimes(context.Background(), "clinic-1", "svc-1", "prof-1", "2026-09-10")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, time.Date(2026, 9, 10, 11, 0, 0, 0, time.UTC), slots[0].Start)
}

func TestGetAvailableTimesBufferExtendsBookedInterval(t *testing.T) {
	resolver, appts, _ := newTestResolver()
	clinic := resolver.Directory.(*fakeDirectory).clinic
	clinic.Policy.BufferMinutes = 30

	appts.appts = append(appts.appts, models.Appointment{
		ID:             "appt-1",
		ClinicID:       "clinic-1",
		ProfessionalID: "prof-1",
		Status:         models.AppointmentStatusConfirmed,
		ScheduledStart: time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC),
		ScheduledEnd:   time.Date(2026, 9, 10, 9, 30, 0, 0, time.UTC),
	})

	// With a 30 minute buffer the 09:30 slot is also blocked.
	slots, err := resolver.GetAvailableTimes(context.Background(), "clinic-1", "svc-1", "prof-1", "2026-09-10")
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	assert.Equal(t, time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC), slots[0].Start)
}

func TestGetAvailableTimesNonWorkingDay(t *testing.T) {
	resolver, _, _ := newTestResolver()

	// Saturday.
	slots, err := resolver.GetAvailableTimes(context.Background(), "clinic-1", "svc-1", "prof-1", "2026-09-12")
	require.NoError(t, err)
	assert.Empty(t, slots)

	// Holiday.
	slots, err = resolver.GetAvailableTimes(context.Background(), "clinic-1", "svc-1", "prof-1", "2026-09-09")
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGetAvailableTimesLongerServiceFitsWindow(t *testing.T) {
	resolver, _, _ := newTestResolver()

	// 60 minute service inside a 09:00 to 12:00 window: last start is 11:00.
	slots, err := resolver.GetAvailableTimes(context.Background(), "clinic-1", "svc-2", "prof-1", "2026-09-10")
	require.NoError(t, err)
	require.Len(t, slots, 5)
	assert.Equal(t, time.Date(2026, 9, 10, 11, 0, 0, 0, time.UTC), slots[4].Start)
}

func TestGetAvailableDatesRespectsWindowAndHolidays(t *testing.T) {
	resolver, _, _ := newTestResolver()

	dates, err := resolver.GetAvailableDates(context.Background(), "clinic-1", "svc-1", "prof-1")
	require.NoError(t, err)

	got := map[string]bool{}
	for _, d := range dates {
		got[d.Date] = true
	}
	// Monday the 7th has no slot past the advance notice, the 9th is a
	// holiday, the 12th and 13th fall on a weekend.
	assert.False(t, got["2026-09-07"])
	assert.False(t, got["2026-09-09"])
	assert.False(t, got["2026-09-12"])
	assert.False(t, got["2026-09-13"])
	assert.True(t, got["2026-09-08"])
	assert.True(t, got["2026-09-10"])
	assert.True(t, got["2026-09-14"])
}

func TestGetAvailableDatesUnknownClinic(t *testing.T) {
	resolver, _, _ := newTestResolver()

	_, err := resolver.GetAvailableDates(context.Background(), "clinic-missing", "svc-1", "")
	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "clinic", nfErr.Resource)
}
