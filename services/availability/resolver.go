package availability

import (
	"context"
	"errors"
	"strings"
	"time"

	"clinicflow/config"
	appointmentRepo "clinicflow/database/repository/appointment"
	calendareventRepo "clinicflow/database/repository/calendarevent"
	clinicRepo "clinicflow/database/repository/clinic"
	"clinicflow/models"
)

// Resolver computes qualified professionals, open dates and free time slots
// given clinic policy and existing bookings.
type Resolver interface {
	GetAvailableServices(ctx context.Context, clinicID, category string) ([]models.Service, error)
	GetAvailableProfessionals(ctx context.Context, clinicID, serviceID string) ([]models.Professional, error)
	GetAvailableDates(ctx context.Context, clinicID, serviceID, professionalID string) ([]models.AvailableDate, error)
	GetAvailableTimes(ctx context.Context, clinicID, serviceID, professionalID, date string) ([]models.AvailableSlot, error)
}

// DefaultResolver implements Resolver against the clinic directory and the
// appointment/calendar stores.
type DefaultResolver struct {
	Directory    clinicRepo.DirectoryRepository
	Appointments appointmentRepo.AppointmentRepository
	Events       calendareventRepo.CalendarEventRepository
	// Clock is injectable for tests; defaults to time.Now.
	Clock func() time.Time
}

func (r *DefaultResolver) now() time.Time {
	if r.Clock != nil {
		return r.Clock()
	}
	return time.Now()
}

// GetAvailableServices lists active services, optionally filtered by category.
func (r *DefaultResolver) GetAvailableServices(ctx context.Context, clinicID, category string) ([]models.Service, error) {
	services, err := r.Directory.ListServices(ctx, clinicID, category)
	if err != nil {
		return nil, err
	}
	return services, nil
}

// GetAvailableProfessionals returns professionals with active status, accepting
// new patients, whose specialties cover the service's required specialty. A
// service without a specialty requirement matches every active professional.
func (r *DefaultResolver) GetAvailableProfessionals(ctx context.Context, clinicID, serviceID string) ([]models.Professional, error) {
	svc, err := r.Directory.GetService(ctx, clinicID, serviceID)
	if err != nil {
		if errors.Is(err, clinicRepo.ErrNotFound) {
			return nil, &NotFoundError{Resource: "service", ID: serviceID}
		}
		return nil, err
	}

	professionals, err := r.Directory.ListProfessionals(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	var available []models.Professional
	for _, p := range professionals {
		if !p.IsActive || !p.AcceptsNewPatients {
			continue
		}
		if svc.Specialty != "" && !hasSpecialty(p, svc.Specialty) {
			continue
		}
		available = append(available, p)
	}
	return available, nil
}

func hasSpecialty(p models.Professional, specialty string) bool {
	for _, s := range p.Specialties {
		if strings.EqualFold(s, specialty) {
			return true
		}
	}
	return false
}

// GetAvailableDates walks the clinic's booking window and keeps dates that are
// working days, under the daily cap, and have at least one free slot of the
// service's duration. professionalID may be empty to consider any qualified
// professional.
func (r *DefaultResolver) GetAvailableDates(ctx context.Context, clinicID, serviceID, professionalID string) ([]models.AvailableDate, error) {
	clinic, err := r.Directory.GetClinic(ctx, clinicID)
	if err != nil {
		if errors.Is(err, clinicRepo.ErrNotFound) {
			return nil, &NotFoundError{Resource: "clinic", ID: clinicID}
		}
		return nil, err
	}
	loc, err := time.LoadLocation(clinic.Timezone)
	if err != nil {
		return nil, err
	}

	policy := r.effectivePolicy(clinic)
	now := r.now().In(loc)
	minDate := now.Add(time.Duration(policy.MinAdvanceHours) * time.Hour)
	maxDate := now.AddDate(0, 0, policy.MaxAdvanceDays)

	var dates []models.AvailableDate
	for d := startOfDay(minDate); !d.After(maxDate); d = d.AddDate(0, 0, 1) {
		if !isWorkingDay(clinic, d) {
			continue
		}
		dayEnd := d.AddDate(0, 0, 1)
		count, err := r.Appointments.CountForDay(ctx, clinicID, d, dayEnd)
		if err != nil {
			return nil, err
		}
		if int(count) >= policy.MaxDailyAppointments {
			continue
		}
		slots, err := r.GetAvailableTimes(ctx, clinicID, serviceID, professionalID, d.Format("2006-01-02"))
		if err != nil {
			return nil, err
		}
		if len(slots) == 0 {
			continue
		}
		dates = append(dates, models.AvailableDate{
			Date:           d.Format("2006-01-02"),
			DayName:        strings.ToLower(d.Weekday().String()),
			AvailableSlots: policy.MaxDailyAppointments - int(count),
		})
	}
	return dates, nil
}

// GetAvailableTimes generates candidate slots of the service's duration by
// stepping the configured granularity across the clinic's working hours for
// the date, in clinic time. Slots overlapping a confirmed appointment or a
// synced calendar event (plus the buffer after each booked interval) are
// excluded, as are slots inside the minimum advance notice.
func (r *DefaultResolver) GetAvailableTimes(ctx context.Context, clinicID, serviceID, professionalID, date string) ([]models.AvailableSlot, error) {
	clinic, err := r.Directory.GetClinic(ctx, clinicID)
	if err != nil {
		if errors.Is(err, clinicRepo.ErrNotFound) {
			return nil, &NotFoundError{Resource: "clinic", ID: clinicID}
		}
		return nil, err
	}
	svc, err := r.Directory.GetService(ctx, clinicID, serviceID)
	if err != nil {
		if errors.Is(err, clinicRepo.ErrNotFound) {
			return nil, &NotFoundError{Resource: "service", ID: serviceID}
		}
		return nil, err
	}

	loc, err := time.LoadLocation(clinic.Timezone)
	if err != nil {
		return nil, err
	}
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, err
	}
	if !isWorkingDay(clinic, day) {
		return nil, nil
	}

	professionals, err := r.candidateProfessionals(ctx, clinicID, serviceID, professionalID)
	if err != nil {
		return nil, err
	}

	policy := r.effectivePolicy(clinic)
	dayOpen, dayClose, ok := workingWindow(clinic, day)
	if !ok {
		return nil, nil
	}

	duration := time.Duration(svc.DurationMinutes) * time.Minute
	granularity := time.Duration(policy.SlotGranularityMinutes) * time.Minute
	buffer := time.Duration(policy.BufferMinutes) * time.Minute
	minStart := r.now().In(loc).Add(time.Duration(policy.MinAdvanceHours) * time.Hour)

	seen := make(map[int64]bool)
	var slots []models.AvailableSlot
	for _, p := range professionals {
		busy, err := r.busyIntervals(ctx, clinicID, p.ID, day, day.AddDate(0, 0, 1), buffer)
		if err != nil {
			return nil, err
		}
		for t := dayOpen; !t.Add(duration).After(dayClose); t = t.Add(granularity) {
			slotEnd := t.Add(duration)
			if t.Before(minStart) {
				continue
			}
			if overlapsAny(busy, t, slotEnd) {
				continue
			}
			if seen[t.Unix()] {
				continue
			}
			seen[t.Unix()] = true
			slots = append(slots, models.AvailableSlot{Start: t, End: slotEnd, Duration: svc.DurationMinutes})
		}
	}
	sortSlots(slots)
	return slots, nil
}

func (r *DefaultResolver) candidateProfessionals(ctx context.Context, clinicID, serviceID, professionalID string) ([]models.Professional, error) {
	if professionalID != "" {
		p, err := r.Directory.GetProfessional(ctx, clinicID, professionalID)
		if err != nil {
			if errors.Is(err, clinicRepo.ErrNotFound) {
				return nil, &NotFoundError{Resource: "professional", ID: professionalID}
			}
			return nil, err
		}
		return []models.Professional{*p}, nil
	}
	return r.GetAvailableProfessionals(ctx, clinicID, serviceID)
}

func (r *DefaultResolver) effectivePolicy(clinic *models.Clinic) models.AppointmentPolicy {
	p := clinic.Policy
	if p.MinAdvanceHours == 0 {
		p.MinAdvanceHours = config.AppConfig.MinAdvanceHours
	}
	if p.MaxAdvanceDays == 0 {
		p.MaxAdvanceDays = config.AppConfig.MaxAdvanceDays
	}
	if p.SlotGranularityMinutes == 0 {
		p.SlotGranularityMinutes = config.AppConfig.SlotGranularityMinutes
	}
	if p.BufferMinutes == 0 {
		p.BufferMinutes = config.AppConfig.BufferMinutes
	}
	if p.MaxDailyAppointments == 0 {
		p.MaxDailyAppointments = config.AppConfig.MaxDailyAppointments
	}
	return p
}
