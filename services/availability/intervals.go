package availability

import (
	"context"
	"sort"
	"strings"
	"time"

	"clinicflow/models"
)

// interval is a booked [Start, End) block, already inflated with the buffer.
type interval struct {
	Start time.Time
	End   time.Time
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func isWorkingDay(clinic *models.Clinic, day time.Time) bool {
	dateStr := day.Format("2006-01-02")
	for _, h := range clinic.Holidays {
		if h == dateStr {
			return false
		}
	}
	_, ok := clinic.WorkingHours[strings.ToLower(day.Weekday().String())]
	return ok
}

// workingWindow resolves the clinic's opening window for the day as absolute
// times in the clinic's location.
func workingWindow(clinic *models.Clinic, day time.Time) (time.Time, time.Time, bool) {
	wh, ok := clinic.WorkingHours[strings.ToLower(day.Weekday().String())]
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	open, err := atClock(day, wh.Open)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	closeAt, err := atClock(day, wh.Close)
	if err != nil || !open.Before(closeAt) {
		return time.Time{}, time.Time{}, false
	}
	return open, closeAt, true
}

func atClock(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

// busyIntervals collects confirmed appointments for the professional plus
// synced calendar events (events without a professional block the whole
// clinic), each extended by the buffer.
func (r *DefaultResolver) busyIntervals(ctx context.Context, clinicID, professionalID string, start, end time.Time, buffer time.Duration) ([]interval, error) {
	appts, err := r.Appointments.ListForProfessional(ctx, clinicID, professionalID, start, end)
	if err != nil {
		return nil, err
	}
	events, err := r.Events.ListActiveInRange(ctx, clinicID, start, end)
	if err != nil {
		return nil, err
	}

	var busy []interval
	for _, a := range appts {
		busy = append(busy, interval{Start: a.ScheduledStart, End: a.ScheduledEnd.Add(buffer)})
	}
	for _, e := range events {
		if e.ProfessionalID != "" && e.ProfessionalID != professionalID {
			continue
		}
		// Skip events mirroring an appointment already counted above.
		if e.AppointmentID != "" && e.ProfessionalID == professionalID {
			continue
		}
		busy = append(busy, interval{Start: e.Start, End: e.End.Add(buffer)})
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].Start.Before(busy[j].Start) })
	return busy, nil
}

// overlapsAny applies the half-open test: slot.start < busy.end && slot.end > busy.start.
func overlapsAny(busy []interval, start, end time.Time) bool {
	for _, b := range busy {
		if start.Before(b.End) && end.After(b.Start) {
			return true
		}
	}
	return false
}

func sortSlots(slots []models.AvailableSlot) {
	sort.Slice(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })
}
