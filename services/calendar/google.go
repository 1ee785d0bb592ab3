package calendar

import (
	"context"
	"fmt"
	"time"

	"clinicflow/models"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const sourceTag = "clinicflow"

// GoogleCalendar talks to the Google Calendar API. Appointment linkage rides
// in the event's private extended properties, so sync passes can match remote
// events back to local records without parsing descriptions.
type GoogleCalendar struct {
	svc        *gcal.Service
	calendarID string
	timezone   string
}

func NewGoogleCalendar(ctx context.Context, credentialsFile, calendarID, timezone string) (*GoogleCalendar, error) {
	svc, err := gcal.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gcal.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize google calendar service: %w", err)
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	return &GoogleCalendar{svc: svc, calendarID: calendarID, timezone: timezone}, nil
}

func (g *GoogleCalendar) CreateEvent(ctx context.Context, clinicID string, ev *models.RemoteEvent) (*models.RemoteEvent, error) {
	created, err := g.svc.Events.Insert(g.calendarID, g.toGoogleEvent(clinicID, ev)).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return g.fromGoogleEvent(created)
}

func (g *GoogleCalendar) UpdateEvent(ctx context.Context, clinicID, eventID string, ev *models.RemoteEvent) (*models.RemoteEvent, error) {
	updated, err := g.svc.Events.Update(g.calendarID, eventID, g.toGoogleEvent(clinicID, ev)).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return g.fromGoogleEvent(updated)
}

func (g *GoogleCalendar) DeleteEvent(ctx context.Context, clinicID, eventID string) error {
	return g.svc.Events.Delete(g.calendarID, eventID).Context(ctx).Do()
}

func (g *GoogleCalendar) ListEvents(ctx context.Context, clinicID string, start, end time.Time) ([]models.RemoteEvent, error) {
	var events []models.RemoteEvent
	pageToken := ""
	for {
		call := g.svc.Events.List(g.calendarID).
			TimeMin(start.Format(time.RFC3339)).
			TimeMax(end.Format(time.RFC3339)).
			SingleEvents(true).
			ShowDeleted(true).
			OrderBy("startTime").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, err
		}
		for _, item := range resp.Items {
			ev, err := g.fromGoogleEvent(item)
			if err != nil {
				continue // all-day events carry no usable time bounds
			}
			events = append(events, *ev)
		}
		if resp.NextPageToken == "" {
			return events, nil
		}
		pageToken = resp.NextPageToken
	}
}

func (g *GoogleCalendar) toGoogleEvent(clinicID string, ev *models.RemoteEvent) *gcal.Event {
	private := map[string]string{
		"source":    sourceTag,
		"clinic_id": clinicID,
	}
	if ev.AppointmentID != "" {
		private["appointment_id"] = ev.AppointmentID
	}
	if ev.ProfessionalID != "" {
		private["professional_id"] = ev.ProfessionalID
	}
	return &gcal.Event{
		Summary:     ev.Title,
		Description: ev.Description,
		Status:      ev.Status,
		Start:       &gcal.EventDateTime{DateTime: ev.Start.Format(time.RFC3339), TimeZone: g.timezone},
		End:         &gcal.EventDateTime{DateTime: ev.End.Format(time.RFC3339), TimeZone: g.timezone},
		ExtendedProperties: &gcal.EventExtendedProperties{
			Private: private,
		},
	}
}

func (g *GoogleCalendar) fromGoogleEvent(item *gcal.Event) (*models.RemoteEvent, error) {
	if item.Start == nil || item.End == nil || item.Start.DateTime == "" || item.End.DateTime == "" {
		return nil, fmt.Errorf("event %s has no timed bounds", item.Id)
	}
	start, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return nil, err
	}
	end, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return nil, err
	}

	ev := &models.RemoteEvent{
		ID:          item.Id,
		Title:       item.Summary,
		Description: item.Description,
		Start:       start,
		End:         end,
		Status:      item.Status,
	}
	if item.Updated != "" {
		if updated, err := time.Parse(time.RFC3339, item.Updated); err == nil {
			ev.UpdatedAt = updated
		}
	}
	if item.ExtendedProperties != nil && item.ExtendedProperties.Private != nil {
		ev.AppointmentID = item.ExtendedProperties.Private["appointment_id"]
		ev.ClinicID = item.ExtendedProperties.Private["clinic_id"]
		ev.ProfessionalID = item.ExtendedProperties.Private["professional_id"]
	}
	return ev, nil
}
