package calendareventRepo

import (
	"context"
	"time"

	"clinicflow/models"
)

// CalendarEventRepository defines durable storage for local calendar event
// mirrors. Events are soft-cancelled, never hard-deleted.
type CalendarEventRepository interface {
	Create(ctx context.Context, event *models.CalendarEvent) error
	Update(ctx context.Context, event *models.CalendarEvent) error
	GetByID(ctx context.Context, id string) (*models.CalendarEvent, error)
	// GetByExternalID looks an event up by its remote calendar id. Returns
	// (nil, nil) when no such event exists.
	GetByExternalID(ctx context.Context, clinicID, externalID string) (*models.CalendarEvent, error)
	// ListInRange returns all events for a clinic overlapping [start, end).
	ListInRange(ctx context.Context, clinicID string, start, end time.Time) ([]models.CalendarEvent, error)
	// ListActiveInRange returns synced, non-cancelled events overlapping [start, end).
	ListActiveInRange(ctx context.Context, clinicID string, start, end time.Time) ([]models.CalendarEvent, error)
	MarkCancelled(ctx context.Context, id, syncStatus string) error
}
