package calendareventRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinicflow/database"
	"clinicflow/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoCalendarEventRepo implements CalendarEventRepository using MongoDB.
type MongoCalendarEventRepo struct {
	coll *mongo.Collection
}

// NewMongoCalendarEventRepo constructs a new instance of MongoCalendarEventRepo.
func NewMongoCalendarEventRepo() CalendarEventRepository {
	db := database.MongoClient.Database("clinicflow")
	return &MongoCalendarEventRepo{coll: db.Collection("calendar_events")}
}

func (repo *MongoCalendarEventRepo) Create(ctx context.Context, event *models.CalendarEvent) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.coll.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("error creating calendar event: %w", err)
	}
	return nil
}

func (repo *MongoCalendarEventRepo) Update(ctx context.Context, event *models.CalendarEvent) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	event.UpdatedAt = time.Now()
	res, err := repo.coll.ReplaceOne(ctx, bson.M{"id": event.ID}, event)
	if err != nil {
		return fmt.Errorf("error updating calendar event %s: %w", event.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("calendar event %s not found", event.ID)
	}
	return nil
}

func (repo *MongoCalendarEventRepo) GetByID(ctx context.Context, id string) (*models.CalendarEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var event models.CalendarEvent
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&event); err != nil {
		return nil, fmt.Errorf("error fetching calendar event %s: %w", id, err)
	}
	return &event, nil
}

func (repo *MongoCalendarEventRepo) GetByExternalID(ctx context.Context, clinicID, externalID string) (*models.CalendarEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"clinic_id": clinicID, "external_event_id": externalID}
	var event models.CalendarEvent
	if err := repo.coll.FindOne(ctx, filter).Decode(&event); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching calendar event by external id %s: %w", externalID, err)
	}
	return &event, nil
}

func (repo *MongoCalendarEventRepo) ListInRange(ctx context.Context, clinicID string, start, end time.Time) ([]models.CalendarEvent, error) {
	filter := bson.M{
		"clinic_id": clinicID,
		"start":     bson.M{"$lt": end},
		"end":       bson.M{"$gt": start},
	}
	return repo.list(ctx, filter)
}

func (repo *MongoCalendarEventRepo) ListActiveInRange(ctx context.Context, clinicID string, start, end time.Time) ([]models.CalendarEvent, error) {
	filter := bson.M{
		"clinic_id":   clinicID,
		"start":       bson.M{"$lt": end},
		"end":         bson.M{"$gt": start},
		"status":      bson.M{"$ne": models.EventStatusCancelled},
		"sync_status": models.SyncStatusSynced,
	}
	return repo.list(ctx, filter)
}

func (repo *MongoCalendarEventRepo) list(ctx context.Context, filter bson.M) ([]models.CalendarEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := repo.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching calendar events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []models.CalendarEvent
	for cursor.Next(ctx) {
		var e models.CalendarEvent
		if err := cursor.Decode(&e); err != nil {
			return nil, fmt.Errorf("error decoding calendar event: %w", err)
		}
		events = append(events, e)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return events, nil
}

func (repo *MongoCalendarEventRepo) MarkCancelled(ctx context.Context, id, syncStatus string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":      models.EventStatusCancelled,
		"sync_status": syncStatus,
		"updated_at":  time.Now(),
	}}
	res, err := repo.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("error cancelling calendar event %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("calendar event %s not found", id)
	}
	return nil
}
