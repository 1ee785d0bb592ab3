package appointmentRepo

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

// MongoAppointmentRepo implements AppointmentRepository using MongoDB.
type MongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo constructs a new instance of MongoAppointmentRepo.
func NewMongoAppointmentRepo() AppointmentRepository {
	db := database.MongoClient.Database("clinicflow")
	return &MongoAppointmentRepo{coll: db.Collection("appointments")}
}

func (repo *MongoAppointmentRepo) Create(ctx context.Context, appt *models.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if !appt.ScheduledStart.Before(appt.ScheduledEnd) {
		return fmt.Errorf("invalid appointment interval: start %v is not before end %v",
			appt.ScheduledStart, appt.ScheduledEnd)
	}
	if _, err := repo.coll.InsertOne(ctx, appt); err != nil {
		return fmt.Errorf("error creating appointment: %w", err)
	}
	return nil
}

func (repo *MongoAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var appt models.Appointment
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&appt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("appointment %s not found: %w", id, err)
		}
		return nil, fmt.Errorf("error fetching appointment %s: %w", id, err)
	}
	return &appt, nil
}

// Half-open overlap against [start, end): scheduled_start < end AND scheduled_end > start.
func overlapFilter(clinicID string, start, end time.Time) bson.M {
	return bson.M{
		"clinic_id":       clinicID,
		"scheduled_start": bson.M{"$lt": end},
		"scheduled_end":   bson.M{"$gt": start},
	}
}

func (repo *MongoAppointmentRepo) ListConfirmedInRange(ctx context.Context, clinicID string, start, end time.Time) ([]models.Appointment, error) {
	filter := overlapFilter(clinicID, start, end)
	filter["status"] = models.AppointmentStatusConfirmed
	return repo.list(ctx, filter)
}

func (repo *MongoAppointmentRepo) ListForProfessional(ctx context.Context, clinicID, professionalID string, start, end time.Time) ([]models.Appointment, error) {
	filter := overlapFilter(clinicID, start, end)
	filter["status"] = models.AppointmentStatusConfirmed
	filter["professional_id"] = professionalID
	return repo.list(ctx, filter)
}

func (repo *MongoAppointmentRepo) ListUnsynced(ctx context.Context, clinicID string, start, end time.Time) ([]models.Appointment, error) {
	filter := overlapFilter(clinicID, start, end)
	filter["status"] = models.AppointmentStatusConfirmed
	filter["$or"] = []bson.M{
		{"calendar_event_id": bson.M{"$exists": false}},
		{"calendar_event_id": ""},
	}
	return repo.list(ctx, filter)
}

func (repo *MongoAppointmentRepo) list(ctx context.Context, filter bson.M) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := repo.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	for cursor.Next(ctx) {
		var a models.Appointment
		if err := cursor.Decode(&a); err != nil {
			return nil, fmt.Errorf("error decoding appointment: %w", err)
		}
		appts = append(appts, a)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return appts, nil
}

func (repo *MongoAppointmentRepo) CountForDay(ctx context.Context, clinicID string, dayStart, dayEnd time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := overlapFilter(clinicID, dayStart, dayEnd)
	filter["status"] = bson.M{"$nin": []string{models.AppointmentStatusCancelled, models.AppointmentStatusNoShow}}
	count, err := repo.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("error counting appointments: %w", err)
	}
	return count, nil
}

func (repo *MongoAppointmentRepo) UpdateStatus(ctx context.Context, id, status string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}
	res, err := repo.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("error updating appointment %s status: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("appointment %s not found", id)
	}
	return nil
}

func (repo *MongoAppointmentRepo) SetCalendarEventID(ctx context.Context, id, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"calendar_event_id": eventID, "updated_at": time.Now()}}
	res, err := repo.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("error linking appointment %s to calendar event: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("appointment %s not found", id)
	}
	return nil
}
