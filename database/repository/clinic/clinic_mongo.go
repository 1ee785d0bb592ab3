package clinicRepo

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

// ErrNotFound is returned when a directory entry does not exist.
var ErrNotFound = errors.New("directory entry not found")

// MongoDirectoryRepo implements DirectoryRepository using MongoDB.
type MongoDirectoryRepo struct {
	clinicColl       *mongo.Collection
	professionalColl *mongo.Collection
	serviceColl      *mongo.Collection
}

// NewMongoDirectoryRepo constructs a new instance of MongoDirectoryRepo.
func NewMongoDirectoryRepo() DirectoryRepository {
	db := database.MongoClient.Database("clinicflow")
	return &MongoDirectoryRepo{
		clinicColl:       db.Collection("clinics"),
		professionalColl: db.Collection("professionals"),
		serviceColl:      db.Collection("services"),
	}
}

func (repo *MongoDirectoryRepo) GetClinic(ctx context.Context, id string) (*models.Clinic, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var clinic models.Clinic
	if err := repo.clinicColl.FindOne(ctx, bson.M{"id": id}).Decode(&clinic); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("clinic %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("error fetching clinic %s: %w", id, err)
	}
	return &clinic, nil
}

func (repo *MongoDirectoryRepo) ListClinics(ctx context.Context) ([]models.Clinic, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := repo.clinicColl.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("error fetching clinics: %w", err)
	}
	defer cursor.Close(ctx)

	var clinics []models.Clinic
	for cursor.Next(ctx) {
		var c models.Clinic
		if err := cursor.Decode(&c); err != nil {
			return nil, fmt.Errorf("error decoding clinic: %w", err)
		}
		clinics = append(clinics, c)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return clinics, nil
}

func (repo *MongoDirectoryRepo) GetService(ctx context.Context, clinicID, serviceID string) (*models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": serviceID, "clinic_id": clinicID}
	var svc models.Service
	if err := repo.serviceColl.FindOne(ctx, filter).Decode(&svc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("service %s: %w", serviceID, ErrNotFound)
		}
		return nil, fmt.Errorf("error fetching service %s: %w", serviceID, err)
	}
	return &svc, nil
}

func (repo *MongoDirectoryRepo) ListServices(ctx context.Context, clinicID, category string) ([]models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"clinic_id": clinicID, "is_active": true}
	if category != "" {
		filter["category"] = category
	}
	cursor, err := repo.serviceColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching services: %w", err)
	}
	defer cursor.Close(ctx)

	var services []models.Service
	for cursor.Next(ctx) {
		var s models.Service
		if err := cursor.Decode(&s); err != nil {
			return nil, fmt.Errorf("error decoding service: %w", err)
		}
		services = append(services, s)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return services, nil
}

func (repo *MongoDirectoryRepo) GetProfessional(ctx context.Context, clinicID, professionalID string) (*models.Professional, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": professionalID, "clinic_id": clinicID}
	var prof models.Professional
	if err := repo.professionalColl.FindOne(ctx, filter).Decode(&prof); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("professional %s: %w", professionalID, ErrNotFound)
		}
		return nil, fmt.Errorf("error fetching professional %s: %w", professionalID, err)
	}
	return &prof, nil
}

func (repo *MongoDirectoryRepo) ListProfessionals(ctx context.Context, clinicID string) ([]models.Professional, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := repo.professionalColl.Find(ctx, bson.M{"clinic_id": clinicID})
	if err != nil {
		return nil, fmt.Errorf("error fetching professionals: %w", err)
	}
	defer cursor.Close(ctx)

	var professionals []models.Professional
	for cursor.Next(ctx) {
		var p models.Professional
		if err := cursor.Decode(&p); err != nil {
			return nil, fmt.Errorf("error decoding professional: %w", err)
		}
		professionals = append(professionals, p)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return professionals, nil
}
