package clinicRepo

import (
	"context"

	"clinicflow/models"
)

// DirectoryRepository is the read-only clinic directory: clinics with their
// policies and working hours, professionals and services. Curation of this
// data happens elsewhere.
type DirectoryRepository interface {
	GetClinic(ctx context.Context, id string) (*models.Clinic, error)
	ListClinics(ctx context.Context) ([]models.Clinic, error)
	GetService(ctx context.Context, clinicID, serviceID string) (*models.Service, error)
	ListServices(ctx context.Context, clinicID, category string) ([]models.Service, error)
	GetProfessional(ctx context.Context, clinicID, professionalID string) (*models.Professional, error)
	ListProfessionals(ctx context.Context, clinicID string) ([]models.Professional, error)
}
