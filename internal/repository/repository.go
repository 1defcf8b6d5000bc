package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/models"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidStatus = errors.New("invalid resource status")
)

type Filter struct {
	Limit int
	Since *time.Time
}

// RunRecord is the persisted summary of one analysis run.
type RunRecord struct {
	ID              uuid.UUID     `json:"id"`
	GeneratedAt     time.Time     `json:"generatedAt"`
	Duration        time.Duration `json:"durationNs"`
	Hospitals       int           `json:"hospitals"`
	Critical        int           `json:"critical"`
	Warning         int           `json:"warning"`
	Transfers       int           `json:"transfers"`
	SupplierOptions int           `json:"supplierOptions"`
	Unmitigated     int           `json:"unmitigated"`
}

type HospitalRepository interface {
	UpsertHospital(ctx context.Context, h *models.Hospital) error
	GetHospital(ctx context.Context, id string) (*models.Hospital, error)
	ListHospitals(ctx context.Context) ([]models.Hospital, error)
}

type ResourceRepository interface {
	SetEquipmentStatus(ctx context.Context, hospitalID, resourceType string, s models.EquipmentStatus) error
	SetSupplyStatus(ctx context.Context, hospitalID, resourceType string, s models.SupplyStatus) error
	ResourceStatus(ctx context.Context) (map[string]models.ResourceStatus, error)
}

// SupplierRepository also satisfies analysis.SupplierRegistry.
type SupplierRepository interface {
	AddSupplier(ctx context.Context, s *models.Supplier) error
	ListSuppliers(ctx context.Context) ([]models.Supplier, error)
	FindByResourceType(ctx context.Context, resourceType string) ([]models.Supplier, error)
}

type RunRepository interface {
	RecordRun(ctx context.Context, r RunRecord) error
	ListRuns(ctx context.Context, opts Filter) ([]RunRecord, error)
}

// Store is everything the monitor and API need from persistence.
type Store interface {
	HospitalRepository
	ResourceRepository
	SupplierRepository
	RunRepository
}
