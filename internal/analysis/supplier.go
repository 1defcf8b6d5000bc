package analysis

import (
	"context"
	"fmt"

	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/geo"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/models"
)

// SupplierRegistry looks up external suppliers. Implementations must be safe
// for concurrent use; Analyze queries it from several workers.
type SupplierRegistry interface {
	FindByResourceType(ctx context.Context, resourceType string) ([]models.Supplier, error)
}

// StaticRegistry is an in-memory SupplierRegistry.
type StaticRegistry struct {
	suppliers []models.Supplier
}

func NewStaticRegistry(suppliers []models.Supplier) *StaticRegistry {
	return &StaticRegistry{suppliers: append([]models.Supplier(nil), suppliers...)}
}

func (r *StaticRegistry) FindByResourceType(_ context.Context, resourceType string) ([]models.Supplier, error) {
	var out []models.Supplier
	for _, s := range r.suppliers {
		if s.ResourceType == resourceType {
			out = append(out, s)
		}
	}
	return out, nil
}

// MatchSuppliers returns every supplier of resourceType within maxDistance km
// of target, in registry order. An empty result means no mitigation is available.
func MatchSuppliers(ctx context.Context, target models.Hospital, resourceType string, registry SupplierRegistry, maxDistance float64) ([]models.SupplierRecommendation, error) {
	if registry == nil {
		return nil, nil
	}

	suppliers, err := registry.FindByResourceType(ctx, resourceType)
	if err != nil {
		return nil, fmt.Errorf("error finding suppliers for %s: %w", resourceType, err)
	}

	var recs []models.SupplierRecommendation
	for _, s := range suppliers {
		if s.ResourceType != resourceType {
			continue
		}
		if err := geo.ValidateCoordinates(s.Latitude, s.Longitude); err != nil {
			return nil, &ConfigError{Field: "supplier coordinates", Value: s.ID, Err: err}
		}

		distance := geo.Distance(target.Latitude, target.Longitude, s.Latitude, s.Longitude)
		if distance > maxDistance {
			continue
		}
		recs = append(recs, models.SupplierRecommendation{
			Supplier:   s,
			HospitalID: target.ID,
			Distance:   distance,
		})
	}
	return recs, nil
}
