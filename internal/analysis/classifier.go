package analysis

import (
	"maps"
	"slices"

	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/models"
)

// ClassifyShortages compares one hospital's status with the minimum level table.
// A nil status means no data and yields no shortages. Every resource type in
// the status must be present in the table.
func ClassifyShortages(hospitalID string, status *models.ResourceStatus, levels models.MinimumLevels) ([]models.CriticalShortage, error) {
	if status == nil {
		return nil, nil
	}

	var shortages []models.CriticalShortage

	for _, resourceType := range slices.Sorted(maps.Keys(status.Equipment)) {
		minimum, ok := levels.Equipment[resourceType]
		if !ok {
			return nil, &ConfigError{Field: "equipment type", Value: resourceType, Err: ErrUnknownResourceType}
		}

		rate := status.Equipment[resourceType].AvailabilityRate()
		if rate >= minimum {
			continue
		}

		severity := models.SeverityWarning
		if rate < minimum/2 {
			severity = models.SeverityCritical
		}
		shortages = append(shortages, models.CriticalShortage{
			HospitalID:   hospitalID,
			ResourceType: resourceType,
			Category:     models.CategoryEquipment,
			Severity:     severity,
		})
	}

	for _, resourceType := range slices.Sorted(maps.Keys(status.Supplies)) {
		minimum, ok := levels.Supplies[resourceType]
		if !ok {
			return nil, &ConfigError{Field: "supply type", Value: resourceType, Err: ErrUnknownResourceType}
		}

		supply := status.Supplies[resourceType]
		if supply.Normal >= minimum {
			continue
		}

		severity := models.SeverityWarning
		if supply.CriticalLow > 0 {
			severity = models.SeverityCritical
		}
		shortages = append(shortages, models.CriticalShortage{
			HospitalID:   hospitalID,
			ResourceType: resourceType,
			Category:     models.CategorySupplies,
			Severity:     severity,
		})
	}

	return shortages, nil
}
