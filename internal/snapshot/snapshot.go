// Package snapshot reads network snapshots from JSON files so they can be
// analyzed offline or imported into the database.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/analysis"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/models"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/repository"
)

// File is the on-disk layout. MinimumLevels and MaxTransferDistance are
// optional and fall back to the caller's defaults.
type File struct {
	Hospitals           []models.Hospital                `json:"hospitals"`
	ResourceStatus      map[string]models.ResourceStatus `json:"resourceStatus"`
	MinimumLevels       *models.MinimumLevels            `json:"minimumLevels,omitempty"`
	MaxTransferDistance float64                          `json:"maxTransferDistance,omitempty"`
	Suppliers           []models.Supplier                `json:"suppliers"`
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading snapshot: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("error parsing snapshot %s: %w", path, err)
	}
	if len(f.Hospitals) == 0 {
		return nil, fmt.Errorf("snapshot %s has no hospitals", path)
	}
	return &f, nil
}

// Snapshot converts the file into analysis input. Values missing from the file
// are taken from levels and maxDistance.
func (f *File) Snapshot(levels models.MinimumLevels, maxDistance float64) analysis.Snapshot {
	snap := analysis.Snapshot{
		Hospitals:           f.Hospitals,
		ResourceStatus:      f.ResourceStatus,
		MinimumLevels:       levels,
		MaxTransferDistance: maxDistance,
		Suppliers:           analysis.NewStaticRegistry(f.Suppliers),
	}
	if f.MinimumLevels != nil {
		snap.MinimumLevels = *f.MinimumLevels
	}
	if f.MaxTransferDistance > 0 {
		snap.MaxTransferDistance = f.MaxTransferDistance
	}
	return snap
}

type SeedStats struct {
	Hospitals int
	Resources int
	Suppliers int
}

// Seed writes hospitals, their resource counts and suppliers into store.
// Hospitals are upserted; suppliers that already exist fail the import.
func (f *File) Seed(ctx context.Context, store repository.Store) (SeedStats, error) {
	var stats SeedStats

	for i := range f.Hospitals {
		if err := store.UpsertHospital(ctx, &f.Hospitals[i]); err != nil {
			return stats, err
		}
		stats.Hospitals++
	}

	for _, h := range f.Hospitals {
		status, ok := f.ResourceStatus[h.ID]
		if !ok {
			continue
		}
		for resourceType, e := range status.Equipment {
			if err := store.SetEquipmentStatus(ctx, h.ID, resourceType, e); err != nil {
				return stats, err
			}
			stats.Resources++
		}
		for resourceType, s := range status.Supplies {
			if err := store.SetSupplyStatus(ctx, h.ID, resourceType, s); err != nil {
				return stats, err
			}
			stats.Resources++
		}
	}

	for i := range f.Suppliers {
		if err := store.AddSupplier(ctx, &f.Suppliers[i]); err != nil {
			return stats, err
		}
		stats.Suppliers++
	}

	return stats, nil
}
