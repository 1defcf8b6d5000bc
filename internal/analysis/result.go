package analysis

import (
	"time"

	"github.com/google/uuid"

	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/models"
)

// Result is the output of one Analyze call. It is never mutated after
// Analyze returns; query methods return fresh slices.
type Result struct {
	RunID                   uuid.UUID                       `json:"runId"`
	GeneratedAt             time.Time                       `json:"generatedAt"`
	MaxTransferDistance     float64                         `json:"maxTransferDistance"`
	CriticalShortages       []models.CriticalShortage       `json:"criticalShortages"`
	TransferRecommendations []models.TransferRecommendation `json:"transferRecommendations"`
	SupplierRecommendations []models.SupplierRecommendation `json:"supplierRecommendations"`
}

type Summary struct {
	HospitalsAffected  int `json:"hospitalsAffected"`
	CriticalShortages  int `json:"criticalShortages"`
	WarningShortages   int `json:"warningShortages"`
	EquipmentShortages int `json:"equipmentShortages"`
	SupplyShortages    int `json:"supplyShortages"`
	Transfers          int `json:"transfers"`
	SupplierOptions    int `json:"supplierOptions"`
	Unmitigated        int `json:"unmitigated"`
}

// PriorityLevel returns the worst severity affecting the hospital.
func (r *Result) PriorityLevel(hospitalID string) models.PriorityLevel {
	level := models.PriorityNormal
	for _, s := range r.CriticalShortages {
		if s.HospitalID != hospitalID {
			continue
		}
		if s.Severity == models.SeverityCritical {
			return models.PriorityCritical
		}
		if s.Severity == models.SeverityWarning {
			level = models.PriorityWarning
		}
	}
	return level
}

func (r *Result) ShortagesFor(hospitalID string) []models.CriticalShortage {
	out := []models.CriticalShortage{}
	for _, s := range r.CriticalShortages {
		if s.HospitalID == hospitalID {
			out = append(out, s)
		}
	}
	return out
}

// TransfersInvolving returns transfers where the hospital is source or target.
func (r *Result) TransfersInvolving(hospitalID string) []models.TransferRecommendation {
	out := []models.TransferRecommendation{}
	for _, t := range r.TransferRecommendations {
		if t.Involves(hospitalID) {
			out = append(out, t)
		}
	}
	return out
}

// SupplierOptionsFor returns the supplier recommendations whose resource type
// matches one of the hospital's shortages, warnings included. A supplier matched
// for several hospitals is listed once, preferring the match measured from this
// hospital; HospitalID and Distance tell which hospital the distance refers to.
func (r *Result) SupplierOptionsFor(hospitalID string) []models.SupplierRecommendation {
	short := make(map[string]bool)
	for _, s := range r.CriticalShortages {
		if s.HospitalID == hospitalID {
			short[s.ResourceType] = true
		}
	}

	out := []models.SupplierRecommendation{}
	seen := make(map[string]int)
	for _, rec := range r.SupplierRecommendations {
		if !short[rec.ResourceType] {
			continue
		}
		if i, ok := seen[rec.ID]; ok {
			if out[i].HospitalID != hospitalID && rec.HospitalID == hospitalID {
				out[i] = rec
			}
			continue
		}
		seen[rec.ID] = len(out)
		out = append(out, rec)
	}
	return out
}

// Unmitigated returns critical equipment shortages that received neither a
// transfer nor a supplier option.
func (r *Result) Unmitigated() []models.CriticalShortage {
	type key struct{ hospitalID, resourceType string }

	covered := make(map[key]bool)
	for _, t := range r.TransferRecommendations {
		covered[key{t.TargetHospitalID, t.ResourceType}] = true
	}
	for _, s := range r.SupplierRecommendations {
		covered[key{s.HospitalID, s.ResourceType}] = true
	}

	out := []models.CriticalShortage{}
	for _, s := range r.CriticalShortages {
		if s.Category != models.CategoryEquipment || s.Severity != models.SeverityCritical {
			continue
		}
		if !covered[key{s.HospitalID, s.ResourceType}] {
			out = append(out, s)
		}
	}
	return out
}

func (r *Result) Summary() Summary {
	sum := Summary{
		Transfers:       len(r.TransferRecommendations),
		SupplierOptions: len(r.SupplierRecommendations),
		Unmitigated:     len(r.Unmitigated()),
	}

	affected := make(map[string]bool)
	for _, s := range r.CriticalShortages {
		affected[s.HospitalID] = true
		switch s.Severity {
		case models.SeverityCritical:
			sum.CriticalShortages++
		case models.SeverityWarning:
			sum.WarningShortages++
		}
		switch s.Category {
		case models.CategoryEquipment:
			sum.EquipmentShortages++
		case models.CategorySupplies:
			sum.SupplyShortages++
		}
	}
	sum.HospitalsAffected = len(affected)
	return sum
}
