package analysis

import (
	"sort"

	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/geo"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/models"
)

// DonorMinimumRate is the availability rate a hospital needs to donate equipment.
const DonorMinimumRate = 0.3

// Candidate is a hospital able to donate a resource to the source hospital.
type Candidate struct {
	Hospital      models.Hospital
	Status        models.EquipmentStatus
	Distance      float64
	EstimatedTime float64
}

// FindNeighbors returns donors for resourceType within maxDistance km of source,
// nearest first. Equal distances keep the order of hospitals.
func FindNeighbors(source models.Hospital, resourceType string, hospitals []models.Hospital, statuses map[string]models.ResourceStatus, maxDistance float64) []Candidate {
	var candidates []Candidate

	for _, h := range hospitals {
		if h.ID == source.ID {
			continue
		}

		status, ok := statuses[h.ID]
		if !ok {
			continue
		}
		equipment, ok := status.Equipment[resourceType]
		if !ok {
			continue
		}
		if equipment.AvailabilityRate() < DonorMinimumRate {
			continue
		}

		distance := geo.Distance(source.Latitude, source.Longitude, h.Latitude, h.Longitude)
		if distance > maxDistance {
			continue
		}

		candidates = append(candidates, Candidate{
			Hospital:      h,
			Status:        equipment,
			Distance:      distance,
			EstimatedTime: geo.EstimatedMinutes(distance),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})

	return candidates
}
