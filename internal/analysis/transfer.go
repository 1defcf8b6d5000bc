package analysis

import "github.com/vynnydev/hospital-management-web-platform-sub011/internal/models"

const (
	// transferSharePercent of the donor's available units is moved; integer
	// arithmetic keeps the result equal to floor(available * 0.2).
	transferSharePercent = 20

	maxAlternativeRoutes = 2
)

// RecommendTransfer builds a transfer from the nearest candidate to target.
// It returns false when there are no candidates.
func RecommendTransfer(shortage models.CriticalShortage, target models.Hospital, candidates []Candidate) (*models.TransferRecommendation, bool) {
	if len(candidates) == 0 {
		return nil, false
	}

	primary := candidates[0]
	rec := &models.TransferRecommendation{
		SourceHospitalID: primary.Hospital.ID,
		TargetHospitalID: target.ID,
		ResourceType:     shortage.ResourceType,
		Quantity:         transferQuantity(primary.Status.Available),
		Priority:         models.TransferPriorityHigh,
		Distance:         primary.Distance,
		EstimatedTime:    primary.EstimatedTime,
		RouteDetails: models.RouteDetails{
			Coordinates:       [2]models.Coordinates{primary.Hospital.Coordinates(), target.Coordinates()},
			TrafficLevel:      trafficLevel(primary.Distance, primary.EstimatedTime),
			AlternativeRoutes: alternativeRoutes(target, candidates[1:]),
		},
	}
	return rec, true
}

func transferQuantity(available int) int {
	if available <= 0 {
		return 0
	}
	return available * transferSharePercent / 100
}

// trafficLevel is a heuristic proxy, not a traffic model.
func trafficLevel(distance, estimatedTime float64) models.TrafficLevel {
	if estimatedTime > distance*2 {
		return models.TrafficHigh
	}
	return models.TrafficLow
}

func alternativeRoutes(target models.Hospital, rest []Candidate) []models.AlternativeRoute {
	if len(rest) > maxAlternativeRoutes {
		rest = rest[:maxAlternativeRoutes]
	}

	routes := make([]models.AlternativeRoute, 0, len(rest))
	for _, c := range rest {
		routes = append(routes, models.AlternativeRoute{
			HospitalID:    c.Hospital.ID,
			Distance:      c.Distance,
			EstimatedTime: c.EstimatedTime,
			Coordinates:   [2]models.Coordinates{c.Hospital.Coordinates(), target.Coordinates()},
		})
	}
	return routes
}
