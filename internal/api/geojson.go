package api

import (
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/analysis"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/models"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// toGeoJSON renders hospitals as points. priority_level and shortage counts
// are null until the first analysis completes.
func toGeoJSON(hospitals []models.Hospital, res *analysis.Result) FeatureCollection {
	features := make([]Feature, 0, len(hospitals))

	for _, h := range hospitals {
		props := map[string]any{
			"id":             h.ID,
			"name":           h.Name,
			"priority_level": nil,
			"shortages":      nil,
		}
		if res != nil {
			props["priority_level"] = res.PriorityLevel(h.ID)
			props["shortages"] = len(res.ShortagesFor(h.ID))
		}

		features = append(features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{h.Longitude, h.Latitude},
			},
			Properties: props,
		})
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
