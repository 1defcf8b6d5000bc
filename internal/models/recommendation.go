package models

import "github.com/shopspring/decimal"

type TransferPriority string

// Only critical equipment shortages are routed, so every transfer is high priority.
const TransferPriorityHigh TransferPriority = "high"

type TrafficLevel string

const (
	TrafficLow  TrafficLevel = "low"
	TrafficHigh TrafficLevel = "high"
)

type AlternativeRoute struct {
	HospitalID    string         `json:"hospitalId"`
	Distance      float64        `json:"distance"`
	EstimatedTime float64        `json:"estimatedTime"`
	Coordinates   [2]Coordinates `json:"coordinates"`
}

type RouteDetails struct {
	Coordinates       [2]Coordinates     `json:"coordinates"` // source -> target
	TrafficLevel      TrafficLevel       `json:"trafficLevel"`
	AlternativeRoutes []AlternativeRoute `json:"alternativeRoutes"`
}

type TransferRecommendation struct {
	SourceHospitalID string           `json:"sourceHospitalId"`
	TargetHospitalID string           `json:"targetHospitalId"`
	ResourceType     string           `json:"resourceType"`
	Quantity         int              `json:"quantity"`
	Priority         TransferPriority `json:"priority"`
	Distance         float64          `json:"distance"`      // km
	EstimatedTime    float64          `json:"estimatedTime"` // minutes
	RouteDetails     RouteDetails     `json:"routeDetails"`
}

// Involves reports whether the hospital is the donor or the recipient.
func (t *TransferRecommendation) Involves(hospitalID string) bool {
	return t.SourceHospitalID == hospitalID || t.TargetHospitalID == hospitalID
}

type Supplier struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Latitude       float64         `json:"lat"`
	Longitude      float64         `json:"lng"`
	ResourceType   string          `json:"resourceType"`
	EstimatedPrice decimal.Decimal `json:"estimatedPrice"`
	Availability   string          `json:"availability"` // e.g. "24h", "48h"
}

func (s *Supplier) Coordinates() Coordinates {
	return Coordinates{
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
	}
}

type SupplierRecommendation struct {
	Supplier
	HospitalID string  `json:"hospitalId"` // requesting hospital
	Distance   float64 `json:"distance"`
}
