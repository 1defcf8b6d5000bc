package models

type Hospital struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

func (h *Hospital) Coordinates() Coordinates {
	return Coordinates{
		Latitude:  h.Latitude,
		Longitude: h.Longitude,
	}
}

type EquipmentStatus struct {
	Available int `json:"available"`
	Total     int `json:"total"`
}

// AvailabilityRate returns available/total. A zero total counts as a full shortage.
func (e EquipmentStatus) AvailabilityRate() float64 {
	if e.Total <= 0 {
		return 0
	}
	return float64(e.Available) / float64(e.Total)
}

type SupplyStatus struct {
	Normal      int `json:"normal"`
	CriticalLow int `json:"criticalLow"`
}

// ResourceStatus is one hospital's snapshot of equipment and supply counts.
type ResourceStatus struct {
	Equipment map[string]EquipmentStatus `json:"equipment"`
	Supplies  map[string]SupplyStatus    `json:"supplies"`
}

// MinimumLevels maps equipment types to a minimum availability rate (0..1) and
// supply types to a minimum absolute "normal" level.
type MinimumLevels struct {
	Equipment map[string]float64 `json:"equipment" yaml:"equipment"`
	Supplies  map[string]int     `json:"supplies" yaml:"supplies"`
}

func DefaultMinimumLevels() MinimumLevels {
	return MinimumLevels{
		Equipment: map[string]float64{
			"respirators":    0.30,
			"monitors":       0.25,
			"defibrillators": 0.20,
			"imagingDevices": 0.15,
		},
		Supplies: map[string]int{
			"medications": 10,
			"bloodBank":   5,
			"ppe":         15,
		},
	}
}
