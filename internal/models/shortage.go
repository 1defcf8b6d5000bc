package models

import "time"

type Category string

const (
	CategoryEquipment Category = "equipment"
	CategorySupplies  Category = "supplies"
)

type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Rank orders severities so that a larger value is more severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// PriorityLevel is the worst severity currently affecting a hospital.
type PriorityLevel string

const (
	PriorityNormal   PriorityLevel = "normal"
	PriorityWarning  PriorityLevel = "warning"
	PriorityCritical PriorityLevel = "critical"
)

type CriticalShortage struct {
	HospitalID   string   `json:"hospitalId"`
	ResourceType string   `json:"resourceType"`
	Category     Category `json:"category"`
	Severity     Severity `json:"severity"`
}

// ShortageAlert is pushed to stream subscribers when a shortage becomes critical.
type ShortageAlert struct {
	RunID        string           `json:"runId"`
	HospitalName string           `json:"hospitalName"`
	Shortage     CriticalShortage `json:"shortage"`
	Mitigated    bool             `json:"mitigated"`
	DetectedAt   time.Time        `json:"detectedAt"`
}
