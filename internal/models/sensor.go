package models

import (
	"time"
)

// Trend represents the direction of a sensor's recent readings
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// SensorStatus represents the status band of a live sensor reading
type SensorStatus string

const (
	SensorOptimal  SensorStatus = "optimal"
	SensorGood     SensorStatus = "good"
	SensorWarning  SensorStatus = "warning"
	SensorCritical SensorStatus = "critical"
)

// Severity orders statuses from optimal (0) to critical (3)
func (s SensorStatus) Severity() int {
	switch s {
	case SensorOptimal:
		return 0
	case SensorGood:
		return 1
	case SensorWarning:
		return 2
	default:
		return 3
	}
}

// ThresholdBounds is the acceptable operating range for a parameter
type ThresholdBounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies inside the bounds (inclusive)
func (b ThresholdBounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// SensorState is the live state of one instrument in a monitoring session.
// History holds the last readings, oldest first.
type SensorState struct {
	ID         string          `json:"id"`
	Unit       string          `json:"unit"`
	Value      float64         `json:"value"`
	History    []float64       `json:"history"`
	Capacity   int             `json:"capacity,omitempty"`
	Thresholds ThresholdBounds `json:"thresholds"`
	Trend      Trend           `json:"trend"`
	Status     SensorStatus    `json:"status"`
	UpdatedAt  time.Time       `json:"updated_at,omitempty"`
}

// SensorReading is one raw value received from an instrument
type SensorReading struct {
	SensorID  string    `json:"sensor_id"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}
