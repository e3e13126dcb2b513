package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Capstone-E1/aquasmart_treatment/internal/models"
	"github.com/Capstone-E1/aquasmart_treatment/internal/sensors"
)

// ReadingParser handles parsing of sensor readings from device payloads
type ReadingParser struct{}

// NewReadingParser creates a new instance of ReadingParser
func NewReadingParser() *ReadingParser {
	return &ReadingParser{}
}

// readingPayload is the JSON structure published by instruments
type readingPayload struct {
	SensorID string   `json:"sensor_id"`
	Value    *float64 `json:"value"`
}

// SensorIDFromTopic extracts the sensor id from "<prefix>/sensors/{id}/reading"
func SensorIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	for i := 0; i+1 < len(parts); i++ {
		if parts[i] == "sensors" {
			return sensors.NormalizeID(parts[i+1])
		}
	}
	return ""
}

// ParseReading parses a payload received on topic. JSON {"value": x} is preferred;
// a bare number is accepted as a fallback. A sensor_id in the JSON overrides the topic.
func (rp *ReadingParser) ParseReading(topic string, payload []byte) (*models.SensorReading, error) {
	reading := &models.SensorReading{
		SensorID:  SensorIDFromTopic(topic),
		Timestamp: time.Now(),
	}

	var body readingPayload
	if err := json.Unmarshal(payload, &body); err == nil && body.Value != nil {
		reading.Value = *body.Value
		if body.SensorID != "" {
			reading.SensorID = sensors.NormalizeID(body.SensorID)
		}
	} else {
		value, parseErr := strconv.ParseFloat(strings.TrimSpace(string(payload)), 64)
		if parseErr != nil {
			return nil, fmt.Errorf("failed to parse sensor reading %q: expected JSON {\"value\": n} or a number", string(payload))
		}
		reading.Value = value
	}

	if reading.SensorID == "" {
		return nil, fmt.Errorf("no sensor id in topic %q or payload", topic)
	}
	if _, known := sensors.ProfileFor(reading.SensorID); !known {
		return nil, fmt.Errorf("%w: %q", sensors.ErrUnknownSensor, reading.SensorID)
	}
	if math.IsNaN(reading.Value) || math.IsInf(reading.Value, 0) {
		return nil, fmt.Errorf("invalid reading for %s: value must be finite", reading.SensorID)
	}

	return reading, nil
}

// FormatReading formats a sensor reading for logging or debugging
func (rp *ReadingParser) FormatReading(reading *models.SensorReading) string {
	return fmt.Sprintf("Sensor: %s, Time: %s, Value: %.3f",
		reading.SensorID,
		reading.Timestamp.Format("2006-01-02 15:04:05"),
		reading.Value)
}
