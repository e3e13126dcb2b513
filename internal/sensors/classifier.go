// Package sensors classifies live instrument readings into trend and status bands.
// Classify is a pure transition function; Session and Simulator drive it over time.
package sensors

import (
	"math"

	"github.com/Capstone-E1/aquasmart_treatment/internal/models"
)

// Classify appends a reading to the state's window and recomputes trend and status
// using the profile registered for the state's id. Sensors without a profile are
// classified against their own threshold bounds.
func Classify(state models.SensorState, value float64) models.SensorState {
	profile, ok := ProfileFor(state.ID)
	if !ok {
		profile = BoundsProfile(state.ID, state.Unit, state.Thresholds)
	}
	return ClassifyWith(state, value, profile)
}

// ClassifyWith is Classify with an explicit profile. The input state is not modified.
func ClassifyWith(state models.SensorState, value float64, profile Profile) models.SensorState {
	capacity := state.Capacity
	if capacity <= 0 {
		capacity = DefaultWindowSize
	}

	window := make([]float64, 0, len(state.History)+1)
	window = append(window, state.History...)
	window = append(window, value)
	if len(window) > capacity {
		window = append([]float64(nil), window[len(window)-capacity:]...)
	}

	next := state
	next.Value = value
	next.History = window
	next.Trend = TrendOf(window, profile.Epsilon)
	next.Status = profile.StatusFor(value)
	if next.Unit == "" {
		next.Unit = profile.Unit
	}
	if next.Thresholds == (models.ThresholdBounds{}) {
		next.Thresholds = profile.Bounds
	}
	return next
}

// TrendOf compares the newest and oldest entries of a window
func TrendOf(window []float64, epsilon float64) models.Trend {
	if len(window) < 2 {
		return models.TrendStable
	}

	delta := window[len(window)-1] - window[0]
	if math.Abs(delta) <= epsilon {
		return models.TrendStable
	}
	if delta > 0 {
		return models.TrendUp
	}
	return models.TrendDown
}

// NewState returns the initial state of a sensor seeded at the profile baseline
func NewState(profile Profile, capacity int) models.SensorState {
	if capacity <= 0 {
		capacity = DefaultWindowSize
	}
	return models.SensorState{
		ID:         profile.ID,
		Unit:       profile.Unit,
		Value:      profile.Baseline,
		History:    []float64{profile.Baseline},
		Capacity:   capacity,
		Thresholds: profile.Bounds,
		Trend:      models.TrendStable,
		Status:     profile.StatusFor(profile.Baseline),
	}
}
