package sensors

import (
	"testing"

	"github.com/Capstone-E1/aquasmart_treatment/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_SmallDeltaIsStable(t *testing.T) {
	state := models.SensorState{
		ID:      "turbidity",
		Unit:    "NTU",
		Value:   10,
		History: []float64{10, 10, 10, 10, 10},
	}

	next := Classify(state, 10.5)

	assert.Equal(t, []float64{10, 10, 10, 10, 10.5}, next.History)
	assert.Equal(t, 10.5, next.Value)
	assert.Equal(t, models.TrendStable, next.Trend)
	assert.Equal(t, models.SensorWarning, next.Status)
}

func TestClassify_EvictsOldestReading(t *testing.T) {
	state := models.SensorState{ID: "cod", History: []float64{1, 2, 3, 4, 5}}

	next := Classify(state, 6)

	assert.Equal(t, []float64{2, 3, 4, 5, 6}, next.History)
	require.Len(t, next.History, DefaultWindowSize)
}

func TestClassify_WindowGrowsUntilCapacity(t *testing.T) {
	state := models.SensorState{ID: "cod", Capacity: 3}

	for i, v := range []float64{10, 20, 30, 40} {
		state = Classify(state, v)
		assert.LessOrEqual(t, len(state.History), 3, "after reading %d", i)
	}

	assert.Equal(t, []float64{20, 30, 40}, state.History)
}

func TestClassify_Trend(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		history  []float64
		value    float64
		expected models.Trend
	}{
		{name: "rising coarse sensor", id: "cod", history: []float64{100, 101, 102, 103, 104}, value: 106, expected: models.TrendUp},
		{name: "falling coarse sensor", id: "cod", history: []float64{100, 99, 98, 97, 96}, value: 95, expected: models.TrendDown},
		{name: "delta equal to epsilon is stable", id: "cod", history: []float64{100, 100, 100, 100, 100}, value: 101, expected: models.TrendStable},
		{name: "precise sensor detects small rise", id: "ph", history: []float64{7.00, 7.01, 7.02, 7.03, 7.04}, value: 7.05, expected: models.TrendUp},
		{name: "precise sensor within band", id: "ph", history: []float64{7.00, 7.00, 7.00, 7.00, 7.00}, value: 7.01, expected: models.TrendStable},
		{name: "first reading", id: "tds", history: nil, value: 400, expected: models.TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := Classify(models.SensorState{ID: tt.id, History: tt.history}, tt.value)
			assert.Equal(t, tt.expected, next.Trend)
		})
	}
}

func TestClassify_StatusBands(t *testing.T) {
	tests := []struct {
		id       string
		value    float64
		expected models.SensorStatus
	}{
		{"turbidity", 0.5, models.SensorOptimal},
		{"turbidity", 1, models.SensorOptimal},
		{"turbidity", 3, models.SensorGood},
		{"turbidity", 40, models.SensorWarning},
		{"turbidity", 80, models.SensorCritical},
		{"ph", 5.0, models.SensorCritical},
		{"ph", 6.2, models.SensorWarning},
		{"ph", 7.0, models.SensorOptimal},
		{"ph", 8.0, models.SensorGood},
		{"ph", 8.8, models.SensorWarning},
		{"ph", 10, models.SensorCritical},
		{"COD", 40, models.SensorOptimal},
		{"COD", 160, models.SensorCritical},
		{"tds", 450, models.SensorGood},
		{"nitrogen", 9, models.SensorWarning},
		{"phosphorus", 1.2, models.SensorCritical},
		{"flow", 20, models.SensorCritical},
		{"flow", 250, models.SensorOptimal},
		{"flow", 600, models.SensorCritical},
		{"efficiency", 50, models.SensorCritical},
		{"efficiency", 92, models.SensorOptimal},
		{"Dissolved Oxygen", 5, models.SensorOptimal},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			next := Classify(models.SensorState{ID: tt.id}, tt.value)
			assert.Equal(t, tt.expected, next.Status, "%s=%v", tt.id, tt.value)
		})
	}
}

func TestClassify_UnknownSensorUsesBounds(t *testing.T) {
	state := models.SensorState{
		ID:         "chlorine",
		Unit:       "mg/L",
		Thresholds: models.ThresholdBounds{Min: 0.2, Max: 4},
	}

	assert.Equal(t, models.SensorWarning, Classify(state, 0.1).Status)
	assert.Equal(t, models.SensorGood, Classify(state, 0.2).Status)
	assert.Equal(t, models.SensorGood, Classify(state, 4).Status)
	assert.Equal(t, models.SensorCritical, Classify(state, 4.5).Status)
}

func TestClassify_UnknownSensorWithoutBoundsIsCritical(t *testing.T) {
	next := Classify(models.SensorState{ID: "mystery"}, 1)

	assert.Equal(t, models.SensorCritical, next.Status)
	assert.Equal(t, models.TrendStable, next.Trend)
}

func TestClassify_DoesNotModifyInput(t *testing.T) {
	history := []float64{1, 2, 3, 4, 5}
	state := models.SensorState{ID: "cod", History: history, Trend: models.TrendStable, Status: models.SensorOptimal}

	next := Classify(state, 60)

	assert.Equal(t, []float64{1, 2, 3, 4, 5}, history)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, state.History)
	assert.Equal(t, models.SensorOptimal, state.Status)

	next.History[0] = 999
	assert.Equal(t, 1.0, history[0])
}

func TestClassify_FillsUnitAndThresholdsFromProfile(t *testing.T) {
	next := Classify(models.SensorState{ID: "tds"}, 200)

	assert.Equal(t, "ppm", next.Unit)
	assert.Equal(t, models.ThresholdBounds{Min: 0, Max: 1000}, next.Thresholds)
}

func TestProfiles_BreakpointsAscending(t *testing.T) {
	for _, p := range Profiles() {
		require.NotEmpty(t, p.Breakpoints, p.ID)
		for i := 1; i < len(p.Breakpoints); i++ {
			assert.Less(t, p.Breakpoints[i-1].UpperBound, p.Breakpoints[i].UpperBound, p.ID)
		}
		assert.Greater(t, p.Epsilon, 0.0, p.ID)
	}
}

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "ph", NormalizeID("pH"))
	assert.Equal(t, "dissolved_oxygen", NormalizeID(" Dissolved-Oxygen "))
	assert.Equal(t, "dissolved_oxygen", NormalizeID("dissolved oxygen"))
}
