package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Capstone-E1/aquasmart_treatment/internal/models"
	"github.com/Capstone-E1/aquasmart_treatment/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	*store.Store
}

func (f failingStore) AddEvaluation(models.EvaluationRecord) error {
	return errors.New("disk full")
}

func criticalSample() models.WaterQualityParameters {
	return models.WaterQualityParameters{Turbidity: 80, COD: 200, Nitrogen: 15, Phosphorus: 2, Ph: 9}
}

func TestEvaluationService_EvaluatePersistsAndNotifies(t *testing.T) {
	dataStore := store.NewStore(10)

	var notified []*models.EvaluationRecord
	service := NewEvaluationService(dataStore, NotifierFunc(func(r *models.EvaluationRecord) {
		notified = append(notified, r)
	}))
	service.now = func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC) }
	service.newID = func() string { return "eval-1" }

	record, err := service.Evaluate("alice", "session-9", criticalSample())
	require.NoError(t, err)

	assert.Equal(t, "eval-1", record.ID)
	assert.Equal(t, "alice", record.UserID)
	assert.Equal(t, "session-9", record.SessionID)
	assert.Equal(t, models.StatusCritical, record.Result.OverallStatus)
	assert.Equal(t, 95.0, record.Result.EstimatedEfficiency)

	stored, err := dataStore.GetEvaluation("eval-1")
	require.NoError(t, err)
	assert.Equal(t, record.Result.TotalStagesRequired, stored.Result.TotalStagesRequired)

	require.Len(t, notified, 1)
	assert.Equal(t, "eval-1", notified[0].ID)
}

func TestEvaluationService_DefaultUserAndUniqueIDs(t *testing.T) {
	dataStore := store.NewStore(10)
	service := NewEvaluationService(dataStore)

	first, err := service.Evaluate("", "", criticalSample())
	require.NoError(t, err)
	second, err := service.Evaluate("", "", criticalSample())
	require.NoError(t, err)

	assert.Equal(t, "anonymous", first.UserID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, dataStore.GetEvaluationCount())
}

func TestEvaluationService_RejectsInvalidInput(t *testing.T) {
	dataStore := store.NewStore(10)
	service := NewEvaluationService(dataStore)

	params := criticalSample()
	params.Ph = 15

	record, err := service.Evaluate("alice", "", params)
	assert.Nil(t, record)

	var validationErr *models.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "ph", validationErr.Field)
	assert.Equal(t, 0, dataStore.GetEvaluationCount())
}

func TestEvaluationService_RejectsOversizedIdentifiers(t *testing.T) {
	dataStore := store.NewStore(10)
	service := NewEvaluationService(dataStore)

	tests := []struct {
		name          string
		userID        string
		sessionID     string
		expectedField string
	}{
		{name: "identifiers at column limit", userID: strings.Repeat("u", models.MaxUserIDLength), sessionID: strings.Repeat("s", models.MaxSessionIDLength)},
		{name: "user id too long", userID: strings.Repeat("u", models.MaxUserIDLength+1), expectedField: "user_id"},
		{name: "session id too long", userID: "alice", sessionID: strings.Repeat("s", models.MaxSessionIDLength+1), expectedField: "session_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := dataStore.GetEvaluationCount()
			record, err := service.Evaluate(tt.userID, tt.sessionID, criticalSample())
			if tt.expectedField == "" {
				require.NoError(t, err)
				assert.Equal(t, before+1, dataStore.GetEvaluationCount())
				return
			}

			assert.Nil(t, record)
			var validationErr *models.ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tt.expectedField, validationErr.Field)
			assert.Equal(t, before, dataStore.GetEvaluationCount())
		})
	}
}

func TestEvaluationService_StoreFailureStillReturnsRecord(t *testing.T) {
	notified := 0
	service := NewEvaluationService(failingStore{store.NewStore(10)}, NotifierFunc(func(*models.EvaluationRecord) {
		notified++
	}))

	record, err := service.Evaluate("alice", "", criticalSample())
	require.Error(t, err)
	require.NotNil(t, record)
	assert.Equal(t, models.StatusCritical, record.Result.OverallStatus)
	assert.Equal(t, 0, notified)
}

func TestEvaluationService_Preview(t *testing.T) {
	service := NewEvaluationService(store.NewStore(10))

	result, err := service.Preview(models.WaterQualityParameters{Turbidity: 30, COD: 50, Nitrogen: 5, Phosphorus: 0.5, Ph: 7})
	require.NoError(t, err)
	assert.Equal(t, models.StatusSafe, result.OverallStatus)

	_, err = service.Preview(models.WaterQualityParameters{Turbidity: -1, Ph: 7})
	assert.Error(t, err)
}

func TestReadingParser_ParseReading(t *testing.T) {
	parser := NewReadingParser()

	tests := []struct {
		name     string
		topic    string
		payload  string
		sensorID string
		value    float64
		wantErr  bool
	}{
		{name: "json payload", topic: "aquasmart/sensors/turbidity/reading", payload: `{"value": 12.5}`, sensorID: "turbidity", value: 12.5},
		{name: "bare number", topic: "aquasmart/sensors/pH/reading", payload: " 7.04 ", sensorID: "ph", value: 7.04},
		{name: "json sensor id overrides topic", topic: "aquasmart/sensors/x/reading", payload: `{"sensor_id": "COD", "value": 120}`, sensorID: "cod", value: 120},
		{name: "zero value in json", topic: "aquasmart/sensors/flow/reading", payload: `{"value": 0}`, sensorID: "flow", value: 0},
		{name: "garbage", topic: "aquasmart/sensors/ph/reading", payload: "abc", wantErr: true},
		{name: "json without value", topic: "aquasmart/sensors/ph/reading", payload: `{"sensor_id": "ph"}`, wantErr: true},
		{name: "no sensor id", topic: "aquasmart/readings", payload: "5", wantErr: true},
		{name: "not finite", topic: "aquasmart/sensors/ph/reading", payload: "NaN", wantErr: true},
		{name: "unknown sensor in topic", topic: "aquasmart/sensors/chlorine/reading", payload: "1.5", wantErr: true},
		{name: "unknown sensor in json", topic: "aquasmart/sensors/ph/reading", payload: `{"sensor_id": "junk", "value": 3}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reading, err := parser.ParseReading(tt.topic, []byte(tt.payload))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.sensorID, reading.SensorID)
			assert.Equal(t, tt.value, reading.Value)
			assert.Contains(t, parser.FormatReading(reading), tt.sensorID)
		})
	}
}

func TestSensorIDFromTopic(t *testing.T) {
	assert.Equal(t, "dissolved_oxygen", SensorIDFromTopic("aquasmart/sensors/Dissolved-Oxygen/reading"))
	assert.Equal(t, "", SensorIDFromTopic("aquasmart/sensors"))
	assert.Equal(t, "", SensorIDFromTopic("other/topic"))
}
