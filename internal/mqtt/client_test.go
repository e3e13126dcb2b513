package mqtt

import (
	"testing"
	"time"

	"github.com/Capstone-E1/aquasmart_treatment/config"
	"github.com/Capstone-E1/aquasmart_treatment/internal/models"
	"github.com/Capstone-E1/aquasmart_treatment/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ services.ResultNotifier = (*Client)(nil)

func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		BrokerURL:             "tcp://127.0.0.1:1",
		ClientID:              "test",
		KeepAlive:             time.Second,
		PingTimeout:           time.Second,
		TopicSensorReadings:   "aquasmart/sensors/+/reading",
		TopicTreatmentResults: "aquasmart/treatment/results",
	}
}

func TestClient_HandleReadingDispatches(t *testing.T) {
	client := NewClient(testConfig())

	var got *models.SensorReading
	client.SetDataHandler(func(r *models.SensorReading) { got = r })

	client.handleReading("aquasmart/sensors/turbidity/reading", []byte(`{"value": 42}`))

	require.NotNil(t, got)
	assert.Equal(t, "turbidity", got.SensorID)
	assert.Equal(t, 42.0, got.Value)
}

func TestClient_HandleReadingReportsErrors(t *testing.T) {
	client := NewClient(testConfig())

	var gotErr error
	called := false
	client.SetErrorHandler(func(err error) { gotErr = err })
	client.SetDataHandler(func(*models.SensorReading) { called = true })

	client.handleReading("aquasmart/sensors/turbidity/reading", []byte("not a number"))

	assert.Error(t, gotErr)
	assert.False(t, called)
}

func TestClient_NotConnectedSkipsPublish(t *testing.T) {
	client := NewClient(testConfig())

	assert.False(t, client.IsConnected())
	// Must return without blocking on the unreachable broker
	client.NotifyResult(&models.EvaluationRecord{ID: "eval-1"})
	client.Disconnect()
}
