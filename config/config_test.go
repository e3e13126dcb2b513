package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "aquasmart/sensors/+/reading", cfg.MQTT.TopicSensorReadings)
	assert.Equal(t, "aquasmart/treatment/results", cfg.MQTT.TopicTreatmentResults)
	assert.Equal(t, 5, cfg.Simulation.WindowSize)
	assert.Equal(t, 1000, cfg.Store.MaxRecords)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SIMULATION_INTERVAL", "500ms")
	t.Setenv("SIMULATION_ENABLED", "false")
	t.Setenv("SENSOR_WINDOW_SIZE", "8")
	t.Setenv("STORE_MAX_RECORDS", "not-a-number")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.Simulation.Interval)
	assert.False(t, cfg.Simulation.Enabled)
	assert.Equal(t, 8, cfg.Simulation.WindowSize)
	assert.Equal(t, 1000, cfg.Store.MaxRecords)
}

func TestGetMQTTBrokerURL(t *testing.T) {
	tests := []struct {
		name     string
		broker   string
		expected string
	}{
		{name: "unset", broker: "", expected: ""},
		{name: "bare host", broker: "broker.local:1883", expected: "tcp://broker.local:1883"},
		{name: "tcp scheme", broker: "tcp://broker.local:1883", expected: "tcp://broker.local:1883"},
		{name: "ssl scheme", broker: "ssl://broker.local:8883", expected: "ssl://broker.local:8883"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MQTT_BROKER", tt.broker)
			assert.Equal(t, tt.expected, getMQTTBrokerURL())
		})
	}
}
