package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the treatment decision backend
type Config struct {
	Server     ServerConfig
	MQTT       MQTTConfig
	Database   DatabaseConfig
	Simulation SimulationConfig
	Store      StoreConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// MQTTConfig holds MQTT broker configuration
type MQTTConfig struct {
	BrokerURL             string
	ClientID              string
	Username              string
	Password              string
	KeepAlive             time.Duration
	PingTimeout           time.Duration
	ConnectRetry          bool
	TopicSensorReadings   string
	TopicTreatmentResults string
}

// DatabaseConfig holds PostgreSQL database configuration
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// SimulationConfig controls the live sensor simulation driver
type SimulationConfig struct {
	Enabled    bool
	Interval   time.Duration
	WindowSize int
}

// StoreConfig holds in-memory store limits
type StoreConfig struct {
	MaxRecords int
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		MQTT: MQTTConfig{
			BrokerURL:             getMQTTBrokerURL(),
			ClientID:              getEnv("MQTT_CLIENT_ID", "aquasmart_treatment"),
			Username:              getEnv("MQTT_USERNAME", ""),
			Password:              getEnv("MQTT_PASSWORD", ""),
			KeepAlive:             getDurationEnv("MQTT_KEEP_ALIVE", 30*time.Second),
			PingTimeout:           getDurationEnv("MQTT_PING_TIMEOUT", 10*time.Second),
			ConnectRetry:          getBoolEnv("MQTT_CONNECT_RETRY", true),
			TopicSensorReadings:   getEnv("MQTT_TOPIC_SENSOR_READINGS", "aquasmart/sensors/+/reading"),
			TopicTreatmentResults: getEnv("MQTT_TOPIC_TREATMENT_RESULTS", "aquasmart/treatment/results"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "aquasmart"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
		},
		Simulation: SimulationConfig{
			Enabled:    getBoolEnv("SIMULATION_ENABLED", true),
			Interval:   getDurationEnv("SIMULATION_INTERVAL", 3*time.Second),
			WindowSize: getIntEnv("SENSOR_WINDOW_SIZE", 5),
		},
		Store: StoreConfig{
			MaxRecords: getIntEnv("STORE_MAX_RECORDS", 1000),
		},
	}
}

// getEnv returns environment variable value or default if not set
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv returns duration environment variable value or default if not set
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getBoolEnv returns boolean environment variable value or default if not set
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

// getMQTTBrokerURL returns MQTT broker URL with tcp:// prefix if not present
// Supports both "localhost:1883" and "tcp://localhost:1883" formats
func getMQTTBrokerURL() string {
	broker := getEnv("MQTT_BROKER", getEnv("MQTT_BROKER_URL", ""))

	if broker != "" && !strings.Contains(broker, "://") {
		return "tcp://" + broker
	}
	return broker
}
