package mqtt

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/Capstone-E1/aquasmart_treatment/config"
	"github.com/Capstone-E1/aquasmart_treatment/internal/models"
	"github.com/Capstone-E1/aquasmart_treatment/internal/services"
)

// Client wraps the MQTT client with sensor ingest and result publishing
type Client struct {
	client       mqtt.Client
	parser       *services.ReadingParser
	cfg          config.MQTTConfig
	mu           sync.RWMutex
	dataHandler  func(*models.SensorReading)
	errorHandler func(error)
	isConnected  bool
}

// NewClient creates a new MQTT client from configuration
func NewClient(cfg config.MQTTConfig) *Client {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetClientID(cfg.ClientID)
	opts.SetKeepAlive(cfg.KeepAlive)
	opts.SetPingTimeout(cfg.PingTimeout)
	opts.SetConnectRetry(cfg.ConnectRetry)
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	client := &Client{
		parser: services.NewReadingParser(),
		cfg:    cfg,
	}

	// Set connection handlers
	opts.SetDefaultPublishHandler(client.defaultMessageHandler)
	opts.SetOnConnectHandler(client.onConnect)
	opts.SetConnectionLostHandler(client.onConnectionLost)

	client.client = mqtt.NewClient(opts)

	return client
}

// Connect establishes connection to MQTT broker
func (c *Client) Connect() error {
	log.Println("Connecting to MQTT broker...")

	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	log.Println("Successfully connected to MQTT broker")
	c.setConnected(true)
	return nil
}

// Disconnect closes the MQTT connection
func (c *Client) Disconnect() {
	if c.IsConnected() {
		c.client.Disconnect(250)
		c.setConnected(false)
		log.Println("Disconnected from MQTT broker")
	}
}

// IsConnected returns the connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isConnected && c.client.IsConnected()
}

func (c *Client) setConnected(connected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isConnected = connected
}

// SetDataHandler sets the callback function for parsed sensor readings
func (c *Client) SetDataHandler(handler func(*models.SensorReading)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dataHandler = handler
}

// SetErrorHandler sets the callback function for errors
func (c *Client) SetErrorHandler(handler func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errorHandler = handler
}

// SubscribeToSensorReadings subscribes to the per-sensor reading topic
func (c *Client) SubscribeToSensorReadings() error {
	topic := c.cfg.TopicSensorReadings
	if token := c.client.Subscribe(topic, 1, c.sensorReadingHandler); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", topic, token.Error())
	}
	log.Printf("Subscribed to topic: %s", topic)
	return nil
}

// sensorReadingHandler processes incoming sensor reading messages
func (c *Client) sensorReadingHandler(_ mqtt.Client, msg mqtt.Message) {
	c.handleReading(msg.Topic(), msg.Payload())
}

func (c *Client) handleReading(topic string, payload []byte) {
	reading, err := c.parser.ParseReading(topic, payload)

	c.mu.RLock()
	dataHandler, errorHandler := c.dataHandler, c.errorHandler
	c.mu.RUnlock()

	if err != nil {
		log.Printf("Failed to parse sensor reading on %s: %v", topic, err)
		if errorHandler != nil {
			errorHandler(fmt.Errorf("sensor reading parsing failed: %w", err))
		}
		return
	}

	if dataHandler != nil {
		dataHandler(reading)
	}
}

// defaultMessageHandler handles messages on unsubscribed topics
func (c *Client) defaultMessageHandler(_ mqtt.Client, msg mqtt.Message) {
	log.Printf("Received message on unhandled topic %s: %s", msg.Topic(), string(msg.Payload()))
}

// onConnect callback when connection is established
func (c *Client) onConnect(_ mqtt.Client) {
	log.Println("MQTT client connected")
	c.setConnected(true)
}

// onConnectionLost callback when connection is lost
func (c *Client) onConnectionLost(_ mqtt.Client, err error) {
	log.Printf("MQTT connection lost: %v", err)
	c.setConnected(false)

	c.mu.RLock()
	errorHandler := c.errorHandler
	c.mu.RUnlock()
	if errorHandler != nil {
		errorHandler(fmt.Errorf("MQTT connection lost: %w", err))
	}
}

// PublishTreatmentResult publishes an evaluation record to the results topic
func (c *Client) PublishTreatmentResult(record *models.EvaluationRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal treatment result: %w", err)
	}

	topic := c.cfg.TopicTreatmentResults
	if token := c.client.Publish(topic, 1, false, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to publish treatment result: %w", token.Error())
	}

	log.Printf("Published treatment result %s to %s", record.ID, topic)
	return nil
}

// NotifyResult publishes the record when connected; failures are logged
func (c *Client) NotifyResult(record *models.EvaluationRecord) {
	if !c.IsConnected() {
		return
	}
	if err := c.PublishTreatmentResult(record); err != nil {
		log.Printf("⚠️  %v", err)
	}
}
