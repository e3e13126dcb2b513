package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/Capstone-E1/aquasmart_treatment/internal/models"
)

// Message types sent to clients
const (
	MessageConnected       = "connected"
	MessageSensorUpdate    = "sensor_update"
	MessageTreatmentResult = "treatment_result"
	MessageError           = "error"
)

// Client represents a WebSocket client connection
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains active WebSocket connections and broadcasts messages
type Hub struct {
	clients     map[*Client]bool
	clientCount int64
	broadcast   chan []byte
	register    chan *Client
	unregister  chan *Client
	done        chan struct{}
	stopOnce    sync.Once
}

// Message represents a WebSocket message structure
type Message struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin in development
		// In production, implement proper origin checking
		return true
	},
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the WebSocket hub; it returns after Stop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.updateCount()
			log.Printf("Client connected. Total clients: %d", len(h.clients))

			// Send welcome message
			welcome := Message{
				Type:      MessageConnected,
				Timestamp: time.Now(),
				Data:      map[string]string{"status": "connected"},
			}
			if data, err := json.Marshal(welcome); err == nil {
				select {
				case client.send <- data:
				default:
					h.drop(client)
				}
			}

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Printf("Client disconnected. Total clients: %d", len(h.clients))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					h.drop(client)
				}
			}

		case <-h.done:
			for client := range h.clients {
				h.drop(client)
			}
			return
		}
	}
}

// Stop terminates Run and closes every client. Calling it again is a no-op.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.updateCount()
}

func (h *Hub) updateCount() {
	atomic.StoreInt64(&h.clientCount, int64(len(h.clients)))
}

// BroadcastSensorStates broadcasts the latest sensor session snapshot to all clients
func (h *Hub) BroadcastSensorStates(states []models.SensorState) {
	h.broadcastMessage(MessageSensorUpdate, states)
}

// BroadcastTreatmentResult broadcasts a new treatment evaluation to all clients
func (h *Hub) BroadcastTreatmentResult(record *models.EvaluationRecord) {
	h.broadcastMessage(MessageTreatmentResult, record)
}

// BroadcastError broadcasts error messages to all clients
func (h *Hub) BroadcastError(errorMsg string) {
	h.broadcastMessage(MessageError, map[string]string{"error": errorMsg})
}

func (h *Hub) broadcastMessage(messageType string, payload interface{}) {
	message := Message{
		Type:      messageType,
		Timestamp: time.Now(),
		Data:      payload,
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling %s message: %v", messageType, err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		log.Printf("Broadcast channel is full, dropping %s message", messageType)
	}
}

// GetConnectedClientsCount returns the number of connected clients
func (h *Hub) GetConnectedClientsCount() int {
	return int(atomic.LoadInt64(&h.clientCount))
}

// HandleWebSocket handles WebSocket connection requests
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}

	select {
	case client.hub.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	// Start goroutines for handling the client
	go client.writePump()
	go client.readPump()
}

// readPump handles reading messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	// Set read deadline and pong handler
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		// Dashboard clients are receive-only
		log.Printf("Received message from client: %s", message)
	}
}

// writePump handles writing messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to current message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}