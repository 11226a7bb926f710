package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rideway/rideway-backend/internal/models"
	"github.com/rideway/rideway-backend/internal/observability"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Client represents a WebSocket client. ConnID is the live-connection
// address other parties use to reach this client through the hub.
type Client struct {
	UserID   uint
	UserType models.UserType
	ConnID   string
	Conn     *websocket.Conn
	Send     chan []byte
	Hub      *Hub
}

// Hub maintains the set of active clients keyed by connection id and is the
// real-time transport behind the dispatch broadcaster and the lifecycle
// notifications.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	presence   PresenceRegistry
}

// NewHub creates a new WebSocket hub bound to a presence registry.
func NewHub(presence PresenceRegistry) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		presence:   presence,
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client.ConnID] = client
			h.mutex.Unlock()
			h.presence.SetConnection(context.Background(), client.UserType, client.UserID, client.ConnID)
			observability.ConnectedClients.Inc()
			log.Printf("Client %s (%s %d) connected", client.ConnID, client.UserType, client.UserID)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client.ConnID]; ok {
				delete(h.clients, client.ConnID)
				close(client.Send)
			}
			h.mutex.Unlock()
			h.presence.ClearConnection(context.Background(), client.UserType, client.UserID)
			observability.ConnectedClients.Dec()
			log.Printf("Client %s (%s %d) disconnected", client.ConnID, client.UserType, client.UserID)
		}
	}
}

// Message is the wire envelope for every event in either direction.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Send delivers one event to one connection id. At-most-once: a full send
// buffer or an unknown connection drops the message.
func (h *Hub) Send(connID, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	message, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		return err
	}

	h.mutex.RLock()
	client, ok := h.clients[connID]
	h.mutex.RUnlock()
	if !ok {
		return fmt.Errorf("no client for connection %s", connID)
	}

	select {
	case client.Send <- message:
		return nil
	default:
		return fmt.Errorf("send buffer full for connection %s", connID)
	}
}

// GetConnectedClients returns the number of connected clients
func (h *Hub) GetConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// locationUpdate is the inbound captain location message.
type locationUpdate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HandleWebSocket upgrades the request and registers the client under a
// freshly generated connection id.
func HandleWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request, userID uint, userType models.UserType) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		UserID:   userID,
		UserType: userType,
		ConnID:   newConnID(),
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Hub:      hub,
	}

	client.Hub.register <- client

	// Start goroutines for reading and writing
	go client.writePump()
	go client.readPump()
}

func newConnID() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		log.Printf("conn id entropy error: %v", err)
	}
	return hex.EncodeToString(b)
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("Error unmarshaling WebSocket message: %v", err)
			continue
		}

		switch msg.Event {
		case "update-location-captain":
			c.handleLocationUpdate(msg.Data)
		case "join":
			// Identity is established at upgrade time from the auth token;
			// a join message is accepted for client compatibility but is a
			// no-op beyond the registration already done.
		}
	}
}

func (c *Client) handleLocationUpdate(data json.RawMessage) {
	if c.UserType != models.UserTypeCaptain {
		return
	}

	var update locationUpdate
	if err := json.Unmarshal(data, &update); err != nil {
		log.Printf("Invalid location update from captain %d: %v", c.UserID, err)
		return
	}
	if update.Lat < -90 || update.Lat > 90 || update.Lng < -180 || update.Lng > 180 {
		log.Printf("Out-of-range location update from captain %d", c.UserID)
		return
	}

	c.Hub.presence.UpdateLocation(context.Background(), c.UserID, update.Lat, update.Lng)
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}

	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
