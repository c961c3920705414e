package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/plantmerge/game/engine"
	"github.com/wricardo/mcp-training/plantmerge/game/service"
	"github.com/wricardo/mcp-training/plantmerge/logging"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Time allowed to apply one inbound position.
	positionTimeout = 5 * time.Second
)

const (
	EventStateUpdate = "state_update"
	EventPosition    = "position"
	EventError       = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict origins once the allowed hosts are part of Settings
		return true
	},
}

// PositionReporter applies a position reported by a connected client
type PositionReporter interface {
	ReportPosition(ctx context.Context, sessionID string, pos engine.LatLng) (*service.PositionResult, error)
}

// SourceRegistry tracks which sessions have a live geolocation source
type SourceRegistry interface {
	AddSource(sessionID string) (remove func())
}

// Message represents an outbound WebSocket message
type Message struct {
	SessionID string            `json:"session_id"`
	GameState *engine.GameState `json:"game_state,omitempty"`
	Event     string            `json:"event,omitempty"`
	Data      interface{}       `json:"data,omitempty"`
}

// ClientMessage is a message sent by a browser, e.g. {"event":"position","lat":..,"lng":..}
type ClientMessage struct {
	Event string  `json:"event"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

// Client represents a WebSocket client
type Client struct {
	id           string
	hub          *Hub
	conn         *websocket.Conn
	send         chan []byte
	sessionID    string
	removeSource func()
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by lowercased session ID
	sessions map[string]map[*Client]bool
	mu       sync.RWMutex

	// Outbound messages for a session
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	positions PositionReporter
	sources   SourceRegistry
	logger    *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, engine.WebSocketBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logging.OrNop(logger).Named("ws"),
	}
}

// SetPositionReporter sets where inbound position messages are applied
func (h *Hub) SetPositionReporter(positions PositionReporter) {
	h.positions = positions
}

// SetSourceRegistry sets the registry told about geolocation-capable clients
func (h *Hub) SetSourceRegistry(sources SourceRegistry) {
	h.sources = sources
}

// Run starts the hub's event loop and returns when ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeWS upgrades the request and attaches the connection to a session.
// With geoSource the client is registered as a location source for the session.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string, geoSource bool) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		id:        uuid.NewString(),
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, engine.WebSocketBufferSize),
		sessionID: sessionID,
	}
	if geoSource && h.sources != nil {
		client.removeSource = h.sources.AddSource(sessionID)
	}

	select {
	case h.register <- client:
	case <-h.done:
		if client.removeSource != nil {
			client.removeSource()
		}
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// BroadcastToSession sends a game state update to all clients in a session
func (h *Hub) BroadcastToSession(sessionID string, state *engine.GameState) {
	h.enqueue(&Message{
		SessionID: sessionID,
		GameState: state,
		Event:     EventStateUpdate,
	})
}

// BroadcastEvent sends a custom event to all clients in a session
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	h.enqueue(&Message{
		SessionID: sessionID,
		Event:     event,
		Data:      data,
	})
}

func (h *Hub) enqueue(message *Message) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("broadcast queue full, dropping message",
			zap.String("session_id", message.SessionID), zap.String("event", message.Event))
	}
}

// ClientCount returns the number of clients connected to a session
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[strings.ToLower(sessionID)])
}

// registerClient adds a client to a session
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := strings.ToLower(client.sessionID)
	if h.sessions[key] == nil {
		h.sessions[key] = make(map[*Client]bool)
	}
	h.sessions[key][client] = true

	h.logger.Info("client registered",
		zap.String("session_id", client.sessionID),
		zap.String("client_id", client.id),
		zap.Bool("geo_source", client.removeSource != nil),
		zap.Int("clients", len(h.sessions[key])))
}

// unregisterClient removes a client from a session
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unregisterLocked(client)
}

func (h *Hub) unregisterLocked(client *Client) {
	key := strings.ToLower(client.sessionID)
	clients, ok := h.sessions[key]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)
	if client.removeSource != nil {
		client.removeSource()
	}

	// Clean up empty sessions
	if len(clients) == 0 {
		delete(h.sessions, key)
	}

	h.logger.Info("client unregistered",
		zap.String("session_id", client.sessionID),
		zap.String("client_id", client.id),
		zap.Int("remaining", len(clients)))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.sessions {
		for client := range clients {
			h.unregisterLocked(client)
		}
	}
}

// broadcastMessage sends a message to all clients in a session
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal broadcast message", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.sessions[strings.ToLower(message.SessionID)] {
		select {
		case client.send <- data:
		default:
			// Client's send channel is full
			h.unregisterLocked(client)
		}
	}
}

// reply sends a message to one client if it is still registered
func (h *Hub) reply(client *Client, message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal reply", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.sessions[strings.ToLower(client.sessionID)][client] {
		return
	}
	select {
	case client.send <- data:
	default:
	}
}

// handleClientMessage applies one inbound message
func (h *Hub) handleClientMessage(client *Client, raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.replyError(client, "malformed message")
		return
	}

	switch msg.Event {
	case EventPosition:
		if h.positions == nil {
			h.replyError(client, "position updates are not accepted")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), positionTimeout)
		defer cancel()

		result, err := h.positions.ReportPosition(ctx, client.sessionID, engine.LatLng{Lat: msg.Lat, Lng: msg.Lng})
		if err != nil {
			h.logger.Debug("position rejected",
				zap.String("session_id", client.sessionID), zap.Error(err))
			h.replyError(client, err.Error())
			return
		}
		h.BroadcastToSession(client.sessionID, result.GameState)
		for _, event := range result.Events {
			h.BroadcastEvent(client.sessionID, event.Type, event)
		}
	default:
		h.replyError(client, "unknown event "+msg.Event)
	}
}

func (h *Hub) replyError(client *Client, message string) {
	h.reply(client, &Message{
		SessionID: client.sessionID,
		Event:     EventError,
		Data:      map[string]string{"message": message},
	})
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read error", zap.String("client_id", c.id), zap.Error(err))
			}
			break
		}
		c.hub.handleClientMessage(c, raw)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
