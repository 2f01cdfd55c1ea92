package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/marekkolman/rates-engine/internal/store"
	"github.com/marekkolman/rates-engine/pkg/metrics"
	"github.com/marekkolman/rates-engine/pkg/models"
	"github.com/marekkolman/rates-engine/pkg/utils/logger"
)

// Hub maintains the set of active clients and fans quote updates out to the
// ones subscribed to each instrument.
type Hub struct {
	clients       map[*Client]bool
	broadcast     chan []byte
	register      chan *Client
	unregister    chan *Client
	subscriptions map[string]map[*Client]bool // instrument -> clients
	quotes        *store.QuoteStore
	recorder      *metrics.Recorder
	log           *logger.Logger
	mu            sync.RWMutex
}

// Client is a middleman between a websocket connection and the hub.
type Client struct {
	hub           *Hub
	conn          *websocket.Conn
	send          chan []byte
	id            string
	subscriptions map[string]bool
	mu            sync.RWMutex
}

// Message is the wire format pushed to clients.
type Message struct {
	Type       string      `json:"type"`
	Instrument string      `json:"instrument,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	ID         string      `json:"id,omitempty"`
}

// SubscriptionMessage is the request format read from clients.
type SubscriptionMessage struct {
	Type        string   `json:"type"`
	Instruments []string `json:"instruments"`
	ID          string   `json:"id,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// NewHub creates a hub over the quote store. The hub registers itself as a
// store subscriber so applied quotes reach connected clients.
func NewHub(quotes *store.QuoteStore, recorder *metrics.Recorder) *Hub {
	h := &Hub{
		clients:       make(map[*Client]bool),
		broadcast:     make(chan []byte, 256),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		subscriptions: make(map[string]map[*Client]bool),
		quotes:        quotes,
		recorder:      recorder,
		log:           logger.GetLogger("stream.hub"),
	}
	if quotes != nil {
		quotes.Subscribe(h.BroadcastQuote)
	}
	return h
}

// Run drives the hub's register/unregister/broadcast loop until ctx ends.
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("Starting stream hub")

	for {
		select {
		case <-ctx.Done():
			h.log.Info("Stream hub shutting down")
			return

		case client := <-h.register:
			h.clients[client] = true
			h.recorder.SetWSClients(len(h.clients))
			h.log.Infof("Client %s registered", client.id)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.removeClientSubscriptions(client)
				h.recorder.SetWSClients(len(h.clients))
				h.log.Infof("Client %s unregistered", client.id)
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// HandleWebSocket upgrades the connection and starts the client pumps.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:           h,
		conn:          conn,
		send:          make(chan []byte, 256),
		id:            uuid.NewString(),
		subscriptions: make(map[string]bool),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastQuote pushes an applied quote to the clients subscribed to its
// instrument. Safe to call from any goroutine.
func (h *Hub) BroadcastQuote(q models.Quote) {
	h.mu.RLock()
	clients, exists := h.subscriptions[q.Instrument]
	if !exists || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}
	clientList := make([]*Client, 0, len(clients))
	for client := range clients {
		clientList = append(clientList, client)
	}
	h.mu.RUnlock()

	data, err := json.Marshal(Message{Type: "quote", Instrument: q.Instrument, Data: q})
	if err != nil {
		h.log.Errorf("Failed to marshal quote update: %v", err)
		return
	}

	for _, client := range clientList {
		select {
		case client.send <- data:
			h.recorder.RecordWSMessage("quote")
		default:
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, messageData, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Errorf("WebSocket error: %v", err)
			}
			break
		}
		c.handleMessage(messageData)
	}
}

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
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte("\n"))
				w.Write(<-c.send)
			}

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

func (c *Client) handleMessage(messageData []byte) {
	var msg SubscriptionMessage
	if err := json.Unmarshal(messageData, &msg); err != nil {
		c.sendError("Invalid message format")
		return
	}

	switch msg.Type {
	case "subscribe":
		c.handleSubscription(msg)
	case "unsubscribe":
		c.handleUnsubscription(msg)
	case "ping":
		c.sendMessage(Message{Type: "pong", ID: msg.ID})
	default:
		c.sendError("Unknown message type")
	}
}

func (c *Client) handleSubscription(msg SubscriptionMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, instrument := range msg.Instruments {
		c.subscriptions[instrument] = true

		c.hub.mu.Lock()
		if c.hub.subscriptions[instrument] == nil {
			c.hub.subscriptions[instrument] = make(map[*Client]bool)
		}
		c.hub.subscriptions[instrument][c] = true
		c.hub.mu.Unlock()

		// Current quote set as the initial snapshot.
		if set, err := c.hub.quotes.Get(instrument); err == nil {
			c.sendMessage(Message{
				Type:       "snapshot",
				Instrument: instrument,
				Data:       set,
				ID:         msg.ID,
			})
		}
	}

	c.sendMessage(Message{
		Type: "subscription_confirmed",
		Data: map[string]interface{}{"instruments": msg.Instruments},
		ID:   msg.ID,
	})
}

func (c *Client) handleUnsubscription(msg SubscriptionMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, instrument := range msg.Instruments {
		delete(c.subscriptions, instrument)

		c.hub.mu.Lock()
		if clients, exists := c.hub.subscriptions[instrument]; exists {
			delete(clients, c)
			if len(clients) == 0 {
				delete(c.hub.subscriptions, instrument)
			}
		}
		c.hub.mu.Unlock()
	}

	c.sendMessage(Message{
		Type: "unsubscription_confirmed",
		Data: map[string]interface{}{"instruments": msg.Instruments},
		ID:   msg.ID,
	})
}

func (c *Client) sendMessage(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.hub.log.Errorf("Failed to marshal message: %v", err)
		return
	}

	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(errorMsg string) {
	c.sendMessage(Message{Type: "error", Error: errorMsg})
}

func (h *Hub) removeClientSubscriptions(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.mu.RLock()
	for instrument := range client.subscriptions {
		if clients, exists := h.subscriptions[instrument]; exists {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.subscriptions, instrument)
			}
		}
	}
	client.mu.RUnlock()
}
