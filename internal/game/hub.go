package game

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
)

type GameResultMessage struct {
	Type string         `json:"type"`
	Data GameResultData `json:"data"`
}

type GameResultData struct {
	GameID     string  `json:"game_id"`
	Won        bool    `json:"won"`
	Payout     float64 `json:"payout"`
	Multiplier float64 `json:"multiplier"`
}

type Client struct {
	conn   *websocket.Conn
	userID string
	mu     sync.Mutex
}

type userMessage struct {
	userID  string
	payload interface{}
}

// Hub tracks WebSocket clients and delivers game results to the owning
// user's connections.
type Hub struct {
	clients    map[*Client]bool
	notify     chan userMessage
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		notify:     make(chan userMessage, 100),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("[WS] Client connected: %s (Total: %d)", client.userID, len(h.clients))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.conn.Close()
				log.Printf("[WS] Client disconnected: %s (Total: %d)", client.userID, len(h.clients))
			}
			h.mu.Unlock()

		case message := <-h.notify:
			jsonMessage, err := json.Marshal(message.payload)
			if err != nil {
				log.Printf("[WS] Marshal error: %v", err)
				continue
			}

			h.mu.RLock()
			for client := range h.clients {
				if client.userID == message.userID {
					go client.send(jsonMessage) // Non-blocking send
				}
			}
			h.mu.RUnlock()
		}
	}
}

// NotifyUser queues a message for every connection the user holds.
func (h *Hub) NotifyUser(userID string, payload interface{}) {
	select {
	case h.notify <- userMessage{userID: userID, payload: payload}:
	default:
		log.Println("[WS] Notify channel full, dropping message")
	}
}

func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (c *Client) send(message []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		log.Printf("[WS] Write error for user %s: %v", c.userID, err)
	}
}

func (h *Hub) RegisterClient(conn *websocket.Conn, userID string) {
	client := &Client{
		conn:   conn,
		userID: userID,
	}
	h.register <- client
}

func (h *Hub) UnregisterClient(conn *websocket.Conn) {
	h.mu.RLock()
	for client := range h.clients {
		if client.conn == conn {
			h.mu.RUnlock()
			h.unregister <- client
			return
		}
	}
	h.mu.RUnlock()
}
