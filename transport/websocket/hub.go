package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/exploretui/game/service"
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

	// Notifications queued while the hub loop is busy; more are dropped.
	broadcastBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one watcher connection
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	account string
}

// Hub fans state change notifications out to the watchers of each account
type Hub struct {
	// Registered clients by lower-case account
	accounts map[string]map[*Client]bool
	mu       sync.RWMutex

	broadcast  chan service.Notification
	register   chan *Client
	unregister chan *Client
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		accounts:   make(map[string]map[*Client]bool),
		broadcast:  make(chan service.Notification, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes registrations and notifications until ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case n := <-h.broadcast:
			h.broadcastMessage(n)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// ServeWS upgrades the request and registers a watcher for account
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, account string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 256),
		account: strings.ToLower(account),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// Notify queues n for the watchers of n.Account. It never blocks: when the
// queue is full the notification is dropped.
func (h *Hub) Notify(n service.Notification) {
	n.Account = strings.ToLower(n.Account)
	if n.Event == "" {
		n.Event = service.EventStateChanged
	}
	select {
	case h.broadcast <- n:
	default:
		log.Printf("WebSocket notification for %s dropped, queue full", n.Account)
	}
}

// ClientCount returns the number of watchers of account
func (h *Hub) ClientCount(account string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.accounts[strings.ToLower(account)])
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.accounts[client.account] == nil {
		h.accounts[client.account] = make(map[*Client]bool)
	}
	h.accounts[client.account][client] = true

	log.Printf("Watcher registered for account %s (total watchers: %d)",
		client.account, len(h.accounts[client.account]))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.accounts[client.account]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)

	if len(clients) == 0 {
		delete(h.accounts, client.account)
	}
	log.Printf("Watcher unregistered from account %s (remaining watchers: %d)",
		client.account, len(clients))
}

func (h *Hub) broadcastMessage(n service.Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		log.Printf("Failed to marshal notification: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.accounts[n.Account] {
		select {
		case client.send <- data:
		default:
			// Slow watcher
			h.removeLocked(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.accounts {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// readPump keeps the read side alive so pongs and close frames are seen
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
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump writes queued notifications and periodic pings
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

			// Queued notifications share one frame, newline separated
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
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
