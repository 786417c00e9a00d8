package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"roadrescue/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 256
)

// Client is one websocket connection. A user may hold several. Send is never
// closed; the hub closes quit instead, so late writers cannot panic.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	quit      chan struct{}
	closeOnce sync.Once
}

func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
		quit:   make(chan struct{}),
	}
}

// Done is closed once the hub has dropped the client.
func (c *Client) Done() <-chan struct{} {
	return c.quit
}

func (c *Client) stop() {
	c.closeOnce.Do(func() { close(c.quit) })
}

// ConnectionObserver is notified when the number of open connections changes.
type ConnectionObserver interface {
	Connections(delta float64)
	RealtimeEvent(event string)
}

// Hub tracks open connections by user id and delivers events to them. It is
// created once in main and handed to whoever needs to publish.
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	observer   ConnectionObserver
}

func NewHub(observer ConnectionObserver) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		observer:   observer,
	}
}

// Start runs the hub loop until ctx is cancelled.
func (h *Hub) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-h.register:
				h.mutex.Lock()
				if h.clients[client.UserID] == nil {
					h.clients[client.UserID] = make(map[*Client]bool)
				}
				h.clients[client.UserID][client] = true
				h.mutex.Unlock()
				h.observe(1)
				logger.Debug("websocket client registered: %s", client.UserID)

			case client := <-h.unregister:
				h.remove(client)

			case <-ctx.Done():
				close(h.done)
				h.mutex.Lock()
				for _, conns := range h.clients {
					for c := range conns {
						c.stop()
					}
				}
				h.clients = make(map[string]map[*Client]bool)
				h.mutex.Unlock()
				return
			}
		}
	}()
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.stop()
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) remove(client *Client) {
	h.mutex.Lock()
	conns, ok := h.clients[client.UserID]
	if ok && conns[client] {
		delete(conns, client)
		client.stop()
		if len(conns) == 0 {
			delete(h.clients, client.UserID)
		}
	}
	h.mutex.Unlock()
	if ok {
		h.observe(-1)
		logger.Debug("websocket client unregistered: %s", client.UserID)
	}
}

func (h *Hub) observe(delta float64) {
	if h.observer != nil {
		h.observer.Connections(delta)
	}
}

// ConnectedUsers returns how many distinct users have an open connection.
func (h *Hub) ConnectedUsers() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// PublishToUser sends an event to every connection of userID. Users without
// a connection simply miss it; clients fall back to polling.
func (h *Hub) PublishToUser(ctx context.Context, userID, event string, payload interface{}) error {
	data, err := json.Marshal(Envelope{
		Type:      event,
		Data:      payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	if h.observer != nil {
		h.observer.RealtimeEvent(event)
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.Send <- data:
		default:
			logger.Warn("websocket send buffer full for user %s, dropping %s", userID, event)
		}
	}
	return nil
}

// ReadPump reads until the connection fails, answering pings.
func (c *Client) ReadPump(h *Hub) {
	defer func() {
		h.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket read error for %s: %v", c.UserID, err)
			}
			return
		}
		if reply := handleClientMessage(raw); reply != nil {
			select {
			case <-c.quit:
				return
			case c.Send <- reply:
			default:
			}
		}
	}
}

// WritePump drains Send to the connection and keeps it alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case <-c.quit:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("websocket write error for %s: %v", c.UserID, err)
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
