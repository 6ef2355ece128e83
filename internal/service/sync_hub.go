package service

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"aicu_backend/internal/model"
	"aicu_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendQueueSize  = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SyncClient is one connected quiz page.
type SyncClient struct {
	Hub     *SyncHub
	Conn    *websocket.Conn
	Send    chan []byte
	Limiter *rate.Limiter
}

// SyncHub pushes every SyncEvent to all connected pages. It registers itself
// on the event bus under a fixed subscriber id, so pages receive the same
// notifications as in-process subscribers.
type SyncHub struct {
	mu         sync.RWMutex
	clients    map[*SyncClient]bool
	broadcast  chan []byte
	register   chan *SyncClient
	unregister chan *SyncClient
	stop       chan struct{}
	stopOnce   sync.Once
}

// HubSubscriberID is the hub's id on the event bus.
const HubSubscriberID = "sync-hub"

func NewSyncHub() *SyncHub {
	return &SyncHub{
		clients:    make(map[*SyncClient]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *SyncClient),
		unregister: make(chan *SyncClient),
		stop:       make(chan struct{}),
	}
}

// Attach subscribes the hub to the bus.
func (h *SyncHub) Attach(bus *SyncService) {
	bus.Subscribe(HubSubscriberID, h.BroadcastEvent)
}

// BroadcastEvent queues one event for delivery to every connected page.
func (h *SyncHub) BroadcastEvent(event model.SyncEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- data:
	default:
		logger.Log.Warn("sync hub broadcast queue full, dropping event",
			zap.String("event", event.Type))
	}
}

// Run owns the client set. Register/unregister and fanout are serialized
// through the hub goroutine so a broadcast never races a disconnect.
func (h *SyncHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
		case data := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.Send <- data:
				default:
					// Slow consumer: skip rather than block the hub.
				}
			}
			h.mu.RUnlock()
		case <-h.stop:
			h.mu.Lock()
			for client := range h.clients {
				close(client.Send)
				client.Conn.Close()
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop closes every connection and terminates Run.
func (h *SyncHub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// ClientCount reports the connected page count.
func (h *SyncHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and attaches the page to the hub.
func (h *SyncHub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := &SyncClient{
		Hub:     h,
		Conn:    conn,
		Send:    make(chan []byte, sendQueueSize),
		Limiter: rate.NewLimiter(rate.Limit(30), 50),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump drains inbound frames to keep the connection alive. Pages do not
// talk back over this feed; anything past the rate limit is discarded.
func (c *SyncClient) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Error("WebSocket unexpected close", zap.Error(err))
			}
			break
		}
		if !c.Limiter.Allow() {
			continue
		}
	}
}

func (c *SyncClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if n := len(c.Send); n > 0 {
				for i := 0; i < n; i++ {
					w.Write([]byte{'\n'})
					w.Write(<-c.Send)
				}
			}

			if err := w.Close(); err != nil {
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
