package notify

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = feedPongWait * 9 / 10
	feedSendBuffer = 16
)

// FeedEvent is broadcast to live feed subscribers
type FeedEvent struct {
	Type      string    `json:"type"`
	Amount    string    `json:"amount"`
	DonorName string    `json:"donorName"`
	At        time.Time `json:"at"`
}

type feedClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Feed is websocket hub of completed donations
type Feed struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu      sync.Mutex
	clients map[string]*feedClient
}

// NewFeed creates new Feed. Empty allowedOrigins accepts any origin.
func NewFeed(allowedOrigins []string, logger *zap.Logger) *Feed {
	return &Feed{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowedOrigins) == 0 {
					return true
				}
				origin := r.Header.Get("Origin")
				for _, o := range allowedOrigins {
					if strings.EqualFold(o, origin) {
						return true
					}
				}
				return false
			},
		},
		logger:  logger,
		clients: make(map[string]*feedClient),
	}
}

// ServeHTTP upgrades connection and streams feed events until the client leaves
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Debug("feed upgrade failed", zap.Error(err))
		return
	}

	c := &feedClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, feedSendBuffer),
	}

	f.mu.Lock()
	f.clients[c.id] = c
	f.mu.Unlock()

	f.logger.Debug("feed client connected", zap.String("id", c.id))

	go f.writeLoop(c)
	f.readLoop(c)
}

// readLoop discards client messages and unregisters the client on close
func (f *Feed) readLoop(c *feedClient) {
	defer f.remove(c.id)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *Feed) writeLoop(c *feedClient) {
	ticker := time.NewTicker(feedPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (f *Feed) remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.clients[id]; ok {
		delete(f.clients, id)
		close(c.send)
		f.logger.Debug("feed client disconnected", zap.String("id", id))
	}
}

// Broadcast sends event to every connected client; slow clients are dropped
func (f *Feed) Broadcast(ev FeedEvent) {
	msg, err := json.Marshal(ev)
	if err != nil {
		f.logger.Error("marshal feed event", zap.Error(err))
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for id, c := range f.clients {
		select {
		case c.send <- msg:
		default:
			delete(f.clients, id)
			close(c.send)
			f.logger.Debug("feed client too slow, dropped", zap.String("id", id))
		}
	}
}

// Clients returns number of connected clients
func (f *Feed) Clients() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

// Close disconnects all clients
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, c := range f.clients {
		delete(f.clients, id)
		close(c.send)
	}
}
