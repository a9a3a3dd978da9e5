package web

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/PancyStudios/PancyGuardGo/pkg/guildconfig"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Host filtering and the token already guard the endpoint.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans config changes out to the websocket clients watching each guild.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*wsClient]struct{}

	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan guildconfig.Change
	done       chan struct{}
}

type wsClient struct {
	id      string
	guildID string
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
}

// NewHub creates a Hub. Run must be started before clients connect.
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*wsClient]struct{}),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan guildconfig.Change, 64),
		done:       make(chan struct{}),
	}
}

// Run dispatches registrations and changes until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case c := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[c.guildID]
			if !ok {
				room = make(map[*wsClient]struct{})
				h.rooms[c.guildID] = room
			}
			room[c] = struct{}{}
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			h.remove(c)
			h.mu.Unlock()

		case change := <-h.broadcast:
			payload, err := json.Marshal(change)
			if err != nil {
				logger.Error(fmt.Sprintf("No se pudo serializar el cambio de %s: %v", change.GuildID, err), "WebSocket")
				continue
			}

			h.mu.Lock()
			for c := range h.rooms[change.GuildID] {
				select {
				case c.send <- payload:
				default:
					// Slow client.
					h.remove(c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove must be called with h.mu held.
func (h *Hub) remove(c *wsClient) {
	room, ok := h.rooms[c.guildID]
	if !ok {
		return
	}
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	close(c.send)
	if len(room) == 0 {
		delete(h.rooms, c.guildID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range h.rooms {
		for c := range room {
			h.remove(c)
		}
	}
}

// Publish queues a store change. It never blocks: the store calls it while
// holding the guild lock, so changes are dropped when the queue is full.
func (h *Hub) Publish(change guildconfig.Change) {
	select {
	case h.broadcast <- change:
	default:
		logger.Warn(fmt.Sprintf("Cola de eventos llena, cambio de %s descartado", change.GuildID), "WebSocket")
	}
}

// Clients returns the number of clients watching guildID.
func (h *Hub) Clients(guildID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[guildID])
}

// ServeWS upgrades the request and streams the changes of guildID.
func (h *Hub) ServeWS(c *gin.Context, guildID string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Debug(fmt.Sprintf("Upgrade fallido: %v", err), "WebSocket")
		return
	}

	client := &wsClient{
		id:      uuid.NewString(),
		guildID: guildID,
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}
	logger.Debug(fmt.Sprintf("Cliente %s conectado a %s", client.id, guildID), "WebSocket")

	go client.writePump()
	go client.readPump()
}

// readPump only handles control frames; the stream is one-way.
func (c *wsClient) readPump() {
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
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Debug(fmt.Sprintf("Cliente %s: %v", c.id, err), "WebSocket")
			}
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
