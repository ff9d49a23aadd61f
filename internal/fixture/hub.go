package fixture

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/console/internal/live"
)

// roomMessage is the inbound join/leave frame from console clients.
type roomMessage struct {
	Action string   `json:"action"`
	Topics []string `json:"topics"`
}

type hubClient struct {
	id    string
	rooms map[string]struct{}
	send  chan []byte
}

// Hub tracks connected console clients and the rooms they joined, and
// broadcasts change hints to a room's members.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*hubClient]struct{}
	clients map[*hubClient]struct{}
	logger  zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		rooms:   make(map[string]map[*hubClient]struct{}),
		clients: make(map[*hubClient]struct{}),
		logger:  logger,
	}
}

func (h *Hub) register(c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	for room := range c.rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) join(c *hubClient, rooms []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range rooms {
		if h.rooms[room] == nil {
			h.rooms[room] = make(map[*hubClient]struct{})
		}
		h.rooms[room][c] = struct{}{}
		c.rooms[room] = struct{}{}
	}
}

func (h *Hub) leave(c *hubClient, rooms []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
		delete(c.rooms, room)
	}
}

// Broadcast pushes an event to every client in the event's room.
func (h *Hub) Broadcast(ev live.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error().Err(err).Msg("marshal live event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[ev.Topic] {
		select {
		case c.send <- data:
		default:
			// Client buffer full; skip to avoid blocking.
		}
	}
}

// RoomCount returns the number of clients in a room.
func (h *Hub) RoomCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades HTTP connections and pumps hub messages. Register it at
// the socket endpoint, e.g. e.GET("/ws", hub.Handler).
func (h *Hub) Handler(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &hubClient{
		id:    uuid.New().String(),
		rooms: make(map[string]struct{}),
		send:  make(chan []byte, 64),
	}
	h.register(client)

	go h.writePump(client, ws)
	go h.readPump(client, ws)
	return nil
}

func (h *Hub) readPump(client *hubClient, ws *websocket.Conn) {
	defer func() {
		h.unregister(client)
		ws.Close()
	}()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		var msg roomMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue // Ignore malformed frames.
		}
		switch msg.Action {
		case "subscribe":
			h.join(client, msg.Topics)
		case "unsubscribe":
			h.leave(client, msg.Topics)
		}
	}
}

func (h *Hub) writePump(client *hubClient, ws *websocket.Conn) {
	defer ws.Close()
	for data := range client.send {
		if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}
