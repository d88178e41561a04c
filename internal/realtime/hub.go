// Package realtime pushes JSON envelopes to connected WebSocket clients.
//
// Every client joins the room of its own user and, for moderators and admins,
// the staff room. All room bookkeeping and fan-out runs on the hub goroutine so
// envelopes addressed to one client leave in the order they were emitted.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"swachhsetu/internal/model"
)

// Event names pushed to clients.
const (
	EventNewReport     = "newReport"
	EventReportUpdated = "reportUpdated"
	EventNotification  = "notification"
	EventAIProgress    = "ai:progress"
	EventAICompleted   = "ai:completed"
	EventAIFailed      = "ai:failed"
	eventPong          = "pong"
)

// StaffRoom receives dashboard events for moderators and admins.
const StaffRoom = "staff"

const outboundBuffer = 1024

// UserRoom is the room every connection of userID joins.
func UserRoom(userID uuid.UUID) string {
	return "user:" + userID.String()
}

// Envelope is the frame written to clients. ID is unique per envelope so a
// reconnecting client can drop duplicates.
type Envelope struct {
	ID        string      `json:"id"`
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// Emitter is the push surface services depend on.
type Emitter interface {
	ToUser(userID uuid.UUID, event string, data interface{})
	ToStaff(event string, data interface{})
	IsOnline(userID uuid.UUID) bool
}

// Stats is a point-in-time view of the hub.
type Stats struct {
	Connections int   `json:"connections"`
	Rooms       int   `json:"rooms"`
	Delivered   int64 `json:"delivered"`
	Dropped     int64 `json:"dropped"`
}

type outbound struct {
	room    string
	payload []byte
}

// Hub tracks clients by room and fans envelopes out to them.
type Hub struct {
	log        zerolog.Logger
	upgrader   websocket.Upgrader
	register   chan *Client
	unregister chan *Client
	outbound   chan outbound
	done       chan struct{}

	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}

	delivered atomic.Int64
	dropped   atomic.Int64
}

var _ Emitter = (*Hub)(nil)

// ErrHubStopped is returned by ServeWS once Run has returned.
var ErrHubStopped = errors.New("realtime hub stopped")

// NewHub creates a hub. allowedOrigins empty or containing "*" accepts any origin.
func NewHub(log zerolog.Logger, allowedOrigins []string) *Hub {
	h := &Hub{
		log:        log.With().Str("component", "realtime").Logger(),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan outbound, outboundBuffer),
		done:       make(chan struct{}),
		clients:    make(map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return len(set) == 0 || origin == "" || set[origin]
	}
}

// Run processes registrations and deliveries until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				h.removeLocked(c)
			}
			h.mu.Unlock()
			close(h.done)
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			for _, room := range c.rooms {
				if h.rooms[room] == nil {
					h.rooms[room] = make(map[*Client]struct{})
				}
				h.rooms[room][c] = struct{}{}
			}
			h.mu.Unlock()
			h.log.Debug().Str("user_id", c.actor.UserID.String()).Msg("client connected")

		case c := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(c)
			h.mu.Unlock()

		case msg := <-h.outbound:
			h.mu.Lock()
			for c := range h.rooms[msg.room] {
				select {
				case c.send <- msg.payload:
					h.delivered.Add(1)
				default:
					h.dropped.Add(1)
					h.log.Warn().Str("user_id", c.actor.UserID.String()).Msg("dropping slow client")
					h.removeLocked(c)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) removeLocked(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	for _, room := range c.rooms {
		delete(h.rooms[room], c)
		if len(h.rooms[room]) == 0 {
			delete(h.rooms, room)
		}
	}
	close(c.send)
}

// Emit queues an envelope for every client in room.
func (h *Hub) Emit(room, event string, data interface{}) {
	payload, err := json.Marshal(Envelope{
		ID:        uuid.NewString(),
		Event:     event,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("marshal envelope")
		return
	}
	select {
	case h.outbound <- outbound{room: room, payload: payload}:
	default:
		h.dropped.Add(1)
		h.log.Warn().Str("event", event).Str("room", room).Msg("outbound queue full")
	}
}

// ToUser pushes to every connection of userID.
func (h *Hub) ToUser(userID uuid.UUID, event string, data interface{}) {
	h.Emit(UserRoom(userID), event, data)
}

// ToStaff pushes to every moderator and admin connection.
func (h *Hub) ToStaff(event string, data interface{}) {
	h.Emit(StaffRoom, event, data)
}

// IsOnline reports whether userID has at least one open connection.
func (h *Hub) IsOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[UserRoom(userID)]) > 0
}

func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Stats{
		Connections: len(h.clients),
		Rooms:       len(h.rooms),
		Delivered:   h.delivered.Load(),
		Dropped:     h.dropped.Load(),
	}
}

// ServeWS upgrades the request and attaches the connection to actor's rooms.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, actor model.Actor) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	rooms := []string{UserRoom(actor.UserID)}
	if actor.IsStaff() {
		rooms = append(rooms, StaffRoom)
	}
	c := &Client{
		hub:   h,
		conn:  conn,
		send:  make(chan []byte, clientBuffer),
		actor: actor,
		rooms: rooms,
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return ErrHubStopped
	case <-r.Context().Done():
		conn.Close()
		return r.Context().Err()
	}

	go c.writePump()
	go c.readPump()
	return nil
}
