// Package events carries publish-state change signals to in-process
// subscribers and connected websocket clients.
package events

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Signal names dispatched on publish-state transitions. Exactly one of
// the two fires per transition.
type Signal string

const (
	PhotoPublished   Signal = "photo_published"
	PhotoUnpublished Signal = "photo_unpublished"
)

// Event is the payload delivered to subscribers. It identifies the photo
// by both internal id and public id; consumers outside this process
// should only rely on the public id.
type Event struct {
	Signal    Signal `json:"signal"`
	PhotoID   uint   `json:"photo_id"`
	PublicID  string `json:"uuid"`
	Timestamp int64  `json:"timestamp"`
}

// Handler receives dispatched events. Handlers run synchronously on the
// dispatching goroutine and must not block.
type Handler func(Event)

// Dispatcher is the sending side of the hub.
type Dispatcher interface {
	Dispatch(signal Signal, photoID uint, publicID string)
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub is a simple pubsub for publish-state signals: registered in-process
// handlers plus websocket fan-out. The clients map is owned exclusively
// by the Run goroutine; all mutation goes through the channels.
type Hub struct {
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan []byte

	handlersMu sync.RWMutex
	handlers   []Handler
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case message := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					close(c.send)
					delete(h.clients, c)
				}
			}
		}
	}
}

// RegisterHandler subscribes an in-process handler to every dispatched
// signal. Integration consumers (webhooks etc.) attach here.
func (h *Hub) RegisterHandler(handler Handler) {
	h.handlersMu.Lock()
	h.handlers = append(h.handlers, handler)
	h.handlersMu.Unlock()
}

// Dispatch delivers the signal to all registered handlers and broadcasts
// it to websocket clients.
func (h *Hub) Dispatch(signal Signal, photoID uint, publicID string) {
	event := Event{
		Signal:    signal,
		PhotoID:   photoID,
		PublicID:  publicID,
		Timestamp: time.Now().Unix(),
	}

	h.handlersMu.RLock()
	handlers := h.handlers
	h.handlersMu.RUnlock()
	for _, handler := range handlers {
		handler(event)
	}

	encoded, err := json.Marshal(event)
	if err != nil {
		log.Printf("events: failed to marshal event: %v", err)
		return
	}
	select {
	case h.broadcast <- encoded:
	default:
		log.Printf("events: broadcast buffer full, dropping %s for %s", signal, publicID)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("events: websocket upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 64)}
	h.register <- c

	go c.writePump()
	go c.readPump(h)
}

func (c *client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// readPump drains and discards client frames so pings are handled and
// disconnects are noticed.
func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
