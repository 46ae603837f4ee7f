// Package live pushes ticket lifecycle events to connected clients over
// websockets so open editors refresh when a ticket changes under them.
package live

import (
	"log"
	"net/http"
	"sync"

	"ticket-backend/internal/timeutil"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Event is one ticket lifecycle notification
type Event struct {
	Event     string `json:"event"`
	TicketID  int    `json:"ticket_id"`
	Timestamp string `json:"timestamp"`
}

type Hub struct {
	clients    map[*websocket.Conn]bool
	clientsMux sync.Mutex
	broadcast  chan Event
}

func NewHub() *Hub {
	h := &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Event, 64),
	}
	go h.run()
	return h
}

// NotifyTicket queues an event for all connected clients. Events are
// dropped when the queue is full rather than blocking the caller.
func (h *Hub) NotifyTicket(event string, ticketID int) {
	e := Event{
		Event:     event,
		TicketID:  ticketID,
		Timestamp: timeutil.Now().Format(timeutil.DateTimeLayout),
	}
	select {
	case h.broadcast <- e:
	default:
		log.Printf("[Live] event queue full, dropping %s for ticket %d", event, ticketID)
	}
}

// HandleWebSocket upgrades the connection and keeps it registered until
// the client goes away. Clients only listen; inbound messages are read
// and discarded to detect disconnects.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	h.clientsMux.Lock()
	h.clients[conn] = true
	h.clientsMux.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.clientsMux.Lock()
			delete(h.clients, conn)
			h.clientsMux.Unlock()
			break
		}
	}
}

func (h *Hub) run() {
	for e := range h.broadcast {
		h.clientsMux.Lock()
		for client := range h.clients {
			if err := client.WriteJSON(e); err != nil {
				client.Close()
				delete(h.clients, client)
			}
		}
		h.clientsMux.Unlock()
	}
}
