package ws

import (
	"encoding/json"
	"log"
)

// changeSignal is the only message the feed carries. It names the resource
// that changed and nothing else: subscribers reconcile by refetching the
// collection, never by trusting a payload.
type changeSignal struct {
	Type     string `json:"type"`
	Resource string `json:"resource"`
}

// Hub maintains the set of connected clients and broadcasts change signals
// to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// NotifyChanged tells every subscriber that rows in resource changed. It
// never blocks the calling write path: if the hub is saturated the signal
// is dropped, which is acceptable for a best-effort feed.
func (h *Hub) NotifyChanged(resource string) {
	msg, err := json.Marshal(changeSignal{Type: "changed", Resource: resource})
	if err != nil {
		log.Printf("Error marshalling change signal: %v", err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		log.Printf("Change feed saturated, dropping signal for %s", resource)
	}
}
