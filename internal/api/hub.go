/*
Package api
File: hub.go
Description:
    The WebSocket Hub fans budget events out to every connected client:
    settlement reports, siphon grants, launch fees, crew losses and the
    next-period reminder all go through here.

    Architecture:
    - Hub: the per-server manager (owned by the composition root).
    - Client: one connected mission-control tab.
    - ServeWs: upgrades a standard GET request to a WebSocket.
*/

package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// Message is the JSON envelope for all real-time communication.
type Message struct {
	Type    string `json:"type"`    // Event type (e.g. "settlement", "siphon_big_project")
	Payload any    `json:"payload"` // The actual data
	Sender  string `json:"sender"`  // Origin of the event
}

// Client represents a single connected listener.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte // Buffered channel for outbound messages
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	Broadcast  chan []byte // Exported so the heartbeat can push reports
	register   chan *Client
	unregister chan *Client
}

// NewHub creates a Hub. Run it as a goroutine from the composition root.
func NewHub() *Hub {
	return &Hub{
		Broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Run is the Hub's event loop. It blocks: `go hub.Run()`.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			log.Println("WS: New Connection Registered")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case message := <-h.Broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Full send buffer: assume the client hung up.
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Publish marshals an envelope and hands it to the broadcast loop.
func (h *Hub) Publish(msgType string, payload any) {
	raw, err := json.Marshal(Message{Type: msgType, Payload: payload, Sender: "treasury"})
	if err != nil {
		log.Printf("WS: marshal %s: %v", msgType, err)
		return
	}
	h.Broadcast <- raw
}

// HubNotifier adapts the Hub to the engine's Notifier port, so siphon
// grants and reminders emitted mid-settlement reach connected clients.
type HubNotifier struct {
	Hub *Hub
}

// Notify implements budget.Notifier.
func (n HubNotifier) Notify(kind string, payload any) {
	n.Hub.Publish(kind, payload)
}

// upgrader configures the WebSocket handshake. CheckOrigin is permissive:
// the service sits behind the host's own access controls.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWs upgrades an HTTP request to a persistent WebSocket and registers
// the new client with the Hub.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WS Upgrade Error:", err)
		return
	}

	client := &Client{hub: hub, conn: conn, send: make(chan []byte, 256)}
	client.hub.register <- client

	// One goroutine per direction so a slow client cannot stall the Hub.
	go client.writePump()
	go client.readPump()
}

// readPump drains the connection. Clients are listeners; inbound frames
// are logged and dropped.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WS Error: %v", err)
			}
			break
		}
		log.Printf("WS: ignoring inbound frame: %s", string(message))
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	defer func() {
		c.conn.Close()
	}()

	for message := range c.send {
		w, err := c.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)

		if err := w.Close(); err != nil {
			return
		}
	}
}
