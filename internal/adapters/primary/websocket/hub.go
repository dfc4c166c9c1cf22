package websocket

import (
	"log/slog"
	"sync"

	"github.com/hiperdesk/backend/internal/core/domain"
	"github.com/hiperdesk/backend/internal/core/ports"
)

// Frame is the wire envelope pushed to connected clients.
type Frame struct {
	Type    string              `json:"type"`
	Payload *domain.TicketEvent `json:"payload,omitempty"`
}

// publication pairs one event with the topics it is multicast to.
type publication struct {
	event  domain.TicketEvent
	topics []string
}

// Hub maintains the set of active Clients and multicasts ticket events to
// topic rooms. Publications flow through a single channel, so the order
// the lifecycle engine publishes in is the order every client observes.
type Hub struct {
	// clients maps agent IDs to their active connections.
	// A single agent can have multiple connections (multiple tabs/devices).
	clients map[int64]map[*Client]bool

	// rooms maps topic names to subscribed clients.
	rooms map[string]map[*Client]bool

	broadcast chan publication

	// Register requests from clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// mu protects the clients and rooms maps.
	mu sync.RWMutex

	logger *slog.Logger
}

var _ ports.Broadcaster = (*Hub)(nil)

// NewHub creates a new WebSocket hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan publication, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		logger:     logger.With("component", "websocket_hub"),
	}
}

// Publish queues an event for delivery to every client subscribed to any
// of the topics. Delivery is fire-and-forget: when the hub is saturated
// the event is dropped with a warning, never blocked on.
func (h *Hub) Publish(event domain.TicketEvent, topics []string) error {
	select {
	case h.broadcast <- publication{event: event, topics: topics}:
		return nil
	default:
		h.logger.Warn("broadcast channel full, dropping event",
			"action", event.Action,
			"ticket_id", event.TicketID,
		)
		return nil
	}
}

// Run starts the hub's event loop. This MUST be run as a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case pub := <-h.broadcast:
			h.deliver(pub)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.AgentID] == nil {
		h.clients[client.AgentID] = make(map[*Client]bool)
	}
	h.clients[client.AgentID][client] = true

	h.logger.Info("client registered",
		"agent_id", client.AgentID,
		"tenant_id", client.TenantID,
		"total_connections", len(h.clients[client.AgentID]),
	)
}

// unregisterClient removes a client from the hub and all rooms.
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, topic := range client.GetSubscriptions() {
		if room, ok := h.rooms[topic]; ok {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, topic)
			}
		}
	}

	if agentClients, ok := h.clients[client.AgentID]; ok {
		if _, exists := agentClients[client]; exists {
			delete(agentClients, client)
			if len(agentClients) == 0 {
				delete(h.clients, client.AgentID)
			}
		}
	}

	client.CloseSend()

	h.logger.Info("client unregistered", "agent_id", client.AgentID)
}

// deliver fans one publication out to the union of all its topic rooms.
// A client subscribed to several of the topics still receives the event
// exactly once.
func (h *Hub) deliver(pub publication) {
	h.mu.RLock()
	seen := make(map[*Client]bool)
	for _, topic := range pub.topics {
		for client := range h.rooms[topic] {
			seen[client] = true
		}
	}
	clients := make([]*Client, 0, len(seen))
	for client := range seen {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	if len(clients) == 0 {
		return
	}

	event := pub.event
	frame := Frame{Type: "TICKET_EVENT", Payload: &event}

	h.logger.Debug("broadcasting event",
		"action", event.Action,
		"ticket_id", event.TicketID,
		"client_count", len(clients),
	)

	for _, client := range clients {
		select {
		case client.Send <- frame:
		default:
			// The client cannot keep up; drop the connection rather than
			// stall delivery for everyone else. Unregister directly: the
			// Unregister channel is serviced by this same goroutine, so
			// sending on it from here would block the hub forever.
			h.logger.Warn("client send buffer full, unregistering",
				"agent_id", client.AgentID,
			)
			h.unregisterClient(client)
		}
	}
}

// Subscribe adds a client to a topic room.
func (h *Hub) Subscribe(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[topic] == nil {
		h.rooms[topic] = make(map[*Client]bool)
	}
	h.rooms[topic][client] = true
	client.AddSubscription(topic)

	h.logger.Debug("client subscribed",
		"agent_id", client.AgentID,
		"topic", topic,
	)
}

// Unsubscribe removes a client from a topic room.
func (h *Hub) Unsubscribe(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.rooms[topic]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, topic)
		}
	}
	client.RemoveSubscription(topic)

	h.logger.Debug("client unsubscribed",
		"agent_id", client.AgentID,
		"topic", topic,
	)
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, agentClients := range h.clients {
		count += len(agentClients)
	}
	return count
}

// RoomCount returns the number of active topic rooms.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// ClientsInRoom returns the number of clients subscribed to a topic.
func (h *Hub) ClientsInRoom(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[topic])
}
