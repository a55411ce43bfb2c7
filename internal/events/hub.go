// Package events pushes triage lifecycle notifications to websocket
// subscribers. Clients subscribe per thread and receive an event whenever a
// suggestion is recorded, a decision lands, or a draft is sent.
package events

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// EventType labels a lifecycle notification
type EventType string

const (
	EventTypeSubscribe   EventType = "subscribe"
	EventTypeUnsubscribe EventType = "unsubscribe"
	EventTypeSuggestion  EventType = "suggestion_recorded"
	EventTypeDecision    EventType = "decision_recorded"
	EventTypeDraftSent   EventType = "draft_sent"
	EventTypeError       EventType = "error"
)

// Event is a websocket frame, inbound or outbound
type Event struct {
	Type     EventType   `json:"type"`
	ThreadID uint        `json:"thread_id,omitempty"`
	Payload  interface{} `json:"payload,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// Notifier is the slice of the hub the service layer needs. A nil Notifier
// is valid and drops events.
type Notifier interface {
	Notify(threadID uint, eventType EventType, payload interface{})
}

// Hub maintains the set of active clients and routes events to thread
// subscribers
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Thread subscriptions: threadID -> set of clients
	subscriptions map[uint]map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Subscribe to thread
	subscribe chan *subscriptionRequest

	// Unsubscribe from thread
	unsubscribeThread chan *subscriptionRequest

	// Broadcast to thread subscribers
	broadcast chan *broadcastEvent

	// Mutex for thread-safe operations
	mu sync.RWMutex

	// Logger
	logger *slog.Logger
}

type subscriptionRequest struct {
	client   *Client
	threadID uint
}

type broadcastEvent struct {
	threadID uint
	frame    []byte
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:           make(map[*Client]bool),
		subscriptions:     make(map[uint]map[*Client]bool),
		register:          make(chan *Client),
		unregister:        make(chan *Client),
		subscribe:         make(chan *subscriptionRequest),
		unsubscribeThread: make(chan *subscriptionRequest),
		broadcast:         make(chan *broadcastEvent, 256),
		logger:            logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client registered")
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				// Remove from all subscriptions
				for threadID, subscribers := range h.subscriptions {
					delete(subscribers, client)
					if len(subscribers) == 0 {
						delete(h.subscriptions, threadID)
					}
				}
			}
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client unregistered")
			}

		case req := <-h.subscribe:
			h.mu.Lock()
			if h.subscriptions[req.threadID] == nil {
				h.subscriptions[req.threadID] = make(map[*Client]bool)
			}
			h.subscriptions[req.threadID][req.client] = true
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client subscribed to thread", slog.Uint64("thread_id", uint64(req.threadID)))
			}

		case req := <-h.unsubscribeThread:
			h.mu.Lock()
			if subscribers, ok := h.subscriptions[req.threadID]; ok {
				delete(subscribers, req.client)
				if len(subscribers) == 0 {
					delete(h.subscriptions, req.threadID)
				}
			}
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client unsubscribed from thread", slog.Uint64("thread_id", uint64(req.threadID)))
			}

		case msg := <-h.broadcast:
			h.mu.RLock()
			subscribers := h.subscriptions[msg.threadID]
			for client := range subscribers {
				select {
				case client.send <- msg.frame:
				default:
					// Client buffer full, skip
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Subscribe subscribes a client to a thread
func (h *Hub) Subscribe(client *Client, threadID uint) {
	h.subscribe <- &subscriptionRequest{client: client, threadID: threadID}
}

// Unsubscribe unsubscribes a client from a thread
func (h *Hub) Unsubscribe(client *Client, threadID uint) {
	h.unsubscribeThread <- &subscriptionRequest{client: client, threadID: threadID}
}

// Notify broadcasts a lifecycle event to the thread's subscribers
func (h *Hub) Notify(threadID uint, eventType EventType, payload interface{}) {
	event := Event{
		Type:     eventType,
		ThreadID: threadID,
		Payload:  payload,
	}

	data, err := json.Marshal(event)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to marshal event", slog.Any("error", err))
		}
		return
	}

	h.broadcast <- &broadcastEvent{
		threadID: threadID,
		frame:    data,
	}
}
