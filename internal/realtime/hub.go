// Package realtime delivers order-lifecycle and chat events to subscribed
// clients. The core only depends on the Notifier interface; the Hub is the
// in-process implementation backing the SSE stream.
package realtime

import (
	"sync"

	"github.com/google/uuid"
)

const (
	EventOrderCreated   = "order-created"
	EventOrderAccepted  = "order-accepted"
	EventOrderCompleted = "order-completed"
	EventOrderCancelled = "order-cancelled"
	EventChatMessage    = "chat-message"

	// TopicStukerDashboard broadcasts new searching orders to every online
	// stuker.
	TopicStukerDashboard = "stuker-dashboard"
)

// OrderTopic scopes events to one order's parties.
func OrderTopic(orderCode string) string {
	return "order:" + orderCode
}

// StukerTopic scopes events to one stuker's own dashboard.
func StukerTopic(userID string) string {
	return "stuker:" + userID
}

type Event struct {
	Name    string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Notifier is the boundary the order and rating core emits through.
type Notifier interface {
	Publish(topic, event string, payload interface{})
}

// Subscriber receives events for the topics it joined. The channel is
// buffered; a slow consumer loses events rather than blocking publishers.
type Subscriber struct {
	ID     string
	Events chan Event
	topics []string
}

type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[string]*Subscriber // topic → subscriber id → subscriber
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[string]*Subscriber)}
}

func (h *Hub) Subscribe(topics ...string) *Subscriber {
	sub := &Subscriber{
		ID:     uuid.NewString(),
		Events: make(chan Event, 16),
		topics: topics,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, topic := range topics {
		if h.subs[topic] == nil {
			h.subs[topic] = make(map[string]*Subscriber)
		}
		h.subs[topic][sub.ID] = sub
	}
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, topic := range sub.topics {
		delete(h.subs[topic], sub.ID)
		if len(h.subs[topic]) == 0 {
			delete(h.subs, topic)
		}
	}
}

// Publish fans an event out to every subscriber of the topic. Non-blocking:
// a full subscriber buffer drops the event for that subscriber only.
func (h *Hub) Publish(topic, event string, payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs[topic] {
		select {
		case sub.Events <- Event{Name: event, Payload: payload}:
		default:
		}
	}
}
