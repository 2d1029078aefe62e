// Package events defines the domain events published after catalog and
// checkout changes.
package events

import (
	"context"
	"sync"
)

const (
	TopicProducts = "product_events"
	TopicOrders   = "order_events"
)

const (
	ProductCreated = "product_created"
	ProductUpdated = "product_updated"
	ProductDeleted = "product_deleted"
	OrderPlaced    = "order_placed"
	OrderStatus    = "order_status_changed"
)

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type ProductEvent struct {
	Type      string `json:"type"`
	ProductID string `json:"productID"`
	Name      string `json:"name,omitempty"`
	Price     string `json:"price,omitempty"`
	Available bool   `json:"available"`
}

type OrderEvent struct {
	Type          string `json:"type"`
	OrderID       string `json:"orderID"`
	UserID        string `json:"userID"`
	Status        string `json:"status"`
	Total         string `json:"total"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
}

// Noop is used when no brokers are configured.
type Noop struct{}

func (Noop) PublishEvent(context.Context, string, string, any) error { return nil }

type Message struct {
	Topic string
	Key   string
	Event any
}

// Recorder keeps published events in memory. Err, when set, is returned
// from every publish after the event is recorded.
type Recorder struct {
	mu       sync.Mutex
	Err      error
	messages []Message
}

func (r *Recorder) PublishEvent(_ context.Context, topic, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Topic: topic, Key: key, Event: event})
	return r.Err
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}
