// Package memory provides an in-process analysis.Publisher that captures
// the completion notifications workers would otherwise send to Pub/Sub.
// It backs tests and local runs without a project configured.
package memory

import (
	"context"
	"fmt"
	"sync"
)

// Notification is one captured completion publish: the topic a worker
// targeted and the run-completion payload it sent.
type Notification struct {
	Topic   string
	Payload any
}

// Publisher records completion notifications instead of delivering them.
type Publisher struct {
	mu            sync.RWMutex
	notifications []Notification
}

// New returns an empty capturing Publisher.
func New() *Publisher {
	return &Publisher{}
}

// Publish captures the notification and returns a synthetic message ID.
func (p *Publisher) Publish(_ context.Context, topic string, payload any) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifications = append(p.notifications, Notification{Topic: topic, Payload: payload})
	return fmt.Sprintf("memory-%d", len(p.notifications)), nil
}

// Notifications returns the captured publishes in emission order.
func (p *Publisher) Notifications() []Notification {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Notification, len(p.notifications))
	copy(out, p.notifications)
	return out
}
