package pubsub

import (
	"context"
	"encoding/json"
)

// Topics published by the preview server
const (
	TopicDocumentStatus = "document_status"
	TopicRenderStatus   = "render_status"
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic (e.g., "document_status", "render_status")
	Type    string          `json:"type"`    // Event type (e.g., "loaded", "computing_layout", "rendered")
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data interface{}) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// DocumentStatus describes the state of the loaded document
type DocumentStatus struct {
	State   string `json:"state"`   // loading, loaded, load_failed, removed
	Message string `json:"message"` // Human-readable status message
	Title   string `json:"title,omitempty"`
	Nodes   int    `json:"nodes,omitempty"`
}

// RenderStatus mirrors the view pipeline state
type RenderStatus struct {
	State      string `json:"state"`            // idle, computing-layout, rendered, degraded
	Engine     string `json:"engine,omitempty"` // which layout engine produced the result
	Nodes      int    `json:"nodes"`            // visible node count
	Cached     bool   `json:"cached,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
}
