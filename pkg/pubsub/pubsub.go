// Package pubsub fans build events out to streaming HTTP clients.
package pubsub

import (
	"context"
	"encoding/json"
)

// Topics published during watch and web mode.
const (
	TopicBuildStatus = "build_status"
	TopicCase        = "case"
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic (e.g., "build_status", "case")
	Type    string          `json:"type"`    // Event type (e.g., "loading", "ready", "updated")
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events. It is closed when the
	// subscription or the publisher is closed.
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
	Publish(topic string, eventType string, data any) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// BuildStatus represents the progress of a case build
type BuildStatus struct {
	State   string `json:"state"`   // loading, building, ready, error
	Message string `json:"message"` // Human-readable status message
	Step    int    `json:"step"`    // Current step number (1-based)
	Total   int    `json:"total"`   // Total number of steps
}

// CaseSummary describes a freshly built case
type CaseSummary struct {
	RunID     string         `json:"runId"`
	Name      string         `json:"name"`
	Counts    map[string]int `json:"counts"`    // collection sizes by kind
	Discarded map[string]int `json:"discarded"` // discarded rows by decode kind
	Findings  int            `json:"findings"`
	Failed    bool           `json:"failed"` // validation produced errors
}
