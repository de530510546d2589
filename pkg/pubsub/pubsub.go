// Package pubsub fans out parse results to live subscribers such as the
// browser clients of the web server.
package pubsub

import (
	"context"
	"encoding/json"
)

// Topics published by the CLI
const (
	// TopicStatus carries ParseStatus updates
	TopicStatus = "parse_status"

	// TopicResult carries one PatchResult per parsed file
	TopicResult = "parse_result"
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic, e.g. "parse_result"
	Type    string          `json:"type"`    // Event type, e.g. "parsed" or "removed"
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	Topic() string

	// Events returns a channel for receiving events. It is closed when the
	// subscription or the publisher is closed.
	Events() <-chan Event

	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic.
	// Context cancellation will close the subscription.
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data any) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// ParseStatus describes the progress of a parse run
type ParseStatus struct {
	State   string `json:"state"`   // parsing, ready, watching
	Message string `json:"message"` // Human-readable status message
	Done    int    `json:"done"`    // Files parsed so far
	Total   int    `json:"total"`   // Files in this run
}

// PatchResult is the summary of one parsed file
type PatchResult struct {
	File     string   `json:"file"`
	Status   string   `json:"status"`
	Patches  int      `json:"patches"`
	Arrays   int      `json:"arrays"`
	Nodes    int      `json:"nodes"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors,omitempty"`
	Changes  string   `json:"changes,omitempty"` // e.g. "nodes +1 -0 ~0, connections +1 -0"
}
