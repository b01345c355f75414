package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Event is the envelope published for every drop outcome
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
