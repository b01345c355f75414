package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Outbox event status constants
const (
	OutboxStatusPending   = "pending"
	OutboxStatusProcessed = "processed"
	OutboxStatusFailed    = "failed"
)

// Outbox event types
const (
	EventDropDelivered = "drop.delivered"
	EventDropFailed    = "drop.failed"
	EventDropListened  = "drop.listened"
)

// OutboxEvent is written in the same transaction as the state change it
// describes and published asynchronously by the worker.
type OutboxEvent struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	EventType   string          `json:"event_type" db:"event_type"`
	Payload     json.RawMessage `json:"payload" db:"payload"`
	Status      string          `json:"status" db:"status"`
	RetryCount  int             `json:"retry_count" db:"retry_count"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	ProcessedAt *time.Time      `json:"processed_at" db:"processed_at"`
}

// DropEventPayload is the outbox payload for drop outcome events
type DropEventPayload struct {
	DropID      uuid.UUID `json:"drop_id"`
	CampaignID  uuid.UUID `json:"campaign_id"`
	CustomerID  uuid.UUID `json:"customer_id"`
	PhoneNumber string    `json:"phone_number"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
}
