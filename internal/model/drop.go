package model

import (
	"time"

	"github.com/google/uuid"
)

// Voicemail drop status constants
const (
	DropStatusPending   = "pending"
	DropStatusDelivered = "delivered"
	DropStatusFailed    = "failed"
	DropStatusListened  = "listened"
)

// VoicemailDrop is one per-recipient delivery attempt within a campaign.
// The processor moves it pending -> delivered|failed exactly once; only the
// provider status callback may later move delivered -> listened.
type VoicemailDrop struct {
	Base
	CampaignID   uuid.UUID  `json:"campaign_id" db:"campaign_id"`
	CustomerID   uuid.UUID  `json:"customer_id" db:"customer_id"`
	PhoneNumber  string     `json:"phone_number" db:"phone_number"`
	Status       string     `json:"status" db:"status"`
	ProviderRef  *string    `json:"provider_ref,omitempty" db:"provider_ref"`
	DeliveredAt  *time.Time `json:"delivered_at,omitempty" db:"delivered_at"`
	ErrorMessage *string    `json:"error_message,omitempty" db:"error_message"`
}

// DeliveryStatusCallback is the payload posted by the delivery provider when
// a recipient listens to a dropped voicemail.
type DeliveryStatusCallback struct {
	ProviderRef string `json:"provider_ref" binding:"required"`
	Status      string `json:"status" binding:"required"`
}
