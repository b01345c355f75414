package model

import (
	"github.com/google/uuid"
)

// Campaign status constants
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusScheduled = "scheduled"
	CampaignStatusRunning   = "running"
	CampaignStatusPaused    = "paused"
	CampaignStatusCompleted = "completed"
	CampaignStatusFailed    = "failed"
)

// Campaign represents a ringless-voicemail campaign. Drop counters are
// cumulative across processing runs and only ever incremented.
type Campaign struct {
	Base
	OrganizationID  uuid.UUID `json:"organization_id" db:"organization_id"`
	Name            string    `json:"name" db:"name"`
	Script          string    `json:"script" db:"script"`
	Status          string    `json:"status" db:"status"`
	SuccessfulDrops int       `json:"successful_drops" db:"successful_drops"`
	FailedDrops     int       `json:"failed_drops" db:"failed_drops"`
	TotalRecipients int       `json:"total_recipients" db:"total_recipients"`
}

// CreateCampaignRequest represents campaign creation parameters. One pending
// drop is built per targeted customer.
type CreateCampaignRequest struct {
	Name        string      `json:"name" binding:"required"`
	Script      string      `json:"script" binding:"required"`
	CustomerIDs []uuid.UUID `json:"customer_ids" binding:"required,min=1"`
}

// ProcessingResult summarizes one campaign processing run
type ProcessingResult struct {
	CampaignID      uuid.UUID    `json:"campaign_id"`
	ProcessedCount  int          `json:"processed_count"`
	SuccessfulCount int          `json:"successful_count"`
	FailedCount     int          `json:"failed_count"`
	Results         []DropResult `json:"results"`
}

// DropResult is the per-recipient outcome of a processing run
type DropResult struct {
	DropID      uuid.UUID `json:"drop_id"`
	CustomerID  uuid.UUID `json:"customer_id"`
	PhoneNumber string    `json:"phone_number"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
}
