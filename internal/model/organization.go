package model

import (
	"time"
)

// Subscription status constants
const (
	SubscriptionStatusTrial    = "trial"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
)

// Subscription tier constants
const (
	TierBase         = "base"
	TierBasic        = "basic"
	TierProfessional = "professional"
	TierEnterprise   = "enterprise"
)

// Per-tier monthly voicemail quotas
var TierVoicemailLimits = map[string]int{
	TierBase:         0,
	TierBasic:        1000,
	TierProfessional: 5000,
	TierEnterprise:   25000,
}

// Organization is the billing and data-isolation boundary. Every customer,
// campaign and user belongs to exactly one.
type Organization struct {
	Base
	Name                  string     `json:"name" db:"name"`
	Slug                  string     `json:"slug" db:"slug"`
	SubscriptionStatus    string     `json:"subscription_status" db:"subscription_status"`
	SubscriptionTier      string     `json:"subscription_tier" db:"subscription_tier"`
	MonthlyVoicemailLimit int        `json:"monthly_voicemail_limit" db:"monthly_voicemail_limit"`
	MonthlyVoicemailsUsed int        `json:"monthly_voicemails_used" db:"monthly_voicemails_used"`
	StripeCustomerID      *string    `json:"-" db:"stripe_customer_id"`
	StripeSubscriptionID  *string    `json:"-" db:"stripe_subscription_id"`
	CurrentPeriodEnd      *time.Time `json:"current_period_end,omitempty" db:"current_period_end"`
}

// UpdateOrganizationRequest allows renaming only; subscription fields are
// mutated exclusively by billing webhook events.
type UpdateOrganizationRequest struct {
	Name string `json:"name" binding:"required"`
}
