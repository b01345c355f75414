package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/voicedrop/voicedrop-api/internal/model"
)

// ErrNotFound is returned when a row does not exist or is not visible to the
// requesting tenant.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned on unique constraint violations.
var ErrConflict = errors.New("already exists")

type OrganizationRepository interface {
	// CreateWithAdmin creates the organization and its first (admin) user in
	// a single transaction. Either both rows exist afterwards or neither.
	CreateWithAdmin(ctx context.Context, org *model.Organization, admin *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.Organization, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	ActivateSubscription(ctx context.Context, id uuid.UUID, tier string, limit int, stripeCustomerID, stripeSubscriptionID string, periodEnd time.Time) error
	UpdateSubscriptionStatus(ctx context.Context, stripeSubscriptionID, status string, periodEnd *time.Time) error
	CancelSubscription(ctx context.Context, stripeSubscriptionID string) error
	IncrementVoicemailsUsed(ctx context.Context, id uuid.UUID, n int) error
}

type UserRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	Get(ctx context.Context, id, organizationID uuid.UUID) (*model.Customer, error)
	GetByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]*model.Customer, error)
	List(ctx context.Context, organizationID uuid.UUID, filter model.CustomerFilter) ([]*model.Customer, int, error)
	Update(ctx context.Context, customer *model.Customer) error
	Delete(ctx context.Context, id, organizationID uuid.UUID) error
}

type CampaignRepository interface {
	// CreateWithDrops inserts the campaign and one pending drop per recipient
	// in a single transaction.
	CreateWithDrops(ctx context.Context, campaign *model.Campaign, drops []*model.VoicemailDrop) error
	Get(ctx context.Context, id, organizationID uuid.UUID) (*model.Campaign, error)
	List(ctx context.Context, organizationID uuid.UUID) ([]*model.Campaign, error)
	Delete(ctx context.Context, id, organizationID uuid.UUID) error
	// FinalizeRun additively increments the cumulative counters and marks the
	// campaign completed, after all drop outcomes of the run are persisted.
	FinalizeRun(ctx context.Context, id uuid.UUID, successful, failed int) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
}

type DropRepository interface {
	ListPending(ctx context.Context, campaignID uuid.UUID) ([]*model.VoicemailDrop, error)
	// MarkDelivered / MarkFailed persist the outcome and append the matching
	// outbox event in one transaction. Both only act on pending rows.
	MarkDelivered(ctx context.Context, drop *model.VoicemailDrop, providerRef string, at time.Time) error
	MarkFailed(ctx context.Context, drop *model.VoicemailDrop, errorMessage string) error
	MarkListened(ctx context.Context, providerRef string) error
}

type OutboxRepository interface {
	FetchPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
}

type StatsRepository interface {
	GetStats(ctx context.Context, organizationID uuid.UUID) (*model.DashboardStats, error)
}
