package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/voicedrop/voicedrop-api/internal/model"
	"github.com/voicedrop/voicedrop-api/internal/repository"
)

type organizationRepository struct {
	BaseRepository
}

func NewOrganizationRepository(db *sqlx.DB) repository.OrganizationRepository {
	return &organizationRepository{NewBaseRepository(db)}
}

func (r *organizationRepository) CreateWithAdmin(ctx context.Context, org *model.Organization, admin *model.User) error {
	now := time.Now()
	org.ID = uuid.New()
	org.CreatedAt = now
	org.UpdatedAt = now
	// admin.ID is the identity credential id, assigned by the caller
	admin.OrganizationID = org.ID
	admin.CreatedAt = now
	admin.UpdatedAt = now

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		orgQuery := `
			INSERT INTO organizations (
				id, name, slug, subscription_status, subscription_tier,
				monthly_voicemail_limit, monthly_voicemails_used,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		if _, err := tx.ExecContext(ctx, orgQuery,
			org.ID,
			org.Name,
			org.Slug,
			org.SubscriptionStatus,
			org.SubscriptionTier,
			org.MonthlyVoicemailLimit,
			org.MonthlyVoicemailsUsed,
			org.CreatedAt,
			org.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to create organization: %w", translateErr(err))
		}

		userQuery := `
			INSERT INTO users (
				id, organization_id, email, first_name, last_name,
				role, is_active, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		if _, err := tx.ExecContext(ctx, userQuery,
			admin.ID,
			admin.OrganizationID,
			admin.Email,
			admin.FirstName,
			admin.LastName,
			admin.Role,
			admin.IsActive,
			admin.CreatedAt,
			admin.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to create admin user: %w", translateErr(err))
		}

		return nil
	})
}

func (r *organizationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	query := `SELECT * FROM organizations WHERE id = $1`
	var org model.Organization
	if err := r.GetDB().GetContext(ctx, &org, query, id); err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", translateErr(err))
	}
	return &org, nil
}

func (r *organizationRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	query := `UPDATE organizations SET name = $1, updated_at = $2 WHERE id = $3`
	result, err := r.GetDB().ExecContext(ctx, query, name, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}
	return requireRows(result)
}

func (r *organizationRepository) ActivateSubscription(ctx context.Context, id uuid.UUID, tier string, limit int, stripeCustomerID, stripeSubscriptionID string, periodEnd time.Time) error {
	query := `
		UPDATE organizations
		SET subscription_status = $1,
		    subscription_tier = $2,
		    monthly_voicemail_limit = $3,
		    stripe_customer_id = $4,
		    stripe_subscription_id = $5,
		    current_period_end = $6,
		    updated_at = $7
		WHERE id = $8
	`
	result, err := r.GetDB().ExecContext(ctx, query,
		model.SubscriptionStatusActive,
		tier,
		limit,
		stripeCustomerID,
		stripeSubscriptionID,
		periodEnd,
		time.Now(),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to activate subscription: %w", err)
	}
	return requireRows(result)
}

func (r *organizationRepository) UpdateSubscriptionStatus(ctx context.Context, stripeSubscriptionID, status string, periodEnd *time.Time) error {
	query := `
		UPDATE organizations
		SET subscription_status = $1,
		    current_period_end = COALESCE($2, current_period_end),
		    updated_at = $3
		WHERE stripe_subscription_id = $4
	`
	result, err := r.GetDB().ExecContext(ctx, query, status, periodEnd, time.Now(), stripeSubscriptionID)
	if err != nil {
		return fmt.Errorf("failed to update subscription status: %w", err)
	}
	return requireRows(result)
}

func (r *organizationRepository) CancelSubscription(ctx context.Context, stripeSubscriptionID string) error {
	query := `
		UPDATE organizations
		SET subscription_status = $1,
		    subscription_tier = $2,
		    monthly_voicemail_limit = $3,
		    updated_at = $4
		WHERE stripe_subscription_id = $5
	`
	result, err := r.GetDB().ExecContext(ctx, query,
		model.SubscriptionStatusCanceled,
		model.TierBase,
		model.TierVoicemailLimits[model.TierBase],
		time.Now(),
		stripeSubscriptionID,
	)
	if err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}
	return requireRows(result)
}

func (r *organizationRepository) IncrementVoicemailsUsed(ctx context.Context, id uuid.UUID, n int) error {
	query := `
		UPDATE organizations
		SET monthly_voicemails_used = monthly_voicemails_used + $1, updated_at = $2
		WHERE id = $3
	`
	result, err := r.GetDB().ExecContext(ctx, query, n, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to increment voicemail usage: %w", err)
	}
	return requireRows(result)
}
