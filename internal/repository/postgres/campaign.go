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

type campaignRepository struct {
	BaseRepository
}

func NewCampaignRepository(db *sqlx.DB) repository.CampaignRepository {
	return &campaignRepository{NewBaseRepository(db)}
}

func (r *campaignRepository) CreateWithDrops(ctx context.Context, campaign *model.Campaign, drops []*model.VoicemailDrop) error {
	now := time.Now()
	campaign.ID = uuid.New()
	campaign.CreatedAt = now
	campaign.UpdatedAt = now
	campaign.TotalRecipients = len(drops)

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		campaignQuery := `
			INSERT INTO campaigns (
				id, organization_id, name, script, status,
				successful_drops, failed_drops, total_recipients,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		if _, err := tx.ExecContext(ctx, campaignQuery,
			campaign.ID,
			campaign.OrganizationID,
			campaign.Name,
			campaign.Script,
			campaign.Status,
			campaign.SuccessfulDrops,
			campaign.FailedDrops,
			campaign.TotalRecipients,
			campaign.CreatedAt,
			campaign.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to create campaign: %w", translateErr(err))
		}

		dropQuery := `
			INSERT INTO voicemail_drops (
				id, campaign_id, customer_id, phone_number, status,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		for _, drop := range drops {
			drop.ID = uuid.New()
			drop.CampaignID = campaign.ID
			drop.Status = model.DropStatusPending
			drop.CreatedAt = now
			drop.UpdatedAt = now

			if _, err := tx.ExecContext(ctx, dropQuery,
				drop.ID,
				drop.CampaignID,
				drop.CustomerID,
				drop.PhoneNumber,
				drop.Status,
				drop.CreatedAt,
				drop.UpdatedAt,
			); err != nil {
				return fmt.Errorf("failed to create drop: %w", translateErr(err))
			}
		}

		return nil
	})
}

func (r *campaignRepository) Get(ctx context.Context, id, organizationID uuid.UUID) (*model.Campaign, error) {
	query := `SELECT * FROM campaigns WHERE id = $1 AND organization_id = $2`
	var campaign model.Campaign
	if err := r.GetDB().GetContext(ctx, &campaign, query, id, organizationID); err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", translateErr(err))
	}
	return &campaign, nil
}

func (r *campaignRepository) List(ctx context.Context, organizationID uuid.UUID) ([]*model.Campaign, error) {
	query := `SELECT * FROM campaigns WHERE organization_id = $1 ORDER BY created_at DESC`
	var campaigns []*model.Campaign
	if err := r.GetDB().SelectContext(ctx, &campaigns, query, organizationID); err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return campaigns, nil
}

func (r *campaignRepository) Delete(ctx context.Context, id, organizationID uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM voicemail_drops WHERE campaign_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete drops: %w", err)
		}
		result, err := tx.ExecContext(ctx,
			`DELETE FROM campaigns WHERE id = $1 AND organization_id = $2`, id, organizationID)
		if err != nil {
			return fmt.Errorf("failed to delete campaign: %w", err)
		}
		return requireRows(result)
	})
}

func (r *campaignRepository) FinalizeRun(ctx context.Context, id uuid.UUID, successful, failed int) error {
	query := `
		UPDATE campaigns
		SET successful_drops = successful_drops + $1,
		    failed_drops = failed_drops + $2,
		    status = $3,
		    updated_at = $4
		WHERE id = $5
	`
	result, err := r.GetDB().ExecContext(ctx, query,
		successful, failed, model.CampaignStatusCompleted, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to finalize campaign run: %w", err)
	}
	return requireRows(result)
}

func (r *campaignRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE campaigns SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.GetDB().ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set campaign status: %w", err)
	}
	return requireRows(result)
}
