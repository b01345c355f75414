package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/voicedrop/voicedrop-api/internal/model"
	"github.com/voicedrop/voicedrop-api/internal/repository"
)

type dropRepository struct {
	BaseRepository
}

func NewDropRepository(db *sqlx.DB) repository.DropRepository {
	return &dropRepository{NewBaseRepository(db)}
}

func (r *dropRepository) ListPending(ctx context.Context, campaignID uuid.UUID) ([]*model.VoicemailDrop, error) {
	query := `
		SELECT * FROM voicemail_drops
		WHERE campaign_id = $1 AND status = $2
		ORDER BY created_at
	`
	var drops []*model.VoicemailDrop
	if err := r.GetDB().SelectContext(ctx, &drops, query, campaignID, model.DropStatusPending); err != nil {
		return nil, fmt.Errorf("failed to list pending drops: %w", err)
	}
	return drops, nil
}

func (r *dropRepository) MarkDelivered(ctx context.Context, drop *model.VoicemailDrop, providerRef string, at time.Time) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE voicemail_drops
			SET status = $1, provider_ref = $2, delivered_at = $3, updated_at = $4
			WHERE id = $5 AND status = $6
		`
		result, err := tx.ExecContext(ctx, query,
			model.DropStatusDelivered, providerRef, at, time.Now(),
			drop.ID, model.DropStatusPending)
		if err != nil {
			return fmt.Errorf("failed to mark drop delivered: %w", err)
		}
		if err := requireRows(result); err != nil {
			return err
		}

		drop.Status = model.DropStatusDelivered
		drop.ProviderRef = &providerRef
		drop.DeliveredAt = &at

		return r.appendDropEvent(ctx, tx, model.EventDropDelivered, drop, "")
	})
}

func (r *dropRepository) MarkFailed(ctx context.Context, drop *model.VoicemailDrop, errorMessage string) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE voicemail_drops
			SET status = $1, error_message = $2, updated_at = $3
			WHERE id = $4 AND status = $5
		`
		result, err := tx.ExecContext(ctx, query,
			model.DropStatusFailed, errorMessage, time.Now(),
			drop.ID, model.DropStatusPending)
		if err != nil {
			return fmt.Errorf("failed to mark drop failed: %w", err)
		}
		if err := requireRows(result); err != nil {
			return err
		}

		drop.Status = model.DropStatusFailed
		drop.ErrorMessage = &errorMessage

		return r.appendDropEvent(ctx, tx, model.EventDropFailed, drop, errorMessage)
	})
}

// MarkListened moves a delivered drop to listened and records the transition
// in the outbox, like the delivered and failed outcomes. Pending and failed
// rows are never promoted; unknown refs surface as ErrNotFound.
func (r *dropRepository) MarkListened(ctx context.Context, providerRef string) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE voicemail_drops
			SET status = $1, updated_at = $2
			WHERE provider_ref = $3 AND status = $4
			RETURNING id, campaign_id, customer_id, phone_number
		`
		var drop model.VoicemailDrop
		err := tx.QueryRowxContext(ctx, query,
			model.DropStatusListened, time.Now(), providerRef, model.DropStatusDelivered).
			StructScan(&drop)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("failed to mark drop listened: %w", err)
		}

		drop.Status = model.DropStatusListened
		return r.appendDropEvent(ctx, tx, model.EventDropListened, &drop, "")
	})
}

func (r *dropRepository) appendDropEvent(ctx context.Context, tx *sqlx.Tx, eventType string, drop *model.VoicemailDrop, errorMessage string) error {
	payload, err := json.Marshal(model.DropEventPayload{
		DropID:      drop.ID,
		CampaignID:  drop.CampaignID,
		CustomerID:  drop.CustomerID,
		PhoneNumber: drop.PhoneNumber,
		Status:      drop.Status,
		Error:       errorMessage,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal drop event: %w", err)
	}

	query := `
		INSERT INTO outbox_events (id, event_type, payload, status, retry_count, created_at)
		VALUES ($1, $2, $3, $4, 0, $5)
	`
	if _, err := tx.ExecContext(ctx, query,
		uuid.New(), eventType, payload, model.OutboxStatusPending, time.Now()); err != nil {
		return fmt.Errorf("failed to append outbox event: %w", err)
	}
	return nil
}
