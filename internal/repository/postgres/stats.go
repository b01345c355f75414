package postgres

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/voicedrop/voicedrop-api/internal/model"
	"github.com/voicedrop/voicedrop-api/internal/repository"
)

type statsRepository struct {
	BaseRepository
}

func NewStatsRepository(db *sqlx.DB) repository.StatsRepository {
	return &statsRepository{NewBaseRepository(db)}
}

func (r *statsRepository) GetStats(ctx context.Context, organizationID uuid.UUID) (*model.DashboardStats, error) {
	var row struct {
		TotalCustomers  int `db:"total_customers"`
		TotalCampaigns  int `db:"total_campaigns"`
		ActiveCampaigns int `db:"active_campaigns"`
		Sent            int `db:"sent"`
		Delivered       int `db:"delivered"`
	}

	query := `
		SELECT
			(SELECT COUNT(*) FROM customers WHERE organization_id = $1) AS total_customers,
			(SELECT COUNT(*) FROM campaigns WHERE organization_id = $1) AS total_campaigns,
			(SELECT COUNT(*) FROM campaigns WHERE organization_id = $1 AND status = $2) AS active_campaigns,
			(SELECT COUNT(*) FROM voicemail_drops d
				JOIN campaigns c ON c.id = d.campaign_id
				WHERE c.organization_id = $1 AND d.status <> $3) AS sent,
			(SELECT COUNT(*) FROM voicemail_drops d
				JOIN campaigns c ON c.id = d.campaign_id
				WHERE c.organization_id = $1 AND d.status IN ($4, $5)) AS delivered
	`
	if err := r.GetDB().GetContext(ctx, &row, query,
		organizationID,
		model.CampaignStatusRunning,
		model.DropStatusPending,
		model.DropStatusDelivered,
		model.DropStatusListened,
	); err != nil {
		return nil, fmt.Errorf("failed to aggregate dashboard stats: %w", err)
	}

	return &model.DashboardStats{
		TotalCustomers:  row.TotalCustomers,
		TotalCampaigns:  row.TotalCampaigns,
		VoicemailsSent:  row.Sent,
		SuccessRate:     SuccessRate(row.Delivered, row.Sent),
		ActiveCampaigns: row.ActiveCampaigns,
	}, nil
}

// SuccessRate rounds delivered/sent to a whole percentage; zero when nothing
// was sent.
func SuccessRate(delivered, sent int) int {
	if sent == 0 {
		return 0
	}
	return int(math.Round(float64(delivered) / float64(sent) * 100))
}
