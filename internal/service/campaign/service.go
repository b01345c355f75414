package campaign

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/voicedrop/voicedrop-api/internal/delivery"
	"github.com/voicedrop/voicedrop-api/internal/model"
	"github.com/voicedrop/voicedrop-api/internal/repository"
	apperrors "github.com/voicedrop/voicedrop-api/pkg/errors"
	"github.com/voicedrop/voicedrop-api/pkg/metrics"
)

// StatsInvalidator drops cached dashboard aggregates for an organization so
// reads after a run reflect the new counts.
type StatsInvalidator interface {
	Invalidate(organizationID uuid.UUID)
}

type Service struct {
	campaignRepo repository.CampaignRepository
	dropRepo     repository.DropRepository
	customerRepo repository.CustomerRepository
	orgRepo      repository.OrganizationRepository
	provider     delivery.Provider
	stats        StatsInvalidator
	metrics      *metrics.Metrics
	logger       *zerolog.Logger
	runs         *runGuard
}

func NewService(
	campaignRepo repository.CampaignRepository,
	dropRepo repository.DropRepository,
	customerRepo repository.CustomerRepository,
	orgRepo repository.OrganizationRepository,
	provider delivery.Provider,
	stats StatsInvalidator,
	m *metrics.Metrics,
	logger *zerolog.Logger,
) *Service {
	return &Service{
		campaignRepo: campaignRepo,
		dropRepo:     dropRepo,
		customerRepo: customerRepo,
		orgRepo:      orgRepo,
		provider:     provider,
		stats:        stats,
		metrics:      m,
		logger:       logger,
		runs:         newRunGuard(),
	}
}

// Create builds a draft campaign with one pending drop per targeted customer.
// Customers outside the caller's organization are silently dropped from the
// target list by the scoped lookup.
func (s *Service) Create(ctx context.Context, organizationID uuid.UUID, req *model.CreateCampaignRequest) (*model.Campaign, error) {
	customers, err := s.customerRepo.GetByIDs(ctx, organizationID, req.CustomerIDs)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if len(customers) == 0 {
		return nil, apperrors.Validation("no valid recipients in customer list", nil)
	}

	campaign := &model.Campaign{
		OrganizationID: organizationID,
		Name:           req.Name,
		Script:         req.Script,
		Status:         model.CampaignStatusDraft,
	}

	drops := make([]*model.VoicemailDrop, 0, len(customers))
	for _, customer := range customers {
		drops = append(drops, &model.VoicemailDrop{
			CustomerID:  customer.ID,
			PhoneNumber: customer.PhoneNumber,
		})
	}

	if err := s.campaignRepo.CreateWithDrops(ctx, campaign, drops); err != nil {
		return nil, apperrors.Internal(err)
	}
	return campaign, nil
}

// Get loads a campaign scoped to the caller's organization. A campaign owned
// by another tenant is indistinguishable from a missing one.
func (s *Service) Get(ctx context.Context, id, organizationID uuid.UUID) (*model.Campaign, error) {
	campaign, err := s.campaignRepo.Get(ctx, id, organizationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("campaign")
		}
		return nil, apperrors.Internal(err)
	}
	return campaign, nil
}

func (s *Service) List(ctx context.Context, organizationID uuid.UUID) ([]*model.Campaign, error) {
	campaigns, err := s.campaignRepo.List(ctx, organizationID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return campaigns, nil
}

// Delete removes a draft campaign and its drops. Campaigns that have run keep
// their history.
func (s *Service) Delete(ctx context.Context, id, organizationID uuid.UUID) error {
	campaign, err := s.Get(ctx, id, organizationID)
	if err != nil {
		return err
	}
	if campaign.Status != model.CampaignStatusDraft {
		return apperrors.Conflict("only draft campaigns can be deleted")
	}
	if err := s.campaignRepo.Delete(ctx, id, organizationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("campaign")
		}
		return apperrors.Internal(err)
	}
	return nil
}

// MarkListened applies a provider delivery-status callback. Unknown refs and
// drops that never reached delivered are ignored.
func (s *Service) MarkListened(ctx context.Context, providerRef string) error {
	if err := s.dropRepo.MarkListened(ctx, providerRef); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return apperrors.Internal(err)
	}
	return nil
}
