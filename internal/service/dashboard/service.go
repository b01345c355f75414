package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/voicedrop/voicedrop-api/internal/model"
	"github.com/voicedrop/voicedrop-api/internal/repository"
	apperrors "github.com/voicedrop/voicedrop-api/pkg/errors"
)

const (
	statsTTL      = 2 * time.Minute
	sweepInterval = 5 * time.Minute
)

type Service struct {
	statsRepo repository.StatsRepository
	cache     *cache.Cache
	logger    *zerolog.Logger
}

func NewService(statsRepo repository.StatsRepository, logger *zerolog.Logger) *Service {
	return &Service{
		statsRepo: statsRepo,
		cache:     cache.New(statsTTL, sweepInterval),
		logger:    logger,
	}
}

// GetStats returns aggregate statistics for the organization. Results are
// cached per tenant; a query failure is surfaced to the caller, never papered
// over with stale or fabricated numbers.
func (s *Service) GetStats(ctx context.Context, organizationID uuid.UUID) (*model.DashboardStats, error) {
	key := organizationID.String()
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*model.DashboardStats), nil
	}

	stats, err := s.statsRepo.GetStats(ctx, organizationID)
	if err != nil {
		s.logger.Error().Err(err).Str("organization_id", key).Msg("failed to load dashboard stats")
		return nil, apperrors.Internal(err)
	}

	s.cache.Set(key, stats, cache.DefaultExpiration)
	return stats, nil
}

// Invalidate drops the cached entry so the next read reflects fresh counts.
// Called after a campaign run finishes.
func (s *Service) Invalidate(organizationID uuid.UUID) {
	s.cache.Delete(organizationID.String())
}
