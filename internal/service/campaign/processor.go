package campaign

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voicedrop/voicedrop-api/internal/delivery"
	"github.com/voicedrop/voicedrop-api/internal/model"
	apperrors "github.com/voicedrop/voicedrop-api/pkg/errors"
)

// runGuard rejects concurrent processing runs for the same campaign. The
// guard is in-process; a multi-instance deployment needs a shared lock
// instead.
type runGuard struct {
	mu      sync.Mutex
	running map[uuid.UUID]struct{}
}

func newRunGuard() *runGuard {
	return &runGuard{running: make(map[uuid.UUID]struct{})}
}

func (g *runGuard) tryAcquire(id uuid.UUID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.running[id]; ok {
		return false
	}
	g.running[id] = struct{}{}
	return true
}

func (g *runGuard) release(id uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, id)
}

// Process delivers all pending drops of a campaign within the request. Per
// recipient, a provider rejection or transient error becomes a failed drop;
// it never aborts the batch. Cumulative campaign counters and the completed
// status are written only after every outcome of this run is persisted.
//
// Cancellation stops further provider calls; outcomes already obtained are
// still persisted and aggregated.
func (s *Service) Process(ctx context.Context, campaignID, organizationID uuid.UUID) (*model.ProcessingResult, error) {
	if !s.runs.tryAcquire(campaignID) {
		return nil, apperrors.Conflict("campaign is already being processed")
	}
	defer s.runs.release(campaignID)

	campaign, err := s.Get(ctx, campaignID, organizationID)
	if err != nil {
		return nil, err
	}

	org, err := s.orgRepo.Get(ctx, organizationID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if org.MonthlyVoicemailsUsed >= org.MonthlyVoicemailLimit {
		return nil, apperrors.Forbidden("monthly voicemail limit reached")
	}

	drops, err := s.dropRepo.ListPending(ctx, campaignID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if len(drops) == 0 {
		return nil, apperrors.Conflict("no pending recipients")
	}

	if err := s.campaignRepo.SetStatus(ctx, campaignID, model.CampaignStatusRunning); err != nil {
		return nil, apperrors.Internal(err)
	}

	start := time.Now()
	result := &model.ProcessingResult{CampaignID: campaignID}

	for _, drop := range drops {
		if ctx.Err() != nil {
			break
		}

		outcome, err := s.processDrop(ctx, campaign, drop)
		if err != nil {
			// cancelled mid-send or the store stopped accepting outcomes;
			// remaining drops stay pending
			break
		}
		result.Results = append(result.Results, *outcome)
		result.ProcessedCount++
		if outcome.Status == model.DropStatusDelivered {
			result.SuccessfulCount++
		} else {
			result.FailedCount++
		}
	}

	if err := s.campaignRepo.FinalizeRun(context.WithoutCancel(ctx), campaignID, result.SuccessfulCount, result.FailedCount); err != nil {
		return nil, apperrors.Internal(err)
	}
	if result.SuccessfulCount > 0 {
		if err := s.orgRepo.IncrementVoicemailsUsed(context.WithoutCancel(ctx), organizationID, result.SuccessfulCount); err != nil {
			s.logger.Error().Err(err).Str("organization_id", organizationID.String()).
				Msg("failed to record voicemail usage")
		}
	}

	if s.stats != nil {
		s.stats.Invalidate(organizationID)
	}

	if s.metrics != nil {
		s.metrics.DropsDelivered.Add(float64(result.SuccessfulCount))
		s.metrics.DropsFailed.Add(float64(result.FailedCount))
		s.metrics.ProcessingDuration.Observe(time.Since(start).Seconds())
		s.metrics.CampaignRuns.WithLabelValues(model.CampaignStatusCompleted).Inc()
	}

	s.logger.Info().
		Str("campaign_id", campaignID.String()).
		Int("processed", result.ProcessedCount).
		Int("successful", result.SuccessfulCount).
		Int("failed", result.FailedCount).
		Dur("duration", time.Since(start)).
		Msg("campaign run completed")

	return result, nil
}

// processDrop sends one voicemail and persists its outcome. A returned error
// means the run must stop: the send was aborted by cancellation before
// producing an outcome, or the store refused to record one.
func (s *Service) processDrop(ctx context.Context, campaign *model.Campaign, drop *model.VoicemailDrop) (*model.DropResult, error) {
	outcome := &model.DropResult{
		DropID:      drop.ID,
		CustomerID:  drop.CustomerID,
		PhoneNumber: drop.PhoneNumber,
	}

	res, err := s.provider.Send(ctx, drop.PhoneNumber, campaign.Script)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}

		reason := "delivery provider error"
		var rejection *delivery.Rejection
		if errors.As(err, &rejection) {
			reason = rejection.Reason
		} else {
			s.logger.Warn().Err(err).Str("drop_id", drop.ID.String()).Msg("provider call failed")
		}

		if err := s.dropRepo.MarkFailed(context.WithoutCancel(ctx), drop, reason); err != nil {
			s.logger.Error().Err(err).Str("drop_id", drop.ID.String()).Msg("failed to persist drop failure")
			return nil, err
		}
		outcome.Status = model.DropStatusFailed
		outcome.Error = reason
		return outcome, nil
	}

	if err := s.dropRepo.MarkDelivered(context.WithoutCancel(ctx), drop, res.ProviderRef, time.Now()); err != nil {
		s.logger.Error().Err(err).Str("drop_id", drop.ID.String()).Msg("failed to persist drop delivery")
		return nil, err
	}
	outcome.Status = model.DropStatusDelivered
	return outcome, nil
}
