package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicedrop/voicedrop-api/internal/model"
	apperrors "github.com/voicedrop/voicedrop-api/pkg/errors"
)

type fakeStatsRepo struct {
	stats map[uuid.UUID]*model.DashboardStats
	err   error
	calls int
}

func (r *fakeStatsRepo) GetStats(ctx context.Context, orgID uuid.UUID) (*model.DashboardStats, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.stats[orgID], nil
}

func TestGetStatsCachesPerTenant(t *testing.T) {
	orgA := uuid.New()
	orgB := uuid.New()
	repo := &fakeStatsRepo{stats: map[uuid.UUID]*model.DashboardStats{
		orgA: {TotalCustomers: 10},
		orgB: {TotalCustomers: 99},
	}}
	zl := zerolog.Nop()
	svc := NewService(repo, &zl)

	first, err := svc.GetStats(context.Background(), orgA)
	require.NoError(t, err)
	assert.Equal(t, 10, first.TotalCustomers)

	// second read for the same tenant is served from cache
	_, err = svc.GetStats(context.Background(), orgA)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)

	// a different tenant gets its own entry
	other, err := svc.GetStats(context.Background(), orgB)
	require.NoError(t, err)
	assert.Equal(t, 99, other.TotalCustomers)
	assert.Equal(t, 2, repo.calls)
}

func TestGetStatsQueryFailureIsAnError(t *testing.T) {
	repo := &fakeStatsRepo{err: errors.New("relation does not exist")}
	zl := zerolog.Nop()
	svc := NewService(repo, &zl)

	_, err := svc.GetStats(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInternal))
}

func TestInvalidateForcesRefresh(t *testing.T) {
	orgID := uuid.New()
	repo := &fakeStatsRepo{stats: map[uuid.UUID]*model.DashboardStats{
		orgID: {TotalCampaigns: 3},
	}}
	zl := zerolog.Nop()
	svc := NewService(repo, &zl)

	_, err := svc.GetStats(context.Background(), orgID)
	require.NoError(t, err)

	svc.Invalidate(orgID)

	_, err = svc.GetStats(context.Background(), orgID)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}
