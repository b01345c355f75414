package campaign

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicedrop/voicedrop-api/internal/model"
	apperrors "github.com/voicedrop/voicedrop-api/pkg/errors"
)

func newServiceFixture(t *testing.T) (*Service, *fakeCampaignRepo, *fakeDropRepo, *fakeCustomerRepo, uuid.UUID) {
	t.Helper()
	orgID := uuid.New()
	campaignRepo := newFakeCampaignRepo()
	dropRepo := newFakeDropRepo()
	customerRepo := &fakeCustomerRepo{customers: make(map[uuid.UUID]*model.Customer)}
	zl := zerolog.Nop()
	svc := NewService(campaignRepo, dropRepo, customerRepo, &fakeOrgRepo{}, acceptAllProvider(), nil, nil, &zl)
	return svc, campaignRepo, dropRepo, customerRepo, orgID
}

func TestCreateFiltersForeignCustomers(t *testing.T) {
	svc, repo, _, customerRepo, orgID := newServiceFixture(t)

	mine := uuid.New()
	theirs := uuid.New()
	customerRepo.customers[mine] = &model.Customer{
		Base: model.Base{ID: mine}, OrganizationID: orgID, PhoneNumber: "+15550000001",
	}
	customerRepo.customers[theirs] = &model.Customer{
		Base: model.Base{ID: theirs}, OrganizationID: uuid.New(), PhoneNumber: "+15550000002",
	}

	created, err := svc.Create(context.Background(), orgID, &model.CreateCampaignRequest{
		Name:        "Trade-in offers",
		Script:      "We have a trade-in offer for you.",
		CustomerIDs: []uuid.UUID{mine, theirs},
	})
	require.NoError(t, err)

	assert.Equal(t, model.CampaignStatusDraft, created.Status)
	assert.Equal(t, 1, repo.campaigns[created.ID].TotalRecipients)
}

func TestCreateRejectsEmptyTargetList(t *testing.T) {
	svc, _, _, _, orgID := newServiceFixture(t)

	_, err := svc.Create(context.Background(), orgID, &model.CreateCampaignRequest{
		Name:        "Empty",
		Script:      "script",
		CustomerIDs: []uuid.UUID{uuid.New()},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestDeleteOnlyDrafts(t *testing.T) {
	svc, repo, _, _, orgID := newServiceFixture(t)

	id := uuid.New()
	repo.campaigns[id] = &model.Campaign{
		Base: model.Base{ID: id}, OrganizationID: orgID, Status: model.CampaignStatusCompleted,
	}

	err := svc.Delete(context.Background(), id, orgID)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	repo.campaigns[id].Status = model.CampaignStatusDraft
	require.NoError(t, svc.Delete(context.Background(), id, orgID))
	assert.NotContains(t, repo.campaigns, id)
}

func TestMarkListenedIgnoresUnknownRef(t *testing.T) {
	svc, _, dropRepo, _, _ := newServiceFixture(t)

	assert.NoError(t, svc.MarkListened(context.Background(), "no-such-ref"))

	campaignID := uuid.New()
	ref := "ref-1"
	dropRepo.drops[campaignID] = []*model.VoicemailDrop{{
		Base:        model.Base{ID: uuid.New()},
		CampaignID:  campaignID,
		Status:      model.DropStatusDelivered,
		ProviderRef: &ref,
	}}

	require.NoError(t, svc.MarkListened(context.Background(), ref))
	assert.Equal(t, model.DropStatusListened, dropRepo.drops[campaignID][0].Status)
}
