package campaign

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicedrop/voicedrop-api/internal/delivery"
	"github.com/voicedrop/voicedrop-api/internal/model"
	"github.com/voicedrop/voicedrop-api/internal/repository"
	apperrors "github.com/voicedrop/voicedrop-api/pkg/errors"
)

type fakeCampaignRepo struct {
	mu        sync.Mutex
	campaigns map[uuid.UUID]*model.Campaign
	statuses  []string
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{campaigns: make(map[uuid.UUID]*model.Campaign)}
}

func (r *fakeCampaignRepo) CreateWithDrops(ctx context.Context, c *model.Campaign, drops []*model.VoicemailDrop) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = uuid.New()
	c.TotalRecipients = len(drops)
	r.campaigns[c.ID] = c
	return nil
}

func (r *fakeCampaignRepo) Get(ctx context.Context, id, orgID uuid.UUID) (*model.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok || c.OrganizationID != orgID {
		return nil, repository.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCampaignRepo) List(ctx context.Context, orgID uuid.UUID) ([]*model.Campaign, error) {
	return nil, nil
}

func (r *fakeCampaignRepo) Delete(ctx context.Context, id, orgID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.campaigns, id)
	return nil
}

func (r *fakeCampaignRepo) FinalizeRun(ctx context.Context, id uuid.UUID, successful, failed int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.campaigns[id]
	c.SuccessfulDrops += successful
	c.FailedDrops += failed
	c.Status = model.CampaignStatusCompleted
	r.statuses = append(r.statuses, model.CampaignStatusCompleted)
	return nil
}

func (r *fakeCampaignRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.campaigns[id].Status = status
	r.statuses = append(r.statuses, status)
	return nil
}

type fakeDropRepo struct {
	mu    sync.Mutex
	drops map[uuid.UUID][]*model.VoicemailDrop
}

func newFakeDropRepo() *fakeDropRepo {
	return &fakeDropRepo{drops: make(map[uuid.UUID][]*model.VoicemailDrop)}
}

func (r *fakeDropRepo) ListPending(ctx context.Context, campaignID uuid.UUID) ([]*model.VoicemailDrop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []*model.VoicemailDrop
	for _, d := range r.drops[campaignID] {
		if d.Status == model.DropStatusPending {
			pending = append(pending, d)
		}
	}
	return pending, nil
}

func (r *fakeDropRepo) MarkDelivered(ctx context.Context, drop *model.VoicemailDrop, ref string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	drop.Status = model.DropStatusDelivered
	drop.ProviderRef = &ref
	drop.DeliveredAt = &at
	return nil
}

func (r *fakeDropRepo) MarkFailed(ctx context.Context, drop *model.VoicemailDrop, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	drop.Status = model.DropStatusFailed
	drop.ErrorMessage = &reason
	return nil
}

func (r *fakeDropRepo) MarkListened(ctx context.Context, providerRef string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, drops := range r.drops {
		for _, d := range drops {
			if d.ProviderRef != nil && *d.ProviderRef == providerRef && d.Status == model.DropStatusDelivered {
				d.Status = model.DropStatusListened
				return nil
			}
		}
	}
	return repository.ErrNotFound
}

type fakeOrgRepo struct {
	mu          sync.Mutex
	org         *model.Organization
	incremented int
}

func (r *fakeOrgRepo) CreateWithAdmin(ctx context.Context, org *model.Organization, admin *model.User) error {
	return nil
}

func (r *fakeOrgRepo) Get(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.org == nil || r.org.ID != id {
		return nil, repository.ErrNotFound
	}
	copied := *r.org
	return &copied, nil
}

func (r *fakeOrgRepo) UpdateName(ctx context.Context, id uuid.UUID, name string) error { return nil }

func (r *fakeOrgRepo) ActivateSubscription(ctx context.Context, id uuid.UUID, tier string, limit int, custID, subID string, periodEnd time.Time) error {
	return nil
}

func (r *fakeOrgRepo) UpdateSubscriptionStatus(ctx context.Context, subID, status string, periodEnd *time.Time) error {
	return nil
}

func (r *fakeOrgRepo) CancelSubscription(ctx context.Context, subID string) error { return nil }

func (r *fakeOrgRepo) IncrementVoicemailsUsed(ctx context.Context, id uuid.UUID, n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.org.MonthlyVoicemailsUsed += n
	r.incremented += n
	return nil
}

type fakeCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
}

func (r *fakeCustomerRepo) Create(ctx context.Context, c *model.Customer) error { return nil }

func (r *fakeCustomerRepo) Get(ctx context.Context, id, orgID uuid.UUID) (*model.Customer, error) {
	return nil, repository.ErrNotFound
}

func (r *fakeCustomerRepo) GetByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]*model.Customer, error) {
	var found []*model.Customer
	for _, id := range ids {
		if c, ok := r.customers[id]; ok && c.OrganizationID == orgID {
			found = append(found, c)
		}
	}
	return found, nil
}

func (r *fakeCustomerRepo) List(ctx context.Context, orgID uuid.UUID, f model.CustomerFilter) ([]*model.Customer, int, error) {
	return nil, 0, nil
}

func (r *fakeCustomerRepo) Update(ctx context.Context, c *model.Customer) error { return nil }

func (r *fakeCustomerRepo) Delete(ctx context.Context, id, orgID uuid.UUID) error { return nil }

// scriptedProvider runs the given function per send.
type scriptedProvider struct {
	send func(ctx context.Context, phone, script string) (*delivery.Result, error)
}

func (p *scriptedProvider) Send(ctx context.Context, phone, script string) (*delivery.Result, error) {
	return p.send(ctx, phone, script)
}

type fixture struct {
	svc          *Service
	campaignRepo *fakeCampaignRepo
	dropRepo     *fakeDropRepo
	orgRepo      *fakeOrgRepo
	stats        *fakeStatsInvalidator
	campaignID   uuid.UUID
	orgID        uuid.UUID
}

type fakeStatsInvalidator struct {
	invalidated []uuid.UUID
}

func (f *fakeStatsInvalidator) Invalidate(organizationID uuid.UUID) {
	f.invalidated = append(f.invalidated, organizationID)
}

func newFixture(t *testing.T, phones []string, provider delivery.Provider) *fixture {
	t.Helper()

	orgID := uuid.New()
	campaignID := uuid.New()

	campaignRepo := newFakeCampaignRepo()
	campaignRepo.campaigns[campaignID] = &model.Campaign{
		Base:           model.Base{ID: campaignID},
		OrganizationID: orgID,
		Name:           "Spring Service Special",
		Script:         "Hi, this is a reminder about our spring service special.",
		Status:         model.CampaignStatusDraft,
	}

	dropRepo := newFakeDropRepo()
	for _, phone := range phones {
		dropRepo.drops[campaignID] = append(dropRepo.drops[campaignID], &model.VoicemailDrop{
			Base:        model.Base{ID: uuid.New()},
			CampaignID:  campaignID,
			CustomerID:  uuid.New(),
			PhoneNumber: phone,
			Status:      model.DropStatusPending,
		})
	}

	orgRepo := &fakeOrgRepo{org: &model.Organization{
		Base:                  model.Base{ID: orgID},
		MonthlyVoicemailLimit: 1000,
	}}

	zl := zerolog.Nop()
	stats := &fakeStatsInvalidator{}
	svc := NewService(campaignRepo, dropRepo, &fakeCustomerRepo{}, orgRepo, provider, stats, nil, &zl)

	return &fixture{
		svc:          svc,
		campaignRepo: campaignRepo,
		dropRepo:     dropRepo,
		orgRepo:      orgRepo,
		stats:        stats,
		campaignID:   campaignID,
		orgID:        orgID,
	}
}

func acceptAllProvider() delivery.Provider {
	return &scriptedProvider{send: func(ctx context.Context, phone, script string) (*delivery.Result, error) {
		return &delivery.Result{ProviderRef: "ref-" + phone}, nil
	}}
}

func TestProcessMixedOutcomes(t *testing.T) {
	provider := &scriptedProvider{send: func(ctx context.Context, phone, script string) (*delivery.Result, error) {
		if phone == "+15550009999" {
			return nil, &delivery.Rejection{Reason: "invalid number"}
		}
		return &delivery.Result{ProviderRef: "ref-" + phone}, nil
	}}

	f := newFixture(t, []string{
		"+15550000001", "+15550000002", "+15550009999", "+15550000003", "+15550000004",
	}, provider)

	result, err := f.svc.Process(context.Background(), f.campaignID, f.orgID)
	require.NoError(t, err)

	assert.Equal(t, 5, result.ProcessedCount)
	assert.Equal(t, 4, result.SuccessfulCount)
	assert.Equal(t, 1, result.FailedCount)
	assert.Len(t, result.Results, 5)

	campaign := f.campaignRepo.campaigns[f.campaignID]
	assert.Equal(t, model.CampaignStatusCompleted, campaign.Status)
	assert.Equal(t, 4, campaign.SuccessfulDrops)
	assert.Equal(t, 1, campaign.FailedDrops)
	assert.Equal(t, []string{model.CampaignStatusRunning, model.CampaignStatusCompleted}, f.campaignRepo.statuses)

	// one transient provider error aside, only delivered sends count
	assert.Equal(t, 4, f.orgRepo.incremented)

	var failed *model.VoicemailDrop
	for _, d := range f.dropRepo.drops[f.campaignID] {
		if d.PhoneNumber == "+15550009999" {
			failed = d
		} else {
			assert.Equal(t, model.DropStatusDelivered, d.Status)
			assert.NotNil(t, d.ProviderRef)
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, model.DropStatusFailed, failed.Status)
	require.NotNil(t, failed.ErrorMessage)
	assert.Equal(t, "invalid number", *failed.ErrorMessage)
}

func TestProcessTransientErrorDoesNotAbort(t *testing.T) {
	calls := 0
	provider := &scriptedProvider{send: func(ctx context.Context, phone, script string) (*delivery.Result, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("connection reset")
		}
		return &delivery.Result{ProviderRef: "ref"}, nil
	}}

	f := newFixture(t, []string{"+15550000001", "+15550000002"}, provider)

	result, err := f.svc.Process(context.Background(), f.campaignID, f.orgID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.ProcessedCount)
	assert.Equal(t, 1, result.SuccessfulCount)
	assert.Equal(t, 1, result.FailedCount)
	assert.Equal(t, "delivery provider error", result.Results[0].Error)
}

func TestProcessCountersAreAdditive(t *testing.T) {
	f := newFixture(t, []string{"+15550000001", "+15550000002"}, acceptAllProvider())

	_, err := f.svc.Process(context.Background(), f.campaignID, f.orgID)
	require.NoError(t, err)

	// a second batch of recipients added after the first run
	f.dropRepo.drops[f.campaignID] = append(f.dropRepo.drops[f.campaignID], &model.VoicemailDrop{
		Base:        model.Base{ID: uuid.New()},
		CampaignID:  f.campaignID,
		CustomerID:  uuid.New(),
		PhoneNumber: "+15550000003",
		Status:      model.DropStatusPending,
	})

	_, err = f.svc.Process(context.Background(), f.campaignID, f.orgID)
	require.NoError(t, err)

	campaign := f.campaignRepo.campaigns[f.campaignID]
	assert.Equal(t, 3, campaign.SuccessfulDrops)
	assert.Equal(t, 0, campaign.FailedDrops)
}

func TestProcessNoPendingRecipients(t *testing.T) {
	f := newFixture(t, []string{"+15550000001"}, acceptAllProvider())

	_, err := f.svc.Process(context.Background(), f.campaignID, f.orgID)
	require.NoError(t, err)

	_, err = f.svc.Process(context.Background(), f.campaignID, f.orgID)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestProcessQuotaReached(t *testing.T) {
	f := newFixture(t, []string{"+15550000001"}, acceptAllProvider())
	f.orgRepo.org.MonthlyVoicemailsUsed = 1000

	_, err := f.svc.Process(context.Background(), f.campaignID, f.orgID)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestProcessTenantIsolation(t *testing.T) {
	f := newFixture(t, []string{"+15550000001"}, acceptAllProvider())

	_, err := f.svc.Process(context.Background(), f.campaignID, uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestProcessConcurrentRunRejected(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{})
	provider := &scriptedProvider{send: func(ctx context.Context, phone, script string) (*delivery.Result, error) {
		close(started)
		<-block
		return &delivery.Result{ProviderRef: "ref"}, nil
	}}

	f := newFixture(t, []string{"+15550000001"}, provider)

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Process(context.Background(), f.campaignID, f.orgID)
		done <- err
	}()

	<-started
	_, err := f.svc.Process(context.Background(), f.campaignID, f.orgID)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	close(block)
	require.NoError(t, <-done)
}

func TestProcessCancellationPersistsPartialOutcomes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	provider := &scriptedProvider{send: func(ctx context.Context, phone, script string) (*delivery.Result, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return &delivery.Result{ProviderRef: "ref"}, nil
	}}

	f := newFixture(t, []string{"+15550000001", "+15550000002", "+15550000003"}, provider)

	result, err := f.svc.Process(ctx, f.campaignID, f.orgID)
	require.NoError(t, err)

	assert.Equal(t, 2, result.ProcessedCount)
	assert.Equal(t, 2, result.SuccessfulCount)

	campaign := f.campaignRepo.campaigns[f.campaignID]
	assert.Equal(t, model.CampaignStatusCompleted, campaign.Status)
	assert.Equal(t, 2, campaign.SuccessfulDrops)

	pending, err := f.dropRepo.ListPending(context.Background(), f.campaignID)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestProcessInvalidatesDashboardCache(t *testing.T) {
	f := newFixture(t, []string{"+15550000001", "+15550000002"}, acceptAllProvider())

	_, err := f.svc.Process(context.Background(), f.campaignID, f.orgID)
	require.NoError(t, err)

	require.Len(t, f.stats.invalidated, 1)
	assert.Equal(t, f.orgID, f.stats.invalidated[0])
}
