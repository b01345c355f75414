package customer

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicedrop/voicedrop-api/internal/model"
	"github.com/voicedrop/voicedrop-api/internal/repository"
	apperrors "github.com/voicedrop/voicedrop-api/pkg/errors"
)

type fakeRepo struct {
	customers map[uuid.UUID]*model.Customer
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{customers: make(map[uuid.UUID]*model.Customer)}
}

func (r *fakeRepo) Create(ctx context.Context, c *model.Customer) error {
	c.ID = uuid.New()
	r.customers[c.ID] = c
	return nil
}

func (r *fakeRepo) Get(ctx context.Context, id, orgID uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok || c.OrganizationID != orgID {
		return nil, repository.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeRepo) GetByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]*model.Customer, error) {
	return nil, nil
}

func (r *fakeRepo) List(ctx context.Context, orgID uuid.UUID, f model.CustomerFilter) ([]*model.Customer, int, error) {
	var out []*model.Customer
	for _, c := range r.customers {
		if c.OrganizationID == orgID {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (r *fakeRepo) Update(ctx context.Context, c *model.Customer) error {
	if _, ok := r.customers[c.ID]; !ok {
		return repository.ErrNotFound
	}
	r.customers[c.ID] = c
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id, orgID uuid.UUID) error {
	c, ok := r.customers[id]
	if !ok || c.OrganizationID != orgID {
		return repository.ErrNotFound
	}
	delete(r.customers, id)
	return nil
}

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	orgID := uuid.New()

	notes := "prefers SUVs"
	created, err := svc.Create(context.Background(), orgID, &model.CreateCustomerRequest{
		FirstName:   "Jordan",
		LastName:    "Kim",
		PhoneNumber: "+15550001111",
		Notes:       &notes,
	})
	require.NoError(t, err)

	newPhone := "+15550002222"
	updated, err := svc.Update(context.Background(), created.ID, orgID, &model.UpdateCustomerRequest{
		PhoneNumber: &newPhone,
	})
	require.NoError(t, err)

	assert.Equal(t, newPhone, updated.PhoneNumber)
	assert.Equal(t, "Jordan", updated.FirstName)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, notes, *updated.Notes)
}

func TestTenantScopedAccess(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	orgID := uuid.New()

	created, err := svc.Create(context.Background(), orgID, &model.CreateCustomerRequest{
		FirstName:   "Sam",
		LastName:    "Ortiz",
		PhoneNumber: "+15550003333",
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), created.ID, uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	err = svc.Delete(context.Background(), created.ID, uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	require.NoError(t, svc.Delete(context.Background(), created.ID, orgID))
}
