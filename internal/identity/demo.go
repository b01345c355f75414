package identity

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/voicedrop/voicedrop-api/internal/model"
	"github.com/voicedrop/voicedrop-api/internal/repository"
)

// The single demo credential pair. The demo backend accepts nothing else and
// never reaches the persistent store.
const (
	DemoEmail    = "demo@voicedrop.app"
	DemoPassword = "test-drive-2024"
)

var (
	DemoUserID         = uuid.MustParse("a0000000-0000-4000-8000-000000000001")
	DemoOrganizationID = uuid.MustParse("a0000000-0000-4000-8000-000000000002")
)

type demoProvider struct{}

// NewDemoProvider returns the sandbox identity backend with one fabricated
// admin account. Selected only when server.demo_mode is set.
func NewDemoProvider() Provider {
	return &demoProvider{}
}

func (p *demoProvider) SignIn(ctx context.Context, email, password string) (*model.User, error) {
	if email != DemoEmail || password != DemoPassword {
		return nil, ErrInvalidCredentials
	}
	return DemoUser(), nil
}

func (p *demoProvider) SignUp(ctx context.Context, email, password string) (uuid.UUID, error) {
	return uuid.Nil, ErrEmailTaken
}

func (p *demoProvider) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

// demoUserRepository serves the fabricated profile so session lookups work
// without a users row. Writes are dropped.
type demoUserRepository struct{}

func NewDemoUserRepository() repository.UserRepository {
	return &demoUserRepository{}
}

func (r *demoUserRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if id != DemoUserID {
		return nil, repository.ErrNotFound
	}
	return DemoUser(), nil
}

func (r *demoUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

// DemoUser fabricates the demo account profile
func DemoUser() *model.User {
	now := time.Now()
	return &model.User{
		Base: model.Base{
			ID:        DemoUserID,
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrganizationID: DemoOrganizationID,
		Email:          DemoEmail,
		FirstName:      "Demo",
		LastName:       "Dealer",
		Role:           model.RoleAdmin,
		IsActive:       true,
	}
}
