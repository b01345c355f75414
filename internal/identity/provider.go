package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/voicedrop/voicedrop-api/internal/model"
)

var (
	// ErrInvalidCredentials covers unknown email, wrong password and missing
	// profile alike, so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

// Provider abstracts the identity backend. The real implementation keeps
// credentials in Postgres; the demo implementation fabricates a single fixed
// account and never touches the store. Selected once at startup.
type Provider interface {
	// SignIn verifies the credential and returns the linked user profile.
	SignIn(ctx context.Context, email, password string) (*model.User, error)
	// SignUp creates a credential and returns its id. The caller creates the
	// profile afterwards and must call Delete if that fails.
	SignUp(ctx context.Context, email, password string) (uuid.UUID, error)
	// Delete removes a credential. Used as compensation when tenant
	// provisioning fails after SignUp.
	Delete(ctx context.Context, id uuid.UUID) error
}
