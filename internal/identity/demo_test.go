package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicedrop/voicedrop-api/internal/repository"
)

func TestDemoProviderSignIn(t *testing.T) {
	p := NewDemoProvider()

	user, err := p.SignIn(context.Background(), DemoEmail, DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, DemoUserID, user.ID)
	assert.Equal(t, DemoOrganizationID, user.OrganizationID)
	assert.True(t, user.IsActive)

	_, err = p.SignIn(context.Background(), DemoEmail, "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.SignIn(context.Background(), "other@example.com", DemoPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDemoProviderRejectsSignUp(t *testing.T) {
	p := NewDemoProvider()
	_, err := p.SignUp(context.Background(), "new@example.com", "password123")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestDemoUserRepository(t *testing.T) {
	r := NewDemoUserRepository()

	user, err := r.Get(context.Background(), DemoUserID)
	require.NoError(t, err)
	assert.Equal(t, DemoEmail, user.Email)

	_, err = r.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
