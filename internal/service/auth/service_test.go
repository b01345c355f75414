package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicedrop/voicedrop-api/internal/identity"
	"github.com/voicedrop/voicedrop-api/internal/model"
	"github.com/voicedrop/voicedrop-api/internal/repository"
	"github.com/voicedrop/voicedrop-api/pkg/auth"
	apperrors "github.com/voicedrop/voicedrop-api/pkg/errors"
)

type fakeProvider struct {
	users map[string]*model.User // email -> user, password is always "correct-horse"
}

func (p *fakeProvider) SignIn(ctx context.Context, email, password string) (*model.User, error) {
	user, ok := p.users[email]
	if !ok || password != "correct-horse" {
		return nil, identity.ErrInvalidCredentials
	}
	return user, nil
}

func (p *fakeProvider) SignUp(ctx context.Context, email, password string) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (p *fakeProvider) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type fakeUserRepo struct {
	users          map[uuid.UUID]*model.User
	lastLoginErr   error
	lastLoginCalls int
}

func (r *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.lastLoginCalls++
	return r.lastLoginErr
}

func newLoginFixture(t *testing.T, active bool) (*Service, *fakeUserRepo, *model.User) {
	t.Helper()
	user := &model.User{
		Base:           model.Base{ID: uuid.New()},
		OrganizationID: uuid.New(),
		Email:          "sales@rustyacres.example",
		FirstName:      "Pat",
		Role:           model.RoleAdmin,
		IsActive:       active,
	}
	userRepo := &fakeUserRepo{users: map[uuid.UUID]*model.User{user.ID: user}}
	provider := &fakeProvider{users: map[string]*model.User{user.Email: user}}
	zl := zerolog.Nop()
	svc := NewService(provider, userRepo, auth.NewJWTService("test-secret", time.Hour), &zl)
	return svc, userRepo, user
}

func TestLoginSuccess(t *testing.T) {
	svc, userRepo, user := newLoginFixture(t, true)

	session, err := svc.Login(context.Background(), user.Email, "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, user.ID, session.User.ID)
	assert.Equal(t, user.OrganizationID, session.User.OrganizationID)
	assert.Equal(t, 1, userRepo.lastLoginCalls)

	claims, err := svc.ValidateToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.OrganizationID, claims.OrganizationID)
}

func TestLoginWrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	svc, _, user := newLoginFixture(t, true)

	_, errWrongPassword := svc.Login(context.Background(), user.Email, "nope")
	_, errUnknownEmail := svc.Login(context.Background(), "nobody@example.com", "nope")

	require.Error(t, errWrongPassword)
	require.Error(t, errUnknownEmail)
	assert.Equal(t, errWrongPassword.Error(), errUnknownEmail.Error())
	assert.True(t, apperrors.IsKind(errWrongPassword, apperrors.KindInvalidCredentials))
	assert.True(t, apperrors.IsKind(errUnknownEmail, apperrors.KindInvalidCredentials))
}

func TestLoginDeactivatedAccount(t *testing.T) {
	svc, _, user := newLoginFixture(t, false)

	_, err := svc.Login(context.Background(), user.Email, "correct-horse")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindAccountDeactivated))
}

func TestLoginEmptyCredentials(t *testing.T) {
	svc, _, _ := newLoginFixture(t, true)

	_, err := svc.Login(context.Background(), "", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestLoginSurvivesLastLoginFailure(t *testing.T) {
	svc, userRepo, user := newLoginFixture(t, true)
	userRepo.lastLoginErr = errors.New("db busy")

	session, err := svc.Login(context.Background(), user.Email, "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc, _, user := newLoginFixture(t, true)

	expired := auth.NewJWTService("test-secret", -time.Hour)
	token, err := expired.GenerateSessionToken(auth.SessionClaims{
		UserID:         user.ID,
		Email:          user.Email,
		OrganizationID: user.OrganizationID,
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))
}
