package auth

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/voicedrop/voicedrop-api/internal/identity"
	"github.com/voicedrop/voicedrop-api/internal/model"
	"github.com/voicedrop/voicedrop-api/internal/repository"
	"github.com/voicedrop/voicedrop-api/pkg/auth"
	apperrors "github.com/voicedrop/voicedrop-api/pkg/errors"
)

type Service struct {
	provider identity.Provider
	userRepo repository.UserRepository
	jwtSvc   auth.JWTService
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewService(provider identity.Provider, userRepo repository.UserRepository,
	jwtSvc auth.JWTService, logger *zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		userRepo: userRepo,
		jwtSvc:   jwtSvc,
		logger:   logger,
		now:      time.Now,
	}
}

// Login verifies the credential pair and issues a session token. Unknown
// email and wrong password are indistinguishable in the result; a
// deactivated account is not, since the caller did authenticate.
func (s *Service) Login(ctx context.Context, email, password string) (*model.SessionResponse, error) {
	if email == "" || password == "" {
		return nil, apperrors.Validation("email and password are required", nil)
	}

	user, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return nil, apperrors.InvalidCredentials()
		}
		return nil, apperrors.Internal(err)
	}

	if !user.IsActive {
		return nil, apperrors.AccountDeactivated()
	}

	// Best-effort; a failed timestamp update must not fail the login.
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to update last login")
	}

	token, err := s.jwtSvc.GenerateSessionToken(auth.SessionClaims{
		UserID:         user.ID,
		Email:          user.Email,
		OrganizationID: user.OrganizationID,
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &model.SessionResponse{
		Token: token,
		User:  user.Summary(),
	}, nil
}

// CurrentUser resolves the authenticated user's profile
func (s *Service) CurrentUser(ctx context.Context, claims *auth.SessionClaims) (*model.UserSummary, error) {
	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthenticated("unknown session user")
		}
		return nil, apperrors.Internal(err)
	}
	summary := user.Summary()
	return &summary, nil
}

// ValidateToken parses and verifies a session token
func (s *Service) ValidateToken(token string) (*auth.SessionClaims, error) {
	claims, err := s.jwtSvc.ValidateSessionToken(token)
	if err != nil {
		return nil, apperrors.Unauthenticated("invalid session token")
	}
	return claims, nil
}
