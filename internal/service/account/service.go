package account

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/voicedrop/voicedrop-api/internal/email"
	"github.com/voicedrop/voicedrop-api/internal/identity"
	"github.com/voicedrop/voicedrop-api/internal/model"
	"github.com/voicedrop/voicedrop-api/internal/repository"
	"github.com/voicedrop/voicedrop-api/pkg/auth"
	apperrors "github.com/voicedrop/voicedrop-api/pkg/errors"
)

const maxSlugNameLen = 50

var slugStrip = regexp.MustCompile(`[^a-z0-9\s-]`)
var slugSpaces = regexp.MustCompile(`\s+`)

type Service struct {
	provider identity.Provider
	orgRepo  repository.OrganizationRepository
	emailSvc email.Service
	jwtSvc   auth.JWTService
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewService(provider identity.Provider, orgRepo repository.OrganizationRepository,
	emailSvc email.Service, jwtSvc auth.JWTService, logger *zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		orgRepo:  orgRepo,
		emailSvc: emailSvc,
		jwtSvc:   jwtSvc,
		logger:   logger,
		now:      time.Now,
	}
}

// RegisterTenant provisions a new organization with its first (admin) user.
// The identity credential is created first; org and profile rows are written
// in one transaction, and the credential is deleted again if that fails.
func (s *Service) RegisterTenant(ctx context.Context, req *model.SignupRequest) (*model.SessionResponse, error) {
	credID, err := s.provider.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			return nil, apperrors.Conflict("email already registered")
		}
		return nil, apperrors.Internal(err)
	}

	orgName := req.Company
	if orgName == "" {
		orgName = fmt.Sprintf("%s %s's Organization", req.FirstName, req.LastName)
	}

	org := &model.Organization{
		Name:                  orgName,
		Slug:                  s.deriveSlug(orgName),
		SubscriptionStatus:    model.SubscriptionStatusTrial,
		SubscriptionTier:      model.TierBasic,
		MonthlyVoicemailLimit: model.TierVoicemailLimits[model.TierBasic],
		MonthlyVoicemailsUsed: 0,
	}
	admin := &model.User{
		Base:      model.Base{ID: credID},
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      model.RoleAdmin,
		IsActive:  true,
	}

	if err := s.orgRepo.CreateWithAdmin(ctx, org, admin); err != nil {
		s.compensateSignUp(ctx, credID)
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.Conflict("organization slug already taken")
		}
		return nil, apperrors.Internal(err)
	}

	if err := s.emailSvc.SendWelcome(req.Email, req.FirstName); err != nil {
		s.logger.Warn().Err(err).Str("email", req.Email).Msg("failed to send welcome email")
	}

	token, err := s.jwtSvc.GenerateSessionToken(auth.SessionClaims{
		UserID:         admin.ID,
		Email:          admin.Email,
		OrganizationID: org.ID,
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &model.SessionResponse{
		Token: token,
		User:  admin.Summary(),
	}, nil
}

// GetOrganization loads the caller's organization
func (s *Service) GetOrganization(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	org, err := s.orgRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("organization")
		}
		return nil, apperrors.Internal(err)
	}
	return org, nil
}

// UpdateOrganization renames the caller's organization
func (s *Service) UpdateOrganization(ctx context.Context, id uuid.UUID, req *model.UpdateOrganizationRequest) error {
	if err := s.orgRepo.UpdateName(ctx, id, req.Name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("organization")
		}
		return apperrors.Internal(err)
	}
	return nil
}

func (s *Service) compensateSignUp(ctx context.Context, credID uuid.UUID) {
	if err := s.provider.Delete(ctx, credID); err != nil {
		s.logger.Error().Err(err).Str("credential_id", credID.String()).
			Msg("failed to roll back identity credential after signup failure")
	}
}

// deriveSlug lowercases the name, strips everything outside [a-z0-9 -],
// collapses whitespace to single hyphens, truncates to 50 chars and appends
// the creation timestamp. Uniqueness is best-effort; the insert can still
// conflict.
func (s *Service) deriveSlug(name string) string {
	slug := strings.ToLower(name)
	slug = slugStrip.ReplaceAllString(slug, "")
	slug = slugSpaces.ReplaceAllString(strings.TrimSpace(slug), "-")
	if len(slug) > maxSlugNameLen {
		slug = slug[:maxSlugNameLen]
	}
	slug = strings.Trim(slug, "-")
	return fmt.Sprintf("%s-%d", slug, s.now().Unix())
}
