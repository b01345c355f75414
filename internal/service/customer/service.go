package customer

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/voicedrop/voicedrop-api/internal/model"
	"github.com/voicedrop/voicedrop-api/internal/repository"
	apperrors "github.com/voicedrop/voicedrop-api/pkg/errors"
)

type Service struct {
	repo repository.CustomerRepository
}

func NewService(repo repository.CustomerRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, organizationID uuid.UUID, req *model.CreateCustomerRequest) (*model.Customer, error) {
	customer := &model.Customer{
		OrganizationID:  organizationID,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		PhoneNumber:     req.PhoneNumber,
		Email:           req.Email,
		VehicleInterest: req.VehicleInterest,
		Notes:           req.Notes,
		Tags:            req.Tags,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.Conflict("customer already exists")
		}
		return nil, apperrors.Internal(err)
	}
	return customer, nil
}

func (s *Service) Get(ctx context.Context, id, organizationID uuid.UUID) (*model.Customer, error) {
	customer, err := s.repo.Get(ctx, id, organizationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("customer")
		}
		return nil, apperrors.Internal(err)
	}
	return customer, nil
}

func (s *Service) List(ctx context.Context, organizationID uuid.UUID, filter model.CustomerFilter) ([]*model.Customer, int, error) {
	customers, total, err := s.repo.List(ctx, organizationID, filter)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return customers, total, nil
}

func (s *Service) Update(ctx context.Context, id, organizationID uuid.UUID, req *model.UpdateCustomerRequest) (*model.Customer, error) {
	customer, err := s.Get(ctx, id, organizationID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		customer.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		customer.LastName = *req.LastName
	}
	if req.PhoneNumber != nil {
		customer.PhoneNumber = *req.PhoneNumber
	}
	if req.Email != nil {
		customer.Email = req.Email
	}
	if req.VehicleInterest != nil {
		customer.VehicleInterest = req.VehicleInterest
	}
	if req.Notes != nil {
		customer.Notes = req.Notes
	}
	if req.Tags != nil {
		customer.Tags = req.Tags
	}

	if err := s.repo.Update(ctx, customer); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("customer")
		}
		return nil, apperrors.Internal(err)
	}
	return customer, nil
}

func (s *Service) Delete(ctx context.Context, id, organizationID uuid.UUID) error {
	if err := s.repo.Delete(ctx, id, organizationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("customer")
		}
		return apperrors.Internal(err)
	}
	return nil
}
