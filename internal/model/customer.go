package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Customer represents a dealership lead or contact
type Customer struct {
	Base
	OrganizationID  uuid.UUID      `json:"organization_id" db:"organization_id"`
	FirstName       string         `json:"first_name" db:"first_name"`
	LastName        string         `json:"last_name" db:"last_name"`
	PhoneNumber     string         `json:"phone_number" db:"phone_number"`
	Email           *string        `json:"email,omitempty" db:"email"`
	VehicleInterest *string        `json:"vehicle_interest,omitempty" db:"vehicle_interest"`
	Notes           *string        `json:"notes,omitempty" db:"notes"`
	Tags            pq.StringArray `json:"tags" db:"tags"`
}

// CreateCustomerRequest represents customer creation parameters
type CreateCustomerRequest struct {
	FirstName       string   `json:"first_name" binding:"required"`
	LastName        string   `json:"last_name" binding:"required"`
	PhoneNumber     string   `json:"phone_number" binding:"required"`
	Email           *string  `json:"email" binding:"omitempty,email"`
	VehicleInterest *string  `json:"vehicle_interest"`
	Notes           *string  `json:"notes"`
	Tags            []string `json:"tags"`
}

// UpdateCustomerRequest represents customer update parameters
type UpdateCustomerRequest struct {
	FirstName       *string  `json:"first_name"`
	LastName        *string  `json:"last_name"`
	PhoneNumber     *string  `json:"phone_number"`
	Email           *string  `json:"email" binding:"omitempty,email"`
	VehicleInterest *string  `json:"vehicle_interest"`
	Notes           *string  `json:"notes"`
	Tags            []string `json:"tags"`
}

// CustomerFilter represents customer search parameters
type CustomerFilter struct {
	SearchTerm string `json:"search_term" form:"search"`
	Tag        string `json:"tag" form:"tag"`
	Pagination
}
