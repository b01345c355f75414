package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/voicedrop/voicedrop-api/internal/model"
	"github.com/voicedrop/voicedrop-api/internal/repository"
)

type customerRepository struct {
	BaseRepository
}

func NewCustomerRepository(db *sqlx.DB) repository.CustomerRepository {
	return &customerRepository{NewBaseRepository(db)}
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	query := `
		INSERT INTO customers (
			id, organization_id, first_name, last_name, phone_number,
			email, vehicle_interest, notes, tags, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	now := time.Now()
	customer.ID = uuid.New()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	if customer.Tags == nil {
		customer.Tags = pq.StringArray{}
	}

	_, err := r.GetDB().ExecContext(ctx, query,
		customer.ID,
		customer.OrganizationID,
		customer.FirstName,
		customer.LastName,
		customer.PhoneNumber,
		customer.Email,
		customer.VehicleInterest,
		customer.Notes,
		customer.Tags,
		customer.CreatedAt,
		customer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", translateErr(err))
	}
	return nil
}

func (r *customerRepository) Get(ctx context.Context, id, organizationID uuid.UUID) (*model.Customer, error) {
	query := `SELECT * FROM customers WHERE id = $1 AND organization_id = $2`
	var customer model.Customer
	if err := r.GetDB().GetContext(ctx, &customer, query, id, organizationID); err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", translateErr(err))
	}
	return &customer, nil
}

func (r *customerRepository) GetByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]*model.Customer, error) {
	query := `SELECT * FROM customers WHERE organization_id = $1 AND id = ANY($2)`
	var customers []*model.Customer
	if err := r.GetDB().SelectContext(ctx, &customers, query, organizationID, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to get customers: %w", err)
	}
	return customers, nil
}

func (r *customerRepository) List(ctx context.Context, organizationID uuid.UUID, filter model.CustomerFilter) ([]*model.Customer, int, error) {
	filter.Normalize()

	where := `WHERE organization_id = $1`
	args := []interface{}{organizationID}

	if filter.SearchTerm != "" {
		args = append(args, "%"+filter.SearchTerm+"%")
		where += fmt.Sprintf(` AND (first_name ILIKE $%d OR last_name ILIKE $%d OR phone_number ILIKE $%d)`, len(args), len(args), len(args))
	}
	if filter.Tag != "" {
		args = append(args, filter.Tag)
		where += fmt.Sprintf(` AND $%d = ANY(tags)`, len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM customers ` + where
	if err := r.GetDB().GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	args = append(args, filter.PageSize, filter.Offset())
	listQuery := fmt.Sprintf(`
		SELECT * FROM customers %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	var customers []*model.Customer
	if err := r.GetDB().SelectContext(ctx, &customers, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, total, nil
}

func (r *customerRepository) Update(ctx context.Context, customer *model.Customer) error {
	query := `
		UPDATE customers
		SET first_name = $1, last_name = $2, phone_number = $3, email = $4,
		    vehicle_interest = $5, notes = $6, tags = $7, updated_at = $8
		WHERE id = $9 AND organization_id = $10
	`
	customer.UpdatedAt = time.Now()

	result, err := r.GetDB().ExecContext(ctx, query,
		customer.FirstName,
		customer.LastName,
		customer.PhoneNumber,
		customer.Email,
		customer.VehicleInterest,
		customer.Notes,
		customer.Tags,
		customer.UpdatedAt,
		customer.ID,
		customer.OrganizationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", translateErr(err))
	}
	return requireRows(result)
}

func (r *customerRepository) Delete(ctx context.Context, id, organizationID uuid.UUID) error {
	query := `DELETE FROM customers WHERE id = $1 AND organization_id = $2`
	result, err := r.GetDB().ExecContext(ctx, query, id, organizationID)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return requireRows(result)
}
