package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/voicedrop/voicedrop-api/internal/model"
	"github.com/voicedrop/voicedrop-api/internal/repository"
)

const bcryptCost = 12

type postgresProvider struct {
	db       *sqlx.DB
	userRepo repository.UserRepository
}

// NewPostgresProvider returns the production identity backend: bcrypt
// credentials in the credentials table, profiles in users.
func NewPostgresProvider(db *sqlx.DB, userRepo repository.UserRepository) Provider {
	return &postgresProvider{db: db, userRepo: userRepo}
}

type credential struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

func (p *postgresProvider) SignIn(ctx context.Context, email, password string) (*model.User, error) {
	var cred credential
	query := `SELECT * FROM credentials WHERE lower(email) = lower($1)`
	if err := p.db.GetContext(ctx, &cred, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up credential: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := p.userRepo.Get(ctx, cred.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return user, nil
}

func (p *postgresProvider) SignUp(ctx context.Context, email, password string) (uuid.UUID, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id := uuid.New()
	query := `INSERT INTO credentials (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := p.db.ExecContext(ctx, query, id, email, string(hash), time.Now()); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return uuid.Nil, ErrEmailTaken
		}
		return uuid.Nil, fmt.Errorf("failed to create credential: %w", err)
	}
	return id, nil
}

func (p *postgresProvider) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM credentials WHERE id = $1`
	if _, err := p.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}
