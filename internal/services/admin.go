package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dimitrije/folio-api/internal/auth"
	"github.com/dimitrije/folio-api/internal/database"
	"github.com/dimitrije/folio-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrAdminExists = errors.New("admin already exists")

// AdminService keeps admin accounts in the admin_users table. It is the
// Postgres-backed auth.AdminDirectory.
type AdminService struct {
	db *database.DB
}

func NewAdminService(db *database.DB) *AdminService {
	return &AdminService{db: db}
}

func (s *AdminService) Lookup(ctx context.Context, email string) (*models.AdminUser, error) {
	var admin models.AdminUser
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, email, password_hash, role, created_at
		FROM admin_users
		WHERE LOWER(email) = $1
	`, auth.NormalizeEmail(email)).Scan(
		&admin.ID, &admin.Email, &admin.PasswordHash, &admin.Role, &admin.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, auth.ErrUnknownAdmin
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}
	return &admin, nil
}

func (s *AdminService) Exists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM admin_users WHERE LOWER(email) = $1)
	`, auth.NormalizeEmail(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check admin: %w", err)
	}
	return exists, nil
}

// Create inserts an admin with an already hashed password. It returns
// ErrAdminExists when the email is taken.
func (s *AdminService) Create(ctx context.Context, email, passwordHash, role string) (*models.AdminUser, error) {
	if role == "" {
		role = models.RoleAdmin
	}

	var admin models.AdminUser
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO admin_users (id, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO NOTHING
		RETURNING id, email, password_hash, role, created_at
	`, uuid.New(), auth.NormalizeEmail(email), passwordHash, role).Scan(
		&admin.ID, &admin.Email, &admin.PasswordHash, &admin.Role, &admin.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAdminExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	return &admin, nil
}
