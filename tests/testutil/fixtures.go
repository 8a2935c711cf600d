package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dimitrije/folio-api/internal/auth"
	"github.com/dimitrije/folio-api/internal/database"
	"github.com/dimitrije/folio-api/internal/models"
	"github.com/google/uuid"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateAdmin inserts an admin user with default values
func (f *Fixtures) CreateAdmin(t *testing.T, opts ...AdminOption) *models.AdminUser {
	t.Helper()
	f.counter++

	admin := &models.AdminUser{
		ID:    uuid.New(),
		Email: fmt.Sprintf("admin%d@example.com", f.counter),
		Role:  models.RoleAdmin,
	}

	for _, opt := range opts {
		opt(admin)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO admin_users (id, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, admin.ID, admin.Email, admin.PasswordHash, admin.Role).Scan(&admin.CreatedAt)
	if err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}

	return admin
}

// AdminOption configures a test admin
type AdminOption func(*models.AdminUser)

// WithAdminEmail sets the admin's email
func WithAdminEmail(email string) AdminOption {
	return func(a *models.AdminUser) {
		a.Email = email
	}
}

// WithAdminPassword stores a bcrypt hash of password
func WithAdminPassword(t *testing.T, password string) AdminOption {
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return func(a *models.AdminUser) {
		a.PasswordHash = hash
	}
}

// WithAdminRole sets the admin's role
func WithAdminRole(role string) AdminOption {
	return func(a *models.AdminUser) {
		a.Role = role
	}
}

// CreateArtwork inserts an artwork directly, bypassing the store's seeding
func (f *Fixtures) CreateArtwork(t *testing.T, opts ...ArtworkOption) *models.Artwork {
	t.Helper()
	f.counter++

	artwork := &models.Artwork{
		ID:          uuid.New().String(),
		Title:       fmt.Sprintf("Artwork %d", f.counter),
		Category:    "Environment",
		Description: fmt.Sprintf("Test artwork %d", f.counter),
		Image:       fmt.Sprintf("/images/cg (%d).jpg", f.counter),
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}

	for _, opt := range opts {
		opt(artwork)
	}

	ctx := context.Background()
	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO artworks (id, title, category, description, image, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, artwork.ID, artwork.Title, artwork.Category, artwork.Description, artwork.Image, artwork.CreatedAt)
	if err != nil {
		t.Fatalf("failed to create artwork: %v", err)
	}

	return artwork
}

// ArtworkOption configures a test artwork
type ArtworkOption func(*models.Artwork)

// WithArtworkTitle sets the artwork's title
func WithArtworkTitle(title string) ArtworkOption {
	return func(a *models.Artwork) {
		a.Title = title
	}
}

// WithArtworkCategory sets the artwork's category
func WithArtworkCategory(category string) ArtworkOption {
	return func(a *models.Artwork) {
		a.Category = category
	}
}

// MarkSeeded records that the artworks seed already ran so stores under
// test start from an empty collection.
func (f *Fixtures) MarkSeeded(t *testing.T) {
	t.Helper()
	_, err := f.db.Pool.Exec(context.Background(),
		`INSERT INTO store_state (key) VALUES ('artworks_seeded') ON CONFLICT DO NOTHING`)
	if err != nil {
		t.Fatalf("failed to mark seeded: %v", err)
	}
}
