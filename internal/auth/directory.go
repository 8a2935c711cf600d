package auth

import (
	"context"
	"errors"

	"github.com/dimitrije/folio-api/internal/models"
)

// StaticDirectory holds a single admin configured through the environment.
type StaticDirectory struct {
	admin *models.AdminUser
}

// NewStaticDirectory returns an empty directory when email is blank. An
// admin without a password hash can still sign in through OAuth.
func NewStaticDirectory(email, passwordHash string) *StaticDirectory {
	email = NormalizeEmail(email)
	if email == "" {
		return &StaticDirectory{}
	}
	return &StaticDirectory{admin: &models.AdminUser{
		Email:        email,
		PasswordHash: passwordHash,
		Role:         models.RoleAdmin,
	}}
}

func (d *StaticDirectory) Lookup(_ context.Context, email string) (*models.AdminUser, error) {
	if d.admin == nil || NormalizeEmail(email) != d.admin.Email {
		return nil, ErrUnknownAdmin
	}
	admin := *d.admin
	return &admin, nil
}

// ChainDirectory consults each directory in order and returns the first hit.
type ChainDirectory []AdminDirectory

func (c ChainDirectory) Lookup(ctx context.Context, email string) (*models.AdminUser, error) {
	for _, dir := range c {
		admin, err := dir.Lookup(ctx, email)
		if err == nil {
			return admin, nil
		}
		if !errors.Is(err, ErrUnknownAdmin) {
			return nil, err
		}
	}
	return nil, ErrUnknownAdmin
}
