package auth

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is used for every stored admin password.
const BcryptCost = 12

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// PasswordProvider checks an email/password pair against the bcrypt hash
// held by the directory.
type PasswordProvider struct {
	dir AdminDirectory
}

func NewPasswordProvider(dir AdminDirectory) *PasswordProvider {
	return &PasswordProvider{dir: dir}
}

func (p *PasswordProvider) Verify(ctx context.Context, creds Credentials) (*Session, error) {
	email := NormalizeEmail(creds.Email)
	if email == "" || creds.Password == "" {
		return nil, ErrInvalidCredentials
	}

	admin, err := p.dir.Lookup(ctx, email)
	if errors.Is(err, ErrUnknownAdmin) {
		// unknown emails still pay for one comparison
		_ = bcrypt.CompareHashAndPassword(fallbackHash(), []byte(creds.Password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if admin.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &Session{
		Subject:  admin.Email,
		Email:    admin.Email,
		Provider: PasswordProviderName,
	}, nil
}

func (p *PasswordProvider) GetRole(ctx context.Context, session *Session) (Role, error) {
	return roleFor(ctx, p.dir, session.Email)
}

// HashPassword hashes a plaintext password for storage in a directory.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func fallbackHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("folio-unknown-admin"), BcryptCost)
	})
	return dummyHash
}
