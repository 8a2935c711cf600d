// Package auth verifies admin credentials and resolves the role of a
// verified session. Password and OAuth logins are separate Providers
// behind a Mux, both backed by an AdminDirectory.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/dimitrije/folio-api/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownProvider    = errors.New("unknown identity provider")
	ErrInvalidState       = errors.New("invalid or expired oauth state")
	ErrUnknownAdmin       = errors.New("admin not found")
)

type Role string

const (
	RoleAdmin  Role = models.RoleAdmin
	RoleViewer Role = models.RoleViewer
)

const PasswordProviderName = "password"

// Credentials carry either an email/password pair or an OAuth
// provider/code/state triple.
type Credentials struct {
	Email    string
	Password string

	Provider string
	Code     string
	State    string
}

func (c Credentials) IsOAuth() bool {
	return c.Provider != "" && c.Provider != PasswordProviderName
}

type Session struct {
	Subject  string `json:"subject"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Provider string `json:"provider"`
}

type Provider interface {
	Verify(ctx context.Context, creds Credentials) (*Session, error)
	GetRole(ctx context.Context, session *Session) (Role, error)
}

// AdminDirectory looks admins up by email. Lookup returns ErrUnknownAdmin
// when no admin has that email.
type AdminDirectory interface {
	Lookup(ctx context.Context, email string) (*models.AdminUser, error)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// roleFor resolves the directory role for email. Anyone the directory does
// not know is a viewer.
func roleFor(ctx context.Context, dir AdminDirectory, email string) (Role, error) {
	admin, err := dir.Lookup(ctx, NormalizeEmail(email))
	if errors.Is(err, ErrUnknownAdmin) {
		return RoleViewer, nil
	}
	if err != nil {
		return "", err
	}
	if admin.Role == "" {
		return RoleAdmin, nil
	}
	return Role(admin.Role), nil
}

// Mux dispatches credentials to the password provider or to the OAuth
// provider depending on their shape.
type Mux struct {
	Password Provider
	OAuth    Provider
}

func (m *Mux) Verify(ctx context.Context, creds Credentials) (*Session, error) {
	if creds.IsOAuth() {
		if m.OAuth == nil {
			return nil, ErrUnknownProvider
		}
		return m.OAuth.Verify(ctx, creds)
	}
	if m.Password == nil {
		return nil, ErrUnknownProvider
	}
	return m.Password.Verify(ctx, creds)
}

func (m *Mux) GetRole(ctx context.Context, session *Session) (Role, error) {
	if session.Provider != PasswordProviderName {
		if m.OAuth == nil {
			return "", ErrUnknownProvider
		}
		return m.OAuth.GetRole(ctx, session)
	}
	if m.Password == nil {
		return "", ErrUnknownProvider
	}
	return m.Password.GetRole(ctx, session)
}
