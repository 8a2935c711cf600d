package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dimitrije/folio-api/internal/oauth"
)

const StateTTL = 10 * time.Minute

type pendingState struct {
	provider string
	expires  time.Time
}

// OAuthProvider verifies authorization codes through the configured
// identity providers. Consent states are single use and expire after
// StateTTL.
type OAuthProvider struct {
	providers map[string]oauth.Provider
	dir       AdminDirectory
	now       func() time.Time

	mu     sync.Mutex
	states map[string]pendingState
}

func NewOAuthProvider(dir AdminDirectory, providers ...oauth.Provider) *OAuthProvider {
	p := &OAuthProvider{
		providers: make(map[string]oauth.Provider, len(providers)),
		dir:       dir,
		now:       time.Now,
		states:    make(map[string]pendingState),
	}
	for _, provider := range providers {
		p.providers[provider.Name()] = provider
	}
	return p
}

func (p *OAuthProvider) Has(name string) bool {
	_, ok := p.providers[name]
	return ok
}

// ConsentURL records a fresh state for provider and returns the URL the
// browser should visit.
func (p *OAuthProvider) ConsentURL(name string) (string, string, error) {
	provider, ok := p.providers[name]
	if !ok {
		return "", "", ErrUnknownProvider
	}

	state, err := oauth.GenerateState()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate state: %w", err)
	}

	now := p.now()
	p.mu.Lock()
	for s, pending := range p.states {
		if now.After(pending.expires) {
			delete(p.states, s)
		}
	}
	p.states[state] = pendingState{provider: name, expires: now.Add(StateTTL)}
	p.mu.Unlock()

	return provider.GetConsentURL(state), state, nil
}

func (p *OAuthProvider) Verify(ctx context.Context, creds Credentials) (*Session, error) {
	provider, ok := p.providers[creds.Provider]
	if !ok {
		return nil, ErrUnknownProvider
	}
	if creds.Code == "" {
		return nil, ErrInvalidCredentials
	}
	if !p.consumeState(creds.State, creds.Provider) {
		return nil, ErrInvalidState
	}

	info, err := provider.ExchangeCode(ctx, creds.Code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	email := NormalizeEmail(info.Email)
	return &Session{
		Subject:  email,
		Email:    email,
		Name:     info.Name,
		Provider: provider.Name(),
	}, nil
}

func (p *OAuthProvider) GetRole(ctx context.Context, session *Session) (Role, error) {
	return roleFor(ctx, p.dir, session.Email)
}

func (p *OAuthProvider) consumeState(state, provider string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	pending, ok := p.states[state]
	if !ok {
		return false
	}
	delete(p.states, state)
	return pending.provider == provider && !p.now().After(pending.expires)
}
