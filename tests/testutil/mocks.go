package testutil

import (
	"context"
	"io"

	"github.com/dimitrije/folio-api/internal/auth"
	"github.com/dimitrije/folio-api/internal/models"
	"github.com/dimitrije/folio-api/internal/services"
	"github.com/dimitrije/folio-api/internal/sse"
	"github.com/stretchr/testify/mock"
)

// MockArtworkStore mocks the artwork collection store
type MockArtworkStore struct {
	mock.Mock
}

func (m *MockArtworkStore) List(ctx context.Context) ([]models.Artwork, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Artwork), args.Error(1)
}

func (m *MockArtworkStore) Create(ctx context.Context, in models.ArtworkInput) (*models.Artwork, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Artwork), args.Error(1)
}

func (m *MockArtworkStore) DeleteByID(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSiteInfoStore mocks the site info document store
type MockSiteInfoStore struct {
	mock.Mock
}

func (m *MockSiteInfoStore) Get(ctx context.Context) (*models.SiteInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SiteInfo), args.Error(1)
}

func (m *MockSiteInfoStore) Update(ctx context.Context, patch models.SiteInfoPatch) (*models.SiteInfo, error) {
	args := m.Called(ctx, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SiteInfo), args.Error(1)
}

// MockEventPublisher mocks the change notification side of the SSE hub
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) ArtworkCreated(artwork models.Artwork) {
	m.Called(artwork)
}

func (m *MockEventPublisher) ArtworkDeleted(id string) {
	m.Called(id)
}

func (m *MockEventPublisher) SiteInfoUpdated(info models.SiteInfo) {
	m.Called(info)
}

// MockEventHub mocks client registration on the SSE hub
type MockEventHub struct {
	mock.Mock
}

func (m *MockEventHub) Register(client *sse.Client) bool {
	args := m.Called(client)
	return args.Bool(0)
}

func (m *MockEventHub) Unregister(client *sse.Client) {
	m.Called(client)
}

// MockAuthProvider mocks an auth.Provider
type MockAuthProvider struct {
	mock.Mock
}

func (m *MockAuthProvider) Verify(ctx context.Context, creds auth.Credentials) (*auth.Session, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Session), args.Error(1)
}

func (m *MockAuthProvider) GetRole(ctx context.Context, session *auth.Session) (auth.Role, error) {
	args := m.Called(ctx, session)
	return args.Get(0).(auth.Role), args.Error(1)
}

// MockConsentProvider mocks the OAuth consent URL builder
type MockConsentProvider struct {
	mock.Mock
}

func (m *MockConsentProvider) ConsentURL(provider string) (string, string, error) {
	args := m.Called(provider)
	return args.String(0), args.String(1), args.Error(2)
}

// MockJWTService mocks the JWTService
type MockJWTService struct {
	mock.Mock
}

func (m *MockJWTService) GenerateTokenPair(session *auth.Session, role auth.Role) (*services.TokenPair, error) {
	args := m.Called(session, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TokenPair), args.Error(1)
}

func (m *MockJWTService) ValidateRefreshToken(token string) (*services.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Claims), args.Error(1)
}

// MockMediaHost mocks the upload storage. Uploaded bytes are drained so the
// expectation can assert on them.
type MockMediaHost struct {
	mock.Mock
}

func (m *MockMediaHost) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	args := m.Called(ctx, name, data)
	return args.String(0), args.Error(1)
}
