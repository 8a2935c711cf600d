package handlers

import (
	"context"
	"io"

	"github.com/dimitrije/folio-api/internal/auth"
	"github.com/dimitrije/folio-api/internal/models"
	"github.com/dimitrije/folio-api/internal/services"
	"github.com/dimitrije/folio-api/internal/sse"
)

// ArtworkStoreInterface defines the collection operations used by ArtworkHandler
type ArtworkStoreInterface interface {
	List(ctx context.Context) ([]models.Artwork, error)
	Create(ctx context.Context, in models.ArtworkInput) (*models.Artwork, error)
	DeleteByID(ctx context.Context, id string) error
}

// SiteInfoStoreInterface defines the methods used by SiteInfoHandler
type SiteInfoStoreInterface interface {
	Get(ctx context.Context) (*models.SiteInfo, error)
	Update(ctx context.Context, patch models.SiteInfoPatch) (*models.SiteInfo, error)
}

// EventPublisherInterface receives change notifications after successful writes
type EventPublisherInterface interface {
	ArtworkCreated(artwork models.Artwork)
	ArtworkDeleted(id string)
	SiteInfoUpdated(info models.SiteInfo)
}

// EventHubInterface defines the methods used by EventsHandler
type EventHubInterface interface {
	Register(client *sse.Client) bool
	Unregister(client *sse.Client)
}

// ConsentProviderInterface starts OAuth logins
type ConsentProviderInterface interface {
	ConsentURL(provider string) (url string, state string, err error)
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateTokenPair(session *auth.Session, role auth.Role) (*services.TokenPair, error)
	ValidateRefreshToken(token string) (*services.Claims, error)
}

// MediaHostInterface stores uploaded files and returns their public URL
type MediaHostInterface interface {
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
}
