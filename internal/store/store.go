// Package store persists the artwork collection and the site info document.
//
// Every backend linearizes mutations behind a single-writer lock and never
// exposes a partially written collection: the file backend replaces its file
// atomically, the SQL backends rely on transactions. Collections are listed
// most-recent-first.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/dimitrije/folio-api/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultTimeout = 5 * time.Second

type ArtworkStore interface {
	List(ctx context.Context) ([]models.Artwork, error)
	Create(ctx context.Context, in models.ArtworkInput) (*models.Artwork, error)
	DeleteByID(ctx context.Context, id string) error
}

type SiteInfoStore interface {
	Get(ctx context.Context) (*models.SiteInfo, error)
	Update(ctx context.Context, patch models.SiteInfoPatch) (*models.SiteInfo, error)
}

type options struct {
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time
	seed    []models.Artwork
}

type Option func(*options)

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTimeout bounds every store operation. Non-positive values are ignored.
// For the file backend the deadline is checked between steps: a write or
// fsync that hangs inside the kernel is not interrupted, but its result is
// discarded once the deadline has passed.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithSeed replaces the embedded seed collection.
func WithSeed(seed []models.Artwork) Option {
	return func(o *options) {
		o.seed = seed
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:  zap.NewNop(),
		timeout: DefaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.seed == nil {
		o.seed = Seed()
	}
	return o
}

// ValidateInput reports every blank required field at once.
func ValidateInput(in models.ArtworkInput) error {
	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(in.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(in.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(in.Image) == "" {
		missing = append(missing, "image")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

func newArtwork(in models.ArtworkInput, now time.Time) models.Artwork {
	return models.Artwork{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Category:    in.Category,
		Description: in.Description,
		Image:       in.Image,
		CreatedAt:   stamp(now),
	}
}

// stamp normalizes a creation time to what every backend can store
// losslessly: UTC at microsecond precision.
func stamp(now time.Time) time.Time {
	return now.UTC().Truncate(time.Microsecond)
}

// seedAt stamps the seed collection with the seeding time.
func seedAt(seed []models.Artwork, now time.Time) []models.Artwork {
	out := make([]models.Artwork, len(seed))
	for i, a := range seed {
		a.CreatedAt = stamp(now)
		out[i] = a
	}
	return out
}

func validatePatch(patch models.SiteInfoPatch) error {
	if patch.About == nil && patch.Contact == nil {
		return &ValidationError{Fields: []string{"about", "contact"}}
	}
	return nil
}

func applyPatch(info models.SiteInfo, patch models.SiteInfoPatch) models.SiteInfo {
	if patch.About != nil {
		info.About = *patch.About
	}
	if patch.Contact != nil {
		info.Contact = *patch.Contact
	}
	return normalizeSiteInfo(info)
}

// normalizeSiteInfo keeps list fields as empty arrays rather than null in JSON.
func normalizeSiteInfo(info models.SiteInfo) models.SiteInfo {
	if info.About.Description == nil {
		info.About.Description = []string{}
	}
	if info.About.Skills == nil {
		info.About.Skills = []string{}
	}
	if info.Contact.AvailableFor == nil {
		info.Contact.AvailableFor = []string{}
	}
	return info
}

func cloneArtworks(in []models.Artwork) []models.Artwork {
	out := make([]models.Artwork, len(in))
	copy(out, in)
	return out
}
