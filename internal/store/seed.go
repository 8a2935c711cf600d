package store

import (
	_ "embed"
	"fmt"

	"github.com/dimitrije/folio-api/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

type seedDocument struct {
	Artworks []models.Artwork `yaml:"artworks"`
}

// ParseSeed decodes a seed document and checks that its ids are unique and
// its records complete.
func ParseSeed(data []byte) ([]models.Artwork, error) {
	var doc seedDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}

	seen := make(map[string]bool, len(doc.Artworks))
	for i, a := range doc.Artworks {
		if a.ID == "" {
			return nil, fmt.Errorf("seed entry %d has no id", i)
		}
		if seen[a.ID] {
			return nil, fmt.Errorf("duplicate seed id %q", a.ID)
		}
		seen[a.ID] = true

		if err := ValidateInput(models.ArtworkInput{
			Title:       a.Title,
			Category:    a.Category,
			Description: a.Description,
			Image:       a.Image,
		}); err != nil {
			return nil, fmt.Errorf("seed entry %q: %w", a.ID, err)
		}
	}
	return doc.Artworks, nil
}

// Seed returns a fresh copy of the embedded seed collection.
func Seed() []models.Artwork {
	artworks, err := ParseSeed(seedYAML)
	if err != nil {
		panic(err)
	}
	return artworks
}
