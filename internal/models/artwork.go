package models

import "time"

type Artwork struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Category    string    `json:"category" yaml:"category"`
	Description string    `json:"description" yaml:"description"`
	Image       string    `json:"image" yaml:"image"`
	CreatedAt   time.Time `json:"createdAt" yaml:"-"`
}

// ArtworkInput is the client-submitted part of an artwork. The store assigns
// the id and creation time.
type ArtworkInput struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Image       string `json:"image"`
}
