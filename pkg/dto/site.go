package dto

import "github.com/dimitrije/folio-api/internal/models"

// UpdateSiteInfoRequest replaces whichever sections are present.
type UpdateSiteInfoRequest struct {
	About   *models.About   `json:"about,omitempty"`
	Contact *models.Contact `json:"contact,omitempty"`
}
