package handlers

import (
	"errors"
	"net/http"

	"github.com/dimitrije/folio-api/internal/models"
	"github.com/dimitrije/folio-api/internal/store"
	"github.com/dimitrije/folio-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type ArtworkHandler struct {
	store  ArtworkStoreInterface
	events EventPublisherInterface
	logger *zap.Logger
}

func NewArtworkHandler(artworks ArtworkStoreInterface, events EventPublisherInterface, logger *zap.Logger) *ArtworkHandler {
	return &ArtworkHandler{
		store:  artworks,
		events: events,
		logger: logger,
	}
}

func (h *ArtworkHandler) List(c *drift.Context) {
	artworks, err := h.store.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list artworks", zap.Error(err))
		c.InternalServerError("failed to fetch artworks")
		return
	}

	_ = c.JSON(http.StatusOK, artworks)
}

func (h *ArtworkHandler) Create(c *drift.Context) {
	var req dto.CreateArtworkRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	artwork, err := h.store.Create(c.Request.Context(), models.ArtworkInput{
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
		Image:       req.Image,
	})
	if err != nil {
		var ve *store.ValidationError
		if errors.As(err, &ve) {
			_ = c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{
				Error:  ve.Error(),
				Fields: ve.Fields,
			})
			return
		}
		h.logger.Error("failed to create artwork", zap.Error(err))
		c.InternalServerError("failed to create artwork")
		return
	}

	h.events.ArtworkCreated(*artwork)

	_ = c.JSON(http.StatusCreated, artwork)
}

func (h *ArtworkHandler) Delete(c *drift.Context) {
	id := c.QueryParam("id")
	if id == "" {
		c.BadRequest("artwork id is required")
		return
	}

	if err := h.store.DeleteByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.NotFound("artwork not found")
			return
		}
		h.logger.Error("failed to delete artwork", zap.String("id", id), zap.Error(err))
		c.InternalServerError("failed to delete artwork")
		return
	}

	h.events.ArtworkDeleted(id)

	_ = c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}
