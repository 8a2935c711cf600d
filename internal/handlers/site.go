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

type SiteInfoHandler struct {
	store  SiteInfoStoreInterface
	events EventPublisherInterface
	logger *zap.Logger
}

func NewSiteInfoHandler(siteInfo SiteInfoStoreInterface, events EventPublisherInterface, logger *zap.Logger) *SiteInfoHandler {
	return &SiteInfoHandler{
		store:  siteInfo,
		events: events,
		logger: logger,
	}
}

func (h *SiteInfoHandler) Get(c *drift.Context) {
	info, err := h.store.Get(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to read site info", zap.Error(err))
		c.InternalServerError("failed to fetch site info")
		return
	}

	_ = c.JSON(http.StatusOK, info)
}

func (h *SiteInfoHandler) Update(c *drift.Context) {
	var req dto.UpdateSiteInfoRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	info, err := h.store.Update(c.Request.Context(), models.SiteInfoPatch{
		About:   req.About,
		Contact: req.Contact,
	})
	if err != nil {
		if errors.Is(err, store.ErrValidation) {
			c.BadRequest("about or contact is required")
			return
		}
		h.logger.Error("failed to update site info", zap.Error(err))
		c.InternalServerError("failed to update site info")
		return
	}

	h.events.SiteInfoUpdated(*info)

	_ = c.JSON(http.StatusOK, info)
}
