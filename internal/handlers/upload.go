package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/dimitrije/folio-api/internal/media"
	"github.com/dimitrije/folio-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

// multipartOverhead leaves room for boundaries and part headers around the
// file itself.
const multipartOverhead = 64 << 10

type UploadHandler struct {
	host     MediaHostInterface
	maxBytes int64
	logger   *zap.Logger
}

func NewUploadHandler(host MediaHostInterface, maxBytes int64, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		host:     host,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

func (h *UploadHandler) Upload(c *drift.Context) {
	c.Request.Body = http.MaxBytesReader(nil, c.Request.Body, h.maxBytes+multipartOverhead)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.tooLarge(c)
			return
		}
		c.BadRequest("file is required")
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		h.tooLarge(c)
		return
	}

	head := make([]byte, media.SniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		c.BadRequest("file is empty or unreadable")
		return
	}
	head = head[:n]

	ext, err := media.DetectImage(head)
	if err != nil {
		c.BadRequest("unsupported file type: only jpeg, png, gif and webp images are accepted")
		return
	}

	name := uuid.New().String() + ext
	url, err := h.host.Upload(c.Request.Context(), name, io.MultiReader(bytes.NewReader(head), file))
	if err != nil {
		h.logger.Error("failed to store upload", zap.String("name", name), zap.Error(err))
		c.InternalServerError("failed to store file")
		return
	}

	h.logger.Info("file uploaded", zap.String("name", name), zap.Int64("size", header.Size))

	_ = c.JSON(http.StatusCreated, dto.UploadResponse{URL: url})
}

func (h *UploadHandler) tooLarge(c *drift.Context) {
	_ = c.JSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: "file exceeds the upload size limit"})
}
