package handlers

import (
	"whutmovie/internal/services"
	"whutmovie/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type UploadHandler struct {
	posters services.PosterStorage
	logger  *logrus.Logger
}

// NewUploadHandler accepts a nil storage; presign then answers 503.
func NewUploadHandler(posters services.PosterStorage, logger *logrus.Logger) *UploadHandler {
	return &UploadHandler{
		posters: posters,
		logger:  logger,
	}
}

// GetPresignedURL godoc
// @Summary Presign a poster upload
// @Description Returns a short-lived PUT URL and the public URL to store as posterUrl
// @Tags admin
// @Produce json
// @Param filename query string true "Original file name"
// @Param contentType query string false "image/jpeg, image/png or image/webp" default(image/jpeg)
// @Success 200 {object} utils.SuccessBody
// @Failure 400 {object} utils.ErrorBody
// @Failure 503 {object} utils.ErrorBody
// @Router /admin/uploads/presign [get]
func (h *UploadHandler) GetPresignedURL(c *fiber.Ctx) error {
	if h.posters == nil {
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, "Poster uploads are not configured")
	}

	upload, err := h.posters.PresignUpload(c.Context(), c.Query("filename"), c.Query("contentType", "image/jpeg"))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to generate presigned URL")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, upload)
}
