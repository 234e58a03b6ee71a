package handlers

import (
	"whutmovie/internal/services"
	"whutmovie/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}

type ContactHandler struct {
	service services.ContactService
	logger  *logrus.Logger
}

func NewContactHandler(service services.ContactService, logger *logrus.Logger) *ContactHandler {
	return &ContactHandler{service: service, logger: logger}
}

// SubmitContact godoc
// @Summary Send a message to the curators
// @Tags contact
// @Accept json
// @Produce json
// @Param message body ContactRequest true "Message"
// @Success 202 {object} utils.SuccessBody
// @Failure 400 {object} utils.ErrorBody
// @Router /contact [post]
func (h *ContactHandler) SubmitContact(c *fiber.Ctx) error {
	var req ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return respondError(c, h.logger, err, "Invalid contact message")
	}

	err := h.service.Submit(c.Context(), services.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		return respondError(c, h.logger, err, "Failed to submit contact message")
	}
	return utils.SuccessResponse(c, fiber.StatusAccepted, fiber.Map{"received": true})
}
