package handlers

import (
	"errors"
	"strings"

	"whutmovie/internal/services"
	"whutmovie/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const internalErrorMessage = "Internal server error"

// respondError maps service errors onto the HTTP error taxonomy. Anything
// unrecognised is logged and hidden behind a generic 500.
func respondError(c *fiber.Ctx, logger *logrus.Logger, err error, action string) error {
	var reqErr *utils.RequestValidationError
	if errors.As(err, &reqErr) {
		return utils.ErrorWithDetailsResponse(c, fiber.StatusBadRequest, reqErr.Error(), map[string]interface{}{
			"fields": reqErr.Fields,
		})
	}

	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return utils.ErrorWithDetailsResponse(c, fiber.StatusBadRequest, validationErr.Message, fieldDetails(validationErr.Field))
	}

	var conflictErr *services.ConflictError
	if errors.As(err, &conflictErr) {
		return utils.ErrorWithDetailsResponse(c, fiber.StatusConflict, conflictErr.Message, fieldDetails(conflictErr.Field))
	}

	var notFoundErr *services.NotFoundError
	if errors.As(err, &notFoundErr) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, capitalize(notFoundErr.Error()))
	}

	var invariantErr *services.InvariantError
	if errors.As(err, &invariantErr) {
		return utils.ErrorWithDetailsResponse(c, fiber.StatusBadRequest, invariantErr.Message, invariantErr.Details)
	}

	if errors.Is(err, services.ErrInvalidCredentials) {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid username or password")
	}

	logger.WithError(err).WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
	}).Error(action)
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, internalErrorMessage)
}

func badBody(c *fiber.Ctx) error {
	return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
}

func fieldDetails(field string) map[string]interface{} {
	if field == "" {
		return nil
	}
	return map[string]interface{}{"field": field}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// pageParams reads page and pageSize, clamped to the shared bounds.
func pageParams(c *fiber.Ctx, fallbackSize int) (int, int) {
	return utils.NormalizePage(c.QueryInt("page", 1), c.QueryInt("pageSize", fallbackSize), fallbackSize)
}
