package handlers

import (
	"whutmovie/internal/middleware"
	"whutmovie/internal/services"
	"whutmovie/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,max=64" example:"curator"`
	Password string `json:"password" validate:"required,min=8"`
}

type UpdateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,max=64"`
	Password *string `json:"password" validate:"omitempty,min=8"`
}

type HashPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

type UserHandler struct {
	service services.UserService
	logger  *logrus.Logger
}

func NewUserHandler(service services.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{service: service, logger: logger}
}

// ListUsers godoc
// @Summary List admin users
// @Tags admin
// @Produce json
// @Success 200 {object} utils.SuccessBody
// @Failure 401 {object} utils.ErrorBody
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.service.List(c.Context())
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list admin users")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, users)
}

// GetUser godoc
// @Summary Get an admin user
// @Tags admin
// @Produce json
// @Param id path string true "User id"
// @Success 200 {object} utils.SuccessBody
// @Failure 404 {object} utils.ErrorBody
// @Router /admin/users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to get admin user")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, user)
}

// CreateUser godoc
// @Summary Create an admin user
// @Tags admin
// @Accept json
// @Produce json
// @Param user body CreateUserRequest true "User"
// @Success 201 {object} utils.SuccessBody
// @Failure 400 {object} utils.ErrorBody
// @Failure 409 {object} utils.ErrorBody
// @Router /admin/users [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return respondError(c, h.logger, err, "Invalid admin user")
	}

	user, err := h.service.Create(c.Context(), services.CreateUserInput{Username: req.Username, Password: req.Password})
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create admin user")
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, user)
}

// UpdateUser godoc
// @Summary Update an admin user
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User id"
// @Param user body UpdateUserRequest true "Fields to change"
// @Success 200 {object} utils.SuccessBody
// @Failure 400 {object} utils.ErrorBody
// @Failure 404 {object} utils.ErrorBody
// @Failure 409 {object} utils.ErrorBody
// @Router /admin/users/{id} [patch]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return respondError(c, h.logger, err, "Invalid admin user")
	}

	user, err := h.service.Update(c.Context(), c.Params("id"), services.UpdateUserInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, h.logger, err, "Failed to update admin user")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, user)
}

// DeleteUser godoc
// @Summary Delete an admin user
// @Description Refuses the last admin and the caller's own account. Drops the user's sessions.
// @Tags admin
// @Produce json
// @Param id path string true "User id"
// @Success 200 {object} utils.SuccessBody
// @Failure 400 {object} utils.ErrorBody
// @Failure 404 {object} utils.ErrorBody
// @Router /admin/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), middleware.CurrentPrincipal(c), c.Params("id")); err != nil {
		return respondError(c, h.logger, err, "Failed to delete admin user")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"deleted": true})
}

// HashPassword godoc
// @Summary Hash a password
// @Description Returns a bcrypt hash, for seeding credentials by hand.
// @Tags admin
// @Accept json
// @Produce json
// @Param body body HashPasswordRequest true "Password"
// @Success 200 {object} utils.SuccessBody
// @Failure 400 {object} utils.ErrorBody
// @Router /admin/hash-password [post]
func (h *UserHandler) HashPassword(c *fiber.Ctx) error {
	var req HashPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return respondError(c, h.logger, err, "Invalid password")
	}

	hash, err := h.service.HashPassword(req.Password)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to hash password")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"hash": hash})
}
