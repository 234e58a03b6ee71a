package handlers

import (
	"time"

	"whutmovie/internal/middleware"
	"whutmovie/internal/models"
	"whutmovie/internal/services"
	"whutmovie/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required" example:"admin"`
	Password string `json:"password" validate:"required"`
	Redirect string `json:"redirect,omitempty" example:"/admin"`
}

type LoginResponse struct {
	User      *models.AdminUser `json:"user"`
	ExpiresAt time.Time         `json:"expiresAt"`
	Redirect  string            `json:"redirect"`
}

type AuthHandler struct {
	service services.AuthService
	cookies *middleware.Auth
	logger  *logrus.Logger
}

func NewAuthHandler(service services.AuthService, cookies *middleware.Auth, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		cookies: cookies,
		logger:  logger,
	}
}

// LoginPage godoc
// @Summary Login page descriptor
// @Description Public entry point of the admin area. Echoes the sanitized redirect target.
// @Tags auth
// @Produce json
// @Param redirect query string false "Where to go after login"
// @Success 200 {object} utils.SuccessBody
// @Router /admin/login [get]
func (h *AuthHandler) LoginPage(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"loginEndpoint": "/api/v1/admin/login",
		"redirect":      utils.SanitizeRedirect(c.Query("redirect")),
		"authenticated": middleware.CurrentPrincipal(c) != nil,
	})
}

// Login godoc
// @Summary Sign in
// @Description Sets the whutmovie_session cookie on success.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} utils.SuccessBody
// @Failure 400 {object} utils.ErrorBody
// @Failure 401 {object} utils.ErrorBody
// @Router /admin/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return respondError(c, h.logger, err, "Invalid login")
	}

	session, err := h.service.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return respondError(c, h.logger, err, "Login failed")
	}

	h.cookies.SetCookie(c, session.Token, session.ExpiresAt)
	return utils.SuccessResponse(c, fiber.StatusOK, LoginResponse{
		User:      session.User,
		ExpiresAt: session.ExpiresAt,
		Redirect:  utils.SanitizeRedirect(req.Redirect),
	})
}

// Logout godoc
// @Summary Sign out
// @Description Deletes the session if any and always clears the cookie.
// @Tags auth
// @Produce json
// @Success 200 {object} utils.SuccessBody
// @Router /admin/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token := c.Cookies(middleware.SessionCookieName)
	if err := h.service.Logout(c.Context(), token); err != nil {
		h.logger.WithError(err).Warn("Failed to delete session on logout")
	}
	h.cookies.ClearCookie(c)
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"loggedOut": true})
}

// Session godoc
// @Summary Current admin
// @Tags auth
// @Produce json
// @Success 200 {object} utils.SuccessBody
// @Failure 401 {object} utils.ErrorBody
// @Router /admin/session [get]
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, fiber.StatusOK, middleware.CurrentPrincipal(c))
}
