package middleware

import (
	"net/url"
	"strings"
	"time"

	"whutmovie/internal/services"
	"whutmovie/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// SessionCookieName carries the opaque session token.
const SessionCookieName = "whutmovie_session"

const (
	AdminPath      = utils.DefaultAdminPath
	AdminLoginPath = "/admin/login"

	principalKey = "principal"
)

// AuthMode selects what RequireAdmin does with an anonymous request.
type AuthMode int

const (
	// Unauthorized answers 401 with the error envelope. Used by the JSON API.
	Unauthorized AuthMode = iota
	// Redirect sends the browser to the login page.
	Redirect
)

type Auth struct {
	service      services.AuthService
	secureCookie bool
	logger       *logrus.Logger
}

func NewAuth(service services.AuthService, secureCookie bool, logger *logrus.Logger) *Auth {
	return &Auth{
		service:      service,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// AdminGate is the coarse first check for admin pages: it only looks for the
// session cookie and never touches the database. The login page is exempt.
// Real authorization happens in RequireAdmin.
func AdminGate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if !isAdminPagePath(path) || isLoginPath(path) {
			return c.Next()
		}
		if c.Cookies(SessionCookieName) != "" {
			return c.Next()
		}
		return redirectToLogin(c, path)
	}
}

// RequireAdmin resolves the session cookie into a principal and stores it for
// CurrentPrincipal. Expired sessions are deleted on the way.
func (a *Auth) RequireAdmin(mode AuthMode) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(SessionCookieName)
		principal, err := a.service.CurrentPrincipal(c.Context(), token)
		if err != nil {
			a.logger.WithError(err).Error("Failed to resolve session")
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error")
		}

		if principal == nil {
			if token != "" {
				a.ClearCookie(c)
			}
			if mode == Redirect {
				return redirectToLogin(c, c.Path())
			}
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized")
		}

		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// OptionalAdmin attaches a principal when the request carries a live
// session and lets anonymous requests through. It never deletes sessions.
func (a *Auth) OptionalAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(SessionCookieName)
		if token == "" {
			return c.Next()
		}
		principal, err := a.service.PeekPrincipal(c.Context(), token)
		if err != nil {
			a.logger.WithError(err).Warn("Failed to peek session")
			return c.Next()
		}
		if principal != nil {
			c.Locals(principalKey, principal)
		}
		return c.Next()
	}
}

// CurrentPrincipal returns the principal stored by RequireAdmin or
// OptionalAdmin, or nil.
func CurrentPrincipal(c *fiber.Ctx) *services.Principal {
	principal, _ := c.Locals(principalKey).(*services.Principal)
	return principal
}

func (a *Auth) SetCookie(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   a.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (a *Auth) ClearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   a.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func redirectToLogin(c *fiber.Ctx, from string) error {
	return c.Redirect(AdminLoginPath+"?redirect="+url.QueryEscape(from), fiber.StatusFound)
}

func isAdminPagePath(path string) bool {
	return path == AdminPath || strings.HasPrefix(path, AdminPath+"/")
}

func isLoginPath(path string) bool {
	return path == AdminLoginPath || strings.HasPrefix(path, AdminLoginPath+"/")
}
