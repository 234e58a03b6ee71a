package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"whutmovie/internal/models"
	"whutmovie/internal/services"
	"whutmovie/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const liveToken = "1111111111111111111111111111111111111111111111111111111111111111"

type stubAuth struct {
	principal *services.Principal
	err       error
	peeked    int
	resolved  int
}

func (s *stubAuth) Authenticate(context.Context, string, string) (*models.AdminUser, error) {
	return nil, nil
}

func (s *stubAuth) Login(context.Context, string, string) (*models.Session, error) {
	return nil, services.ErrInvalidCredentials
}

func (s *stubAuth) Logout(context.Context, string) error { return nil }

func (s *stubAuth) CurrentPrincipal(_ context.Context, token string) (*services.Principal, error) {
	s.resolved++
	if token != liveToken {
		return nil, s.err
	}
	return s.principal, s.err
}

func (s *stubAuth) PeekPrincipal(_ context.Context, token string) (*services.Principal, error) {
	s.peeked++
	if token != liveToken {
		return nil, nil
	}
	return s.principal, nil
}

func newApp(auth *Auth) *fiber.App {
	app := fiber.New()
	app.Use(AdminGate())
	app.Get(AdminLoginPath, func(c *fiber.Ctx) error { return c.SendString("login") })
	app.Get("/admin/*", auth.RequireAdmin(Redirect), func(c *fiber.Ctx) error {
		return c.SendString(CurrentPrincipal(c).Username)
	})
	app.Get("/api/private", auth.RequireAdmin(Unauthorized), func(c *fiber.Ctx) error {
		return c.SendString(CurrentPrincipal(c).Username)
	})
	app.Get("/api/public", auth.OptionalAdmin(), func(c *fiber.Ctx) error {
		if p := CurrentPrincipal(c); p != nil {
			return c.SendString(p.Username)
		}
		return c.SendString("anonymous")
	})
	return app
}

func get(t *testing.T, app *fiber.App, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestAdminGateChecksCookiePresenceOnly(t *testing.T) {
	stub := &stubAuth{principal: &services.Principal{Username: "curator"}}
	app := newApp(NewAuth(stub, false, testutil.NewLogger()))

	resp := get(t, app, "/admin/categories", "")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin/login?redirect=%2Fadmin%2Fcategories", resp.Header.Get("Location"))
	assert.Zero(t, stub.resolved, "the gate must not resolve sessions")

	resp = get(t, app, AdminLoginPath, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = get(t, app, "/admin/categories", liveToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, stub.resolved)
}

func TestAdminGateIgnoresOtherPaths(t *testing.T) {
	stub := &stubAuth{}
	app := newApp(NewAuth(stub, false, testutil.NewLogger()))

	resp := get(t, app, "/api/public", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = get(t, app, "/administrator", "")
	assert.NotEqual(t, http.StatusFound, resp.StatusCode)
}

func TestRequireAdminUnauthorized(t *testing.T) {
	stub := &stubAuth{principal: &services.Principal{Username: "curator"}}
	app := newApp(NewAuth(stub, true, testutil.NewLogger()))

	resp := get(t, app, "/api/private", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = get(t, app, "/api/private", "ffff")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var cleared *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookieName {
			cleared = c
		}
	}
	require.NotNil(t, cleared, "a dead cookie is cleared")
	assert.Empty(t, cleared.Value)
	assert.True(t, cleared.Expires.Before(time.Now()))

	resp = get(t, app, "/api/private", liveToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireAdminStoreFailure(t *testing.T) {
	stub := &stubAuth{err: errors.New("db down")}
	app := newApp(NewAuth(stub, false, testutil.NewLogger()))

	resp := get(t, app, "/api/private", liveToken)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestOptionalAdminPeeks(t *testing.T) {
	stub := &stubAuth{principal: &services.Principal{Username: "curator"}}
	app := newApp(NewAuth(stub, false, testutil.NewLogger()))

	get(t, app, "/api/public", "")
	assert.Zero(t, stub.peeked)

	get(t, app, "/api/public", liveToken)
	assert.Equal(t, 1, stub.peeked)
	assert.Zero(t, stub.resolved)
}

func TestPageCacheDisabledPassesThrough(t *testing.T) {
	app := fiber.New()
	calls := 0
	app.Get("/api/v1/movies", PageCache(services.NewPageCacheService(nil, 0, nil), services.PageGroupMovies), func(c *fiber.Ctx) error {
		calls++
		return c.SendString("ok")
	})

	for i := 0; i < 2; i++ {
		resp := get(t, app, "/api/v1/movies", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, resp.Header.Get("X-Cache"))
	}
	assert.Equal(t, 2, calls)
}
