package middleware

import (
	"whutmovie/internal/metrics"
	"whutmovie/internal/services"

	"github.com/gofiber/fiber/v2"
)

const cacheHeader = "X-Cache"

// PageCache serves public GET responses of one page group from Redis.
// Requests carrying a session cookie bypass the cache in both directions so
// that admin-only fields never reach anonymous visitors.
func PageCache(cache *services.PageCacheService, group string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !cache.Enabled() || c.Method() != fiber.MethodGet {
			return c.Next()
		}
		if c.Cookies(SessionCookieName) != "" {
			metrics.PageCacheRequests.WithLabelValues("bypass").Inc()
			c.Set(cacheHeader, "BYPASS")
			return c.Next()
		}

		key := cache.Key(group, c.OriginalURL())
		if body, ok := cache.Get(c.Context(), key); ok {
			metrics.PageCacheRequests.WithLabelValues("hit").Inc()
			c.Set(cacheHeader, "HIT")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(fiber.StatusOK).Send(body)
		}

		metrics.PageCacheRequests.WithLabelValues("miss").Inc()
		c.Set(cacheHeader, "MISS")
		if err := c.Next(); err != nil {
			return err
		}
		if c.Response().StatusCode() == fiber.StatusOK {
			body := append([]byte(nil), c.Response().Body()...)
			cache.Set(c.Context(), group, key, body)
		}
		return nil
	}
}
