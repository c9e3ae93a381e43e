package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// NoCacheHeaders marks responses as never cacheable. Used on subscription and
// principal data, which changes on every write.
func NoCacheHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-store, no-cache, must-revalidate")
		c.Set(fiber.HeaderPragma, "no-cache")
		c.Set(fiber.HeaderExpires, "0")
		return c.Next()
	}
}

// PrivateCacheHeaders lets the browser keep per-user data such as the dashboard
func PrivateCacheHeaders(maxAge time.Duration) fiber.Handler {
	return cacheFor("private", maxAge)
}

// PublicCacheHeaders lets shared caches keep reference data such as the plan catalog
func PublicCacheHeaders(maxAge time.Duration) fiber.Handler {
	return cacheFor("public", maxAge)
}

// cacheFor sets Cache-Control only on successful GETs
func cacheFor(scope string, maxAge time.Duration) fiber.Handler {
	value := fmt.Sprintf("%s, max-age=%d", scope, int(maxAge.Seconds()))
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil && c.Method() == fiber.MethodGet && c.Response().StatusCode() == fiber.StatusOK {
			c.Set(fiber.HeaderCacheControl, value)
		}
		return err
	}
}
