package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control on GET responses that a handler has
// not already tagged. Everything behind auth is private; attendance state and
// notification counts must never be cached because the portal polls them.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != "GET" {
			return err
		}
		if existing := c.Get("Cache-Control"); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics":
			ttl = "no-cache"

		case path == "/graphql":
			ttl = "private, max-age=0"

		case strings.Contains(path, "/attendance"):
			ttl = "no-store" // gate state, re-polled every cycle

		case strings.Contains(path, "/notifications"):
			ttl = "no-store"

		case strings.HasPrefix(path, "/v1/zones"):
			ttl = "private, max-age=300"

		case strings.HasPrefix(path, "/v1/holidays"):
			ttl = "private, max-age=600"

		case path == "/v1/schedule":
			ttl = "private, max-age=300"

		case strings.HasPrefix(path, "/v1/"):
			ttl = "private, max-age=60"
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
