package http

import (
	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets default Cache-Control headers on GET responses
// unless the handler already set one.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if c.GetRespHeader(fiber.HeaderCacheControl) != "" {
			return err
		}

		var ttl string
		switch c.Path() {
		case "/":
			ttl = "public, max-age=3600"
		case "/v1/health", "/v1/ready":
			ttl = "public, max-age=10"
		case "/metrics", "/ws":
			ttl = "no-cache"
		case "/docs", "/docs/openapi.yaml":
			ttl = "public, max-age=86400"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}
