package middleware

import (
	"crypto/subtle"

	"github.com/anacondy/examwatch/internal/logger"
	"github.com/gofiber/fiber/v2"
)

// APIKeyAuth guards admin endpoints with a shared API key read from the
// X-API-Key header. An empty configured key disables the check, which is the
// development default.
func APIKeyAuth(apiKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if apiKey == "" {
			return c.Next()
		}

		provided := c.Get("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			logger.Get().Warn().
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("ip", c.IP()).
				Msg("rejected request with invalid API key")

			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or missing API Key",
			})
		}

		return c.Next()
	}
}
