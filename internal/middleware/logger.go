package middleware

import (
	"time"

	"github.com/anacondy/examwatch/internal/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// LoggerConfig defines the config for the request-logging middleware.
type LoggerConfig struct {
	// Next defines a function to skip the middleware. Optional.
	Next func(c *fiber.Ctx) bool

	// Logger is the zerolog logger to use. Defaults to the global one.
	Logger *zerolog.Logger
}

// NewLogger creates a middleware that logs one structured event per request.
func NewLogger(config ...LoggerConfig) fiber.Handler {
	var cfg LoggerConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		log := cfg.Logger
		if log == nil {
			log = logger.Get()
		}

		start := time.Now()
		err := c.Next()

		event := log.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Str("ip", c.IP()).
			Dur("latency", time.Since(start))
		if err != nil {
			event = event.Err(err)
		}
		event.Msg("request")

		return err
	}
}

// RequestLogger returns the request logger with default configuration.
func RequestLogger() fiber.Handler {
	return NewLogger()
}
