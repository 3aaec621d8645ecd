package middleware

import (
	"net/http"

	"github.com/anacondy/examwatch/internal/logger"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Validator wraps a validator instance shared by request handlers.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate validates a struct against its validation tags.
func (v *Validator) Validate(s interface{}) error {
	return v.validate.Struct(s)
}

// FieldErrors flattens validation errors into a field -> tag map for JSON
// responses.
func FieldErrors(err error) map[string]string {
	fields := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
	}
	return fields
}

// ErrorHandler is the app-wide Fiber error handler.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	logger.Get().Error().
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", code).
		Msg("HTTP error")

	return c.Status(code).JSON(fiber.Map{
		"error": http.StatusText(code),
	})
}
