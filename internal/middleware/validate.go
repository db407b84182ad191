package middleware

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/newsinflight/internal/logger"
)

// QueryKey is the fiber.Locals key of parsed query parameters.
const QueryKey = "queryParams"

// Validator is a struct that holds the validator instance
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate validates the request body against the provided struct
func (v *Validator) Validate(s interface{}) error {
	return v.validate.Struct(s)
}

// FieldErrors maps each failing field to the tag that rejected it. Errors
// that are not validation errors yield nil.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}

// ValidateQueryParams parses the query string into a fresh T per request and
// validates it. Malformed or invalid parameters are a 400.
func ValidateQueryParams[T any]() fiber.Handler {
	v := NewValidator()

	return func(c *fiber.Ctx) error {
		params := new(T)
		if err := c.QueryParser(params); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "Invalid query parameters",
				"details": err.Error(),
			})
		}

		if err := v.Validate(params); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  "Invalid query parameters",
				"fields": FieldErrors(err),
			})
		}

		c.Locals(QueryKey, params)
		return c.Next()
	}
}

// QueryParams returns the parameters stored by ValidateQueryParams.
func QueryParams[T any](c *fiber.Ctx) *T {
	if p, ok := c.Locals(QueryKey).(*T); ok {
		return p
	}
	return new(T)
}

// ErrorHandler is a middleware that handles errors in a consistent way
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	logger.FromContext(c.UserContext()).Error().
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", code).
		Msg("HTTP error")

	body := fiber.Map{"error": http.StatusText(code)}
	if fe != nil && fe.Message != http.StatusText(code) {
		body["details"] = fe.Message
	}
	return c.Status(code).JSON(body)
}
