package api

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ledgerly/internal/services"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// bindAndValidate parses a JSON body into T and checks its validate tags.
// On failure the 400 response has already been written and ok is false.
func bindAndValidate[T any](c *fiber.Ctx) (T, bool, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return input, false, apiError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(input); err != nil {
		return input, false, apiError(c, fiber.StatusBadRequest, describeValidationError(err))
	}
	return input, true, nil
}

func describeValidationError(err error) string {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return "invalid input"
	}

	fieldError := fieldErrors[0]
	switch fieldError.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fieldError.Field())
	case "max":
		return fmt.Sprintf("%s is too long", fieldError.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fieldError.Field(), fieldError.Param())
	case "datetime":
		return fmt.Sprintf("%s must use the format %s", fieldError.Field(), fieldError.Param())
	default:
		return fmt.Sprintf("%s is invalid", fieldError.Field())
	}
}

// respondServiceError maps service errors to status codes. Internal errors
// are logged and answered without detail.
func (handler *Handler) respondServiceError(c *fiber.Ctx, err error) error {
	var validationError *services.ValidationError
	switch {
	case errors.As(err, &validationError):
		return apiError(c, fiber.StatusBadRequest, validationError.Message)
	case errors.Is(err, services.ErrValidation):
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	case errors.Is(err, services.ErrInvalidCredentials):
		return apiError(c, fiber.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, services.ErrNotFound):
		return apiError(c, fiber.StatusNotFound, "not found")
	case errors.Is(err, services.ErrDuplicateEmail):
		return apiError(c, fiber.StatusConflict, "email already registered")
	case errors.Is(err, services.ErrDuplicateAccountType):
		return apiError(c, fiber.StatusConflict, "account type already exists")
	case errors.Is(err, services.ErrInsufficientFunds):
		return apiError(c, fiber.StatusUnprocessableEntity, "insufficient funds")
	case errors.Is(err, services.ErrInvalidResetToken):
		return apiError(c, fiber.StatusBadRequest, "invalid reset token")
	default:
		slog.ErrorContext(c.UserContext(), "request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return apiError(c, fiber.StatusInternalServerError, "internal error")
	}
}

func csrfToken(c *fiber.Ctx) string {
	token, _ := c.Locals(contextCSRFKey).(string)
	return token
}
