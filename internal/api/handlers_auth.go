package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ledgerly/internal/services"
)

func (handler *Handler) Register(c *fiber.Ctx) error {
	input, ok, err := bindAndValidate[registerInput](c)
	if !ok {
		return err
	}

	_, err = handler.auth.Register(c.UserContext(), services.RegistrationInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Plan:     input.Plan,
	})
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	input, ok, err := bindAndValidate[loginInput](c)
	if !ok {
		return err
	}

	now := handler.now()
	limiterKey := loginLimiterKey(c, input.Email)
	if handler.loginLimiter.tooManyRecent(limiterKey, now) {
		return apiError(c, fiber.StatusTooManyRequests, "too many login attempts")
	}

	result, err := handler.auth.Login(c.UserContext(), input.Email, input.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		handler.loginLimiter.addFailure(limiterKey, now)
	}
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	handler.loginLimiter.reset(limiterKey)

	handler.setSessionCookie(c, result.Token)
	return c.JSON(fiber.Map{"user": result.User})
}

// Logout succeeds whether or not the request carries a live session.
func (handler *Handler) Logout(c *fiber.Ctx) error {
	if err := handler.auth.Logout(c.UserContext(), sessionToken(c)); err != nil {
		return handler.respondServiceError(c, err)
	}
	handler.clearSessionCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) Session(c *fiber.Ctx) error {
	user, err := handler.auth.ResolveSession(c.UserContext(), sessionToken(c))
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	response := fiber.Map{"user": user}
	if token := csrfToken(c); token != "" {
		response["csrf_token"] = token
	}
	return c.JSON(response)
}

func (handler *Handler) UpdateProfile(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	input, ok, err := bindAndValidate[updateProfileInput](c)
	if !ok {
		return err
	}

	updated, err := handler.auth.UpdateProfile(c.UserContext(), user.ID, input.Name)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"user": updated})
}

// ForgotPassword answers the same way for known and unknown emails.
func (handler *Handler) ForgotPassword(c *fiber.Ctx) error {
	now := handler.now()
	limiterKey := requestLimiterKey(c)
	if handler.recoveryLimiter.tooManyRecent(limiterKey, now) {
		return apiError(c, fiber.StatusTooManyRequests, "too many recovery attempts")
	}
	handler.recoveryLimiter.addFailure(limiterKey, now)

	input, ok, err := bindAndValidate[forgotPasswordInput](c)
	if !ok {
		return err
	}

	_, err = handler.auth.ResetPasswordRequest(c.UserContext(), input.Email)
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) ResetPassword(c *fiber.Ctx) error {
	input, ok, err := bindAndValidate[resetPasswordInput](c)
	if !ok {
		return err
	}

	if err := handler.auth.ConfirmPasswordReset(c.UserContext(), input.Token, input.Password); err != nil {
		return handler.respondServiceError(c, err)
	}
	handler.clearSessionCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}
