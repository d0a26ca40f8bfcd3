package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ledgerly/internal/services"
)

const (
	loginAttemptsLimit     = 8
	loginAttemptsWindow    = 15 * time.Minute
	recoveryAttemptsLimit  = 5
	recoveryAttemptsWindow = 15 * time.Minute
)

type Handler struct {
	auth            *services.AuthService
	ledger          *services.LedgerService
	cookieSecure    bool
	now             func() time.Time
	loginLimiter    *attemptLimiter
	recoveryLimiter *attemptLimiter
}

func NewHandler(auth *services.AuthService, ledger *services.LedgerService, cookieSecure bool) *Handler {
	return &Handler{
		auth:            auth,
		ledger:          ledger,
		cookieSecure:    cookieSecure,
		now:             time.Now,
		loginLimiter:    newAttemptLimiter(loginAttemptsLimit, loginAttemptsWindow),
		recoveryLimiter: newAttemptLimiter(recoveryAttemptsLimit, recoveryAttemptsWindow),
	}
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (handler *Handler) NotFound(c *fiber.Ctx) error {
	return apiError(c, fiber.StatusNotFound, "not found")
}
