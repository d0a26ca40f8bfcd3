package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/terraincognita07/ledgerly/internal/models"
)

const (
	sessionCookieName = "ledgerly_session"
	contextUserKey    = "current_user"
	contextCSRFKey    = "csrf"
)

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(contextUserKey).(*models.User)
	return user, ok && user != nil
}

// AuthRequired resolves the session cookie and stores the user in Locals.
func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	user, err := handler.auth.ResolveSession(c.UserContext(), sessionToken(c))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	if user == nil {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	c.Locals(contextUserKey, user)
	return c.Next()
}

func sessionToken(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Cookies(sessionCookieName))
}

// RateLimit caps requests per client IP across the whole API.
func RateLimit(max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:          max,
		Expiration:   window,
		KeyGenerator: requestLimiterKey,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/healthz"
		},
		LimitReached: func(c *fiber.Ctx) error {
			return apiError(c, fiber.StatusTooManyRequests, "too many requests")
		},
	})
}
