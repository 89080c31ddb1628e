package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tungkyap/storage-management/internal/auth"
)

// ClaimsLocalKey is the key used to store validated JWT claims in Fiber's context locals.
const ClaimsLocalKey = "claims"

// Auth validates the Authorization bearer token and stores the claims in
// context locals. Requests without a valid token are rejected before any
// handler logic runs.
func Auth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return fiber.NewError(fiber.StatusUnauthorized, "missing or invalid authorization header")
		}

		claims, err := auth.ValidateToken(secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(ClaimsLocalKey, claims)
		return c.Next()
	}
}

// GetClaims retrieves validated JWT claims from context locals, or nil.
func GetClaims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(ClaimsLocalKey).(*auth.Claims)
	return claims
}
