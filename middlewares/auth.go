package middlewares

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"notes-server/models"
)

// ErrInvalidToken is what an IdentityVerifier wraps for every "normal"
// rejection: malformed, expired or otherwise unverifiable credentials.
// Any other error means the verifier itself is broken.
var ErrInvalidToken = errors.New("invalid or expired authentication token")

// IdentityVerifier turns an opaque bearer token into a verified identity.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*models.UserIdentity, error)
}

const userLocalsKey = "user"

// Authenticate guards a route group with bearer-token verification and
// stows the verified identity in the request locals.
func Authenticate(verifier IdentityVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing Authorization header",
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader || token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Malformed Authorization header",
			})
		}

		identity, err := verifier.Verify(c.Context(), token)
		if err != nil {
			if errors.Is(err, ErrInvalidToken) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid or expired authentication token",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Authentication service error",
			})
		}

		c.Locals(userLocalsKey, identity)
		return c.Next()
	}
}

// CurrentUser returns the identity placed by Authenticate, or nil on
// routes that skipped it.
func CurrentUser(c *fiber.Ctx) *models.UserIdentity {
	identity, _ := c.Locals(userLocalsKey).(*models.UserIdentity)
	return identity
}
