package middleware

import (
	"devconnect/internal/auth"
	"devconnect/internal/models"

	"github.com/gofiber/fiber/v2"
)

// TokenHeader carries the identity token on protected requests.
const TokenHeader = "x-auth-token"

// identityLocal is the fiber locals key holding the authenticated auth.Identity.
const identityLocal = "identity"

// TokenVerifier verifies identity tokens.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// Authenticate rejects requests without a valid token and binds the caller's
// identity to the request. It never touches persistence.
func Authenticate(tokens TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(TokenHeader)
		if token == "" {
			return models.RespondWithError(c,
				models.NewUnauthenticatedError("No token, authorization denied"))
		}

		id, err := tokens.Verify(token)
		if err != nil {
			return models.RespondWithError(c,
				models.NewUnauthenticatedError("Token is not valid"))
		}

		c.Locals("userID", id.ID)
		c.Locals(identityLocal, id)

		c.SetUserContext(auth.WithIdentity(c.UserContext(), id))

		return c.Next()
	}
}

// IdentityFrom returns the identity bound by Authenticate.
func IdentityFrom(c *fiber.Ctx) (auth.Identity, bool) {
	id, ok := c.Locals(identityLocal).(auth.Identity)
	return id, ok
}
