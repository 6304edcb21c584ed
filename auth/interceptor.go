package auth

import (
	"dialog-hub/contract"
	"dialog-hub/domain"
	"dialog-hub/domain/event"
	"dialog-hub/errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	// UserIDKey is the fiber.Ctx local holding the authenticated user.
	UserIDKey = "user_id"

	tokenQueryParam = "token"
	tokenCookie     = "access_token"
)

// ExtractToken looks for the access token in the query string, then the
// access_token cookie, then the Authorization header.
// Browsers cannot set headers on a WebSocket handshake, hence the first two.
func ExtractToken(c *fiber.Ctx) string {
	if token := c.Query(tokenQueryParam); token != "" {
		return token
	}
	if token := c.Cookies(tokenCookie); token != "" {
		return token
	}
	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// Middleware rejects the request with 401 unless it carries a valid access token,
// and stores the user identity in the request locals otherwise.
func Middleware(validator contract.ITokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := validator.Validate(c.UserContext(), ExtractToken(c))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(event.NewError(err, 0))
		}
		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// UserFrom returns the identity stored by Middleware.
func UserFrom(c *fiber.Ctx) (domain.UserID, error) {
	userID, ok := c.Locals(UserIDKey).(domain.UserID)
	if !ok {
		return 0, errors.ErrAuthentication
	}
	return userID, nil
}
