package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"forumapi/internal/dispatch"
)

// IdentityKey is where the parsed identity lives in fiber Locals.
const IdentityKey = "identity"

type claims struct {
	UID               string `json:"uid,omitempty"`
	Email             string `json:"email,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	jwt.RegisteredClaims
}

// JWTIdentity parses a Bearer token when one is present and stores the
// resulting identity in Locals. Requests without a token pass through
// as anonymous; a malformed token is rejected outright.
func JWTIdentity(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get("Authorization")
		if auth == "" || !strings.HasPrefix(strings.ToLower(auth), "bearer ") {
			return c.Next()
		}
		if secret == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "JWT secret not configured")
		}

		var cl claims
		token, err := jwt.ParseWithClaims(
			strings.TrimSpace(auth[7:]),
			&cl,
			func(t *jwt.Token) (any, error) {
				if t.Method != jwt.SigningMethodHS256 {
					return nil, fiber.ErrUnauthorized
				}
				return []byte(secret), nil
			},
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		)
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		subject := cl.UID
		if subject == "" {
			subject = cl.Subject
		}
		if subject == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing uid/sub claim")
		}

		c.Locals(IdentityKey, dispatch.Identity{
			Subject:  subject,
			Email:    cl.Email,
			Username: cl.PreferredUsername,
		})
		return c.Next()
	}
}
