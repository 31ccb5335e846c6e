package auth

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const Header = "X-Notepads-Token"

// Middleware admits requests whose token matches the bcrypt hash. The token is
// read from the header, or from the token query parameter for clients such as
// EventSource that cannot set headers.
func Middleware(passwordHash []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(Header)
		if token == "" {
			token = c.Query("token")
		}
		if token == "" || bcrypt.CompareHashAndPassword(passwordHash, []byte(token)) != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}
		return c.Next()
	}
}
