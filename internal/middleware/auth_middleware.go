package middleware

import (
	"stockly-api/internal/handler"
	"stockly-api/internal/repository"
	"stockly-api/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth validates the session cookie and loads the user record
// for downstream handlers. The token carries only the user identifier;
// everything else is read from the store on demand.
func RequireAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(handler.SessionCookie)

		userID, err := jwt.VerifyToken(token)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
		}

		user, err := userRepo.FindByID(userID)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
		}

		c.Locals("user_id", user.ID.String())
		c.Locals("user_email", user.Email)

		return c.Next()
	}
}
