package middleware

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const defaultOrigin = "http://localhost:3000"

// AllowedOrigins reads the comma-separated ALLOWED_ORIGINS list. The
// first entry is the canonical origin echoed back when a request's
// Origin is not on the list.
func AllowedOrigins() []string {
	raw := os.Getenv("ALLOWED_ORIGINS")
	if raw == "" {
		return []string{defaultOrigin}
	}

	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{defaultOrigin}
	}
	return origins
}

// CORS echoes a request's Origin back only when it is on the
// allow-list, otherwise falls back to the canonical origin. Requests
// with credentials are always permitted, and preflights are answered
// without hitting the handlers.
func CORS(allowedOrigins []string) fiber.Handler {
	canonical := allowedOrigins[0]

	return func(c *fiber.Ctx) error {
		origin := c.Get("Origin")

		allowed := canonical
		for _, o := range allowedOrigins {
			if origin == o {
				allowed = origin
				break
			}
		}

		c.Set("Access-Control-Allow-Origin", allowed)
		c.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Set("Access-Control-Allow-Credentials", "true")

		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}

		return c.Next()
	}
}
