package handler

import (
	"errors"
	"log"
	"time"

	"stockly-api/internal/service"
	"stockly-api/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "session_id"

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents the register request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles account creation
// POST /auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	user, err := h.authService.Register(req.Name, req.Email, req.Password)
	if err != nil {
		var vErr *service.ErrValidation
		switch {
		case errors.As(err, &vErr):
			return c.Status(400).JSON(fiber.Map{"error": "Validation failed", "details": vErr.Error()})
		case errors.Is(err, service.ErrEmailTaken):
			return c.Status(400).JSON(fiber.Map{"error": "User already exists"})
		default:
			log.Println("Error registering user:", err)
			return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
		}
	}

	return c.Status(201).JSON(user)
}

// Login authenticates a user and sets the session cookie
// POST /auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if req.Email == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Email and password are required"})
	}

	token, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}
		log.Println("Error logging in:", err)
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Expires:  time.Now().Add(jwt.TokenTTL),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})

	return c.JSON(fiber.Map{"user": user})
}

// Logout expires the session cookie. Tokens are not revoked server
// side; the cookie deletion is the whole logout.
// POST /auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})

	return c.JSON(fiber.Map{"message": "Logged out"})
}

// Session resolves the current session cookie to its user
// GET /auth/session
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	user := h.authService.GetSession(c.Cookies(SessionCookie))
	if user == nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	return c.JSON(user)
}
