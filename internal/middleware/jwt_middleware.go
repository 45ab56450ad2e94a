package middleware

import (
	"strings"

	"inventoritoko/internal/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// TokenValidator checks a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(token string) (jwt.MapClaims, error)
}

// UserIDKey is the Locals key holding the authenticated user's id as uint.
const UserIDKey = "user_id"

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(validator TokenValidator, logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
				Message: "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
				Message: "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := validator.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			logger.Debug("jwt validation failed", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
				Message: "Invalid or expired token",
			})
		}

		userID, err := cast.ToUintE(claims["user_id"])
		if err != nil || userID == 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
				Message: "Invalid or expired token",
			})
		}

		c.Locals(UserIDKey, userID)
		c.Locals("username", cast.ToString(claims["username"]))
		return c.Next()
	}
}

// UserID returns the id stored by AuthRequired.
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(UserIDKey).(uint)
	return id
}
