package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"inventoritoko/internal/middleware"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator map[string]jwt.MapClaims

func (v stubValidator) ValidateToken(token string) (jwt.MapClaims, error) {
	claims, ok := v[token]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return claims, nil
}

func TestAuthRequired(t *testing.T) {
	validator := stubValidator{
		"good":     {"user_id": float64(7), "username": "budi"},
		"no-user":  {"username": "budi"},
		"zero-uid": {"user_id": float64(0)},
	}
	app := fiber.New()
	app.Get("/me", middleware.AuthRequired(validator, nil), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": middleware.UserID(c), "name": c.Locals("username")})
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer bad", http.StatusUnauthorized},
		{"claims without user", "Bearer no-user", http.StatusUnauthorized},
		{"zero user id", "Bearer zero-uid", http.StatusUnauthorized},
		{"valid", "Bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
