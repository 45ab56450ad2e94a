package handlers

import (
	"errors"

	"inventoritoko/internal/backend"
	"inventoritoko/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	accounts *backend.AccountService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accounts *backend.AccountService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		accounts: accounts,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/forgotPassword", h.HandleForgotPassword)
	authRoutes.Post("/resetPassword", h.HandleResetPassword)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if ok, err := parseAndValidate(c, h.validate, h.logger, &req); !ok {
		return err
	}

	if _, err := h.accounts.Register(req); err != nil {
		if errors.Is(err, backend.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(models.ErrorResponse{
				Message: "Email sudah terdaftar",
			})
		}
		h.logger.Error("error registering user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Message: "Could not register user",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(models.AuthResponse{
		Message: "User registered successfully",
	})
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if ok, err := parseAndValidate(c, h.validate, h.logger, &req); !ok {
		return err
	}

	token, user, err := h.accounts.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, backend.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
				Message: "Email atau password salah",
			})
		}
		h.logger.Error("error during login", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Message: "Could not log in",
		})
	}

	return c.JSON(models.AuthResponse{
		Message:     "success",
		LoginResult: &models.LoginResult{Name: user.Username, Token: token},
	})
}

// HandleForgotPassword issues a reset token for a registered email.
func (h *AuthHandler) HandleForgotPassword(c *fiber.Ctx) error {
	var req models.ForgotPasswordRequest
	if ok, err := parseAndValidate(c, h.validate, h.logger, &req); !ok {
		return err
	}

	token, err := h.accounts.ForgotPassword(req.Email)
	if err != nil {
		if errors.Is(err, backend.ErrUnknownEmail) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
				Message: "Email tidak terdaftar",
			})
		}
		h.logger.Error("error issuing reset token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Message: "Could not issue reset token",
		})
	}

	message := "Reset token sent to email"
	if !h.accounts.MailsResetTokens() {
		// Without SMTP the token has nowhere else to go.
		message = "Reset token: " + token
	}
	return c.JSON(models.AuthResponse{Message: message})
}

// HandleResetPassword sets a new password from a reset token.
func (h *AuthHandler) HandleResetPassword(c *fiber.Ctx) error {
	var req models.ResetPasswordRequest
	if ok, err := parseAndValidate(c, h.validate, h.logger, &req); !ok {
		return err
	}

	if err := h.accounts.ResetPassword(req); err != nil {
		if errors.Is(err, backend.ErrInvalidResetToken) {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Message: "Token tidak valid atau kedaluwarsa",
			})
		}
		h.logger.Error("error resetting password", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Message: "Could not reset password",
		})
	}
	return c.JSON(models.AuthResponse{Message: "Password reset successfully"})
}
