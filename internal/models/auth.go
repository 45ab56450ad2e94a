package models

import "strings"

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest asks the API to send a reset token.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest sets a new password using a reset token.
type ResetPasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Token           string `json:"token" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// AuthResponse is returned by every auth endpoint. LoginResult is only set on
// a successful login.
type AuthResponse struct {
	Message     string       `json:"message"`
	Error       bool         `json:"error"`
	LoginResult *LoginResult `json:"loginResult,omitempty"`
}

// LoginResult carries the bearer token issued at login.
type LoginResult struct {
	Name  string `json:"name"`
	Token string `json:"token"`
}

// ErrorResponse is the structured error body of failed requests.
type ErrorResponse struct {
	Message string   `json:"message"`
	Detail  []string `json:"detail,omitempty"`
}

// Text joins the message with its details the way the app shows them.
func (e ErrorResponse) Text() string {
	details := strings.Join(e.Detail, ", ")
	if strings.TrimSpace(details) == "" {
		return e.Message
	}
	return e.Message + ". Detail: " + details
}

// AuthSession is the persisted login: the bearer token plus the display name.
type AuthSession struct {
	Token string
	Name  string
}
