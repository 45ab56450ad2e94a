// Package backend holds the business logic of the local stub API server.
package backend

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"inventoritoko/internal/models"
	"inventoritoko/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Account errors, mapped to HTTP statuses by the handlers.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnknownEmail       = errors.New("email not registered")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrInvalidToken       = errors.New("invalid token")
)

// Mailer delivers password reset tokens.
type Mailer interface {
	SendResetToken(to, token string) error
}

// AccountService handles registration, login and password resets.
type AccountService struct {
	users     repositories.UserRepository
	resets    repositories.PasswordResetRepository
	mailer    Mailer
	jwtSecret []byte
	tokenTTL  time.Duration
	resetTTL  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewAccountService creates an AccountService. mailer may be nil, in which
// case reset tokens are only returned to the caller.
func NewAccountService(users repositories.UserRepository, resets repositories.PasswordResetRepository, mailer Mailer, jwtSecret string, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		users:     users,
		resets:    resets,
		mailer:    mailer,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  24 * time.Hour,
		resetTTL:  time.Hour,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register hashes the password and stores the user.
func (s *AccountService) Register(req models.RegisterRequest) (*models.UserRecord, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.UserRecord{
		Username: strings.TrimSpace(req.Username),
		Email:    req.Email,
		Password: string(hash),
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	s.logger.Info("user registered", zap.Uint("user_id", user.ID))
	return user, nil
}

// Login checks the credentials and issues a signed JWT.
func (s *AccountService) Login(email, password string) (string, *models.UserRecord, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      now.Add(s.tokenTTL).Unix(),
		"iat":      now.Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, user, nil
}

// ValidateToken parses and validates a JWT, returning its claims.
func (s *AccountService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// ForgotPassword creates a reset token and mails it when a mailer is set.
// The token is returned either way.
func (s *AccountService) ForgotPassword(email string) (string, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrUnknownEmail
		}
		return "", err
	}
	reset := &models.PasswordResetRecord{
		Email:     user.Email,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(s.resetTTL),
	}
	if err := s.resets.Create(reset); err != nil {
		return "", err
	}
	if s.mailer != nil {
		if err := s.mailer.SendResetToken(user.Email, reset.Token); err != nil {
			return "", fmt.Errorf("failed to send reset mail: %w", err)
		}
	}
	return reset.Token, nil
}

// MailsResetTokens reports whether tokens leave the server by mail.
func (s *AccountService) MailsResetTokens() bool { return s.mailer != nil }

// ResetPassword consumes a reset token and replaces the password.
func (s *AccountService) ResetPassword(req models.ResetPasswordRequest) error {
	user, err := s.users.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if err := s.resets.Consume(user.Email, req.Token, s.now()); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.UpdatePassword(user.ID, string(hash))
}

// PurgeExpiredResets deletes reset tokens past their expiry.
func (s *AccountService) PurgeExpiredResets() (int64, error) {
	return s.resets.PurgeExpired(s.now())
}
