package services

import (
	"fmt"
	"sync"

	"inventoritoko/internal/models"
	"inventoritoko/internal/repositories"

	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"
)

// AuthFlow is one of the four independent auth forms.
type AuthFlow string

const (
	FlowLogin          AuthFlow = "login"
	FlowRegister       AuthFlow = "register"
	FlowForgotPassword AuthFlow = "forgotPassword"
	FlowResetPassword  AuthFlow = "resetPassword"
)

var authFlows = []AuthFlow{FlowLogin, FlowRegister, FlowForgotPassword, FlowResetPassword}

// AuthStatus is the stage of a flow.
type AuthStatus int

const (
	AuthIdle AuthStatus = iota
	AuthLoading
	AuthSuccess
	AuthError
)

func (s AuthStatus) String() string {
	switch s {
	case AuthIdle:
		return "idle"
	case AuthLoading:
		return "loading"
	case AuthSuccess:
		return "success"
	case AuthError:
		return "error"
	default:
		return "unknown"
	}
}

// AuthState is a flow's status plus the message to show for Success and Error.
type AuthState struct {
	Status  AuthStatus
	Message string
}

// AuthAPI is the part of the REST client auth needs.
type AuthAPI interface {
	Register(req models.RegisterRequest) (*models.AuthResponse, error)
	Login(req models.LoginRequest) (*models.AuthResponse, error)
	ForgotPassword(req models.ForgotPasswordRequest) (*models.AuthResponse, error)
	ResetPassword(req models.ResetPasswordRequest) (*models.AuthResponse, error)
}

// Success messages used when the server sends none.
const (
	LoginSucceeded         = "Login successful"
	RegistrationSucceeded  = "Registration successful"
	ResetMailSent          = "Password reset email sent"
	PasswordResetSucceeded = "Password has been reset"
)

// AuthService tracks the auth flows and owns the persisted session.
type AuthService struct {
	api    AuthAPI
	tokens repositories.TokenRepository
	bus    EventBus.Bus
	logger *zap.Logger

	mu     sync.Mutex
	states map[AuthFlow]AuthState
}

// NewAuthService creates an AuthService. bus may be nil.
func NewAuthService(api AuthAPI, tokens repositories.TokenRepository, bus EventBus.Bus, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	states := make(map[AuthFlow]AuthState, len(authFlows))
	for _, f := range authFlows {
		states[f] = AuthState{Status: AuthIdle}
	}
	return &AuthService{api: api, tokens: tokens, bus: bus, logger: logger, states: states}
}

// Login authenticates and, on success, persists the returned session.
func (s *AuthService) Login(email, password string) AuthState {
	s.set(FlowLogin, AuthState{Status: AuthLoading})
	resp, err := s.api.Login(models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return s.fail(FlowLogin, err)
	}
	if resp.LoginResult != nil && resp.LoginResult.Token != "" {
		session := models.AuthSession{Token: resp.LoginResult.Token, Name: resp.LoginResult.Name}
		if err := s.tokens.Save(session); err != nil {
			return s.fail(FlowLogin, fmt.Errorf("save session: %w", err))
		}
	} else {
		s.logger.Warn("login succeeded without a token")
	}
	return s.succeed(FlowLogin, resp.Message, LoginSucceeded)
}

// Register creates an account. It does not log in.
func (s *AuthService) Register(username, email, password string) AuthState {
	s.set(FlowRegister, AuthState{Status: AuthLoading})
	resp, err := s.api.Register(models.RegisterRequest{Username: username, Email: email, Password: password})
	if err != nil {
		return s.fail(FlowRegister, err)
	}
	return s.succeed(FlowRegister, resp.Message, RegistrationSucceeded)
}

// ForgotPassword requests a reset token.
func (s *AuthService) ForgotPassword(email string) AuthState {
	s.set(FlowForgotPassword, AuthState{Status: AuthLoading})
	resp, err := s.api.ForgotPassword(models.ForgotPasswordRequest{Email: email})
	if err != nil {
		return s.fail(FlowForgotPassword, err)
	}
	return s.succeed(FlowForgotPassword, resp.Message, ResetMailSent)
}

// ResetPassword sets a new password with a reset token.
func (s *AuthService) ResetPassword(email, token, newPassword, confirmPassword string) AuthState {
	s.set(FlowResetPassword, AuthState{Status: AuthLoading})
	resp, err := s.api.ResetPassword(models.ResetPasswordRequest{
		Email:           email,
		Token:           token,
		NewPassword:     newPassword,
		ConfirmPassword: confirmPassword,
	})
	if err != nil {
		return s.fail(FlowResetPassword, err)
	}
	return s.succeed(FlowResetPassword, resp.Message, PasswordResetSucceeded)
}

// Logout drops the persisted session and resets every flow to Idle before
// returning. The flows are reset even when the store fails.
func (s *AuthService) Logout() error {
	err := s.tokens.Clear()

	s.mu.Lock()
	for _, f := range authFlows {
		s.states[f] = AuthState{Status: AuthIdle}
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("logout could not clear session", zap.Error(err))
		return fmt.Errorf("clear session: %w", err)
	}
	s.logger.Info("logged out")
	return nil
}

// State returns a flow's current state.
func (s *AuthService) State(flow AuthFlow) AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[flow]
}

// Clear returns a flow to Idle after its outcome was shown. It reports false
// when the flow was already idle.
func (s *AuthService) Clear(flow AuthFlow) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.states[flow].Status == AuthIdle {
		return false
	}
	s.states[flow] = AuthState{Status: AuthIdle}
	return true
}

// Session returns the persisted login, or nil when logged out.
func (s *AuthService) Session() (*models.AuthSession, error) {
	return s.tokens.Load()
}

// LoggedIn reports whether a token is stored.
func (s *AuthService) LoggedIn() bool {
	token, err := s.tokens.Token()
	return err == nil && token != ""
}

func (s *AuthService) set(flow AuthFlow, st AuthState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[flow] = st
}

func (s *AuthService) succeed(flow AuthFlow, msg, def string) AuthState {
	if msg == "" {
		msg = def
	}
	st := AuthState{Status: AuthSuccess, Message: msg}
	s.set(flow, st)
	s.logger.Info("auth flow succeeded", zap.String("flow", string(flow)))
	publish(s.bus, TopicAuthResult, Event{Action: string(flow), Success: true, Message: msg})
	return st
}

func (s *AuthService) fail(flow AuthFlow, err error) AuthState {
	msg := authErrorMessage(err)
	st := AuthState{Status: AuthError, Message: msg}
	s.set(flow, st)
	s.logger.Warn("auth flow failed", zap.String("flow", string(flow)), zap.String("message", msg), zap.Error(err))
	publish(s.bus, TopicAuthResult, Event{Action: string(flow), Message: msg})
	return st
}
