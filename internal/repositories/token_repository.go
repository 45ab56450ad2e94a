package repositories

import "inventoritoko/internal/models"

// Keys of the persisted auth slot.
const (
	TokenBucket = "auth_prefs"
	TokenKey    = "auth_token"
	NameKey     = "auth_name"
)

// TokenRepository is the single durable slot holding the login session.
// Load returns nil without error when nobody is logged in.
type TokenRepository interface {
	Load() (*models.AuthSession, error)
	Save(session models.AuthSession) error
	Clear() error
	Token() (string, error)
}
