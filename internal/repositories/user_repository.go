package repositories

import "inventoritoko/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.UserRecord) error
	GetByEmail(email string) (*models.UserRecord, error)
	GetByID(id uint) (*models.UserRecord, error)
	UpdatePassword(id uint, hash string) error
}
