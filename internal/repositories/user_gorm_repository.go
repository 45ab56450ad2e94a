package repositories

import (
	"errors"
	"fmt"
	"strings"

	"inventoritoko/internal/models"

	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{db: db}
}

// Create stores a new user. Emails are unique, compared case-insensitively.
func (r *GORMUserRepository) Create(user *models.UserRecord) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	var count int64
	if err := r.db.Model(&models.UserRecord{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check email %s: %w", user.Email, err)
	}
	if count > 0 {
		return fmt.Errorf("email %s: %w", user.Email, ErrDuplicate)
	}
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByEmail retrieves a user by email.
func (r *GORMUserRepository) GetByEmail(email string) (*models.UserRecord, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var user models.UserRecord
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}

// GetByID retrieves a user by id.
func (r *GORMUserRepository) GetByID(id uint) (*models.UserRecord, error) {
	var user models.UserRecord
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by ID %d: %w", id, err)
	}
	return &user, nil
}

// UpdatePassword replaces the stored password hash.
func (r *GORMUserRepository) UpdatePassword(id uint, hash string) error {
	res := r.db.Model(&models.UserRecord{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return fmt.Errorf("failed to update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %d: %w", id, ErrNotFound)
	}
	return nil
}
