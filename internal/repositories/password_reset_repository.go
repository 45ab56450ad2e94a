package repositories

import (
	"fmt"
	"time"

	"inventoritoko/internal/models"

	"gorm.io/gorm"
)

// PasswordResetRepository stores forgot-password tokens.
type PasswordResetRepository interface {
	Create(reset *models.PasswordResetRecord) error
	Consume(email, token string, now time.Time) error
	PurgeExpired(now time.Time) (int64, error)
}

// GORMPasswordResetRepository is a GORM implementation of PasswordResetRepository.
type GORMPasswordResetRepository struct {
	db *gorm.DB
}

// NewGORMPasswordResetRepository creates a new instance of GORMPasswordResetRepository.
func NewGORMPasswordResetRepository(db *gorm.DB) *GORMPasswordResetRepository {
	return &GORMPasswordResetRepository{db: db}
}

// Create stores a new token.
func (r *GORMPasswordResetRepository) Create(reset *models.PasswordResetRecord) error {
	if err := r.db.Create(reset).Error; err != nil {
		return fmt.Errorf("failed to create password reset: %w", err)
	}
	return nil
}

// Consume deletes a matching unexpired token. A token can be used once.
func (r *GORMPasswordResetRepository) Consume(email, token string, now time.Time) error {
	res := r.db.Where("email = ? AND token = ? AND expires_at > ?", email, token, now).
		Delete(&models.PasswordResetRecord{})
	if res.Error != nil {
		return fmt.Errorf("failed to consume password reset: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("reset token for %s: %w", email, ErrNotFound)
	}
	return nil
}

// PurgeExpired removes tokens past their expiry and reports how many went.
func (r *GORMPasswordResetRepository) PurgeExpired(now time.Time) (int64, error) {
	res := r.db.Where("expires_at <= ?", now).Delete(&models.PasswordResetRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge password resets: %w", res.Error)
	}
	return res.RowsAffected, nil
}
