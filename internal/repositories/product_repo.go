package repositories

import (
	"inventoritoko/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll() ([]models.ProductRecord, error)
	GetByID(id uint) (*models.ProductRecord, error)
	Create(product *models.ProductRecord) error
}
