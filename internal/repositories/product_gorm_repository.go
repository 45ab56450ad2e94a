package repositories

import (
	"errors"
	"fmt"

	"inventoritoko/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{db: db}
}

// GetAll retrieves the catalog ordered by id.
func (r *GORMProductRepository) GetAll() ([]models.ProductRecord, error) {
	products := make([]models.ProductRecord, 0)
	if err := r.db.Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product.
func (r *GORMProductRepository) GetByID(id uint) (*models.ProductRecord, error) {
	var product models.ProductRecord
	if err := r.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

// Create inserts a product.
func (r *GORMProductRepository) Create(product *models.ProductRecord) error {
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}
