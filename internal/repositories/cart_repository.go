package repositories

import (
	"errors"
	"fmt"

	"inventoritoko/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository defines the interface for per-user cart storage.
type CartRepository interface {
	List(userID uint) ([]models.CartRecord, error)
	Add(userID, productID uint, quantity int) error
	SetQuantity(userID, productID uint, quantity int) error
	Remove(userID, productID uint) error
	Clear(userID uint) error
}

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

// List returns the user's cart with products embedded, oldest line first.
func (r *GORMCartRepository) List(userID uint) ([]models.CartRecord, error) {
	lines := make([]models.CartRecord, 0)
	if err := r.db.Preload("Product").Where("user_id = ?", userID).Order("id").Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("failed to list cart for user %d: %w", userID, err)
	}
	return lines, nil
}

// Add puts quantity more of a product into the cart. The resulting quantity
// may not exceed the product's stock.
func (r *GORMCartRepository) Add(userID, productID uint, quantity int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		product, err := lockProduct(tx, productID)
		if err != nil {
			return err
		}
		var line models.CartRecord
		err = tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&line).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			line = models.CartRecord{UserID: userID, ProductID: productID}
		case err != nil:
			return fmt.Errorf("failed to read cart line: %w", err)
		}
		line.Quantity += quantity
		if line.Quantity > product.Stock {
			return fmt.Errorf("product %s has %d left: %w", product.Name, product.Stock, ErrInsufficientStock)
		}
		if err := tx.Save(&line).Error; err != nil {
			return fmt.Errorf("failed to save cart line: %w", err)
		}
		return nil
	})
}

// SetQuantity replaces the quantity of a line; zero removes it.
func (r *GORMCartRepository) SetQuantity(userID, productID uint, quantity int) error {
	if quantity <= 0 {
		return r.Remove(userID, productID)
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		product, err := lockProduct(tx, productID)
		if err != nil {
			return err
		}
		if quantity > product.Stock {
			return fmt.Errorf("product %s has %d left: %w", product.Name, product.Stock, ErrInsufficientStock)
		}
		res := tx.Model(&models.CartRecord{}).
			Where("user_id = ? AND product_id = ?", userID, productID).
			Update("quantity", quantity)
		if res.Error != nil {
			return fmt.Errorf("failed to update cart line: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("product %d not in cart: %w", productID, ErrNotFound)
		}
		return nil
	})
}

// Remove deletes one line from the cart.
func (r *GORMCartRepository) Remove(userID, productID uint) error {
	res := r.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.CartRecord{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart line: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %d not in cart: %w", productID, ErrNotFound)
	}
	return nil
}

// Clear empties the cart. Clearing an empty cart succeeds.
func (r *GORMCartRepository) Clear(userID uint) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&models.CartRecord{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func lockProduct(tx *gorm.DB, productID uint) (*models.ProductRecord, error) {
	var product models.ProductRecord
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %d: %w", productID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", productID, err)
	}
	return &product, nil
}
