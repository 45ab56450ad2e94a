package repositories

import (
	"fmt"

	"inventoritoko/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionRepository records purchases and reads them back.
type TransactionRepository interface {
	CheckoutCart(userID uint) (*models.TransactionRecord, error)
	DirectCheckout(userID, productID uint, quantity int) (*models.TransactionRecord, error)
	History(userID uint) ([]models.TransactionRecord, error)
}

// GORMTransactionRepository is a GORM implementation of TransactionRepository.
type GORMTransactionRepository struct {
	db *gorm.DB
}

// NewGORMTransactionRepository creates a new instance of GORMTransactionRepository.
func NewGORMTransactionRepository(db *gorm.DB) *GORMTransactionRepository {
	return &GORMTransactionRepository{db: db}
}

// CheckoutCart buys everything in the user's cart and empties it. Stock is
// decremented atomically; nothing is bought if any line is short.
func (r *GORMTransactionRepository) CheckoutCart(userID uint) (*models.TransactionRecord, error) {
	var created *models.TransactionRecord
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var lines []models.CartRecord
		if err := tx.Preload("Product").Where("user_id = ?", userID).Order("id").Find(&lines).Error; err != nil {
			return fmt.Errorf("failed to load cart: %w", err)
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}
		rec, err := purchase(tx, userID, lines)
		if err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.CartRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart after checkout: %w", err)
		}
		created = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// DirectCheckout buys one product without touching the cart.
func (r *GORMTransactionRepository) DirectCheckout(userID, productID uint, quantity int) (*models.TransactionRecord, error) {
	var created *models.TransactionRecord
	err := r.db.Transaction(func(tx *gorm.DB) error {
		product, err := lockProduct(tx, productID)
		if err != nil {
			return err
		}
		line := models.CartRecord{UserID: userID, ProductID: productID, Quantity: quantity, Product: *product}
		created, err = purchase(tx, userID, []models.CartRecord{line})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// History returns the user's transactions newest first, items in purchase order.
func (r *GORMTransactionRepository) History(userID uint) ([]models.TransactionRecord, error) {
	txs := make([]models.TransactionRecord, 0)
	err := r.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load history for user %d: %w", userID, err)
	}
	return txs, nil
}

func purchase(tx *gorm.DB, userID uint, lines []models.CartRecord) (*models.TransactionRecord, error) {
	rec := &models.TransactionRecord{UserID: userID, TotalPrice: decimal.Zero}
	items := make([]models.TransactionItemRecord, 0, len(lines))
	for _, line := range lines {
		res := tx.Model(&models.ProductRecord{}).
			Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", line.Quantity))
		if res.Error != nil {
			return nil, fmt.Errorf("failed to reserve stock: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("product %s: %w", line.Product.Name, ErrInsufficientStock)
		}
		items = append(items, models.TransactionItemRecord{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Product.Price,
		})
		rec.TotalPrice = rec.TotalPrice.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	if err := tx.Create(rec).Error; err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	for i := range items {
		items[i].TransactionID = rec.ID
	}
	if err := tx.Create(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to create transaction items: %w", err)
	}
	for i := range items {
		items[i].Product = lines[i].Product
	}
	rec.Items = items
	return rec, nil
}
