package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserRecord is a registered account of the stub backend.
type UserRecord struct {
	ID        uint      `gorm:"primaryKey"`
	Username  string    `gorm:"size:100;not null"`
	Email     string    `gorm:"size:255;uniqueIndex;not null"`
	Password  string    `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (UserRecord) TableName() string { return "users" }

// ProductRecord is the stored form of a catalog product.
type ProductRecord struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"size:255;not null"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Stock       int             `gorm:"not null;default:0"`
	Image       *string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ProductRecord) TableName() string { return "products" }

// ToProduct converts the record into the API shape.
func (p ProductRecord) ToProduct() Product {
	return Product{
		ID:          int(p.ID),
		Name:        p.Name,
		Price:       p.Price,
		Stock:       p.Stock,
		Image:       p.Image,
		Description: p.Description,
	}
}

// CartRecord is one product in a user's cart. A user holds a product at most once.
type CartRecord struct {
	ID        uint          `gorm:"primaryKey"`
	UserID    uint          `gorm:"uniqueIndex:idx_cart_user_product;not null"`
	ProductID uint          `gorm:"uniqueIndex:idx_cart_user_product;not null"`
	Quantity  int           `gorm:"not null"`
	Product   ProductRecord `gorm:"foreignKey:ProductID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CartRecord) TableName() string { return "cart_items" }

// ToCartItem converts the record, embedding the product when it was preloaded.
func (c CartRecord) ToCartItem() CartItem {
	item := CartItem{
		ID:        int(c.ID),
		UserID:    int(c.UserID),
		ProductID: int(c.ProductID),
		Quantity:  c.Quantity,
	}
	if c.Product.ID != 0 {
		p := c.Product.ToProduct()
		item.Product = &p
	}
	return item
}

// TransactionRecord is a completed checkout.
type TransactionRecord struct {
	ID         uint                    `gorm:"primaryKey"`
	UserID     uint                    `gorm:"index;not null"`
	TotalPrice decimal.Decimal         `gorm:"type:decimal(12,2);not null"`
	Items      []TransactionItemRecord `gorm:"foreignKey:TransactionID"`
	CreatedAt  time.Time
}

func (TransactionRecord) TableName() string { return "transactions" }

// TransactionItemRecord is a purchased line with the unit price at checkout time.
type TransactionItemRecord struct {
	ID            uint            `gorm:"primaryKey"`
	TransactionID uint            `gorm:"index;not null"`
	ProductID     uint            `gorm:"not null"`
	Quantity      int             `gorm:"not null"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Product       ProductRecord   `gorm:"foreignKey:ProductID"`
}

func (TransactionItemRecord) TableName() string { return "transaction_items" }

// PasswordResetRecord is an outstanding forgot-password token.
type PasswordResetRecord struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"size:255;index;not null"`
	Token     string    `gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}

func (PasswordResetRecord) TableName() string { return "password_resets" }
