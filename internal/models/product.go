package models

import "github.com/shopspring/decimal"

// Product represents a product in the store catalog. Products are replaced
// wholesale whenever the catalog is refetched.
type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Image       *string         `json:"image,omitempty"`
	Description *string         `json:"description,omitempty"`
}
