package models

import "github.com/shopspring/decimal"

// CartItem is one line of the user's server-side cart.
type CartItem struct {
	ID        int      `json:"id"`
	UserID    int      `json:"user_id"`
	ProductID int      `json:"product_id"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product"` // nil when the API does not embed the product
}

// Subtotal is price times quantity, or zero without an embedded product.
func (i CartItem) Subtotal() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// AddToCartRequest is the body of POST inventory/cart.
type AddToCartRequest struct {
	ProductID int `json:"productid" validate:"required,gt=0"`
	Quantity  int `json:"quantity" validate:"required,gt=0"`
}

// UpdateCartQuantityRequest is the body of PUT inventory/cart/{productId}.
type UpdateCartQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// MessageResponse is the generic acknowledgement returned by cart mutations.
type MessageResponse struct {
	Message string `json:"message"`
	Error   bool   `json:"error"`
}
