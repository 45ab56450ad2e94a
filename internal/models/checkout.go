package models

// DirectCheckoutRequest buys a single product without going through the cart.
type DirectCheckoutRequest struct {
	ProductID int `json:"productid" validate:"required,gt=0"`
	Quantity  int `json:"quantity" validate:"required,gt=0"`
}

// CheckoutResponse is returned by both checkout endpoints.
type CheckoutResponse struct {
	Message       string   `json:"message"`
	TransactionID *int     `json:"transactionId,omitempty"`
	TotalPrice    *float64 `json:"totalPrice,omitempty"`
}
