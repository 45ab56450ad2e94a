package services

import (
	"errors"
	"fmt"
	"strings"

	"inventoritoko/internal/api"
)

// Fallback texts per remote operation: generic is used when a rejected
// response carries nothing readable, network when no response arrived.
type fallback struct {
	generic string
	network string
}

var (
	fetchProductsText  = fallback{"Failed to fetch products", "Network error fetching products"}
	fetchProductText   = fallback{"Failed to fetch product details", "Network error fetching product details"}
	fetchCartText      = fallback{"Failed to fetch cart items", "Network error fetching cart items"}
	fetchHistoryText   = fallback{"Failed to fetch purchase history", "Network error fetching purchase history"}
	addToCartText      = fallback{"Failed to add to cart", "Network error adding to cart"}
	updateQuantityText = fallback{"Failed to update cart quantity", "Network error updating cart quantity"}
	deleteItemText     = fallback{"Failed to delete item from cart", "Network error deleting item from cart"}
	clearCartText      = fallback{"Failed to clear cart", "Network error clearing cart"}
	checkoutText       = fallback{"Checkout failed", "Network error during checkout"}
	directCheckoutText = fallback{"Direct checkout failed", "Network error during direct checkout"}
)

// ParseHistoryFailed is shown when the history body cannot be decoded.
const ParseHistoryFailed = "Failed to parse purchase history"

// failureMessage picks the most specific text for a failed inventory call:
// the structured message, then the raw body, then the fallback.
func failureMessage(err error, fb fallback) string {
	var respErr *api.ResponseError
	if errors.As(err, &respErr) {
		if parsed, ok := respErr.ErrorResponse(); ok && strings.TrimSpace(parsed.Message) != "" {
			return parsed.Text()
		}
		if respErr.HasBody() {
			return respErr.RawBody()
		}
		return fb.generic
	}
	var transportErr *api.TransportError
	if errors.As(err, &transportErr) {
		return fb.network
	}
	return fb.generic
}

// Auth messages.
const (
	authErrorLabel   = "Terjadi kesalahan"
	authEmptyMessage = "Terjadi kesalahan."
	authUnknownError = "Terjadi kesalahan tidak dikenal."
	authNetworkError = "Terjadi kesalahan jaringan."
)

// authErrorMessage formats auth failures: a structured body shows its message
// and details, any other body is shown raw behind a label.
func authErrorMessage(err error) string {
	var respErr *api.ResponseError
	if errors.As(err, &respErr) {
		if !respErr.HasBody() {
			return authUnknownError
		}
		parsed, ok := respErr.ErrorResponse()
		if !ok {
			return fmt.Sprintf("%s: %s", authErrorLabel, respErr.RawBody())
		}
		if strings.TrimSpace(parsed.Message) == "" {
			parsed.Message = authErrorLabel
			if text := parsed.Text(); text != authErrorLabel {
				return text
			}
			return authEmptyMessage
		}
		return parsed.Text()
	}
	var transportErr *api.TransportError
	if errors.As(err, &transportErr) {
		return authNetworkError
	}
	return fmt.Sprintf("%s tidak dikenal: %v", authErrorLabel, err)
}
