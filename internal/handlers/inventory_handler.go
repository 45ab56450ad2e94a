package handlers

import (
	"errors"

	"inventoritoko/internal/backend"
	"inventoritoko/internal/middleware"
	"inventoritoko/internal/models"
	"inventoritoko/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// InventoryHandler serves the catalog, cart, checkout and history routes.
type InventoryHandler struct {
	store    *backend.StoreService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(store *backend.StoreService, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{store: store, validate: validator.New(), logger: logger}
}

// RegisterRoutes registers the inventory routes. Everything except the
// catalog goes through auth.
func (h *InventoryHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	inv := router.Group("/inventory")
	inv.Get("/products", h.GetProducts)
	inv.Get("/products/:id", h.GetProduct)

	inv.Get("/cart", auth, h.GetCart)
	inv.Post("/cart", auth, h.AddToCart)
	inv.Put("/cart/:productId", auth, h.UpdateCartQuantity)
	inv.Delete("/cart/:productId", auth, h.DeleteCartItem)
	inv.Delete("/cart", auth, h.ClearCart)
	inv.Post("/checkout", auth, h.Checkout)
	inv.Post("/direct-checkout", auth, h.DirectCheckout)
	inv.Get("/history", auth, h.GetHistory)
}

// GetProducts lists the catalog.
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.store.Products()
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(products)
}

// GetProduct returns one product.
func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Invalid product ID"})
	}
	product, err := h.store.Product(id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(product)
}

// GetCart lists the caller's cart.
func (h *InventoryHandler) GetCart(c *fiber.Ctx) error {
	items, err := h.store.Cart(middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(items)
}

// AddToCart adds a product to the caller's cart.
func (h *InventoryHandler) AddToCart(c *fiber.Ctx) error {
	var req models.AddToCartRequest
	if ok, err := parseAndValidate(c, h.validate, h.logger, &req); !ok {
		return err
	}
	if err := h.store.AddToCart(middleware.UserID(c), req); err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.MessageResponse{Message: "Product added to cart"})
}

// UpdateCartQuantity replaces the quantity of a cart line.
func (h *InventoryHandler) UpdateCartQuantity(c *fiber.Ctx) error {
	productID, ok := paramID(c, "productId")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Invalid product ID"})
	}
	var req models.UpdateCartQuantityRequest
	if ok, err := parseAndValidate(c, h.validate, h.logger, &req); !ok {
		return err
	}
	if err := h.store.UpdateQuantity(middleware.UserID(c), productID, req.Quantity); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(models.MessageResponse{Message: "Cart updated"})
}

// DeleteCartItem removes one line from the cart.
func (h *InventoryHandler) DeleteCartItem(c *fiber.Ctx) error {
	productID, ok := paramID(c, "productId")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Message: "Invalid product ID"})
	}
	if err := h.store.RemoveFromCart(middleware.UserID(c), productID); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(models.MessageResponse{Message: "Product removed from cart"})
}

// ClearCart empties the cart.
func (h *InventoryHandler) ClearCart(c *fiber.Ctx) error {
	if err := h.store.ClearCart(middleware.UserID(c)); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(models.MessageResponse{Message: "Cart cleared"})
}

// Checkout buys the whole cart.
func (h *InventoryHandler) Checkout(c *fiber.Ctx) error {
	receipt, err := h.store.Checkout(middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(receipt)
}

// DirectCheckout buys one product immediately.
func (h *InventoryHandler) DirectCheckout(c *fiber.Ctx) error {
	var req models.DirectCheckoutRequest
	if ok, err := parseAndValidate(c, h.validate, h.logger, &req); !ok {
		return err
	}
	receipt, err := h.store.DirectCheckout(middleware.UserID(c), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(receipt)
}

// GetHistory returns the caller's flat purchase history.
func (h *InventoryHandler) GetHistory(c *fiber.Ctx) error {
	rows, err := h.store.History(middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(rows)
}

// fail maps store errors to responses.
func (h *InventoryHandler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
			Message: "Data tidak ditemukan",
			Detail:  []string{err.Error()},
		})
	case errors.Is(err, repositories.ErrInsufficientStock):
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Message: "Stok tidak cukup",
			Detail:  []string{err.Error()},
		})
	case errors.Is(err, repositories.ErrEmptyCart):
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Message: "Keranjang kosong",
		})
	}
	h.logger.Error("inventory request failed", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		Message: "Internal server error",
	})
}
