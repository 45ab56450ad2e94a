package services

import (
	"sync"
	"sync/atomic"

	"inventoritoko/internal/models"

	"github.com/asaskevich/EventBus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartAction names a cart or checkout mutation. Each has its own result slot.
type CartAction string

const (
	ActionAddToCart      CartAction = "addToCart"
	ActionUpdateQuantity CartAction = "updateQuantity"
	ActionDeleteItem     CartAction = "deleteItem"
	ActionClearCart      CartAction = "clearCart"
	ActionCheckout       CartAction = "checkout"
	ActionDirectCheckout CartAction = "directCheckout"
)

// CartActions lists every action in a stable order.
var CartActions = []CartAction{
	ActionAddToCart, ActionUpdateQuantity, ActionDeleteItem,
	ActionClearCart, ActionCheckout, ActionDirectCheckout,
}

// CartAPI is the part of the REST client the cart needs.
type CartAPI interface {
	Cart() ([]models.CartItem, error)
	AddToCart(req models.AddToCartRequest) (*models.MessageResponse, error)
	UpdateCartQuantity(productID int, req models.UpdateCartQuantityRequest) (*models.MessageResponse, error)
	DeleteCartItem(productID int) (*models.MessageResponse, error)
	ClearCart() (*models.MessageResponse, error)
	Checkout() (*models.CheckoutResponse, error)
	DirectCheckout(req models.DirectCheckoutRequest) (*models.CheckoutResponse, error)
}

// CartService coordinates cart and checkout calls for one user session.
//
// Every action resets its result slot, calls the API and records success or
// failure. Successful cart changes are followed by a full refetch; the local
// list is only ever replaced by what the server returns. Mutations and
// fetches run one at a time so refetches cannot land out of order.
type CartService struct {
	api    CartAPI
	bus    EventBus.Bus
	logger *zap.Logger

	// serializes call+refetch sequences
	mu sync.Mutex

	state        sync.RWMutex
	items        []models.CartItem
	lastCheckout *models.CheckoutResponse

	loading atomic.Bool
	results map[CartAction]*Slot[bool]
	errMsg  Slot[string]
}

// NewCartService creates a CartService. bus may be nil.
func NewCartService(api CartAPI, bus EventBus.Bus, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	results := make(map[CartAction]*Slot[bool], len(CartActions))
	for _, a := range CartActions {
		results[a] = &Slot[bool]{}
	}
	return &CartService{
		api:     api,
		bus:     bus,
		logger:  logger,
		items:   []models.CartItem{},
		results: results,
	}
}

// FetchCart reloads the cart from the server.
func (s *CartService) FetchCart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchLocked()
}

func (s *CartService) fetchLocked() bool {
	s.loading.Store(true)
	defer s.loading.Store(false)

	items, err := s.api.Cart()
	if err != nil {
		msg := failureMessage(err, fetchCartText)
		s.errMsg.Set(msg)
		s.logger.Error("fetch cart failed", zap.String("message", msg), zap.Error(err))
		return false
	}
	if items == nil {
		items = []models.CartItem{}
	}
	s.state.Lock()
	s.items = items
	s.state.Unlock()
	s.logger.Debug("cart fetched", zap.Int("items", len(items)))
	return true
}

// AddToCart adds quantity of a product and refetches on success.
func (s *CartService) AddToCart(productID, quantity int) bool {
	return s.run(ActionAddToCart, addToCartText, true, func() error {
		_, err := s.api.AddToCart(models.AddToCartRequest{ProductID: productID, Quantity: quantity})
		return err
	}, zap.Int("product_id", productID), zap.Int("quantity", quantity))
}

// UpdateQuantity sets a line's quantity and refetches on success.
func (s *CartService) UpdateQuantity(productID, quantity int) bool {
	return s.run(ActionUpdateQuantity, updateQuantityText, true, func() error {
		_, err := s.api.UpdateCartQuantity(productID, models.UpdateCartQuantityRequest{Quantity: quantity})
		return err
	}, zap.Int("product_id", productID), zap.Int("quantity", quantity))
}

// DeleteItem removes a product from the cart and refetches on success.
func (s *CartService) DeleteItem(productID int) bool {
	return s.run(ActionDeleteItem, deleteItemText, true, func() error {
		_, err := s.api.DeleteCartItem(productID)
		return err
	}, zap.Int("product_id", productID))
}

// ClearCart empties the cart and refetches on success.
func (s *CartService) ClearCart() bool {
	return s.run(ActionClearCart, clearCartText, true, func() error {
		_, err := s.api.ClearCart()
		return err
	})
}

// Checkout buys the cart. The receipt is kept in LastCheckout and the cart is
// refetched, since the server empties it.
func (s *CartService) Checkout() bool {
	return s.run(ActionCheckout, checkoutText, true, func() error {
		receipt, err := s.api.Checkout()
		if err == nil {
			s.setReceipt(receipt)
		}
		return err
	})
}

// DirectCheckout buys one product without touching the cart, so there is no
// refetch.
func (s *CartService) DirectCheckout(productID, quantity int) bool {
	return s.run(ActionDirectCheckout, directCheckoutText, false, func() error {
		receipt, err := s.api.DirectCheckout(models.DirectCheckoutRequest{ProductID: productID, Quantity: quantity})
		if err == nil {
			s.setReceipt(receipt)
		}
		return err
	}, zap.Int("product_id", productID), zap.Int("quantity", quantity))
}

func (s *CartService) run(action CartAction, fb fallback, refetch bool, call func() error, fields ...zap.Field) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot := s.results[action]
	slot.Clear()
	fields = append(fields, zap.String("action", string(action)))

	if err := call(); err != nil {
		msg := failureMessage(err, fb)
		slot.Set(false)
		s.errMsg.Set(msg)
		s.logger.Error("cart action failed", append(fields, zap.String("message", msg), zap.Error(err))...)
		publish(s.bus, TopicCartResult, Event{Action: string(action), Message: msg})
		return false
	}

	slot.Set(true)
	s.logger.Info("cart action succeeded", fields...)
	if refetch {
		s.fetchLocked()
	}
	publish(s.bus, TopicCartResult, Event{Action: string(action), Success: true})
	return true
}

func (s *CartService) setReceipt(receipt *models.CheckoutResponse) {
	s.state.Lock()
	defer s.state.Unlock()
	s.lastCheckout = receipt
}

// Result returns an action's pending outcome.
func (s *CartService) Result(action CartAction) (success bool, ok bool) {
	slot, found := s.results[action]
	if !found {
		return false, false
	}
	return slot.Get()
}

// ClearResult acknowledges an action's outcome.
func (s *CartService) ClearResult(action CartAction) bool {
	slot, found := s.results[action]
	if !found {
		return false
	}
	return slot.Clear()
}

// Error returns the pending error message.
func (s *CartService) Error() (string, bool) {
	return s.errMsg.Get()
}

// ClearError acknowledges the error message; only the first call after a
// failure reports true.
func (s *CartService) ClearError() bool {
	return s.errMsg.Clear()
}

// Items returns a copy of the cart as last fetched.
func (s *CartService) Items() []models.CartItem {
	s.state.RLock()
	defer s.state.RUnlock()
	return append([]models.CartItem(nil), s.items...)
}

// Total sums the line subtotals of the current cart.
func (s *CartService) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items() {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Loading reports whether a cart fetch is in flight.
func (s *CartService) Loading() bool {
	return s.loading.Load()
}

// LastCheckout returns the most recent checkout receipt, or nil.
func (s *CartService) LastCheckout() *models.CheckoutResponse {
	s.state.RLock()
	defer s.state.RUnlock()
	return s.lastCheckout
}
