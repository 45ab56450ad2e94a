package services_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"inventoritoko/internal/models"
	"inventoritoko/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func cartLine(productID, quantity int, price string) models.CartItem {
	return models.CartItem{
		ID:        productID * 10,
		UserID:    1,
		ProductID: productID,
		Quantity:  quantity,
		Product:   &models.Product{ID: productID, Name: "P", Price: decimal.RequireFromString(price), Stock: 99},
	}
}

func TestCartService_AddToCartShowsRefetchedState(t *testing.T) {
	mockAPI := new(MockStoreAPI)
	cart := services.NewCartService(mockAPI, nil, nil)

	mockAPI.On("AddToCart", models.AddToCartRequest{ProductID: 7, Quantity: 2}).
		Return(&models.MessageResponse{Message: "Added"}, nil).Once()
	// The server merged with an existing line: 5, not the 2 requested.
	mockAPI.On("Cart").Return([]models.CartItem{cartLine(7, 5, "15000.00")}, nil).Once()

	assert.True(t, cart.AddToCart(7, 2))

	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.True(t, cart.Total().Equal(decimal.NewFromInt(75000)))

	ok, pending := cart.Result(services.ActionAddToCart)
	assert.True(t, pending)
	assert.True(t, ok)
	_, hasErr := cart.Error()
	assert.False(t, hasErr)
	mockAPI.AssertExpectations(t)
}

func TestCartService_MutationsRefetch(t *testing.T) {
	tests := []struct {
		name   string
		action services.CartAction
		setup  func(m *MockStoreAPI)
		run    func(c *services.CartService) bool
	}{
		{
			name:   "update",
			action: services.ActionUpdateQuantity,
			setup: func(m *MockStoreAPI) {
				m.On("UpdateCartQuantity", 3, models.UpdateCartQuantityRequest{Quantity: 4}).Return(&models.MessageResponse{}, nil).Once()
			},
			run: func(c *services.CartService) bool { return c.UpdateQuantity(3, 4) },
		},
		{
			name:   "delete",
			action: services.ActionDeleteItem,
			setup: func(m *MockStoreAPI) {
				m.On("DeleteCartItem", 3).Return(&models.MessageResponse{}, nil).Once()
			},
			run: func(c *services.CartService) bool { return c.DeleteItem(3) },
		},
		{
			name:   "clear",
			action: services.ActionClearCart,
			setup: func(m *MockStoreAPI) {
				m.On("ClearCart").Return(&models.MessageResponse{}, nil).Once()
			},
			run: func(c *services.CartService) bool { return c.ClearCart() },
		},
		{
			name:   "checkout",
			action: services.ActionCheckout,
			setup: func(m *MockStoreAPI) {
				id := 9
				m.On("Checkout").Return(&models.CheckoutResponse{Message: "ok", TransactionID: &id}, nil).Once()
			},
			run: func(c *services.CartService) bool { return c.Checkout() },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAPI := new(MockStoreAPI)
			cart := services.NewCartService(mockAPI, nil, nil)
			tt.setup(mockAPI)
			mockAPI.On("Cart").Return([]models.CartItem{cartLine(1, 1, "10")}, nil).Once()

			assert.True(t, tt.run(cart))
			ok, pending := cart.Result(tt.action)
			assert.True(t, pending && ok)
			assert.Len(t, cart.Items(), 1)
			mockAPI.AssertExpectations(t)
		})
	}
}

func TestCartService_DirectCheckoutDoesNotRefetch(t *testing.T) {
	mockAPI := new(MockStoreAPI)
	cart := services.NewCartService(mockAPI, nil, nil)

	id, total := 4, 30000.0
	mockAPI.On("DirectCheckout", models.DirectCheckoutRequest{ProductID: 2, Quantity: 3}).
		Return(&models.CheckoutResponse{Message: "Checkout berhasil", TransactionID: &id, TotalPrice: &total}, nil).Once()

	assert.True(t, cart.DirectCheckout(2, 3))
	receipt := cart.LastCheckout()
	require.NotNil(t, receipt)
	assert.Equal(t, 4, *receipt.TransactionID)
	mockAPI.AssertNotCalled(t, "Cart")
}

func TestCartService_FailureMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"structured", rejected(400, `{"message":"Stok tidak cukup","detail":["sisa 1"]}`), "Stok tidak cukup. Detail: sisa 1"},
		{"structured without detail", rejected(404, `{"message":"Product not found"}`), "Product not found"},
		{"plain text body", rejected(500, "upstream exploded"), "upstream exploded"},
		{"empty body", rejected(502, "  "), "Failed to add to cart"},
		{"no response", unreachable(), "Network error adding to cart"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAPI := new(MockStoreAPI)
			cart := services.NewCartService(mockAPI, nil, nil)
			mockAPI.On("AddToCart", mock.Anything).Return(nil, tt.err).Once()

			assert.False(t, cart.AddToCart(1, 1))
			ok, pending := cart.Result(services.ActionAddToCart)
			assert.True(t, pending)
			assert.False(t, ok)
			msg, hasErr := cart.Error()
			assert.True(t, hasErr)
			assert.Equal(t, tt.want, msg)
			mockAPI.AssertNotCalled(t, "Cart")
		})
	}
}

func TestCartService_NetworkMessagePerAction(t *testing.T) {
	mockAPI := new(MockStoreAPI)
	cart := services.NewCartService(mockAPI, nil, nil)
	mockAPI.On("DirectCheckout", mock.Anything).Return(nil, unreachable()).Once()
	mockAPI.On("DeleteCartItem", 5).Return(nil, unreachable()).Once()

	cart.DirectCheckout(5, 1)
	msg, _ := cart.Error()
	assert.Equal(t, "Network error during direct checkout", msg)

	cart.DeleteItem(5)
	msg, _ = cart.Error()
	assert.Equal(t, "Network error deleting item from cart", msg)
}

func TestCartService_ClearErrorIsIdempotent(t *testing.T) {
	mockAPI := new(MockStoreAPI)
	cart := services.NewCartService(mockAPI, nil, nil)
	mockAPI.On("ClearCart").Return(nil, rejected(500, "")).Once()

	cart.ClearCart()
	_, hasErr := cart.Error()
	require.True(t, hasErr)

	assert.True(t, cart.ClearError())
	_, hasErr = cart.Error()
	assert.False(t, hasErr)
	assert.False(t, cart.ClearError(), "second clear is a no-op")

	assert.True(t, cart.ClearResult(services.ActionClearCart))
	assert.False(t, cart.ClearResult(services.ActionClearCart))
	_, pending := cart.Result(services.ActionClearCart)
	assert.False(t, pending)
	assert.False(t, cart.ClearResult("bogus"))
}

func TestCartService_SlotsAreNotAutoCleared(t *testing.T) {
	mockAPI := new(MockStoreAPI)
	cart := services.NewCartService(mockAPI, nil, nil)
	mockAPI.On("AddToCart", mock.Anything).Return(nil, rejected(400, `{"message":"nope"}`)).Once()
	mockAPI.On("UpdateCartQuantity", 1, mock.Anything).Return(&models.MessageResponse{}, nil).Once()
	mockAPI.On("Cart").Return([]models.CartItem{}, nil).Once()

	cart.AddToCart(1, 1)
	cart.UpdateQuantity(1, 2)

	ok, pending := cart.Result(services.ActionAddToCart)
	assert.True(t, pending, "a later action leaves other slots alone")
	assert.False(t, ok)
	msg, hasErr := cart.Error()
	assert.True(t, hasErr, "a later success does not clear the error")
	assert.Equal(t, "nope", msg)
}

func TestCartService_RefetchFailureKeepsActionSuccess(t *testing.T) {
	mockAPI := new(MockStoreAPI)
	cart := services.NewCartService(mockAPI, nil, nil)
	mockAPI.On("AddToCart", mock.Anything).Return(&models.MessageResponse{}, nil).Once()
	mockAPI.On("Cart").Return(nil, unreachable()).Once()

	assert.True(t, cart.AddToCart(1, 1))
	ok, _ := cart.Result(services.ActionAddToCart)
	assert.True(t, ok)
	msg, _ := cart.Error()
	assert.Equal(t, "Network error fetching cart items", msg)
	assert.Empty(t, cart.Items())
}

func TestCartService_PublishesEachOutcomeOnce(t *testing.T) {
	mockAPI := new(MockStoreAPI)
	bus := services.NewBus()
	cart := services.NewCartService(mockAPI, bus, nil)

	var got []services.Event
	require.NoError(t, bus.Subscribe(services.TopicCartResult, func(e services.Event) {
		got = append(got, e)
	}))

	mockAPI.On("AddToCart", mock.Anything).Return(&models.MessageResponse{}, nil).Once()
	mockAPI.On("Cart").Return([]models.CartItem{}, nil).Once()
	mockAPI.On("Checkout").Return(nil, rejected(400, `{"message":"Keranjang kosong"}`)).Once()

	cart.AddToCart(1, 1)
	cart.Checkout()

	require.Len(t, got, 2)
	assert.Equal(t, services.Event{Action: "addToCart", Success: true}, got[0])
	assert.Equal(t, services.Event{Action: "checkout", Message: "Keranjang kosong"}, got[1])
}

func TestCartService_SerializesMutations(t *testing.T) {
	mockAPI := new(MockStoreAPI)
	cart := services.NewCartService(mockAPI, nil, nil)

	var inFlight, maxInFlight atomic.Int32
	track := func(mock.Arguments) {
		n := inFlight.Add(1)
		for {
			m := maxInFlight.Load()
			if n <= m || maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
	}
	mockAPI.On("UpdateCartQuantity", mock.Anything, mock.Anything).Run(track).Return(&models.MessageResponse{}, nil)
	mockAPI.On("DeleteCartItem", mock.Anything).Run(track).Return(&models.MessageResponse{}, nil)
	mockAPI.On("Cart").Run(track).Return([]models.CartItem{}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); cart.UpdateQuantity(1, 3) }()
		go func() { defer wg.Done(); cart.DeleteItem(1) }()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInFlight.Load())
	mockAPI.AssertNumberOfCalls(t, "Cart", 10)
	assert.False(t, cart.Loading())
}
