package services_test

import (
	"sync"
	"testing"
	"time"

	"inventoritoko/internal/models"
	"inventoritoko/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_FetchProducts(t *testing.T) {
	mockAPI := new(MockStoreAPI)
	catalog := services.NewCatalogService(mockAPI, nil)
	mockAPI.On("Products").Return([]models.Product{{ID: 1, Name: "Kopi", Price: decimal.NewFromInt(15000)}}, nil).Once()

	assert.True(t, catalog.FetchProducts())
	require.Len(t, catalog.Products(), 1)
	assert.Equal(t, "Kopi", catalog.Products()[0].Name)
	assert.False(t, catalog.Loading())
}

func TestCatalogService_ConcurrentFetchSharesRequest(t *testing.T) {
	mockAPI := new(MockStoreAPI)
	catalog := services.NewCatalogService(mockAPI, nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	mockAPI.On("Products").Run(func(mock.Arguments) {
		once.Do(func() { close(entered) })
		<-release
	}).Return([]models.Product{}, nil)

	var wg sync.WaitGroup
	results := make([]bool, 3)
	wg.Add(1)
	go func() { defer wg.Done(); results[0] = catalog.FetchProducts() }()
	<-entered
	for i := 1; i < 3; i++ {
		wg.Add(1)
		go func(i int) { defer wg.Done(); results[i] = catalog.FetchProducts() }(i)
	}
	time.Sleep(50 * time.Millisecond)
	assert.True(t, catalog.Loading())
	close(release)
	wg.Wait()

	assert.Equal(t, []bool{true, true, true}, results)
	mockAPI.AssertNumberOfCalls(t, "Products", 1)
}

func TestCatalogService_FetchProductFailure(t *testing.T) {
	mockAPI := new(MockStoreAPI)
	catalog := services.NewCatalogService(mockAPI, nil)
	p := &models.Product{ID: 3, Name: "Gula"}
	mockAPI.On("Product", 3).Return(p, nil).Once()
	mockAPI.On("Product", 4).Return(nil, rejected(404, `{"message":"Product not found"}`)).Once()

	require.True(t, catalog.FetchProduct(3))
	assert.Equal(t, p, catalog.Selected())
	direct, qty := catalog.DirectCheckout()
	assert.Equal(t, p, direct)
	assert.Equal(t, 1, qty)

	assert.False(t, catalog.FetchProduct(4))
	assert.Nil(t, catalog.Selected(), "selection is dropped while loading")
	msg, ok := catalog.Error()
	assert.True(t, ok)
	assert.Equal(t, "Product not found", msg)
	assert.True(t, catalog.ClearError())
	assert.False(t, catalog.ClearError())
}

func TestCatalogService_DirectCheckoutQuantityClamped(t *testing.T) {
	catalog := services.NewCatalogService(new(MockStoreAPI), nil)
	assert.Equal(t, 1, catalog.SetDirectCheckoutQuantity(0))
	assert.Equal(t, 1, catalog.SetDirectCheckoutQuantity(-4))
	assert.Equal(t, 6, catalog.SetDirectCheckoutQuantity(6))
	_, qty := catalog.DirectCheckout()
	assert.Equal(t, 6, qty)
}
