package services

import (
	"sync"
	"sync/atomic"

	"inventoritoko/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CatalogAPI is the part of the REST client the catalog needs.
type CatalogAPI interface {
	Products() ([]models.Product, error)
	Product(id int) (*models.Product, error)
}

// CatalogService holds the product list, the product being viewed and the
// direct checkout selection.
type CatalogService struct {
	api    CatalogAPI
	logger *zap.Logger
	group  singleflight.Group

	mu             sync.RWMutex
	products       []models.Product
	selected       *models.Product
	directProduct  *models.Product
	directQuantity int

	loading atomic.Int32
	errMsg  Slot[string]
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(api CatalogAPI, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{api: api, logger: logger, products: []models.Product{}, directQuantity: 1}
}

// FetchProducts replaces the product list. Concurrent callers share one
// request.
func (s *CatalogService) FetchProducts() bool {
	v, _, _ := s.group.Do("products", func() (interface{}, error) {
		s.errMsg.Clear()
		s.loading.Add(1)
		defer s.loading.Add(-1)

		products, err := s.api.Products()
		if err != nil {
			msg := failureMessage(err, fetchProductsText)
			s.errMsg.Set(msg)
			s.logger.Error("fetch products failed", zap.String("message", msg), zap.Error(err))
			return false, nil
		}
		if products == nil {
			products = []models.Product{}
		}
		s.mu.Lock()
		s.products = products
		s.mu.Unlock()
		return true, nil
	})
	return v.(bool)
}

// FetchProduct loads one product and makes it the selected and direct
// checkout product. Both are cleared while the request runs.
func (s *CatalogService) FetchProduct(id int) bool {
	s.errMsg.Clear()
	s.loading.Add(1)
	defer s.loading.Add(-1)

	s.mu.Lock()
	s.selected, s.directProduct = nil, nil
	s.mu.Unlock()

	product, err := s.api.Product(id)
	if err != nil {
		msg := failureMessage(err, fetchProductText)
		s.errMsg.Set(msg)
		s.logger.Error("fetch product failed", zap.Int("product_id", id), zap.String("message", msg), zap.Error(err))
		return false
	}
	s.mu.Lock()
	s.selected, s.directProduct = product, product
	s.mu.Unlock()
	return true
}

// SetDirectCheckoutQuantity sets the quantity for a direct purchase, never
// below one.
func (s *CatalogService) SetDirectCheckoutQuantity(n int) int {
	if n < 1 {
		n = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.directQuantity = n
	return n
}

// DirectCheckout returns the product and quantity chosen for direct purchase.
func (s *CatalogService) DirectCheckout() (*models.Product, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.directProduct, s.directQuantity
}

// Products returns a copy of the product list.
func (s *CatalogService) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Product(nil), s.products...)
}

// Selected returns the product being viewed, or nil.
func (s *CatalogService) Selected() *models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Loading reports whether a catalog request is in flight.
func (s *CatalogService) Loading() bool { return s.loading.Load() > 0 }

// Error returns the pending error message.
func (s *CatalogService) Error() (string, bool) { return s.errMsg.Get() }

// ClearError acknowledges the error message.
func (s *CatalogService) ClearError() bool { return s.errMsg.Clear() }
