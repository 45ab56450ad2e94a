package backend

import (
	"fmt"

	"inventoritoko/internal/models"
	"inventoritoko/internal/repositories"
	"inventoritoko/pkg/rabbitmq"

	"go.uber.org/zap"
)

// HistoryTimeLayout is how transaction timestamps are sent: UTC with
// milliseconds and a literal Z.
const HistoryTimeLayout = "2006-01-02T15:04:05.000Z"

// StoreService handles catalog, cart, checkout and history.
type StoreService struct {
	products repositories.ProductRepository
	carts    repositories.CartRepository
	txs      repositories.TransactionRepository
	events   rabbitmq.Publisher
	logger   *zap.Logger
}

// NewStoreService creates a StoreService. events may be nil.
func NewStoreService(products repositories.ProductRepository, carts repositories.CartRepository, txs repositories.TransactionRepository, events rabbitmq.Publisher, logger *zap.Logger) *StoreService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoreService{products: products, carts: carts, txs: txs, events: events, logger: logger}
}

// Products lists the catalog.
func (s *StoreService) Products() ([]models.Product, error) {
	records, err := s.products.GetAll()
	if err != nil {
		return nil, err
	}
	out := make([]models.Product, 0, len(records))
	for _, r := range records {
		out = append(out, r.ToProduct())
	}
	return out, nil
}

// Product returns one product.
func (s *StoreService) Product(id uint) (*models.Product, error) {
	record, err := s.products.GetByID(id)
	if err != nil {
		return nil, err
	}
	p := record.ToProduct()
	return &p, nil
}

// Cart lists the user's cart with products embedded.
func (s *StoreService) Cart(userID uint) ([]models.CartItem, error) {
	lines, err := s.carts.List(userID)
	if err != nil {
		return nil, err
	}
	out := make([]models.CartItem, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.ToCartItem())
	}
	return out, nil
}

// AddToCart adds to a line, creating it if needed.
func (s *StoreService) AddToCart(userID uint, req models.AddToCartRequest) error {
	return s.carts.Add(userID, uint(req.ProductID), req.Quantity)
}

// UpdateQuantity sets a line's quantity; zero removes the line.
func (s *StoreService) UpdateQuantity(userID uint, productID uint, quantity int) error {
	return s.carts.SetQuantity(userID, productID, quantity)
}

// RemoveFromCart deletes a line.
func (s *StoreService) RemoveFromCart(userID, productID uint) error {
	return s.carts.Remove(userID, productID)
}

// ClearCart empties the cart.
func (s *StoreService) ClearCart(userID uint) error {
	return s.carts.Clear(userID)
}

// Checkout buys the cart.
func (s *StoreService) Checkout(userID uint) (*models.CheckoutResponse, error) {
	rec, err := s.txs.CheckoutCart(userID)
	if err != nil {
		return nil, err
	}
	s.announce(rec, false)
	return receipt(rec), nil
}

// DirectCheckout buys a single product.
func (s *StoreService) DirectCheckout(userID uint, req models.DirectCheckoutRequest) (*models.CheckoutResponse, error) {
	rec, err := s.txs.DirectCheckout(userID, uint(req.ProductID), req.Quantity)
	if err != nil {
		return nil, err
	}
	s.announce(rec, true)
	return receipt(rec), nil
}

// History flattens the user's transactions into one row per item, repeating
// the transaction fields. Money is sent as fixed two-decimal strings.
func (s *StoreService) History(userID uint) ([]models.PurchaseHistoryItem, error) {
	txs, err := s.txs.History(userID)
	if err != nil {
		return nil, err
	}
	rows := make([]models.PurchaseHistoryItem, 0)
	for _, tx := range txs {
		total := models.Some(tx.TotalPrice.StringFixed(2))
		created := models.Some(tx.CreatedAt.UTC().Format(HistoryTimeLayout))
		for _, item := range tx.Items {
			row := models.PurchaseHistoryItem{
				TransactionID:         int(tx.ID),
				TransactionTotalPrice: total,
				TransactionCreatedAt:  created,
				ItemID:                int(item.ID),
				ProductID:             int(item.ProductID),
				Quantity:              item.Quantity,
				ItemPrice:             models.Some(item.Price.StringFixed(2)),
				ProductName:           item.Product.Name,
			}
			if item.Product.Image != nil {
				row.ProductImage = models.Some(*item.Product.Image)
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// Seed inserts the given products when the catalog is empty.
func (s *StoreService) Seed(products []models.ProductRecord) error {
	existing, err := s.products.GetAll()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for i := range products {
		if err := s.products.Create(&products[i]); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", products[i].Name, err)
		}
	}
	return nil
}

// announce publishes a checkout event. Broker failures never fail the
// purchase.
func (s *StoreService) announce(rec *models.TransactionRecord, direct bool) {
	if s.events == nil {
		return
	}
	event := rabbitmq.CheckoutEvent{
		TransactionID: rec.ID,
		UserID:        rec.UserID,
		TotalPrice:    rec.TotalPrice.StringFixed(2),
		Direct:        direct,
		CreatedAt:     rec.CreatedAt,
	}
	for _, item := range rec.Items {
		event.Items = append(event.Items, rabbitmq.CheckoutEventItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price.StringFixed(2),
		})
	}
	if err := s.events.PublishCheckout(event); err != nil {
		s.logger.Warn("failed to publish checkout event", zap.Uint("transaction_id", rec.ID), zap.Error(err))
	}
}

func receipt(rec *models.TransactionRecord) *models.CheckoutResponse {
	id := int(rec.ID)
	total := rec.TotalPrice.InexactFloat64()
	return &models.CheckoutResponse{Message: "Checkout successful", TransactionID: &id, TotalPrice: &total}
}
