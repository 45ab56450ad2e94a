package history

import (
	"fmt"
	"strings"

	"inventoritoko/internal/format"
	"inventoritoko/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// NoImagePlaceholderURL is shown for items without a product image.
const NoImagePlaceholderURL = "https://placehold.co/300x200/E0E0E0/000000?text=No+Image"

// ItemView is a history row with every derived display field filled in.
type ItemView struct {
	TransactionID int
	Date          string
	Total         string
	ProductName   string
	ImageURL      string
	QuantityLine  string
	Subtotal      string
}

// TransactionView groups item views under their transaction header.
type TransactionView struct {
	ID    int
	Date  string
	Total string
	Items []ItemView
}

// Presenter turns raw history rows into display strings. Coercion is lenient
// here: bad amounts render as zero, but are logged so they can be told apart
// from real zeros.
type Presenter struct {
	baseURL string
	dates   *format.DateFormatter
	logger  *zap.Logger
}

// NewPresenter creates a Presenter. baseURL prefixes relative image paths.
func NewPresenter(baseURL string, dates *format.DateFormatter, logger *zap.Logger) *Presenter {
	if dates == nil {
		dates = format.NewDateFormatter(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Presenter{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		dates:   dates,
		logger:  logger,
	}
}

// Item renders a single row.
func (p *Presenter) Item(item models.PurchaseHistoryItem) ItemView {
	unit := p.amount(item.ItemID, "itemPrice", item.ItemPrice)
	total := p.amount(item.ItemID, "transactionTotalPrice", item.TransactionTotalPrice)
	return ItemView{
		TransactionID: item.TransactionID,
		Date:          p.dates.Format(item.TransactionCreatedAt),
		Total:         format.Currency(total),
		ProductName:   item.ProductName,
		ImageURL:      p.ImageURL(item.ProductImage),
		QuantityLine:  fmt.Sprintf("Qty: %d x %s", item.Quantity, format.Currency(unit)),
		Subtotal:      format.Currency(unit.Mul(decimal.NewFromInt(int64(item.Quantity)))),
	}
}

// Transactions renders grouped history.
func (p *Presenter) Transactions(txs []Transaction) []TransactionView {
	views := make([]TransactionView, 0, len(txs))
	for _, tx := range txs {
		view := TransactionView{
			ID:    tx.ID,
			Date:  p.dates.Format(tx.CreatedAt),
			Total: format.Currency(p.amount(tx.ID, "transactionTotalPrice", tx.TotalPrice)),
		}
		for _, item := range tx.Items {
			view.Items = append(view.Items, p.Item(item))
		}
		views = append(views, view)
	}
	return views
}

// ImageURL resolves a product image against the API base URL.
func (p *Presenter) ImageURL(image models.NullString) string {
	if !image.Valid || image.String == "" {
		return NoImagePlaceholderURL
	}
	if strings.HasPrefix(image.String, "http://") || strings.HasPrefix(image.String, "https://") {
		return image.String
	}
	if !strings.HasPrefix(image.String, "/") {
		return p.baseURL + "/" + image.String
	}
	return p.baseURL + image.String
}

func (p *Presenter) amount(id int, field string, raw models.NullString) decimal.Decimal {
	value, src := format.ParseAmount(raw)
	switch src {
	case format.AmountInvalid:
		fields := []zap.Field{zap.Int("id", id), zap.String("field", field), zap.String("raw", raw.String)}
		if format.LooksLikeZero(raw.String) {
			p.logger.Debug("amount reads as zero", fields...)
		} else {
			p.logger.Warn("non-numeric amount coerced to zero", fields...)
		}
	case format.AmountAbsent:
		p.logger.Debug("amount absent, showing zero", zap.Int("id", id), zap.String("field", field))
	}
	return value
}
