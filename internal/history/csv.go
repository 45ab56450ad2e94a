package history

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"inventoritoko/internal/models"
)

type csvRow struct {
	TransactionID         int    `csv:"transaction_id"`
	TransactionCreatedAt  string `csv:"transaction_created_at"`
	TransactionTotalPrice string `csv:"transaction_total_price"`
	ItemID                int    `csv:"item_id"`
	ProductID             int    `csv:"product_id"`
	ProductName           string `csv:"product_name"`
	Quantity              int    `csv:"quantity"`
	ItemPrice             string `csv:"item_price"`
	ProductImage          string `csv:"product_image"`
}

// WriteCSV exports rows with their raw string values; absent values are
// written as empty cells.
func WriteCSV(w io.Writer, items []models.PurchaseHistoryItem) error {
	rows := make([]csvRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, csvRow{
			TransactionID:         item.TransactionID,
			TransactionCreatedAt:  item.TransactionCreatedAt.OrElse(""),
			TransactionTotalPrice: item.TransactionTotalPrice.OrElse(""),
			ItemID:                item.ItemID,
			ProductID:             item.ProductID,
			ProductName:           item.ProductName,
			Quantity:              item.Quantity,
			ItemPrice:             item.ItemPrice.OrElse(""),
			ProductImage:          item.ProductImage.OrElse(""),
		})
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write history csv: %w", err)
	}
	return nil
}
