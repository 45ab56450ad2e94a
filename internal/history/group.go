package history

import "inventoritoko/internal/models"

// Transaction is one purchase with its line items, rebuilt from flat rows.
// Transaction-level fields come from the first row seen for the id.
type Transaction struct {
	ID         int
	TotalPrice models.NullString
	CreatedAt  models.NullString
	Items      []models.PurchaseHistoryItem
}

// Group folds rows into transactions, keeping the order in which each
// transaction id first appears and the arrival order of its items.
func Group(items []models.PurchaseHistoryItem) []Transaction {
	index := make(map[int]int)
	txs := make([]Transaction, 0)
	for _, item := range items {
		i, ok := index[item.TransactionID]
		if !ok {
			i = len(txs)
			index[item.TransactionID] = i
			txs = append(txs, Transaction{
				ID:         item.TransactionID,
				TotalPrice: item.TransactionTotalPrice,
				CreatedAt:  item.TransactionCreatedAt,
			})
		}
		txs[i].Items = append(txs[i].Items, item)
	}
	return txs
}
