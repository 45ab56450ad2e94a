package models

// PurchaseHistoryItem is one row of the flat purchase history: a single line
// item with its transaction's fields repeated. Money and timestamps are kept as
// the raw strings the API sent.
type PurchaseHistoryItem struct {
	TransactionID         int        `json:"transactionId"`
	TransactionTotalPrice NullString `json:"transactionTotalPrice"`
	TransactionCreatedAt  NullString `json:"transactionCreatedAt"`
	ItemID                int        `json:"itemId"`
	ProductID             int        `json:"productId"`
	Quantity              int        `json:"quantity"`
	ItemPrice             NullString `json:"itemPrice"`
	ProductName           string     `json:"productName"`
	ProductImage          NullString `json:"productImage"`
}
