package backend

import (
	"inventoritoko/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultProducts is the demo catalog loaded into an empty stub database.
func DefaultProducts() []models.ProductRecord {
	desc := func(s string) *string { return &s }
	return []models.ProductRecord{
		{Name: "Beras Premium 5kg", Price: decimal.NewFromInt(75000), Stock: 40, Description: desc("Beras pulen kualitas premium")},
		{Name: "Minyak Goreng 2L", Price: decimal.NewFromInt(36500), Stock: 25, Description: desc("Minyak goreng sawit kemasan pouch")},
		{Name: "Gula Pasir 1kg", Price: decimal.NewFromInt(17000), Stock: 60},
		{Name: "Kopi Bubuk 200g", Price: decimal.RequireFromString("24999.50"), Stock: 15, Description: desc("Kopi robusta giling halus")},
		{Name: "Teh Celup isi 25", Price: decimal.NewFromInt(8500), Stock: 0},
	}
}
