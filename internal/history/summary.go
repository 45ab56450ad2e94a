package history

import (
	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"

	"inventoritoko/internal/format"
)

// Summary aggregates the coerced transaction totals.
type Summary struct {
	Transactions int
	LineItems    int
	Total        decimal.Decimal
	Average      decimal.Decimal
	Median       decimal.Decimal
	// Unparsed counts transactions whose total was absent or not numeric.
	Unparsed int
}

// Summarize computes spend statistics over grouped history.
func Summarize(txs []Transaction) Summary {
	s := Summary{Transactions: len(txs), Total: decimal.Zero, Average: decimal.Zero, Median: decimal.Zero}
	if len(txs) == 0 {
		return s
	}
	totals := make(stats.Float64Data, 0, len(txs))
	for _, tx := range txs {
		s.LineItems += len(tx.Items)
		amount, src := format.ParseAmount(tx.TotalPrice)
		if src != format.AmountParsed {
			s.Unparsed++
		}
		s.Total = s.Total.Add(amount)
		totals = append(totals, amount.InexactFloat64())
	}
	if mean, err := totals.Mean(); err == nil {
		s.Average = decimal.NewFromFloat(mean).Round(2)
	}
	if median, err := totals.Median(); err == nil {
		s.Median = decimal.NewFromFloat(median).Round(2)
	}
	return s
}
