package core

import (
	"math"

	"github.com/shopspring/decimal"
)

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// PercentChange is the relative change from previous to current in percent.
// It is 0 when either side is 0 or NaN, so an empty period never reports
// growth. The result is neither rounded nor clamped.
func PercentChange(current, previous float64) float64 {
	if current == 0 || previous == 0 || math.IsNaN(current) || math.IsNaN(previous) {
		return 0
	}
	return ((current - previous) / previous) * 100
}

// DirectionOf is up only for strictly positive changes; zero counts as down.
func DirectionOf(pct float64) Direction {
	if pct > 0 {
		return DirectionUp
	}
	return DirectionDown
}

// TrendSummary compares one transaction type across two periods.
type TrendSummary struct {
	Type     TransactionType `json:"type"`
	Current  decimal.Decimal `json:"current"`
	Previous decimal.Decimal `json:"previous"`
}

func (s TrendSummary) PercentChange() float64 {
	return PercentChange(s.Current.InexactFloat64(), s.Previous.InexactFloat64())
}

func (s TrendSummary) Direction() Direction {
	return DirectionOf(s.PercentChange())
}

// SumByType totals the unsigned amounts of txs per type.
func SumByType(txs []Transaction) map[TransactionType]decimal.Decimal {
	out := make(map[TransactionType]decimal.Decimal, len(AllTransactionTypes()))
	for _, tx := range txs {
		out[tx.Type] = out[tx.Type].Add(tx.Amount)
	}
	return out
}

// Summarize builds one TrendSummary per type in AllTransactionTypes order.
// Types absent from a map count as zero.
func Summarize(current, previous map[TransactionType]decimal.Decimal) []TrendSummary {
	types := AllTransactionTypes()
	out := make([]TrendSummary, 0, len(types))
	for _, t := range types {
		out = append(out, TrendSummary{
			Type:     t,
			Current:  current[t],
			Previous: previous[t],
		})
	}
	return out
}
