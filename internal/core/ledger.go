package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DayGroup holds the transactions recorded on one day and their net amount.
type DayGroup struct {
	Transactions []Transaction
	Amount       decimal.Decimal
}

// GroupedLedger maps YYYY-MM-DD keys to the day's transactions.
type GroupedLedger map[string]DayGroup

// LedgerKey is the grouping key for tx: the UTC calendar date of CreatedAt,
// the same day DateRange.Contains judges it by. The user-entered Date field
// is not used.
func LedgerKey(tx Transaction) string {
	return tx.CreatedAt.UTC().Format(dateLayout)
}

// GroupByDate buckets txs by LedgerKey. Input order is kept within a bucket and
// each bucket's Amount is the sum of signed amounts, expenses negative.
func GroupByDate(txs []Transaction) GroupedLedger {
	out := make(GroupedLedger)
	for _, tx := range txs {
		key := LedgerKey(tx)
		g := out[key]
		g.Transactions = append(g.Transactions, tx)
		g.Amount = g.Amount.Add(tx.SignedAmount())
		out[key] = g
	}
	return out
}

// Keys returns the day keys newest first.
func (l GroupedLedger) Keys() []string {
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys
}

// Flatten lists every transaction in Keys order, keeping in-day order.
func (l GroupedLedger) Flatten() []Transaction {
	var out []Transaction
	for _, k := range l.Keys() {
		out = append(out, l[k].Transactions...)
	}
	return out
}

// Total is the net amount across all days.
func (l GroupedLedger) Total() decimal.Decimal {
	total := decimal.Zero
	for _, g := range l {
		total = total.Add(g.Amount)
	}
	return total
}

// Len is the number of transactions in the ledger.
func (l GroupedLedger) Len() int {
	n := 0
	for _, g := range l {
		n += len(g.Transactions)
	}
	return n
}

// Day is a rendered view of one ledger entry.
type Day struct {
	Key string
	DayGroup
}

// Days returns the ledger as a slice ordered by Keys, convenient for templates.
func (l GroupedLedger) Days() []Day {
	keys := l.Keys()
	out := make([]Day, 0, len(keys))
	for _, k := range keys {
		out = append(out, Day{Key: k, DayGroup: l[k]})
	}
	return out
}
