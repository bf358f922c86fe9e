package core

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestPercentChange(t *testing.T) {
	cases := []struct {
		cur, prev float64
		want      float64
		dir       Direction
	}{
		{150, 100, 50, DirectionUp},
		{50, 100, -50, DirectionDown},
		{100, 100, 0, DirectionDown},
		{0, 100, 0, DirectionDown},
		{100, 0, 0, DirectionDown},
		{0, 0, 0, DirectionDown},
		{4250, 3800, 11.842105263157894, DirectionUp},
		{500, 750, -33.33333333333333, DirectionDown},
	}
	for _, tc := range cases {
		got := PercentChange(tc.cur, tc.prev)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("PercentChange(%v, %v) = %v, want %v", tc.cur, tc.prev, got, tc.want)
		}
		if d := DirectionOf(got); d != tc.dir {
			t.Fatalf("DirectionOf(%v) = %s, want %s", got, d, tc.dir)
		}
	}
}

func TestPercentChangeZeroGuard(t *testing.T) {
	for _, v := range []float64{-10, 0.01, 1, 1e9} {
		if PercentChange(0, v) != 0 || PercentChange(v, 0) != 0 {
			t.Fatalf("zero guard failed for %v", v)
		}
	}
}

func TestPercentChangeNaNGuard(t *testing.T) {
	nan := math.NaN()
	for _, tc := range [][2]float64{{nan, 100}, {100, nan}, {nan, nan}} {
		got := PercentChange(tc[0], tc[1])
		if got != 0 {
			t.Fatalf("PercentChange(%v, %v) = %v, want 0", tc[0], tc[1], got)
		}
		if DirectionOf(got) != DirectionDown {
			t.Fatalf("NaN input should render as down")
		}
	}
}

func TestSumByTypeAndSummarize(t *testing.T) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{
		tx("a", Income, "100", at),
		tx("b", Expense, "30", at),
		tx("c", Expense, "20.50", at),
		tx("d", Saving, "10", at),
	}
	sums := SumByType(txs)
	if !sums[Expense].Equal(decimal.RequireFromString("50.5")) {
		t.Fatalf("expense sum = %s", sums[Expense])
	}
	if !sums[Investment].IsZero() {
		t.Fatalf("investment sum = %s", sums[Investment])
	}

	prev := map[TransactionType]decimal.Decimal{Income: decimal.NewFromInt(80)}
	out := Summarize(sums, prev)
	if len(out) != 4 {
		t.Fatalf("expected 4 summaries, got %d", len(out))
	}
	for i, typ := range AllTransactionTypes() {
		if out[i].Type != typ {
			t.Fatalf("summary %d type = %s, want %s", i, out[i].Type, typ)
		}
	}
	if got := out[0].PercentChange(); math.Abs(got-25) > 1e-9 || out[0].Direction() != DirectionUp {
		t.Fatalf("income change = %v %s", got, out[0].Direction())
	}
	// No previous expenses: change is reported as 0 and direction down.
	if out[1].PercentChange() != 0 || out[1].Direction() != DirectionDown {
		t.Fatalf("expense summary = %+v", out[1])
	}
}
