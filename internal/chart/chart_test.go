package chart

import (
	"bytes"
	"errors"
	"image/png"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func tx(typ core.TransactionType, amount string, at time.Time) core.Transaction {
	return core.Transaction{Type: typ, Amount: decimal.RequireFromString(amount), CreatedAt: at}
}

func TestPointsRunningBalance(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 3, d, 12, 0, 0, 0, time.UTC) }
	ledger := core.GroupByDate([]core.Transaction{
		tx(core.Income, "100", day(3)),
		tx(core.Expense, "30", day(3)),
		tx(core.Expense, "20", day(1)),
		tx(core.Saving, "5", day(2)),
	})

	got := Points(ledger)
	want := []struct {
		day          int
		net, balance float64
	}{
		{1, -20, -20},
		{2, 5, -15},
		{3, 70, 55},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d points, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Day.Day() != w.day || got[i].Net != w.net || got[i].Balance != w.balance {
			t.Errorf("point %d = %+v, want %+v", i, got[i], w)
		}
	}
}

func TestMovingAverage(t *testing.T) {
	got := movingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("movingAverage = %v, want %v", got, want)
		}
	}
}

func TestRenderPNG(t *testing.T) {
	one := core.GroupByDate([]core.Transaction{tx(core.Income, "1", time.Now())})
	if _, err := RenderPNG(one); !errors.Is(err, ErrNotEnoughData) {
		t.Fatalf("single day: %v", err)
	}

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	var txs []core.Transaction
	for i := 0; i < 10; i++ {
		txs = append(txs, tx(core.Expense, "12.5", base.AddDate(0, 0, i)))
	}
	txs = append(txs, tx(core.Income, "400", base))

	data, err := RenderPNG(core.GroupByDate(txs))
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if cfg.Width != width || cfg.Height != height {
		t.Fatalf("size %dx%d", cfg.Width, cfg.Height)
	}
}
