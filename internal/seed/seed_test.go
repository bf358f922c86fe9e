package seed

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/memory"
)

func TestGeneratorRanges(t *testing.T) {
	now := time.Date(2025, 9, 30, 12, 0, 0, 0, time.UTC)
	gen := NewGenerator(rand.NewPCG(1, 2), []string{"Food", "Transport"}, now)
	users := []string{"a", "b"}

	bounds := map[core.TransactionType][2]int64{
		core.Expense:    {10, 1000},
		core.Income:     {2000, 9000},
		core.Saving:     {300, 5000},
		core.Investment: {300, 5000},
	}
	counts := map[core.TransactionType]int{}

	for i := 0; i < 2000; i++ {
		tx := gen.Transaction(users)
		counts[tx.Type]++

		b, ok := bounds[tx.Type]
		if !ok {
			t.Fatalf("unexpected type %q", tx.Type)
		}
		if tx.Amount.LessThan(decimal.NewFromInt(b[0])) || tx.Amount.GreaterThan(decimal.NewFromInt(b[1])) {
			t.Fatalf("%s amount %s outside [%d, %d]", tx.Type, tx.Amount, b[0], b[1])
		}
		if tx.Type == core.Expense && tx.Category == "" {
			t.Fatal("expenses need a category")
		}
		if tx.Type != core.Expense && tx.Category != "" {
			t.Fatalf("%s should have no category, got %q", tx.Type, tx.Category)
		}
		if tx.CreatedAt.After(now) || tx.CreatedAt.Before(now.AddDate(-1, 0, 0)) {
			t.Fatalf("created_at %v outside the past year", tx.CreatedAt)
		}
		if tx.Date.String() != core.DateOf(tx.CreatedAt).String() {
			t.Fatalf("date %v does not match created_at %v", tx.Date, tx.CreatedAt)
		}
		if tx.UserID != "a" && tx.UserID != "b" {
			t.Fatalf("unknown owner %q", tx.UserID)
		}
		if err := tx.Validate(); err != nil {
			t.Fatalf("generated transaction invalid: %v", err)
		}
	}

	if share := float64(counts[core.Expense]) / 2000; share < 0.75 || share > 0.85 {
		t.Errorf("expense share = %.2f, want about 0.80", share)
	}
	if share := float64(counts[core.Income]) / 2000; share < 0.07 || share > 0.13 {
		t.Errorf("income share = %.2f, want about 0.10", share)
	}
}

func TestRun(t *testing.T) {
	identity := memory.NewIdentity()
	store := memory.NewStore()
	gen := NewGenerator(rand.NewPCG(3, 4), nil, time.Now())

	progress := 0
	res, err := Run(context.Background(), identity, store, gen, Options{
		Users:        3,
		Transactions: 20,
		Progress:     func() { progress++ },
	}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Users) != 3 || res.Transactions != 20 || res.Failed != 0 {
		t.Fatalf("result = %+v", res)
	}
	if progress != 20 {
		t.Fatalf("progress calls = %d, want 20", progress)
	}

	all := core.DateRange{Start: core.NewDate(2000, 1, 1), End: core.DateOf(time.Now()).AddDays(1)}
	total := 0
	for _, id := range res.Users {
		txs, err := store.FetchTransactions(context.Background(), id, all, 0, 0)
		if err != nil {
			t.Fatal(err)
		}
		total += len(txs)
	}
	if total != 20 {
		t.Fatalf("stored %d transactions, want 20", total)
	}

	// A second run reuses the same accounts.
	again, err := Run(context.Background(), identity, store, gen, Options{Users: 3}, nil)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	for i := range res.Users {
		if again.Users[i] != res.Users[i] {
			t.Fatalf("user %d changed: %s != %s", i, again.Users[i], res.Users[i])
		}
	}
}

func TestRunWithoutUsers(t *testing.T) {
	gen := NewGenerator(rand.NewPCG(5, 6), nil, time.Now())
	_, err := Run(context.Background(), memory.NewIdentity(), memory.NewStore(), gen, Options{Transactions: 5}, nil)
	if err == nil {
		t.Fatal("expected an error when no users exist")
	}
	if errors.Is(err, context.Canceled) {
		t.Fatalf("unexpected error %v", err)
	}
}
