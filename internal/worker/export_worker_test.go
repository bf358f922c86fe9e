package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/ports"
)

type fakeExporter struct {
	mu      sync.Mutex
	rows    map[string]core.Transaction
	order   []string
	cleared []string
	err     error
}

func newFakeExporter() *fakeExporter {
	return &fakeExporter{rows: map[string]core.Transaction{}}
}

func (f *fakeExporter) Upsert(_ context.Context, tx core.Transaction) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	if _, ok := f.rows[tx.ID]; !ok {
		f.order = append(f.order, tx.ID)
	}
	f.rows[tx.ID] = tx
	return "Transactions!A2:H2", nil
}

func (f *fakeExporter) Clear(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.rows, id)
	f.cleared = append(f.cleared, id)
	return nil
}

func sampleTx(id string, amount string) *core.Transaction {
	return &core.Transaction{
		ID:        id,
		Type:      core.Expense,
		Category:  "Food",
		Amount:    decimal.RequireFromString(amount),
		Date:      core.NewDate(2025, 3, 1),
		CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		UserID:    "u1",
	}
}

func TestExportWorkerLifecycle(t *testing.T) {
	ctx := context.Background()
	exp := newFakeExporter()
	w := NewExportWorker(exp, nil)

	events := []ports.TransactionEvent{
		{Kind: ports.EventCreated, TransactionID: "t1", UserID: "u1", Transaction: sampleTx("t1", "10")},
		{Kind: ports.EventCreated, TransactionID: "t2", UserID: "u1", Transaction: sampleTx("t2", "20")},
		// Redelivery must not add a second row.
		{Kind: ports.EventCreated, TransactionID: "t1", UserID: "u1", Transaction: sampleTx("t1", "10")},
		{Kind: ports.EventUpdated, TransactionID: "t2", UserID: "u1", Transaction: sampleTx("t2", "25")},
		{Kind: ports.EventDeleted, TransactionID: "t1", UserID: "u1"},
	}
	for _, ev := range events {
		if err := w.Handle(ctx, ev); err != nil {
			t.Fatalf("Handle(%s %s): %v", ev.Kind, ev.TransactionID, err)
		}
	}

	if len(exp.order) != 2 {
		t.Fatalf("rows appended = %v, want t1,t2 once each", exp.order)
	}
	if _, ok := exp.rows["t1"]; ok {
		t.Fatal("t1 should have been cleared")
	}
	if got := exp.rows["t2"].Amount.String(); got != "25" {
		t.Fatalf("t2 amount = %s, want 25", got)
	}
	if s := w.Stats(); s.Processed != 5 || s.Failed != 0 {
		t.Fatalf("stats = %+v", s)
	}
}

func TestExportWorkerErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("quota exceeded")

	tests := []struct {
		name   string
		ev     ports.TransactionEvent
		expErr error
	}{
		{
			name:   "exporter failure is returned for requeue",
			ev:     ports.TransactionEvent{Kind: ports.EventCreated, TransactionID: "t1", Transaction: sampleTx("t1", "1")},
			expErr: boom,
		},
		{
			name: "missing transaction",
			ev:   ports.TransactionEvent{Kind: ports.EventUpdated, TransactionID: "t1"},
		},
		{
			name: "unknown kind",
			ev:   ports.TransactionEvent{Kind: "archived", TransactionID: "t1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := newFakeExporter()
			exp.err = tt.expErr
			w := NewExportWorker(exp, nil)

			err := w.Handle(ctx, tt.ev)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.expErr != nil && !errors.Is(err, tt.expErr) {
				t.Fatalf("error %v does not wrap %v", err, tt.expErr)
			}
			if s := w.Stats(); s.Failed != 1 || s.Processed != 0 {
				t.Fatalf("stats = %+v", s)
			}
		})
	}
}
