package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func TestMapAuthError(t *testing.T) {
	cases := []struct {
		msg  string
		want error
	}{
		{"response status code 400: {\"error_description\":\"Invalid login credentials\"}", core.ErrInvalidCredentials},
		{"response status code 400: {\"msg\":\"Email not confirmed\"}", core.ErrEmailNotConfirmed},
		{"response status code 422: User already registered", core.ErrUserExists},
		{"Password should be at least 6 characters", core.ErrWeakPassword},
		{"response status code 403: Forbidden", core.ErrAuthUnavailable},
		{"Failed to fetch", core.ErrAuthNetwork},
		{"dial tcp: lookup x.supabase.co: no such host", core.ErrAuthNetwork},
		{"invalid JWT: token is expired", core.ErrUnauthenticated},
		{"response status code 400: {\"error\":\"invalid_grant\",\"error_description\":\"Invalid Refresh Token: Already Used\"}", core.ErrUnauthenticated},
		{"response status code 503: upstream unavailable", core.ErrAuthUnavailable},
	}
	for _, tc := range cases {
		got := mapAuthError(errors.New(tc.msg))
		if !errors.Is(got, tc.want) {
			t.Errorf("mapAuthError(%q) = %v, want %v", tc.msg, got, tc.want)
		}
	}

	plain := errors.New("something odd")
	if got := mapAuthError(plain); got != plain {
		t.Fatalf("unmatched error should pass through, got %v", got)
	}
	if mapAuthError(nil) != nil {
		t.Fatal("nil must stay nil")
	}
}

func TestMapStorageError(t *testing.T) {
	cases := []struct {
		msg  string
		want error
	}{
		{"Bucket not found", core.ErrBucketNotFound},
		{"new row violates row-level security policy", core.ErrStoragePolicy},
		{"The resource already exists", core.ErrObjectExists},
		{"Duplicate", core.ErrObjectExists},
	}
	for _, tc := range cases {
		if got := mapStorageError(errors.New(tc.msg)); !errors.Is(got, tc.want) {
			t.Errorf("mapStorageError(%q) = %v, want %v", tc.msg, got, tc.want)
		}
	}
}

func TestDecodeRows(t *testing.T) {
	data := []byte(`[
		{"id":"1","type":"Expense","category":"Food","description":"Grocery shopping","amount":85.50,
		 "created_at":"2025-09-24T10:00:00.000+00:00","date":"2025-09-24","user_id":"u"},
		{"id":"2","type":"Income","category":"Salary","description":null,"amount":"3500",
		 "created_at":"2025-09-23T23:30:00-05:00","date":"2025-09-23","user_id":"u"}
	]`)
	txs, err := decodeRows(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("got %d rows", len(txs))
	}
	if !txs[0].Amount.Equal(decimal.RequireFromString("85.5")) || txs[0].Type != core.Expense {
		t.Fatalf("row 0 = %+v", txs[0])
	}
	if core.LedgerKey(txs[1]) != "2025-09-24" {
		t.Fatalf("row 1 keyed %s, want its UTC date", core.LedgerKey(txs[1]))
	}

	if _, err := decodeRows([]byte(`[{"id":"x","date":"nope","created_at":"2025-01-01T00:00:00Z","amount":1}]`)); err == nil {
		t.Fatal("expected error for bad date")
	}
}

func TestDecodeRowsRejectsUnknownType(t *testing.T) {
	data := []byte(`[{"id":"t9","type":"Transfer","category":"","amount":"10",
		"created_at":"2025-09-24T10:00:00Z","date":"2025-09-24","user_id":"u"}]`)
	txs, err := decodeRows(data)
	if !errors.Is(err, core.ErrInvalidType) {
		t.Fatalf("err = %v, want ErrInvalidType", err)
	}
	if txs != nil {
		t.Fatalf("no rows should come back with the error, got %d", len(txs))
	}

	// Case differences from hand-edited rows are normalised.
	txs, err = decodeRows([]byte(`[{"id":"t1","type":"income","amount":"10",
		"created_at":"2025-09-24T10:00:00Z","date":"2025-09-24","user_id":"u"}]`))
	if err != nil || txs[0].Type != core.Income {
		t.Fatalf("lowercase type: %v %+v", err, txs)
	}
}

// pagedTable serves rows the way PostgREST does with a max-rows cap.
type pagedTable struct {
	rows    []row
	maxRows int
	calls   [][2]int
}

func (p *pagedTable) query(_ context.Context, _ string, _ core.DateRange, from, to int) ([]byte, error) {
	p.calls = append(p.calls, [2]int{from, to})
	if to-from+1 > p.maxRows {
		to = from + p.maxRows - 1
	}
	var out []row
	for i := from; i <= to && i < len(p.rows); i++ {
		out = append(out, p.rows[i])
	}
	if out == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(out)
}

func newPagedStore(total, pageSize, maxRows int) (*Store, *pagedTable) {
	base := time.Date(2025, 9, 30, 12, 0, 0, 0, time.UTC)
	table := &pagedTable{maxRows: maxRows}
	for i := 0; i < total; i++ {
		table.rows = append(table.rows, toRow(core.Transaction{
			ID:        fmt.Sprintf("t%02d", i),
			Type:      core.Expense,
			Category:  "Food",
			Amount:    decimal.NewFromInt(int64(i + 1)),
			Date:      core.NewDate(2025, 9, 30),
			CreatedAt: base.Add(-time.Duration(i) * time.Hour),
			UserID:    "u",
		}))
	}
	s := &Store{pageSize: pageSize}
	s.query = table.query
	return s, table
}

func TestFetchTransactionsReadsWholeRange(t *testing.T) {
	r := core.DateRange{Start: core.NewDate(2025, 9, 1), End: core.NewDate(2025, 9, 30)}
	tests := []struct {
		name      string
		total     int
		pageSize  int
		maxRows   int
		wantCalls int
	}{
		{"fits one page", 3, 5, 100, 2},
		{"several pages", 12, 5, 100, 4},
		{"server cap below page size", 7, 5, 2, 5},
		{"empty", 0, 5, 100, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, table := newPagedStore(tt.total, tt.pageSize, tt.maxRows)
			txs, err := s.FetchTransactions(context.Background(), "u", r, 0, 0)
			if err != nil {
				t.Fatal(err)
			}
			if len(txs) != tt.total {
				t.Fatalf("got %d transactions, want %d", len(txs), tt.total)
			}
			for i, tx := range txs {
				if want := fmt.Sprintf("t%02d", i); tx.ID != want {
					t.Fatalf("row %d = %s, want %s", i, tx.ID, want)
				}
			}
			if len(table.calls) != tt.wantCalls {
				t.Fatalf("queries = %v, want %d", table.calls, tt.wantCalls)
			}
		})
	}
}

func TestFetchTransactionsLimitIsOneRange(t *testing.T) {
	s, table := newPagedStore(30, 5, 100)
	r := core.DateRange{Start: core.NewDate(2025, 9, 1), End: core.NewDate(2025, 9, 30)}

	txs, err := s.FetchTransactions(context.Background(), "u", r, 10, 11)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 11 || txs[0].ID != "t10" {
		t.Fatalf("got %d rows starting at %v", len(txs), txs)
	}
	if len(table.calls) != 1 || table.calls[0] != [2]int{10, 20} {
		t.Fatalf("queries = %v, want [[10 20]]", table.calls)
	}
}

func TestToRowOmitsServerFields(t *testing.T) {
	r := toRow(core.Transaction{
		Type:   core.Saving,
		Amount: decimal.NewFromInt(5),
		Date:   core.NewDate(2025, 1, 2),
		UserID: "u",
	})
	if r.ID != "" || r.CreatedAt != "" || r.Date != "2025-01-02" {
		t.Fatalf("row = %+v", r)
	}

	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	r = toRow(core.Transaction{Type: core.Saving, Amount: decimal.NewFromInt(5), Date: core.NewDate(2025, 1, 2), CreatedAt: at})
	if r.CreatedAt != "2025-01-02T03:04:05Z" {
		t.Fatalf("created_at = %q", r.CreatedAt)
	}
}
