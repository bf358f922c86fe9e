package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/supabase-community/postgrest-go"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// row is the PostgREST shape of a transactions record.
type row struct {
	ID          string          `json:"id,omitempty"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	CreatedAt   string          `json:"created_at,omitempty"`
	UserID      string          `json:"user_id,omitempty"`
}

// updateRow carries only the editable columns.
type updateRow struct {
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
}

func toRow(tx core.Transaction) row {
	r := row{
		ID:          tx.ID,
		Type:        string(tx.Type),
		Category:    tx.Category,
		Amount:      tx.Amount,
		Description: tx.Description,
		Date:        tx.Date.String(),
		UserID:      tx.UserID,
	}
	if !tx.CreatedAt.IsZero() {
		r.CreatedAt = tx.CreatedAt.Format(time.RFC3339Nano)
	}
	return r
}

func (r row) toTransaction() (core.Transaction, error) {
	typ, err := core.ParseTransactionType(r.Type)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", r.ID, err)
	}
	tx := core.Transaction{
		ID:          r.ID,
		Type:        typ,
		Category:    r.Category,
		Amount:      r.Amount,
		Description: r.Description,
		UserID:      r.UserID,
	}
	if tx.Date, err = core.ParseDate(r.Date); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", r.ID, err)
	}
	if tx.CreatedAt, err = time.Parse(time.RFC3339Nano, r.CreatedAt); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: bad created_at %q: %w", r.ID, r.CreatedAt, err)
	}
	return tx, nil
}

func decodeRows(data []byte) ([]core.Transaction, error) {
	var rows []row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, r := range rows {
		tx, err := r.toTransaction()
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

// Store persists transactions through PostgREST. Every query filters on
// user_id so the service key never reads across owners.
type Store struct {
	c        *Client
	pageSize int
	// query returns the JSON rows of one created_at-descending slice
	// [from, to] of the user's transactions in r.
	query func(ctx context.Context, userID string, r core.DateRange, from, to int) ([]byte, error)
}

func NewStore(c *Client) *Store {
	s := &Store{c: c, pageSize: fetchPageSize}
	s.query = s.selectRange
	return s
}

func (s *Store) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := ctx.Err(); err != nil {
		return core.Transaction{}, err
	}
	data, _, err := s.c.sdk.From(transactionsTable).
		Insert(toRow(tx), false, "", "representation", "").
		Execute()
	if err != nil {
		s.c.logger.Error("insert transaction failed",
			log.NewFields().WithOperation(log.OpCreate).WithUser(tx.UserID).WithError(err).Args()...)
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	created, err := decodeRows(data)
	if err != nil {
		return core.Transaction{}, err
	}
	if len(created) == 0 {
		return core.Transaction{}, fmt.Errorf("insert transaction: empty response")
	}
	return created[0], nil
}

func (s *Store) UpdateTransaction(ctx context.Context, userID, id string, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := ctx.Err(); err != nil {
		return core.Transaction{}, err
	}
	next := core.Transaction{}.Apply(in)
	data, _, err := s.c.sdk.From(transactionsTable).
		Update(updateRow{
			Type:        string(next.Type),
			Category:    next.Category,
			Amount:      next.Amount,
			Description: next.Description,
			Date:        next.Date.String(),
		}, "representation", "").
		Eq("id", id).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	updated, err := decodeRows(data)
	if err != nil {
		return core.Transaction{}, err
	}
	if len(updated) == 0 {
		return core.Transaction{}, core.ErrNotFound
	}
	return updated[0], nil
}

func (s *Store) DeleteTransaction(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, _, err := s.c.sdk.From(transactionsTable).
		Delete("representation", "").
		Eq("id", id).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	var deleted []json.RawMessage
	if err := json.Unmarshal(data, &deleted); err != nil {
		return fmt.Errorf("decode delete response: %w", err)
	}
	if len(deleted) == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return core.Transaction{}, err
	}
	data, _, err := s.c.sdk.From(transactionsTable).
		Select("*", "", false).
		Eq("id", id).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	txs, err := decodeRows(data)
	if err != nil {
		return core.Transaction{}, err
	}
	if len(txs) == 0 {
		return core.Transaction{}, core.ErrNotFound
	}
	return txs[0], nil
}

// FetchTransactions returns the user's transactions in r, newest first. A
// limit of zero or less reads the whole range page by page, since PostgREST
// truncates an unranged response at the project's max-rows without saying so.
func (s *Store) FetchTransactions(ctx context.Context, userID string, r core.DateRange, offset, limit int) ([]core.Transaction, error) {
	if offset < 0 {
		offset = 0
	}
	if limit > 0 {
		return s.fetchPage(ctx, userID, r, offset, offset+limit-1)
	}

	var all []core.Transaction
	for {
		page, err := s.fetchPage(ctx, userID, r, offset, offset+s.pageSize-1)
		if err != nil {
			return nil, err
		}
		// The server may return fewer rows than asked for, so only an empty
		// page ends the scan.
		if len(page) == 0 {
			return all, nil
		}
		all = append(all, page...)
		offset += len(page)
	}
}

func (s *Store) fetchPage(ctx context.Context, userID string, r core.DateRange, from, to int) ([]core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.query(ctx, userID, r, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	return decodeRows(data)
}

func (s *Store) selectRange(_ context.Context, userID string, r core.DateRange, from, to int) ([]byte, error) {
	data, _, err := s.c.sdk.From(transactionsTable).
		Select("*", "", false).
		Eq("user_id", userID).
		Gte("created_at", r.StartTime().Format(time.RFC3339)).
		Lt("created_at", r.EndExclusive().Format(time.RFC3339)).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Range(from, to, "").
		Execute()
	if err != nil {
		s.c.logger.Error("fetch transactions failed",
			log.NewFields().WithOperation(log.OpList).WithUser(userID).WithError(err).Args()...)
		return nil, err
	}
	return data, nil
}

// fetchPageSize matches Supabase's default max-rows.
const fetchPageSize = 1000
