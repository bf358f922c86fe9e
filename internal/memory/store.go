package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// Store keeps transactions in process memory.
type Store struct {
	mu    sync.Mutex
	items map[string]core.Transaction
}

func NewStore() *Store {
	return &Store{items: map[string]core.Transaction{}}
}

// CreateTransaction stores tx, assigning an ID when it has none.
func (s *Store) CreateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[tx.ID] = tx
	return tx, nil
}

func (s *Store) UpdateTransaction(_ context.Context, userID, id string, in core.TransactionInput) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.items[id]
	if !ok || cur.UserID != userID {
		return core.Transaction{}, core.ErrNotFound
	}
	next := cur.Apply(in)
	if err := next.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.items[id] = next
	return next, nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.items[id]
	if !ok || cur.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *Store) GetTransaction(_ context.Context, userID, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.items[id]
	if !ok || cur.UserID != userID {
		return core.Transaction{}, core.ErrNotFound
	}
	return cur, nil
}

// FetchTransactions returns a page of the owner's transactions inside r,
// newest first.
func (s *Store) FetchTransactions(_ context.Context, userID string, r core.DateRange, offset, limit int) ([]core.Transaction, error) {
	s.mu.Lock()
	matched := make([]core.Transaction, 0, len(s.items))
	for _, tx := range s.items {
		if tx.UserID == userID && r.Contains(tx.CreatedAt) {
			matched = append(matched, tx)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return page(matched, offset, limit), nil
}

func page(txs []core.Transaction, offset, limit int) []core.Transaction {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(txs) {
		return []core.Transaction{}
	}
	txs = txs[offset:]
	if limit > 0 && limit < len(txs) {
		txs = txs[:limit]
	}
	return txs
}
