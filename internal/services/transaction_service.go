package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/ports"
)

// TransactionService orchestrates transaction writes across the store, the
// trend cache and the event publisher.
type TransactionService struct {
	store     ports.TransactionStore
	publisher ports.EventPublisher
	trends    cache.Store[Totals]
	logger    *log.Logger
	now       func() time.Time
}

// NewTransactionService wires the service. publisher and trends may be nil.
func NewTransactionService(store ports.TransactionStore, publisher ports.EventPublisher, trends cache.Store[Totals], logger *log.Logger) *TransactionService {
	if logger == nil {
		logger = log.Discard()
	}
	return &TransactionService{
		store:     store,
		publisher: publisher,
		trends:    trends,
		logger:    logger.WithComponent(log.ComponentTransaction),
		now:       time.Now,
	}
}

// Create records a new transaction for userID, stamped with the current time.
func (s *TransactionService) Create(ctx context.Context, userID string, in core.TransactionInput) (core.Transaction, error) {
	if userID == "" {
		return core.Transaction{}, core.ErrUnauthenticated
	}
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}

	tx := core.Transaction{UserID: userID, CreatedAt: s.now().UTC()}.Apply(in)
	saved, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction created", log.NewFields().
		WithOperation(log.OpCreate).
		WithUser(userID).
		WithTransaction(saved.ID, saved.Type.String(), saved.Category, saved.Amount.String()).
		Args()...)

	s.afterWrite(ctx, ports.EventCreated, userID, saved.ID, &saved)
	return saved, nil
}

// Update replaces the editable fields of the owner's transaction id.
func (s *TransactionService) Update(ctx context.Context, userID, id string, in core.TransactionInput) (core.Transaction, error) {
	if userID == "" {
		return core.Transaction{}, core.ErrUnauthenticated
	}
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}

	updated, err := s.store.UpdateTransaction(ctx, userID, id, in)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}

	s.logger.InfoContext(ctx, "Transaction updated", log.NewFields().
		WithOperation(log.OpUpdate).
		WithUser(userID).
		WithTransaction(updated.ID, updated.Type.String(), updated.Category, updated.Amount.String()).
		Args()...)

	s.afterWrite(ctx, ports.EventUpdated, userID, updated.ID, &updated)
	return updated, nil
}

// Delete removes the owner's transaction id.
func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return core.ErrUnauthenticated
	}
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}

	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldUserID, userID,
		log.FieldTransactionID, id)

	s.afterWrite(ctx, ports.EventDeleted, userID, id, nil)
	return nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id string) (core.Transaction, error) {
	if userID == "" {
		return core.Transaction{}, core.ErrUnauthenticated
	}
	return s.store.GetTransaction(ctx, userID, id)
}

// afterWrite drops the user's cached trends and announces the change. Neither
// step can fail the write that already happened.
func (s *TransactionService) afterWrite(ctx context.Context, kind ports.EventKind, userID, id string, tx *core.Transaction) {
	if s.trends != nil {
		if err := s.trends.DeletePrefix(ctx, trendKeyPrefix(userID)); err != nil {
			s.logger.WarnContext(ctx, "Failed to invalidate trend cache",
				log.FieldUserID, userID,
				log.FieldError, err)
		}
	}

	if s.publisher == nil {
		return
	}
	ev := ports.TransactionEvent{
		Kind:          kind,
		TransactionID: id,
		UserID:        userID,
		Transaction:   tx,
		Timestamp:     s.now().UTC(),
	}
	if err := s.publisher.PublishTransactionEvent(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transaction event",
			log.FieldEventKind, string(kind),
			log.FieldTransactionID, id,
			log.FieldError, err)
	}
}
