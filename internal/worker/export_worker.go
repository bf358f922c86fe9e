// Package worker turns transaction events into spreadsheet rows.
package worker

import (
	"context"
	"fmt"
	"sync/atomic"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/ports"
)

// Exporter is the write side of the export target.
type Exporter interface {
	// Upsert writes tx to its row, appending when it has none yet.
	Upsert(ctx context.Context, tx core.Transaction) (string, error)
	// Clear blanks the row for id. Unknown ids are not an error.
	Clear(ctx context.Context, id string) error
}

type Stats struct {
	Processed int64
	Failed    int64
}

// ExportWorker mirrors transaction events into an Exporter.
type ExportWorker struct {
	exporter  Exporter
	logger    *log.Logger
	processed atomic.Int64
	failed    atomic.Int64
}

func NewExportWorker(exporter Exporter, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &ExportWorker{
		exporter: exporter,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// Handle applies one event. Returned errors make the consumer requeue it.
func (w *ExportWorker) Handle(ctx context.Context, ev ports.TransactionEvent) error {
	w.logger.InfoContext(ctx, "Processing transaction event",
		log.FieldEventKind, string(ev.Kind),
		log.FieldTransactionID, ev.TransactionID,
		log.FieldUserID, ev.UserID)

	err := w.apply(ctx, ev)
	if err != nil {
		w.failed.Add(1)
		w.logger.ErrorContext(ctx, "Failed to export transaction event",
			log.FieldEventKind, string(ev.Kind),
			log.FieldTransactionID, ev.TransactionID,
			log.FieldError, err)
		return err
	}
	w.processed.Add(1)
	return nil
}

func (w *ExportWorker) apply(ctx context.Context, ev ports.TransactionEvent) error {
	switch ev.Kind {
	case ports.EventCreated, ports.EventUpdated:
		if ev.Transaction == nil {
			return fmt.Errorf("%s event %s has no transaction", ev.Kind, ev.TransactionID)
		}
		ref, err := w.exporter.Upsert(ctx, *ev.Transaction)
		if err != nil {
			return fmt.Errorf("export %s: %w", ev.TransactionID, err)
		}
		w.logger.DebugContext(ctx, "Exported transaction",
			log.FieldTransactionID, ev.TransactionID,
			"sheets_ref", ref)
		return nil
	case ports.EventDeleted:
		if err := w.exporter.Clear(ctx, ev.TransactionID); err != nil {
			return fmt.Errorf("clear %s: %w", ev.TransactionID, err)
		}
		return nil
	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}
}

func (w *ExportWorker) Stats() Stats {
	return Stats{
		Processed: w.processed.Load(),
		Failed:    w.failed.Load(),
	}
}
