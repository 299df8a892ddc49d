// Package worker contains the background consumer that mirrors persisted
// expenses to the configured export destination.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"spendlog/internal/amqp"
	"spendlog/internal/core"
	"spendlog/internal/export"
	"spendlog/internal/storage"
)

// RecordGetter loads a persisted expense by ID.
type RecordGetter interface {
	Get(ctx context.Context, id int64) (core.ExpenseRecord, error)
}

// ExportWorker receives expense.created events and appends the corresponding
// records to an external destination.
type ExportWorker struct {
	store    RecordGetter
	appender export.ExpenseAppender
}

func NewExportWorker(store RecordGetter, appender export.ExpenseAppender) *ExportWorker {
	return &ExportWorker{
		store:    store,
		appender: appender,
	}
}

// HandleExpenseCreated processes a single expense.created message. A missing
// record is dropped rather than requeued: it will never appear later, the
// store is written before the event is published.
func (w *ExportWorker) HandleExpenseCreated(ctx context.Context, msg *amqp.ExpenseCreatedMessage) error {
	slog.InfoContext(ctx, "Processing expense.created event",
		"id", msg.ID, "published_at", msg.Timestamp)

	record, err := w.store.Get(ctx, msg.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.WarnContext(ctx, "Expense not found, dropping event", "id", msg.ID)
			return nil
		}
		return fmt.Errorf("get expense from storage: %w", err)
	}

	ref, err := w.appender.Append(ctx, record)
	if err != nil {
		return fmt.Errorf("append expense %d: %w", msg.ID, err)
	}

	slog.InfoContext(ctx, "Exported expense",
		"id", record.ID,
		"ref", ref,
		"category", record.Category,
		"amount_cents", record.Amount.Cents)

	return nil
}
