package services

import (
	"context"
	"fmt"
	"log/slog"

	"spendlog/internal/core"
	"spendlog/internal/extract"
)

// Extractor turns free-form text into a validated expense candidate.
type Extractor interface {
	Extract(ctx context.Context, rawText string) (core.ExpenseCandidate, error)
}

// ExpenseStore persists expense records.
type ExpenseStore interface {
	Save(ctx context.Context, c core.ExpenseCandidate, rawText string) (core.ExpenseRecord, error)
	Get(ctx context.Context, id int64) (core.ExpenseRecord, error)
	ListByMonth(ctx context.Context, year, month int) ([]core.ExpenseRecord, error)
	ListAll(ctx context.Context) ([]core.ExpenseRecord, error)
}

// EventPublisher announces newly created expenses.
type EventPublisher interface {
	PublishExpenseCreated(ctx context.Context, id int64) error
}

// ExpenseService orchestrates extraction, persistence, and event publishing.
type ExpenseService struct {
	extractor Extractor
	store     ExpenseStore
	publisher EventPublisher
}

func NewExpenseService(extractor Extractor, store ExpenseStore, publisher EventPublisher) *ExpenseService {
	return &ExpenseService{
		extractor: extractor,
		store:     store,
		publisher: publisher,
	}
}

// CreateFromText runs the extraction pipeline on rawText and saves the result.
// Publish failures are logged but do not fail the request: the expense is
// already persisted locally.
func (s *ExpenseService) CreateFromText(ctx context.Context, rawText string) (core.ExpenseRecord, error) {
	candidate, err := s.extractor.Extract(ctx, rawText)
	if err != nil {
		return core.ExpenseRecord{}, err
	}

	record, err := s.store.Save(ctx, candidate, rawText)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("save expense: %w", err)
	}

	s.publishCreated(ctx, record.ID)

	return record, nil
}

// CreateFromCandidate saves an already-structured expense, skipping extraction.
func (s *ExpenseService) CreateFromCandidate(ctx context.Context, c core.ExpenseCandidate, rawText string) (core.ExpenseRecord, error) {
	if err := c.Validate(); err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("%w: %v", extract.ErrMissingField, err)
	}

	record, err := s.store.Save(ctx, c, rawText)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("save expense: %w", err)
	}

	s.publishCreated(ctx, record.ID)

	return record, nil
}

func (s *ExpenseService) Get(ctx context.Context, id int64) (core.ExpenseRecord, error) {
	return s.store.Get(ctx, id)
}

func (s *ExpenseService) List(ctx context.Context) ([]core.ExpenseRecord, error) {
	return s.store.ListAll(ctx)
}

func (s *ExpenseService) ListByMonth(ctx context.Context, year, month int) ([]core.ExpenseRecord, error) {
	return s.store.ListByMonth(ctx, year, month)
}

func (s *ExpenseService) publishCreated(ctx context.Context, id int64) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Publisher not available, skipping expense.created event", "id", id)
		return
	}

	if err := s.publisher.PublishExpenseCreated(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense.created event",
			"id", id, "error", err)
	}
}
