package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"spendlog/internal/core"
	"spendlog/internal/llm"
)

// ErrNotAReport is the negative classification for text that is not a report
// request. It is not a failure; callers typically fall back to treating the
// text as an expense.
var ErrNotAReport = errors.New("not a report request")

// Generator is the slice of the model gateway the narrative needs.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
}

// FetchRecords loads the persisted records for a month; the store itself is
// an external collaborator.
type FetchRecords func(ctx context.Context, year, month int) ([]core.ExpenseRecord, error)

// Service resolves report requests and builds monthly summaries, enriching
// them with a model-generated narrative when the month has activity.
type Service struct {
	gen Generator
	now func() time.Time
}

func NewService(gen Generator) *Service {
	return &Service{gen: gen, now: time.Now}
}

// ResolveAndSummarize classifies the text, fetches the month's records and
// returns the aggregated summary. An empty month short-circuits: no narrative
// call is made for it.
func (s *Service) ResolveAndSummarize(ctx context.Context, text string, fetch FetchRecords) (MonthlySummary, error) {
	intent, ok := Resolve(text, s.now())
	if !ok {
		return MonthlySummary{}, ErrNotAReport
	}

	return s.Summarize(ctx, intent.Year, intent.Month, fetch)
}

// Summarize builds the summary for an explicitly chosen month.
func (s *Service) Summarize(ctx context.Context, year, month int, fetch FetchRecords) (MonthlySummary, error) {
	records, err := fetch(ctx, year, month)
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("fetch records for %d-%02d: %w", year, month, err)
	}

	if len(records) == 0 {
		slog.InfoContext(ctx, "Empty month, skipping narrative",
			"year", year, "month", month)
		return BuildSummary(year, month, nil, ""), nil
	}

	narrative, err := s.gen.Generate(ctx, llm.NarrativePrompt(records), llm.NarrativeTemperature)
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("narrative generate: %w", err)
	}

	return BuildSummary(year, month, records, narrative), nil
}
