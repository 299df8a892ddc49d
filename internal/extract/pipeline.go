package extract

import (
	"context"
	"fmt"
	"log/slog"

	"spendlog/internal/core"
	"spendlog/internal/llm"
)

// Generator is the slice of the model gateway the pipeline needs.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
}

// Pipeline runs prompt -> gateway -> validator for a single expense text.
// It is a best-effort, single-attempt pipeline: no retries, no fallback
// parser. Failures from either stage are surfaced unchanged.
type Pipeline struct {
	gen Generator
}

func NewPipeline(gen Generator) *Pipeline {
	return &Pipeline{gen: gen}
}

// Extract converts a free-text expense description into a validated candidate.
func (p *Pipeline) Extract(ctx context.Context, rawText string) (core.ExpenseCandidate, error) {
	prompt := llm.ExtractionPrompt(rawText)

	out, err := p.gen.Generate(ctx, prompt, llm.ExtractionTemperature)
	if err != nil {
		return core.ExpenseCandidate{}, fmt.Errorf("extraction generate: %w", err)
	}

	cand, err := ParseCandidate(out)
	if err != nil {
		slog.WarnContext(ctx, "Model output failed validation",
			"error", err,
			"output_chars", len(out))
		return core.ExpenseCandidate{}, err
	}

	slog.InfoContext(ctx, "Expense extracted",
		"date", cand.Date,
		"category", cand.Category,
		"amount_cents", cand.Amount.Cents,
		"currency", cand.Currency)

	return cand, nil
}
