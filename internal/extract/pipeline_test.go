package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"spendlog/internal/llm"
)

// fakeGenerator records calls and replies with a canned response or error.
type fakeGenerator struct {
	response   string
	err        error
	calls      int
	lastPrompt string
	lastTemp   float64
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, temperature float64) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	f.lastTemp = temperature
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestExtractHappyPath(t *testing.T) {
	gen := &fakeGenerator{response: `Here it is: {"date": "2025-02-03", "category": "transport", "amount": 15, "currency": "EUR"}`}
	p := NewPipeline(gen)

	cand, err := p.Extract(context.Background(), "15 euro taxi ride")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if cand.Category != "transport" || cand.Amount.Cents != 1500 {
		t.Fatalf("unexpected candidate %+v", cand)
	}
	if gen.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", gen.calls)
	}
	if gen.lastTemp != llm.ExtractionTemperature {
		t.Fatalf("temperature = %v, want %v", gen.lastTemp, llm.ExtractionTemperature)
	}
	if !strings.Contains(gen.lastPrompt, "15 euro taxi ride") {
		t.Fatalf("prompt missing raw text: %s", gen.lastPrompt)
	}
}

func TestExtractSurfacesGatewayErrorUnchanged(t *testing.T) {
	gen := &fakeGenerator{err: llm.ErrBackendTimeout}
	p := NewPipeline(gen)

	_, err := p.Extract(context.Background(), "coffee 4 usd")
	if !errors.Is(err, llm.ErrBackendTimeout) {
		t.Fatalf("expected gateway error to pass through, got %v", err)
	}
}

func TestExtractSurfacesValidationErrorWithRawText(t *testing.T) {
	gen := &fakeGenerator{response: "no structured output here at all"}
	p := NewPipeline(gen)

	_, err := p.Extract(context.Background(), "gibberish")
	if !errors.Is(err, ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON, got %v", err)
	}
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Raw != gen.response {
		t.Fatalf("raw model output must ride along with the error: %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("no retry expected, got %d calls", gen.calls)
	}
}
