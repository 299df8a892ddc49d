package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"spendlog/internal/core"
	"spendlog/internal/llm"
)

type fakeGenerator struct {
	response string
	err      error
	calls    int
	lastTemp float64
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, temperature float64) (string, error) {
	f.calls++
	f.lastTemp = temperature
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func fixedNowService(gen Generator) *Service {
	s := NewService(gen)
	s.now = func() time.Time { return time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC) }
	return s
}

func staticFetch(records []core.ExpenseRecord) FetchRecords {
	return func(context.Context, int, int) ([]core.ExpenseRecord, error) {
		return records, nil
	}
}

func TestResolveAndSummarizeHappyPath(t *testing.T) {
	gen := &fakeGenerator{response: "Food dominated this month."}
	svc := fixedNowService(gen)

	records := []core.ExpenseRecord{
		{Date: "2025-03-01", Category: "food", Amount: core.Money{Cents: 3000}, Currency: "USD"},
	}
	s, err := svc.ResolveAndSummarize(context.Background(), "report 2025-03", staticFetch(records))
	if err != nil {
		t.Fatalf("ResolveAndSummarize: %v", err)
	}
	if s.Year != 2025 || s.Month != 3 || s.RecordCount != 1 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if !strings.Contains(s.Narrative, "dominated") {
		t.Fatalf("narrative missing: %q", s.Narrative)
	}
	if gen.lastTemp != llm.NarrativeTemperature {
		t.Fatalf("temperature = %v", gen.lastTemp)
	}
}

func TestResolveAndSummarizeNotAReport(t *testing.T) {
	gen := &fakeGenerator{}
	svc := fixedNowService(gen)

	_, err := svc.ResolveAndSummarize(context.Background(), "50 usd on coffee", staticFetch(nil))
	if !errors.Is(err, ErrNotAReport) {
		t.Fatalf("expected ErrNotAReport, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatal("no model call expected for non-report text")
	}
}

func TestResolveAndSummarizeEmptyMonthSkipsNarrative(t *testing.T) {
	gen := &fakeGenerator{response: "should never be used"}
	svc := fixedNowService(gen)

	s, err := svc.ResolveAndSummarize(context.Background(), "report", staticFetch(nil))
	if err != nil {
		t.Fatalf("ResolveAndSummarize: %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("narrative call made for empty month (%d calls)", gen.calls)
	}
	if s.RecordCount != 0 || s.Narrative != "" {
		t.Fatalf("unexpected summary %+v", s)
	}
	if s.Year != 2025 || s.Month != 3 {
		t.Fatalf("bare trigger should resolve to current month, got %+v", s)
	}
}

func TestResolveAndSummarizeSurfacesFetchError(t *testing.T) {
	svc := fixedNowService(&fakeGenerator{})
	boom := errors.New("store offline")

	_, err := svc.ResolveAndSummarize(context.Background(), "report feb 2024",
		func(context.Context, int, int) ([]core.ExpenseRecord, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestResolveAndSummarizeSurfacesNarrativeError(t *testing.T) {
	gen := &fakeGenerator{err: llm.ErrBackendTimeout}
	svc := fixedNowService(gen)

	records := []core.ExpenseRecord{
		{Date: "2025-03-01", Category: "food", Amount: core.Money{Cents: 100}, Currency: "USD"},
	}
	_, err := svc.ResolveAndSummarize(context.Background(), "report", staticFetch(records))
	if !errors.Is(err, llm.ErrBackendTimeout) {
		t.Fatalf("expected gateway error to pass through, got %v", err)
	}
}
