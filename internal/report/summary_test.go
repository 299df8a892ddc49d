package report

import (
	"strings"
	"testing"

	"spendlog/internal/core"
)

func rec(date, category string, cents int64) core.ExpenseRecord {
	return core.ExpenseRecord{
		Date:     date,
		Category: category,
		Amount:   core.Money{Cents: cents},
		Currency: "USD",
	}
}

func TestBuildSummaryAggregates(t *testing.T) {
	records := []core.ExpenseRecord{
		rec("2025-03-01", "food", 3000),
		rec("2025-03-05", "food", 2000),
		rec("2025-03-10", "transport", 9000),
	}
	s := BuildSummary(2025, 3, records, "spend less on taxis")

	if s.RecordCount != 3 {
		t.Errorf("RecordCount = %d", s.RecordCount)
	}
	if s.Total.Cents != 14000 {
		t.Errorf("Total = %d, want 14000", s.Total.Cents)
	}
	if len(s.Categories) != 2 {
		t.Fatalf("Categories = %+v", s.Categories)
	}
	// transport (90.00) ranks before food (50.00)
	if s.Categories[0].Category != "transport" || s.Categories[0].Total.Cents != 9000 {
		t.Errorf("first category = %+v", s.Categories[0])
	}
	if s.Categories[1].Category != "food" || s.Categories[1].Total.Cents != 5000 {
		t.Errorf("second category = %+v", s.Categories[1])
	}
	if s.Narrative != "spend less on taxis" {
		t.Errorf("Narrative = %q", s.Narrative)
	}
}

func TestBuildSummaryOrderIndependent(t *testing.T) {
	a := BuildSummary(2025, 3, []core.ExpenseRecord{
		rec("2025-03-01", "food", 3000),
		rec("2025-03-10", "transport", 9000),
		rec("2025-03-05", "food", 2000),
	}, "")
	b := BuildSummary(2025, 3, []core.ExpenseRecord{
		rec("2025-03-10", "transport", 9000),
		rec("2025-03-05", "food", 2000),
		rec("2025-03-01", "food", 3000),
	}, "")
	if len(a.Categories) != len(b.Categories) {
		t.Fatal("category counts differ")
	}
	for i := range a.Categories {
		if a.Categories[i] != b.Categories[i] {
			t.Errorf("order differs at %d: %+v vs %+v", i, a.Categories[i], b.Categories[i])
		}
	}
}

func TestBuildSummaryEmptyMonth(t *testing.T) {
	s := BuildSummary(2025, 4, nil, "")
	if s.RecordCount != 0 || s.Total.Cents != 0 || len(s.Categories) != 0 {
		t.Fatalf("unexpected summary for empty month: %+v", s)
	}
	out := s.Render()
	if !strings.Contains(out, "No expenses recorded") {
		t.Errorf("empty render should state zero activity: %q", out)
	}
}

func TestBuildSummaryTruncatesNarrative(t *testing.T) {
	long := strings.Repeat("x", NarrativeDisplayLimit+100)
	s := BuildSummary(2025, 3, []core.ExpenseRecord{rec("2025-03-01", "food", 100)}, long)
	if len([]rune(s.Narrative)) != NarrativeDisplayLimit+3 {
		t.Fatalf("narrative length = %d", len(s.Narrative))
	}
	if !strings.HasSuffix(s.Narrative, "...") {
		t.Fatal("truncated narrative must end with ellipsis marker")
	}

	short := strings.Repeat("y", 100)
	s = BuildSummary(2025, 3, []core.ExpenseRecord{rec("2025-03-01", "food", 100)}, short)
	if s.Narrative != short {
		t.Fatal("short narrative must pass through untouched")
	}
}

func TestRenderTopFiveOnly(t *testing.T) {
	var records []core.ExpenseRecord
	cats := []string{"a", "b", "c", "d", "e", "f", "g"}
	for i, c := range cats {
		records = append(records, rec("2025-03-01", c, int64((i+1)*100)))
	}
	s := BuildSummary(2025, 3, records, "")
	out := s.Render()

	// Highest five totals: g, f, e, d, c. The two smallest are omitted.
	for _, want := range []string{"g:", "f:", "e:", "d:", "c:"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing category %q:\n%s", want, out)
		}
	}
	for _, notWant := range []string{"- a:", "- b:"} {
		if strings.Contains(out, notWant) {
			t.Errorf("render should omit %q:\n%s", notWant, out)
		}
	}
	if !strings.Contains(out, "Report 2025-03") {
		t.Errorf("render missing header:\n%s", out)
	}
}
