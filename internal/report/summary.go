package report

import (
	"fmt"
	"sort"
	"strings"

	"spendlog/internal/core"
)

// NarrativeDisplayLimit caps the narrative length in a rendered summary.
// Truncation is a display concern only; the full narrative stays retrievable
// by the caller that produced it.
const NarrativeDisplayLimit = 800

// TopCategories is how many categories a rendered summary lists.
const TopCategories = 5

type CategoryTotal struct {
	Category string
	Total    core.Money
}

// MonthlySummary is rebuilt on every request and never cached.
type MonthlySummary struct {
	Year        int
	Month       int
	RecordCount int
	Total       core.Money
	Currency    string          // display currency, taken from the month's records
	Categories  []CategoryTotal // all categories, descending by total
	Narrative   string          // already truncated to NarrativeDisplayLimit
}

// BuildSummary aggregates a month of records deterministically: amounts are
// summed per category, the grand total is the sum of all record amounts, and
// categories are ordered by descending total (ties broken by name so the
// output is stable regardless of insertion order).
func BuildSummary(year, month int, records []core.ExpenseRecord, narrative string) MonthlySummary {
	s := MonthlySummary{
		Year:        year,
		Month:       month,
		RecordCount: len(records),
	}
	if len(records) == 0 {
		return s
	}

	totals := make(map[string]int64)
	for _, r := range records {
		totals[r.Category] += r.Amount.Cents
		s.Total.Cents += r.Amount.Cents
		if s.Currency == "" {
			s.Currency = r.Currency
		}
	}

	s.Categories = make([]CategoryTotal, 0, len(totals))
	for cat, cents := range totals {
		s.Categories = append(s.Categories, CategoryTotal{Category: cat, Total: core.Money{Cents: cents}})
	}
	sort.Slice(s.Categories, func(i, j int) bool {
		if s.Categories[i].Total.Cents != s.Categories[j].Total.Cents {
			return s.Categories[i].Total.Cents > s.Categories[j].Total.Cents
		}
		return s.Categories[i].Category < s.Categories[j].Category
	})

	s.Narrative = truncateNarrative(narrative, NarrativeDisplayLimit)
	return s
}

// Render produces the human-readable report message.
func (s MonthlySummary) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Report %04d-%02d\n", s.Year, s.Month)
	if s.RecordCount == 0 {
		b.WriteString("  No expenses recorded this month.")
		return b.String()
	}

	fmt.Fprintf(&b, "  Transactions: %d\n", s.RecordCount)
	fmt.Fprintf(&b, "  Total: %s\n", s.Total.Format(s.Currency))
	b.WriteString("\nTop categories:\n")
	top := s.Categories
	if len(top) > TopCategories {
		top = top[:TopCategories]
	}
	for _, ct := range top {
		fmt.Fprintf(&b, "  - %s: %s\n", ct.Category, ct.Total.Format(s.Currency))
	}
	if s.Narrative != "" {
		b.WriteString("\nAI summary:\n")
		b.WriteString(s.Narrative)
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncateNarrative(s string, limit int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
