package report

import (
	"testing"
	"time"
)

var testNow = time.Date(2025, time.July, 15, 10, 0, 0, 0, time.UTC)

func TestResolveBareTriggers(t *testing.T) {
	for _, text := range []string{"report", "Report", "SUMMARY", "monthly report", "monthly summary", "report this month", "  report  "} {
		it, ok := Resolve(text, testNow)
		if !ok {
			t.Errorf("Resolve(%q) not classified as report", text)
			continue
		}
		if it.Year != 2025 || it.Month != 7 {
			t.Errorf("Resolve(%q) = %+v, want current month", text, it)
		}
	}
}

func TestResolveNotAReport(t *testing.T) {
	for _, text := range []string{
		"50 dollars on groceries",
		"",
		"reporting for duty",
		"summarize my month",
		"report 13",       // month out of range
		"report 2025-13",  // explicit date with bad month
		"report tomorrow", // no month token
		"summary 1999",    // year-like number outside both ranges
	} {
		if _, ok := Resolve(text, testNow); ok {
			t.Errorf("Resolve(%q) should not be a report", text)
		}
	}
}

func TestResolveExplicitNumericDate(t *testing.T) {
	cases := []struct {
		text  string
		year  int
		month int
	}{
		{"report 2025-03", 2025, 3},
		{"report 2025/3", 2025, 3},
		{"summary 2024-12", 2024, 12},
	}
	for _, tc := range cases {
		it, ok := Resolve(tc.text, testNow)
		if !ok || it.Year != tc.year || it.Month != tc.month {
			t.Errorf("Resolve(%q) = %+v, %v; want (%d, %d)", tc.text, it, ok, tc.year, tc.month)
		}
	}
}

func TestResolveMonthTokens(t *testing.T) {
	cases := []struct {
		text  string
		year  int
		month int
	}{
		{"report feb 2024", 2024, 2},
		{"report february", 2025, 2},
		{"report February 2024", 2024, 2},
		{"summary dec", 2025, 12},
		{"report 2 2025", 2025, 2},
		{"report 2025 2", 2025, 2},
		{"report 3", 2025, 3},
		{"report may", 2025, 5},
	}
	for _, tc := range cases {
		it, ok := Resolve(tc.text, testNow)
		if !ok || it.Year != tc.year || it.Month != tc.month {
			t.Errorf("Resolve(%q) = %+v, %v; want (%d, %d)", tc.text, it, ok, tc.year, tc.month)
		}
	}
}

func TestResolveFirstTokenWins(t *testing.T) {
	it, ok := Resolve("report feb mar 2024 2026", testNow)
	if !ok {
		t.Fatal("expected a report")
	}
	if it.Month != 2 {
		t.Errorf("first month token should win, got %d", it.Month)
	}
	if it.Year != 2024 {
		t.Errorf("first year token should win, got %d", it.Year)
	}
}

func TestRequestRemainder(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"report feb", "feb", true},
		{"summary 2025-01", "2025-01", true},
		{"report", "", false},
		{"expense 50 usd", "", false},
	}
	for _, tc := range cases {
		got, ok := requestRemainder(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("requestRemainder(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestMatchNumericDate(t *testing.T) {
	year, month, matched := matchNumericDate("2025-03")
	if !matched || year != 2025 || month != 3 {
		t.Errorf("matchNumericDate(2025-03) = %d, %d, %v", year, month, matched)
	}
	if _, _, matched := matchNumericDate("feb 2024"); matched {
		t.Error("matchNumericDate should not match month names")
	}
	// Out-of-range months still count as a pattern match; Resolve rejects them.
	if _, month, matched := matchNumericDate("2025-13"); !matched || month != 13 {
		t.Error("matchNumericDate should report out-of-range months as matched")
	}
}
