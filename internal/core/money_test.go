package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"12", 1200, true},
		{"0.01", 1, true},
		{"12.345", 1234, true},
		{"12.346", 1235, true},
		{".5", 50, true},
		{"", 0, false},
		{"-3", 0, false},
		{"+3", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"0", 0, false},
		{"0.00", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("ParseDecimalToCents(%q) = %d, %v; want %d", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Errorf("ParseDecimalToCents(%q) expected error", tc.in)
		}
	}
}

func TestMoneyFormat(t *testing.T) {
	cases := []struct {
		cents    int64
		currency string
		want     string
	}{
		{1234, "USD", "USD 12.34"},
		{50, "EUR", "EUR 0.50"},
		{14000, "USD", "USD 140.00"},
		{-905, "USD", "USD -9.05"},
		{7, "", "0.07"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).Format(tc.currency); got != tc.want {
			t.Errorf("Format(%d, %q) = %q, want %q", tc.cents, tc.currency, got, tc.want)
		}
	}
}
