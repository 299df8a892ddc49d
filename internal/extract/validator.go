// Package extract turns raw model output into validated expense candidates.
//
// Language models wrap structured output in prose despite instruction, so the
// validator is tolerant about surrounding text but strict about the payload's
// shape once located. No semantic correction happens here: dates and currency
// codes pass through exactly as extracted.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"spendlog/internal/core"
)

var (
	ErrNoJSON        = errors.New("no JSON object found in model output")
	ErrMalformedJSON = errors.New("malformed JSON in model output")
	ErrMissingField  = errors.New("missing required field in extracted data")
)

// ParseError carries the raw model text alongside the classified failure so
// callers can surface what the model actually said.
type ParseError struct {
	Raw    string // full model output
	Detail string // e.g. the offending field or the decode error
	err    error  // one of the sentinels above
}

func (e *ParseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%v: %s", e.err, e.Detail)
	}
	return e.err.Error()
}

func (e *ParseError) Unwrap() error { return e.err }

var requiredFields = []string{"date", "category", "amount", "currency"}

// ParseCandidate recovers a JSON object embedded in arbitrary model output and
// validates it against the expense schema.
//
// The object is located from the first "{" to the last "}". This is a
// deliberate substring heuristic, not a balanced-brace scan: a stray brace in
// surrounding prose can select the wrong span. It survives nested braces in
// string values as long as the prose around the payload contains none.
func ParseCandidate(raw string) (core.ExpenseCandidate, error) {
	var zero core.ExpenseCandidate

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return zero, &ParseError{Raw: raw, err: ErrNoJSON}
	}
	span := raw[start : end+1]

	dec := json.NewDecoder(strings.NewReader(span))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return zero, &ParseError{Raw: raw, Detail: err.Error(), err: ErrMalformedJSON}
	}

	for _, f := range requiredFields {
		if _, ok := obj[f]; !ok {
			return zero, &ParseError{Raw: raw, Detail: f, err: ErrMissingField}
		}
	}

	date, ok := obj["date"].(string)
	if !ok {
		return zero, &ParseError{Raw: raw, Detail: "date is not a string", err: ErrMissingField}
	}
	category, ok := obj["category"].(string)
	if !ok {
		return zero, &ParseError{Raw: raw, Detail: "category is not a string", err: ErrMissingField}
	}
	currency, ok := obj["currency"].(string)
	if !ok {
		return zero, &ParseError{Raw: raw, Detail: "currency is not a string", err: ErrMissingField}
	}
	cents, err := amountToCents(obj["amount"])
	if err != nil {
		return zero, &ParseError{Raw: raw, Detail: "amount is not a positive number", err: ErrMissingField}
	}

	cand := core.ExpenseCandidate{
		Date:     date,
		Category: category,
		Amount:   core.Money{Cents: cents},
		Currency: currency,
	}
	if err := cand.Validate(); err != nil {
		return zero, &ParseError{Raw: raw, Detail: err.Error(), err: ErrMissingField}
	}
	return cand, nil
}

// amountToCents accepts the amount as a JSON number or, leniently, as a
// numeric string — models occasionally quote the value.
func amountToCents(v any) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		return core.ParseDecimalToCents(n.String())
	case string:
		return core.ParseDecimalToCents(n)
	default:
		return 0, core.ErrInvalidAmount
	}
}
