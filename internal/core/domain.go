package core

import (
	"errors"
	"strings"
	"time"
)

// Categories is the fixed taxonomy the extraction model is instructed to use.
// Free-form categories coming back from the model are stored as-is; this list
// only drives the prompt and the seed data.
var Categories = []string{
	"food", "transport", "shopping", "entertainment", "utilities", "healthcare", "other",
}

type (
	Money struct {
		Cents int64
	}

	// ExpenseCandidate is a structured expense extracted from free text.
	// It is produced only by the extraction validator and is all-or-nothing:
	// a candidate either passed validation in full or was never built.
	ExpenseCandidate struct {
		Date     string // calendar date as emitted by the model, e.g. "2025-03-14"
		Category string
		Amount   Money
		Currency string // ISO-4217-like code, e.g. "USD"
	}

	// ExpenseRecord is a persisted candidate. The ID is assigned by the store;
	// records are never mutated after creation.
	ExpenseRecord struct {
		ID        int64
		Date      string
		Category  string
		Amount    Money
		Currency  string
		RawText   string
		CreatedAt time.Time
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyDate     = errors.New("empty date")
	ErrEmptyCategory = errors.New("empty category")
	ErrEmptyCurrency = errors.New("empty currency")
)

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks presence of all four fields. The date is deliberately not
// parsed beyond presence: the model is instructed to emit YYYY-MM-DD and the
// store keeps whatever was actually extracted.
func (c ExpenseCandidate) Validate() error {
	if strings.TrimSpace(c.Date) == "" {
		return ErrEmptyDate
	}
	if strings.TrimSpace(c.Category) == "" {
		return ErrEmptyCategory
	}
	if err := c.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Currency) == "" {
		return ErrEmptyCurrency
	}
	return nil
}

// Candidate returns the candidate view of a persisted record.
func (r ExpenseRecord) Candidate() ExpenseCandidate {
	return ExpenseCandidate{
		Date:     r.Date,
		Category: r.Category,
		Amount:   r.Amount,
		Currency: r.Currency,
	}
}
