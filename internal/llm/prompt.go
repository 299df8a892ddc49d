// Package llm contains the prompt templates and the Ollama gateway used to
// turn free text into structured expenses and to narrate monthly reports.
package llm

import (
	"fmt"
	"strings"

	"spendlog/internal/core"
)

// Temperatures per prompt kind. Extraction stays near-deterministic so the
// output shape is stable; the narrative is allowed more creativity.
const (
	ExtractionTemperature = 0.1
	NarrativeTemperature  = 0.5
)

const extractionTemplate = `You are an expense extraction assistant. Extract structured data from the user's expense description.

Extract:
- date: in YYYY-MM-DD format (if not specified, use today's date)
- category: one of [%s]
- amount: numeric value only
- currency: ISO code (USD, EUR, INR, etc.) - default to USD if not mentioned

User input: %s

Respond ONLY with valid JSON in this exact format:
{"date": "YYYY-MM-DD", "category": "category_name", "amount": 123.45, "currency": "USD"}

JSON response:`

const narrativeTemplate = `You are a financial analytics assistant. Analyze the following monthly expenses and provide insights.

Monthly Data:
%s

Provide a summary including:
1. Total spending by category
2. Highest expense category
3. Total monthly spending
4. Any notable spending patterns or recommendations

Be concise and actionable.`

// ExtractionPrompt renders the extraction instruction around the raw input.
// The input is inserted verbatim; the model is responsible for interpreting it.
func ExtractionPrompt(text string) string {
	return fmt.Sprintf(extractionTemplate, strings.Join(core.Categories, ", "), text)
}

// NarrativePrompt renders the monthly-insight instruction around a line-per-expense
// digest of the month's records.
func NarrativePrompt(records []core.ExpenseRecord) string {
	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, fmt.Sprintf("- %s: %s - %s", r.Date, r.Category, r.Amount.Format(r.Currency)))
	}
	return fmt.Sprintf(narrativeTemplate, strings.Join(lines, "\n"))
}
