// Package export defines the ports for pushing expense records to external
// destinations.
package export

import (
	"context"

	"spendlog/internal/core"
)

// ExpenseAppender appends a single expense record to an external destination
// and returns an opaque reference to the written row.
type ExpenseAppender interface {
	Append(ctx context.Context, record core.ExpenseRecord) (string, error)
}
