// Package export defines the outbound statement ports.
package export

import (
	"context"
	"time"
)

// StatementRow is one line of the exported account statement.
type StatementRow struct {
	Date          time.Time
	Action        string
	TransactionID string
	Description   string
	Category      string
	Account       string
	Type          string
	Amount        float64
}

// StatementWriter appends statement rows to an external sink.
type StatementWriter interface {
	Append(ctx context.Context, row StatementRow) (rowRef string, err error)
}
