// Package worker consumes ledger events and appends them to a statement
// export destination.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"finbook/internal/amqp"
	"finbook/internal/core"
	"finbook/internal/export"
	"finbook/internal/storage"
)

type ExportWorker struct {
	repo   *storage.Repository
	writer export.StatementWriter
}

func NewExportWorker(repo *storage.Repository, writer export.StatementWriter) *ExportWorker {
	return &ExportWorker{repo: repo, writer: writer}
}

// HandleLedgerEvent appends one statement row for the event. Deleted
// transactions are recorded by ID only since the row is already gone.
func (w *ExportWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	row := export.StatementRow{
		Date:          msg.Timestamp,
		Action:        msg.Action,
		TransactionID: msg.TransactionID,
	}

	if msg.Action != amqp.ActionDeleted {
		q := w.repo.Queries()

		tr, err := q.GetTransactionByID(ctx, msg.TransactionID)
		if err != nil {
			if core.IsKind(err, core.KindNotFound) {
				// The transaction was removed between publish and consume.
				// Ack instead of letting the message poison the queue.
				slog.WarnContext(ctx, "transaction gone before export, skipping",
					slog.String("transaction_id", msg.TransactionID))
				return nil
			}
			return fmt.Errorf("load transaction %s: %w", msg.TransactionID, err)
		}

		row.Date = tr.Date
		row.Description = tr.Description
		row.Type = string(tr.Type)
		row.Amount = tr.Amount.Units()

		if cat, err := q.GetCategoryForUser(ctx, tr.CategoryID, tr.UserID); err == nil {
			row.Category = cat.Name
		}
		if acc, err := q.GetAccountByID(ctx, tr.AccountID); err == nil {
			row.Account = acc.Name
		}
	}

	ref, err := w.writer.Append(ctx, row)
	if err != nil {
		return fmt.Errorf("append statement row: %w", err)
	}

	slog.InfoContext(ctx, "exported ledger event",
		slog.String("transaction_id", msg.TransactionID),
		slog.String("action", msg.Action),
		slog.String("row_ref", ref))
	return nil
}

// Run consumes ledger events until ctx is canceled.
func (w *ExportWorker) Run(ctx context.Context, client *amqp.Client) error {
	return client.ConsumeLedgerEvents(ctx, func(msg *amqp.LedgerEventMessage) error {
		return w.HandleLedgerEvent(ctx, msg)
	})
}
