package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/synaptic/study-engine/internal/platform/logger"
)

// TxFn is the unit of work run by RunInTransaction.
type TxFn func(ctx context.Context, tx *sqlx.Tx) error

// RunInTransaction runs fn in one transaction. The transaction commits when fn
// returns nil and rolls back when it returns an error or panics; panics are
// re-raised after the rollback.
//
// Begin and commit failures wrap ErrTransactionFailed, so callers can tell
// them apart from errors returned by fn.
func RunInTransaction(ctx context.Context, db *sqlx.DB, fn TxFn) error {
	log := logger.FromContextOrDefault(ctx, slog.Default())

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", slog.String("error", err.Error()))
		return fmt.Errorf("%w: failed to begin transaction: %w", ErrTransactionFailed, err)
	}

	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("failed to roll back transaction after panic",
				slog.String("error", rbErr.Error()), slog.Any("panic", p))
		} else {
			log.Error("rolled back transaction after panic", slog.Any("panic", p))
		}
		panic(p)
	}()

	if fnErr := fn(ctx, tx); fnErr != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("failed to roll back transaction",
				slog.String("rollback_error", rbErr.Error()),
				slog.String("original_error", fnErr.Error()))
			return fmt.Errorf("error rolling back transaction: %v (original error: %w)", rbErr, fnErr)
		}
		log.Debug("rolled back transaction", slog.String("error", fnErr.Error()))
		return fnErr
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction", slog.String("error", err.Error()))
		return fmt.Errorf("%w: failed to commit transaction: %w", ErrTransactionFailed, err)
	}
	return nil
}
