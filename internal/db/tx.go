package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"agrishop-be/internal/logger"

	"go.uber.org/zap"
)

// TxBeginner is the part of *sql.DB needed to open a transaction.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// WithinTx runs fn in a transaction. The transaction commits only when fn
// returns nil; every other path rolls back.
func WithinTx(ctx context.Context, conn TxBeginner, fn func(tx *sql.Tx) error) error {
	log := logger.FromCtx(ctx).With(zap.String("layer", "db"))

	tx, err := conn.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error("failed to rollback transaction", zap.Error(rbErr))
			return
		}
		log.Debug("transaction rolled back")
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true

	return nil
}
