// Package store binds the catalog and ledger repositories to a single
// database transaction.
package store

import (
	"context"
	"database/sql"

	"agrishop-be/internal/apperror"
	"agrishop-be/internal/db"
	"agrishop-be/internal/order"
	"agrishop-be/internal/product"
)

// Repositories share one transaction for the duration of a WithinTx call.
type Repositories struct {
	Products product.Repository
	Orders   order.Repository
}

// Transactor runs fn atomically: every write made through repos commits
// together or not at all.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

type sqlTransactor struct {
	conn db.TxBeginner
}

func NewTransactor(conn db.TxBeginner) Transactor {
	return &sqlTransactor{conn: conn}
}

func (t *sqlTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	var fnErr error
	err := db.WithinTx(ctx, t.conn, func(tx *sql.Tx) error {
		fnErr = fn(ctx, Repositories{
			Products: product.NewRepository(tx),
			Orders:   order.NewRepository(tx),
		})
		return fnErr
	})
	if err != nil && fnErr == nil {
		// begin or commit failed
		return apperror.Infra("transaction", err)
	}
	return err
}
