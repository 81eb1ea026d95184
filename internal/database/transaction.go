package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TxFunc is a function that runs within a transaction.
type TxFunc func(*sqlx.Tx) error

// WithTransaction executes fn inside a transaction, committing on nil
// error and rolling back on error. If fn panics, the transaction is rolled
// back and the panic re-raised.
func WithTransaction(ctx context.Context, db *sqlx.DB, fn TxFunc) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				err = fmt.Errorf("failed to commit transaction: %v", cErr)
			}
		}
	}()

	err = fn(tx)
	return err
}
