/**
 * @description
 * PostgreSQL implementation of the UnitOfWork. Each Do call opens its own
 * pgx transaction, hands transaction-bound repositories to the callback, and
 * commits only if the callback succeeds. The deferred rollback is a no-op
 * after a successful commit.
 */
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parabank/account-service/internal/domain"
)

// PostgresUnitOfWork implements UnitOfWork over a pgx connection pool.
type PostgresUnitOfWork struct {
	db *pgxpool.Pool
}

// NewPostgresUnitOfWork creates a new PostgresUnitOfWork.
func NewPostgresUnitOfWork(db *pgxpool.Pool) *PostgresUnitOfWork {
	return &PostgresUnitOfWork{db: db}
}

// Do runs fn inside a single transaction. Any error from fn, or from the
// commit itself, leaves no partial mutation visible to subsequent reads.
func (u *PostgresUnitOfWork) Do(ctx context.Context, fn func(tx TxContext) error) error {
	tx, err := u.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.WrapError(domain.ErrPersistence, "failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgxTxContext{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.WrapError(domain.ErrPersistence, "failed to commit transaction", err)
	}
	return nil
}

type pgxTxContext struct {
	tx pgx.Tx
}

func (c *pgxTxContext) Accounts() AccountTxRepository {
	return &txAccountRepository{tx: c.tx}
}

func (c *pgxTxContext) Outbox() OutboxTxRepository {
	return &txOutboxRepository{tx: c.tx}
}
