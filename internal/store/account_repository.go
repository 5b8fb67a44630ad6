/**
 * @description
 * This file implements the data access layer for account records, both the
 * pool-backed reads and the transaction-bound mutations used by the
 * UnitOfWork.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: The PostgreSQL driver.
 * - The service's internal domain package for the Account model and error
 *   kinds.
 *
 * @notes
 * - The accounts table carries a unique constraint on account_number; a
 *   SQLSTATE 23505 from the insert maps to a conflict error so the create
 *   handler can regenerate a number and retry.
 */
package store

import (
	"context"
	"errors"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parabank/account-service/internal/domain"
)

const accountColumns = `id, customer_id, name, currency_code, account_number, iban, balance, opened_at, created_at, updated_at`

// PostgresAccountRepository is the PostgreSQL implementation of the
// read-side AccountRepository.
type PostgresAccountRepository struct {
	db *pgxpool.Pool
}

// NewPostgresAccountRepository creates a new PostgresAccountRepository.
func NewPostgresAccountRepository(db *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

// GetAccountByID retrieves a single account by its id.
func (r *PostgresAccountRepository) GetAccountByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	account, err := scanAccount(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewError(domain.ErrNotFound, "account not found")
		}
		log.Printf("Error finding account %s: %v", id, err)
		return nil, domain.WrapError(domain.ErrPersistence, "failed to load account", err)
	}
	return account, nil
}

// AccountNumberExists reports whether an account already holds the given
// number. The number generator uses this as its pre-check; the unique
// constraint remains the final arbiter at commit time.
func (r *PostgresAccountRepository) AccountNumberExists(ctx context.Context, number int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE account_number = $1)`, number).Scan(&exists)
	if err != nil {
		return false, domain.WrapError(domain.ErrPersistence, "failed to check account number", err)
	}
	return exists, nil
}

// txAccountRepository is the transaction-bound mutation side, handed out by
// the UnitOfWork.
type txAccountRepository struct {
	tx pgx.Tx
}

// Insert writes a new account row.
func (r *txAccountRepository) Insert(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, customer_id, name, currency_code, account_number, iban, balance, opened_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.tx.QueryRow(ctx, query,
		account.ID,
		account.CustomerID,
		account.Name,
		account.CurrencyCode,
		account.AccountNumber,
		account.IBAN,
		account.Balance,
		account.OpenedAt,
	).Scan(&account.CreatedAt, &account.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			log.Printf("Error creating account: unique constraint violation on %s", pgErr.ConstraintName)
			return domain.WrapError(domain.ErrConflict, "account number already in use", err)
		}
		log.Printf("Error inserting account into database: %v", err)
		return domain.WrapError(domain.ErrPersistence, "failed to insert account", err)
	}
	return nil
}

// GetForUpdate loads an account and locks the row for the rest of the
// transaction.
func (r *txAccountRepository) GetForUpdate(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	account, err := scanAccount(r.tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewError(domain.ErrNotFound, "account not found")
		}
		return nil, domain.WrapError(domain.ErrPersistence, "failed to load account", err)
	}
	return account, nil
}

// Update persists the mutable fields of an account. Identity fields
// (customer, account number, IBAN, opening date) are deliberately absent
// from the statement so an update payload can never clobber them.
func (r *txAccountRepository) Update(ctx context.Context, account *domain.Account) error {
	tag, err := r.tx.Exec(ctx, `
		UPDATE accounts
		SET name = $1, updated_at = NOW()
		WHERE id = $2
	`, account.Name, account.ID)
	if err != nil {
		log.Printf("Error updating account %s: %v", account.ID, err)
		return domain.WrapError(domain.ErrPersistence, "failed to update account", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewError(domain.ErrNotFound, "account not found")
	}
	return nil
}

// Delete removes an account row. Deleting an id that does not exist is a
// not-found error, repeatably.
func (r *txAccountRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		log.Printf("Error deleting account %s: %v", id, err)
		return domain.WrapError(domain.ErrPersistence, "failed to delete account", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewError(domain.ErrNotFound, "account not found")
	}
	return nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	err := row.Scan(
		&account.ID,
		&account.CustomerID,
		&account.Name,
		&account.CurrencyCode,
		&account.AccountNumber,
		&account.IBAN,
		&account.Balance,
		&account.OpenedAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}
