/**
 * @description
 * This file defines the interfaces for the data access layer (repositories)
 * and the Unit of Work. Defining interfaces allows for dependency injection
 * and easy mocking in tests, promoting a loosely coupled architecture.
 *
 * @notes
 * - Any component that needs to interact with the database should depend on
 *   these interfaces, not on the concrete PostgreSQL implementations.
 * - Mutations always go through a UnitOfWork so that an account change and
 *   its outbox entry commit or roll back as one.
 */
package store

import (
	"context"
	"time"

	"github.com/parabank/account-service/internal/domain"
)

// AccountRepository defines the read-side contract for accounts.
type AccountRepository interface {
	GetAccountByID(ctx context.Context, id string) (*domain.Account, error)
	AccountNumberExists(ctx context.Context, number int64) (bool, error)
}

// CustomerRepository defines read-only access to customer records.
type CustomerRepository interface {
	GetCustomerByID(ctx context.Context, id string) (*domain.Customer, error)
}

// OutboxMessage is a claimed notification row awaiting broker delivery.
type OutboxMessage struct {
	ID       int64
	Channel  string
	Payload  []byte
	Attempts int
}

// OutboxRepository is the relay-side contract for the notification outbox.
// Claiming must be safe across concurrent relay workers.
type OutboxRepository interface {
	ClaimOutboxMessages(ctx context.Context, limit int, staleAfterSeconds int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, id int64) error
	MarkOutboxFailed(ctx context.Context, id int64, retryAfterSeconds int, reason string) error
	MarkOutboxDead(ctx context.Context, id int64, reason string) error
	PurgePublishedOutbox(ctx context.Context, olderThan time.Duration) (int64, error)
}

// UnitOfWork groups one or more repository mutations into a single atomic
// commit. The callback receives transaction-bound repositories; returning an
// error rolls everything back. Each Do call owns its own transaction and is
// never shared across concurrent commands.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx TxContext) error) error
}

// TxContext exposes the repositories bound to the active transaction.
type TxContext interface {
	Accounts() AccountTxRepository
	Outbox() OutboxTxRepository
}

// AccountTxRepository is the mutation contract for accounts inside a
// transaction.
type AccountTxRepository interface {
	Insert(ctx context.Context, account *domain.Account) error
	GetForUpdate(ctx context.Context, id string) (*domain.Account, error)
	Update(ctx context.Context, account *domain.Account) error
	Delete(ctx context.Context, id string) error
}

// OutboxTxRepository enqueues a notification in the same transaction as the
// mutation that triggers it.
type OutboxTxRepository interface {
	Enqueue(ctx context.Context, channel string, payload interface{}) error
}
