package app

import (
	"context"
	"sync"
	"time"

	"github.com/parabank/account-service/internal/domain"
	"github.com/parabank/account-service/internal/store"
)

// memStore is an in-memory implementation of the store contracts used by the
// command handlers. Do stages every mutation and applies it only when the
// callback succeeds, mirroring the transactional behavior of the Postgres
// implementation.
type memStore struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
	numbers  map[int64]string
	outbox   []memOutboxEntry

	commitErr       error
	insertConflicts int
}

type memOutboxEntry struct {
	channel string
	payload interface{}
}

func newMemStore() *memStore {
	return &memStore{
		accounts: map[string]domain.Account{},
		numbers:  map[int64]string{},
	}
}

func (s *memStore) Do(ctx context.Context, fn func(tx store.TxContext) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}
	if s.commitErr != nil {
		return domain.WrapError(domain.ErrPersistence, "failed to commit transaction", s.commitErr)
	}

	for _, account := range tx.inserted {
		s.accounts[account.ID] = account
		s.numbers[account.AccountNumber] = account.ID
	}
	for _, account := range tx.updated {
		s.accounts[account.ID] = account
	}
	for _, id := range tx.deleted {
		if account, ok := s.accounts[id]; ok {
			delete(s.numbers, account.AccountNumber)
			delete(s.accounts, id)
		}
	}
	s.outbox = append(s.outbox, tx.outbox...)
	return nil
}

func (s *memStore) AccountNumberExists(ctx context.Context, number int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, taken := s.numbers[number]
	return taken, nil
}

func (s *memStore) getAccount(id string) (domain.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	return account, ok
}

func (s *memStore) outboxEntries() []memOutboxEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]memOutboxEntry, len(s.outbox))
	copy(entries, s.outbox)
	return entries
}

// memTx stages mutations for one Do call. The surrounding memStore mutex is
// held for the whole callback, so direct map reads are safe here.
type memTx struct {
	store    *memStore
	inserted []domain.Account
	updated  []domain.Account
	deleted  []string
	outbox   []memOutboxEntry
}

func (t *memTx) Accounts() store.AccountTxRepository { return t }
func (t *memTx) Outbox() store.OutboxTxRepository    { return t }

func (t *memTx) Insert(ctx context.Context, account *domain.Account) error {
	if t.store.insertConflicts > 0 {
		t.store.insertConflicts--
		return domain.NewError(domain.ErrConflict, "account number already in use")
	}
	if _, taken := t.store.numbers[account.AccountNumber]; taken {
		return domain.NewError(domain.ErrConflict, "account number already in use")
	}
	for _, staged := range t.inserted {
		if staged.AccountNumber == account.AccountNumber {
			return domain.NewError(domain.ErrConflict, "account number already in use")
		}
	}
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now
	t.inserted = append(t.inserted, *account)
	return nil
}

func (t *memTx) GetForUpdate(ctx context.Context, id string) (*domain.Account, error) {
	if account, ok := t.store.accounts[id]; ok {
		copied := account
		return &copied, nil
	}
	return nil, domain.NewError(domain.ErrNotFound, "account not found")
}

func (t *memTx) Update(ctx context.Context, account *domain.Account) error {
	if _, ok := t.store.accounts[account.ID]; !ok {
		return domain.NewError(domain.ErrNotFound, "account not found")
	}
	copied := *account
	copied.UpdatedAt = time.Now()
	t.updated = append(t.updated, copied)
	return nil
}

func (t *memTx) Delete(ctx context.Context, id string) error {
	if _, ok := t.store.accounts[id]; !ok {
		return domain.NewError(domain.ErrNotFound, "account not found")
	}
	t.deleted = append(t.deleted, id)
	return nil
}

func (t *memTx) Enqueue(ctx context.Context, channel string, payload interface{}) error {
	t.outbox = append(t.outbox, memOutboxEntry{channel: channel, payload: payload})
	return nil
}

// memCustomers is an in-memory CustomerRepository.
type memCustomers struct {
	customers map[string]domain.Customer
}

func (c *memCustomers) GetCustomerByID(ctx context.Context, id string) (*domain.Customer, error) {
	if customer, ok := c.customers[id]; ok {
		copied := customer
		return &copied, nil
	}
	return nil, domain.NewError(domain.ErrNotFound, "customer not found")
}
