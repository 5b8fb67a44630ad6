/**
 * @description
 * This file contains the core business logic for the account-service: the
 * handlers for the Create, Update and Delete account commands. Handlers
 * validate the command, mutate state through the UnitOfWork, and stage the
 * notification in the outbox inside the same transaction, so the message
 * exists if and only if the mutation committed. Broker delivery itself is
 * the outbox relay's job and never blocks or fails a command.
 *
 * @notes
 * - This service layer keeps any transport adapter thin; the business logic
 *   stays independent of HTTP concerns.
 */
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/parabank/account-service/internal/domain"
	"github.com/parabank/account-service/internal/numbering"
	"github.com/parabank/account-service/internal/store"
)

// createRetries bounds how often a create regenerates its account number
// after losing a unique-constraint race.
const createRetries = 3

// NotificationPolicy decides which commands stage a notification. The
// historical behavior is create-only; update and delete notifications exist
// behind explicit configuration.
type NotificationPolicy struct {
	OnCreate bool
	OnUpdate bool
	OnDelete bool
}

// AccountService handles the account lifecycle commands.
type AccountService struct {
	uow       store.UnitOfWork
	customers store.CustomerRepository
	generator *numbering.Generator
	policy    NotificationPolicy
	channel   string

	now   func() time.Time
	newID func() string
}

// NewAccountService creates a new AccountService publishing on the given
// notification channel.
func NewAccountService(
	uow store.UnitOfWork,
	customers store.CustomerRepository,
	generator *numbering.Generator,
	policy NotificationPolicy,
	channel string,
) *AccountService {
	return &AccountService{
		uow:       uow,
		customers: customers,
		generator: generator,
		policy:    policy,
		channel:   channel,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// CreateAccount opens a new account for an existing customer. The account
// row and its "account opened" notification commit atomically; on an account
// number collision the whole transaction is retried with a fresh number.
func (s *AccountService) CreateAccount(ctx context.Context, cmd domain.CreateAccountCommand) (*domain.Account, error) {
	if cmd.CustomerID == "" {
		return nil, domain.NewError(domain.ErrValidation, "customer id is required")
	}
	if cmd.CurrencyCode == "" {
		return nil, domain.NewError(domain.ErrValidation, "currency code is required")
	}

	customer, err := s.customers.GetCustomerByID(ctx, cmd.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("resolving customer %s: %w", cmd.CustomerID, err)
	}

	var lastErr error
	for attempt := 0; attempt < createRetries; attempt++ {
		number, err := s.generator.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("allocating account number: %w", err)
		}

		account := &domain.Account{
			ID:            s.newID(),
			CustomerID:    cmd.CustomerID,
			Name:          cmd.Name,
			CurrencyCode:  cmd.CurrencyCode,
			AccountNumber: number,
			IBAN:          numbering.DeriveIBAN(number),
			Balance:       0,
			OpenedAt:      s.now().UTC(),
		}

		err = s.uow.Do(ctx, func(tx store.TxContext) error {
			if err := tx.Accounts().Insert(ctx, account); err != nil {
				return err
			}
			if s.policy.OnCreate {
				return tx.Outbox().Enqueue(ctx, s.channel, accountOpenedMessage(customer, account))
			}
			return nil
		})
		if err == nil {
			return account, nil
		}
		if !domain.IsKind(err, domain.ErrConflict) {
			return nil, err
		}
		// Lost the unique-constraint race; draw a new number and retry.
		lastErr = err
	}
	return nil, lastErr
}

// UpdateAccount merges the command's mutable fields into an existing
// account. Identity fields are never touched. Updating an unknown id is a
// not-found error with no mutation.
func (s *AccountService) UpdateAccount(ctx context.Context, cmd domain.UpdateAccountCommand) error {
	if cmd.AccountID == "" {
		return domain.NewError(domain.ErrValidation, "account id is required")
	}

	return s.uow.Do(ctx, func(tx store.TxContext) error {
		account, err := tx.Accounts().GetForUpdate(ctx, cmd.AccountID)
		if err != nil {
			return err
		}

		if cmd.Name != "" {
			account.Name = cmd.Name
		}
		if err := tx.Accounts().Update(ctx, account); err != nil {
			return err
		}

		if s.policy.OnUpdate {
			customer, err := s.customers.GetCustomerByID(ctx, account.CustomerID)
			if err != nil {
				return err
			}
			return tx.Outbox().Enqueue(ctx, s.channel, accountUpdatedMessage(customer, account))
		}
		return nil
	})
}

// DeleteAccount removes an account by id. Deleting an unknown or
// already-deleted id is a not-found error, repeatably.
func (s *AccountService) DeleteAccount(ctx context.Context, cmd domain.DeleteAccountCommand) error {
	if cmd.AccountID == "" {
		return domain.NewError(domain.ErrValidation, "account id is required")
	}

	return s.uow.Do(ctx, func(tx store.TxContext) error {
		account, err := tx.Accounts().GetForUpdate(ctx, cmd.AccountID)
		if err != nil {
			return err
		}
		if err := tx.Accounts().Delete(ctx, account.ID); err != nil {
			return err
		}

		if s.policy.OnDelete {
			customer, err := s.customers.GetCustomerByID(ctx, account.CustomerID)
			if err != nil {
				return err
			}
			return tx.Outbox().Enqueue(ctx, s.channel, accountClosedMessage(customer, account))
		}
		return nil
	})
}

func accountOpenedMessage(customer *domain.Customer, account *domain.Account) domain.EmailMessage {
	return domain.EmailMessage{
		RecipientEmail: customer.Email,
		Subject:        "New account opened",
		Body: fmt.Sprintf(
			"Hello %s %s, a new %s account has been opened in your name.",
			customer.FirstName, customer.LastName, account.CurrencyCode,
		),
	}
}

func accountUpdatedMessage(customer *domain.Customer, account *domain.Account) domain.EmailMessage {
	return domain.EmailMessage{
		RecipientEmail: customer.Email,
		Subject:        "Account details updated",
		Body: fmt.Sprintf(
			"Hello %s %s, the details of your %s account were updated.",
			customer.FirstName, customer.LastName, account.CurrencyCode,
		),
	}
}

func accountClosedMessage(customer *domain.Customer, account *domain.Account) domain.EmailMessage {
	return domain.EmailMessage{
		RecipientEmail: customer.Email,
		Subject:        "Account closed",
		Body: fmt.Sprintf(
			"Hello %s %s, your %s account has been closed.",
			customer.FirstName, customer.LastName, account.CurrencyCode,
		),
	}
}
