/**
 * @description
 * This file defines the command values the account-service accepts. Each
 * command is a self-contained, immutable value carrying everything its
 * handler needs; routing happens in the dispatcher via an explicit switch
 * over command kinds.
 */
package domain

// CommandKind identifies one of the supported account commands.
type CommandKind string

const (
	CommandCreateAccount CommandKind = "account.create"
	CommandUpdateAccount CommandKind = "account.update"
	CommandDeleteAccount CommandKind = "account.delete"
)

// Command is implemented by every account command value.
type Command interface {
	Kind() CommandKind
}

// CreateAccountCommand opens a new account for an existing customer.
type CreateAccountCommand struct {
	CustomerID   string `json:"customer_id"`
	Name         string `json:"name"`
	CurrencyCode string `json:"currency_code"`
}

// UpdateAccountCommand changes the mutable fields of an existing account.
// Identity fields (id, customer, account number, IBAN, opening date) are
// never updatable.
type UpdateAccountCommand struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
}

// DeleteAccountCommand removes an account by id.
type DeleteAccountCommand struct {
	AccountID string `json:"account_id"`
}

func (CreateAccountCommand) Kind() CommandKind { return CommandCreateAccount }
func (UpdateAccountCommand) Kind() CommandKind { return CommandUpdateAccount }
func (DeleteAccountCommand) Kind() CommandKind { return CommandDeleteAccount }
