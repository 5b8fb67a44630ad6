/**
 * @description
 * This file defines the core domain model for an Account within the Parabank
 * system. It represents the structure of an account as stored in our own
 * database.
 *
 * @notes
 * - Balance is stored in minor currency units (e.g. cents) and is fixed at
 *   zero when an account is opened; this service never mutates it afterwards.
 * - IBAN is stored denormalized for read convenience but is always a pure
 *   function of the account number (see internal/numbering); it is never
 *   authoritative on its own.
 */
package domain

import "time"

// Account represents a customer's financial account in our system.
type Account struct {
	ID            string    `json:"id"`
	CustomerID    string    `json:"customer_id"`
	Name          string    `json:"name"`
	CurrencyCode  string    `json:"currency_code"`
	AccountNumber int64     `json:"account_number"`
	IBAN          string    `json:"iban"`
	Balance       int64     `json:"balance"` // Stored in minor units
	OpenedAt      time.Time `json:"opened_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
