/**
 * @description
 * Read-only access to customer records. The customer table is owned by the
 * customer-service; this repository only resolves ids and reads the contact
 * fields needed to compose notifications.
 */
package store

import (
	"context"
	"errors"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parabank/account-service/internal/domain"
)

// PostgresCustomerRepository is the PostgreSQL implementation of the
// CustomerRepository.
type PostgresCustomerRepository struct {
	db *pgxpool.Pool
}

// NewPostgresCustomerRepository creates a new PostgresCustomerRepository.
func NewPostgresCustomerRepository(db *pgxpool.Pool) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{db: db}
}

// GetCustomerByID retrieves a customer's notification projection by id.
func (r *PostgresCustomerRepository) GetCustomerByID(ctx context.Context, id string) (*domain.Customer, error) {
	query := `SELECT id, first_name, last_name, email FROM customers WHERE id = $1`

	var customer domain.Customer
	err := r.db.QueryRow(ctx, query, id).Scan(
		&customer.ID,
		&customer.FirstName,
		&customer.LastName,
		&customer.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewError(domain.ErrNotFound, "customer not found")
		}
		log.Printf("Error finding customer %s: %v", id, err)
		return nil, domain.WrapError(domain.ErrPersistence, "failed to load customer", err)
	}
	return &customer, nil
}
