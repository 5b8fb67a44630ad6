package domain

// Customer is the read-only projection of a customer record that this service
// needs to compose notification content. Customers are owned by the
// customer-service; this service never mutates them.
type Customer struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}
