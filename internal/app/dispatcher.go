/**
 * @description
 * The command dispatcher routes an inbound command value to its handler and
 * wraps the outcome in a uniform response envelope, so callers can treat all
 * command kinds polymorphically. Routing is an explicit type switch; there
 * is no reflection-based registration.
 */
package app

import (
	"context"

	"github.com/parabank/account-service/internal/domain"
)

// ErrorInfo is the failure descriptor carried by a Response.
type ErrorInfo struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Response is the uniform envelope returned for every command.
type Response struct {
	Success bool        `json:"success"`
	Payload interface{} `json:"payload,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// Dispatcher routes commands to the AccountService.
type Dispatcher struct {
	service *AccountService
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(service *AccountService) *Dispatcher {
	return &Dispatcher{service: service}
}

// Dispatch executes a command and returns its response envelope. Create
// returns the persisted account as payload; update and delete return an
// empty success.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd domain.Command) Response {
	switch c := cmd.(type) {
	case domain.CreateAccountCommand:
		account, err := d.service.CreateAccount(ctx, c)
		if err != nil {
			return failure(err)
		}
		return Response{Success: true, Payload: account}
	case domain.UpdateAccountCommand:
		if err := d.service.UpdateAccount(ctx, c); err != nil {
			return failure(err)
		}
		return Response{Success: true}
	case domain.DeleteAccountCommand:
		if err := d.service.DeleteAccount(ctx, c); err != nil {
			return failure(err)
		}
		return Response{Success: true}
	default:
		return Response{Success: false, Error: &ErrorInfo{
			Kind:    string(domain.ErrValidation),
			Message: "unsupported command kind",
		}}
	}
}

func failure(err error) Response {
	return Response{Success: false, Error: &ErrorInfo{
		Kind:    string(domain.KindOf(err)),
		Message: err.Error(),
	}}
}
