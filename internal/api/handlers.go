/**
 * @description
 * This file defines the thin HTTP adapter in front of the command
 * dispatcher. Handlers only translate a request into a command value, hand
 * it to the dispatcher, and write the dispatcher's envelope back with a
 * status code derived from the error kind. All business rules live behind
 * the dispatcher.
 *
 * @dependencies
 * - Standard Go libraries for HTTP, JSON, etc.
 * - Chi router for URL parameter handling.
 */
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/parabank/account-service/internal/app"
	"github.com/parabank/account-service/internal/domain"
)

// AccountHandler holds the dependencies for account command handlers.
type AccountHandler struct {
	dispatcher *app.Dispatcher
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(dispatcher *app.Dispatcher) *AccountHandler {
	return &AccountHandler{dispatcher: dispatcher}
}

// CreateAccountRequest defines the expected JSON body for opening an account.
type CreateAccountRequest struct {
	CustomerID   string `json:"customer_id"`
	Name         string `json:"name"`
	CurrencyCode string `json:"currency_code"`
}

// UpdateAccountRequest defines the expected JSON body for updating an account.
type UpdateAccountRequest struct {
	Name string `json:"name"`
}

// CreateAccount handles opening a new account.
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp := h.dispatcher.Dispatch(r.Context(), domain.CreateAccountCommand{
		CustomerID:   req.CustomerID,
		Name:         req.Name,
		CurrencyCode: req.CurrencyCode,
	})
	writeEnvelope(w, resp, http.StatusCreated)
}

// UpdateAccount handles updating the mutable fields of an account.
func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp := h.dispatcher.Dispatch(r.Context(), domain.UpdateAccountCommand{
		AccountID: chi.URLParam(r, "id"),
		Name:      req.Name,
	})
	writeEnvelope(w, resp, http.StatusOK)
}

// DeleteAccount handles removing an account.
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	resp := h.dispatcher.Dispatch(r.Context(), domain.DeleteAccountCommand{
		AccountID: chi.URLParam(r, "id"),
	})
	writeEnvelope(w, resp, http.StatusOK)
}

func writeEnvelope(w http.ResponseWriter, resp app.Response, successStatus int) {
	status := successStatus
	if !resp.Success {
		status = statusForKind(resp.Error.Kind)
	}
	writeJSON(w, status, resp)
}

func statusForKind(kind string) int {
	switch domain.ErrorKind(kind) {
	case domain.ErrValidation:
		return http.StatusBadRequest
	case domain.ErrNotFound:
		return http.StatusNotFound
	case domain.ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
