/**
 * @description
 * This file sets up the HTTP router for the account-service using the `chi`
 * routing library.
 */
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/parabank/account-service/internal/app"
)

// NewRouter creates and configures a new HTTP router.
func NewRouter(dispatcher *app.Dispatcher) http.Handler {
	r := chi.NewRouter()

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	accountHandler := NewAccountHandler(dispatcher)

	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", accountHandler.CreateAccount)
		r.Put("/{id}", accountHandler.UpdateAccount)
		r.Delete("/{id}", accountHandler.DeleteAccount)
	})

	return r
}
