package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/segyhp/payment-reminder/pkg/response"
)

// Handlers groups everything the router serves.
type Handlers struct {
	Dispatch  *DispatchHandler
	Payment   *PaymentHandler
	Reminders *ReminderHandler
	Health    *HealthHandler
}

// NewRouter wires all routes. Operator and owner endpoints require the API
// key; the confirmation link authenticates with its own token.
func NewRouter(h Handlers, apiKey string, logger *slog.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware(logger))
	router.Use(response.CORSMiddleware)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.MethodNotAllowed(w)
	})

	// Health check
	router.HandleFunc("/health", h.Health.Health).Methods("GET")
	router.HandleFunc("/health/ready", h.Health.Ready).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	// Token-authenticated one-click link
	api.HandleFunc("/payments/confirm", h.Payment.Confirm).Methods("GET")

	secured := api.NewRoute().Subrouter()
	secured.Use(APIKeyMiddleware(apiKey))

	secured.HandleFunc("/notifications/trigger", h.Dispatch.Trigger).Methods("POST", "OPTIONS")
	secured.HandleFunc("/notifications/status", h.Dispatch.Status).Methods("GET")

	secured.HandleFunc("/payments/mark-paid", h.Payment.MarkPaid).Methods("POST", "OPTIONS")
	secured.HandleFunc("/reminders/{reminderId}/complete", h.Payment.Complete).Methods("POST")

	secured.HandleFunc("/owners/{ownerId}/reminders/upcoming", h.Reminders.Upcoming).Methods("GET")
	secured.HandleFunc("/owners/{ownerId}/reminders/history", h.Reminders.History).Methods("GET")
	secured.HandleFunc("/owners/{ownerId}/reminders/recurring", h.Reminders.Recurring).Methods("GET")

	return router
}
