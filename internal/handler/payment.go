package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/segyhp/payment-reminder/internal/domain"
	"github.com/segyhp/payment-reminder/pkg/response"
)

type PaymentHandler struct {
	service   PaymentService
	validator *validator.Validate
	logger    *slog.Logger
}

func NewPaymentHandler(service PaymentService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:   service,
		validator: NewValidator(),
		logger:    logger,
	}
}

// Confirm handles the one-click link from a notification
func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	resp, err := h.service.ConfirmPayment(r.Context(), query.Get("id"), query.Get("token"))
	if err != nil {
		writeError(w, h.logger, err, "Failed to confirm payment")
		return
	}

	response.Write(w, http.StatusOK, resp)
}

// MarkPaid marks a reminder as paid for an authenticated caller
func (h *PaymentHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	var req domain.MarkPaidRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	resp, err := h.service.MarkPaid(r.Context(), &req)
	if err != nil {
		writeError(w, h.logger, err, "Failed to mark payment")
		return
	}

	response.Write(w, http.StatusOK, resp)
}

// Complete closes a reminder
func (h *PaymentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Complete(r.Context(), mux.Vars(r)["reminderId"])
	if err != nil {
		writeError(w, h.logger, err, "Failed to complete reminder")
		return
	}

	response.Write(w, http.StatusOK, resp)
}
