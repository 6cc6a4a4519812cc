package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/segyhp/payment-reminder/internal/domain"
	"github.com/segyhp/payment-reminder/pkg/response"
)

type DispatchHandler struct {
	service   DispatchService
	validator *validator.Validate
	logger    *slog.Logger
}

func NewDispatchHandler(service DispatchService, logger *slog.Logger) *DispatchHandler {
	return &DispatchHandler{
		service:   service,
		validator: NewValidator(),
		logger:    logger,
	}
}

// Trigger runs one dispatch on demand
func (h *DispatchHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	var req domain.TriggerRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	report, err := h.service.RunDispatch(r.Context(), req.ForceRun, req.BatchLimit)
	if err != nil {
		writeError(w, h.logger, err, "Failed to run dispatch")
		return
	}

	response.SuccessMessage(w, fmt.Sprintf("Processed %d reminders", report.Processed), report)
}

// Status reports scheduler configuration and recent notifications
func (h *DispatchHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Status(r.Context())
	if err != nil {
		writeError(w, h.logger, err, "Failed to get dispatch status")
		return
	}

	response.Success(w, status)
}
