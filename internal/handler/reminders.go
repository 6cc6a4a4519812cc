package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/segyhp/payment-reminder/internal/service"
	"github.com/segyhp/payment-reminder/pkg/response"
)

type ReminderHandler struct {
	service ReminderService
	logger  *slog.Logger
}

func NewReminderHandler(service ReminderService, logger *slog.Logger) *ReminderHandler {
	return &ReminderHandler{
		service: service,
		logger:  logger,
	}
}

func (h *ReminderHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	days, ok := intParam(w, r, "days", service.DefaultUpcomingDays)
	if !ok {
		return
	}

	views, err := h.service.Upcoming(r.Context(), mux.Vars(r)["ownerId"], days)
	if err != nil {
		writeError(w, h.logger, err, "Failed to fetch upcoming reminders")
		return
	}

	response.Success(w, views)
}

func (h *ReminderHandler) History(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(w, r, "limit", service.DefaultHistoryLimit)
	if !ok {
		return
	}
	offset, ok := intParam(w, r, "offset", 0)
	if !ok {
		return
	}

	reminders, err := h.service.History(r.Context(), mux.Vars(r)["ownerId"], limit, offset)
	if err != nil {
		writeError(w, h.logger, err, "Failed to fetch reminder history")
		return
	}

	response.Success(w, reminders)
}

func (h *ReminderHandler) Recurring(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.Recurring(r.Context(), mux.Vars(r)["ownerId"])
	if err != nil {
		writeError(w, h.logger, err, "Failed to fetch recurring reminders")
		return
	}

	response.Success(w, views)
}

func intParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		response.BadRequest(w, "Invalid "+name+" parameter", err)
		return 0, false
	}
	return n, true
}
