package handlers

import (
	"net/http"
	"strconv"

	"ticket-backend/internal/repositories"

	"github.com/gorilla/mux"
)

type AuditHandler struct {
	Audit *repositories.AuditLogRepository
}

func NewAuditHandler(auditRepo *repositories.AuditLogRepository) *AuditHandler {
	return &AuditHandler{Audit: auditRepo}
}

func (h *AuditHandler) ListByTicket(w http.ResponseWriter, r *http.Request) {
	ticketID, _ := strconv.Atoi(mux.Vars(r)["id"])

	logs, err := h.Audit.ListByTicket(r.Context(), ticketID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

func (h *AuditHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	logs, err := h.Audit.ListRecent(r.Context(), limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, logs)
}
