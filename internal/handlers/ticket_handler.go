package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"ticket-backend/internal/middleware"
	"ticket-backend/internal/models"
	"ticket-backend/internal/services"
	"ticket-backend/internal/tickets"
	"ticket-backend/internal/timeutil"

	"github.com/gorilla/mux"
)

type TicketHandler struct {
	Reconcile *services.ReconcileService
	Tickets   *services.TicketService
	Bulk      *services.BulkService
}

func NewTicketHandler(reconcile *services.ReconcileService, ticketService *services.TicketService, bulkService *services.BulkService) *TicketHandler {
	return &TicketHandler{
		Reconcile: reconcile,
		Tickets:   ticketService,
		Bulk:      bulkService,
	}
}

// actor pulls the caller's id and role from the request context
func actor(r *http.Request) (int, bool) {
	id, _ := middleware.GetUserIDFromContext(r.Context())
	role, _ := middleware.GetRoleFromContext(r.Context())
	return id, role == "admin"
}

// dateRange parses from/to query params, defaulting to the current
// month in the company timezone.
func dateRange(r *http.Request) (time.Time, time.Time, error) {
	now := timeutil.Now()
	from := timeutil.DateOnly(now.AddDate(0, 0, -now.Day()+1))
	to := timeutil.DateOnly(from.AddDate(0, 1, -1))

	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := timeutil.ParseDate(v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := timeutil.ParseDate(v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed
	}
	return from, to, nil
}

func ticketFilter(r *http.Request) models.TicketFilter {
	f := models.TicketFilter{}
	q := r.URL.Query()
	if v := q.Get("user_id"); v != "" {
		f.TechnicianID, _ = strconv.Atoi(v)
	}
	if v := q.Get("customer_id"); v != "" {
		f.CustomerID, _ = strconv.Atoi(v)
	}
	if v := q.Get("discarded"); v != "" {
		b := v == "true"
		f.Discarded = &b
	}
	if v := q.Get("demo"); v != "" {
		b := v == "true"
		f.IsDemo = &b
	}
	return f
}

// List runs a reconciliation pass and returns the merged ticket views
func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		http.Error(w, "Invalid date: expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	openID := 0
	if v := r.URL.Query().Get("open_id"); v != "" {
		openID, _ = strconv.Atoi(v)
	}

	result, err := h.Reconcile.Reconcile(r.Context(), from, to, ticketFilter(r), openID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Open returns the merged display view of one persisted record
func (h *TicketHandler) Open(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	dt, err := h.Reconcile.Open(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dt)
}

// Transitions lists the workflow actions legal for the caller on this
// record, so clients can enable exactly the buttons that will succeed
func (h *TicketHandler) Transitions(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	_, isAdmin := actor(r)

	rec, err := h.Tickets.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tickets.LegalTransitions(rec, isAdmin))
}

// Save persists an editor save, creating the record on first write
func (h *TicketHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req models.SaveTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	actorID, isAdmin := actor(r)
	rec, err := h.Tickets.Save(r.Context(), &req, actorID, isAdmin)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (h *TicketHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	actorID, _ := actor(r)

	rec, err := h.Tickets.Submit(r.Context(), id, actorID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (h *TicketHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	actorID, _ := actor(r)

	rec, err := h.Tickets.Withdraw(r.Context(), id, actorID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (h *TicketHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	actorID, _ := actor(r)

	rec, err := h.Tickets.Approve(r.Context(), id, actorID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (h *TicketHandler) Unapprove(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	actorID, _ := actor(r)

	rec, err := h.Tickets.Unapprove(r.Context(), id, actorID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (h *TicketHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	actorID, _ := actor(r)

	var req models.RejectTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rec, err := h.Tickets.Reject(r.Context(), id, actorID, req.Notes)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (h *TicketHandler) Trash(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	actorID, _ := actor(r)

	rec, err := h.Tickets.Trash(r.Context(), id, actorID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (h *TicketHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	actorID, _ := actor(r)

	rec, err := h.Tickets.Restore(r.Context(), id, actorID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (h *TicketHandler) PermanentDelete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	actorID, _ := actor(r)

	if err := h.Tickets.PermanentDelete(r.Context(), id, actorID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TicketHandler) PipelineForward(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	actorID, _ := actor(r)

	rec, err := h.Tickets.PipelineForward(r.Context(), id, actorID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (h *TicketHandler) PipelineBack(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	actorID, _ := actor(r)

	rec, err := h.Tickets.PipelineBack(r.Context(), id, actorID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// BulkApply fans one workflow action out over many tickets
func (h *TicketHandler) BulkApply(w http.ResponseWriter, r *http.Request) {
	var req services.BulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	actorID, isAdmin := actor(r)
	results, err := h.Bulk.Apply(r.Context(), &req, actorID, isAdmin)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}
