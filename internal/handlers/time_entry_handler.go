package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"ticket-backend/internal/models"
	"ticket-backend/internal/services"

	"github.com/gorilla/mux"
)

type TimeEntryHandler struct {
	Entries *services.TimeEntryService
}

func NewTimeEntryHandler(entryService *services.TimeEntryService) *TimeEntryHandler {
	return &TimeEntryHandler{Entries: entryService}
}

// Ingest upserts a single time entry from the upstream tracker
func (h *TimeEntryHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req models.IngestTimeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := h.Entries.Ingest(r.Context(), &req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// IngestBatch upserts a list of entries, reporting per-entry failures
func (h *TimeEntryHandler) IngestBatch(w http.ResponseWriter, r *http.Request) {
	var reqs []models.IngestTimeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	type batchResult struct {
		ID    string `json:"id"`
		OK    bool   `json:"ok"`
		Error string `json:"error,omitempty"`
	}
	results := make([]batchResult, 0, len(reqs))
	for i := range reqs {
		res := batchResult{ID: reqs[i].ID, OK: true}
		if _, err := h.Entries.Ingest(r.Context(), &reqs[i]); err != nil {
			res.OK = false
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	respondJSON(w, http.StatusOK, results)
}

func (h *TimeEntryHandler) List(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		http.Error(w, "Invalid date: expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	filter := models.TimeEntryFilter{}
	q := r.URL.Query()
	if v := q.Get("user_id"); v != "" {
		filter.TechnicianID, _ = strconv.Atoi(v)
	}
	if v := q.Get("customer_id"); v != "" {
		filter.CustomerID, _ = strconv.Atoi(v)
	}
	if v := q.Get("demo"); v != "" {
		b := v == "true"
		filter.IsDemo = &b
	}

	entries, err := h.Entries.List(r.Context(), from, to, filter)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (h *TimeEntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.Entries.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
