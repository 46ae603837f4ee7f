package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"ticket-backend/internal/archive"
	"ticket-backend/internal/services"
	"ticket-backend/internal/timeutil"

	"github.com/gorilla/mux"
)

type ExportHandler struct {
	Export  *services.ExportService
	Archive *archive.Client
}

func NewExportHandler(exportService *services.ExportService, archiveClient *archive.Client) *ExportHandler {
	return &ExportHandler{Export: exportService, Archive: archiveClient}
}

// TicketPDF streams a rendered ticket PDF
func (h *ExportHandler) TicketPDF(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	data, filename, err := h.Export.TicketPDF(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(data)
}

// TicketsCSV streams a CSV summary of the reconciled range
func (h *ExportHandler) TicketsCSV(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		http.Error(w, "Invalid date: expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	data, err := h.Export.TicketsCSV(r.Context(), from, to, ticketFilter(r))
	if err != nil {
		respondError(w, err)
		return
	}

	filename := fmt.Sprintf("tickets_%s_%s.csv",
		from.Format(timeutil.DateLayout), to.Format(timeutil.DateLayout))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(data)
}

// BulkPDFZip renders many tickets concurrently and returns one zip
func (h *ExportHandler) BulkPDFZip(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TicketIDs []int `json:"ticket_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.TicketIDs) == 0 {
		http.Error(w, "ticket_ids is required", http.StatusBadRequest)
		return
	}

	data, err := h.Export.BulkPDFZip(r.Context(), req.TicketIDs)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="tickets.zip"`)
	w.Write(data)
}

// ListArchive lists archived ticket PDFs under a key prefix
func (h *ExportHandler) ListArchive(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		prefix = "tickets/"
	}

	keys, err := h.Archive.List(r.Context(), prefix)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, keys)
}
