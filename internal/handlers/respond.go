package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"ticket-backend/internal/repositories"
	"ticket-backend/internal/services"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError maps service errors onto HTTP statuses
func respondError(w http.ResponseWriter, err error) {
	var ve *services.ValidationError
	var te *services.TOTPError
	switch {
	case errors.As(err, &ve):
		http.Error(w, ve.Message, http.StatusBadRequest)
	case errors.As(err, &te):
		http.Error(w, te.Message, http.StatusBadRequest)
	case errors.Is(err, repositories.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, repositories.ErrConflict):
		http.Error(w, "Conflict", http.StatusConflict)
	default:
		http.Error(w, repositories.DescribePersistenceError(err), http.StatusInternalServerError)
	}
}
