package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"ticket-backend/internal/repositories"
	"ticket-backend/internal/services"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &services.ValidationError{Message: "hours must not be negative"}, http.StatusBadRequest},
		{"totp", services.ErrInvalidTOTPCode, http.StatusBadRequest},
		{"not found", repositories.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load ticket: %w", repositories.ErrNotFound), http.StatusNotFound},
		{"conflict", repositories.ErrConflict, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondError(rec, tt.err)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRespondErrorDescribesDatabaseFailures(t *testing.T) {
	rec := httptest.NewRecorder()
	respondError(rec, fmt.Errorf("list tickets: %w", &pgconn.PgError{
		Code:    "42P01",
		Message: `relation "tickets" does not exist`,
	}))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "run migrations") {
		t.Errorf("body = %q, want migration hint", rec.Body.String())
	}
}

func TestRespondJSONSetsContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	respondJSON(rec, http.StatusCreated, map[string]int{"id": 5})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}
