package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"ticket-backend/internal/models"
	"ticket-backend/internal/services"

	"github.com/gorilla/mux"
)

type ExpenseHandler struct {
	Expenses *services.ExpenseService
}

func NewExpenseHandler(expenseService *services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{Expenses: expenseService}
}

func (h *ExpenseHandler) ListByTicket(w http.ResponseWriter, r *http.Request) {
	ticketID, _ := strconv.Atoi(mux.Vars(r)["id"])

	expenses, err := h.Expenses.ListByTicket(r.Context(), ticketID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, expenses)
}

func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	ticketID, _ := strconv.Atoi(mux.Vars(r)["id"])

	var expense models.Expense
	if err := json.NewDecoder(r.Body).Decode(&expense); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	expense.TicketID = ticketID

	_, isAdmin := actor(r)
	if err := h.Expenses.Create(r.Context(), &expense, isAdmin); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, expense)
}

func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	ticketID, _ := strconv.Atoi(vars["id"])
	expenseID, _ := strconv.Atoi(vars["expense_id"])

	var expense models.Expense
	if err := json.NewDecoder(r.Body).Decode(&expense); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	expense.ID = expenseID
	expense.TicketID = ticketID

	_, isAdmin := actor(r)
	if err := h.Expenses.Update(r.Context(), &expense, isAdmin); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, expense)
}

func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	ticketID, _ := strconv.Atoi(vars["id"])
	expenseID, _ := strconv.Atoi(vars["expense_id"])

	_, isAdmin := actor(r)
	if err := h.Expenses.Delete(r.Context(), ticketID, expenseID, isAdmin); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
