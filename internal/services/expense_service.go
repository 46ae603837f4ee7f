package services

import (
	"context"

	"ticket-backend/internal/models"
	"ticket-backend/internal/repositories"
	"ticket-backend/internal/tickets"
)

// ExpenseService manages the expense lines attached to a ticket
type ExpenseService struct {
	ExpenseRepo *repositories.ExpenseRepository
	TicketRepo  *repositories.TicketRepository
}

func NewExpenseService(expenseRepo *repositories.ExpenseRepository, ticketRepo *repositories.TicketRepository) *ExpenseService {
	return &ExpenseService{
		ExpenseRepo: expenseRepo,
		TicketRepo:  ticketRepo,
	}
}

// ListByTicket returns a ticket's expense lines
func (s *ExpenseService) ListByTicket(ctx context.Context, ticketID int) ([]*models.Expense, error) {
	return s.ExpenseRepo.ListByTicket(ctx, ticketID)
}

// editable checks that the ticket accepts expense changes
func (s *ExpenseService) editable(ctx context.Context, ticketID int, isAdmin bool) error {
	rec, err := s.TicketRepo.Get(ctx, ticketID)
	if err != nil {
		return err
	}
	if !tickets.EditableBy(rec, isAdmin) {
		return validationErr("ticket %d is not editable in its current state", ticketID)
	}
	return nil
}

// Create adds an expense line
func (s *ExpenseService) Create(ctx context.Context, e *models.Expense, isAdmin bool) error {
	if !e.Type.IsValid() {
		return validationErr("unknown expense type %q", e.Type)
	}
	if e.Quantity < 0 || e.Rate < 0 {
		return validationErr("expense quantity and rate must not be negative")
	}
	if err := s.editable(ctx, e.TicketID, isAdmin); err != nil {
		return err
	}
	return s.ExpenseRepo.Create(ctx, e)
}

// Update replaces an expense line
func (s *ExpenseService) Update(ctx context.Context, e *models.Expense, isAdmin bool) error {
	if !e.Type.IsValid() {
		return validationErr("unknown expense type %q", e.Type)
	}
	if e.Quantity < 0 || e.Rate < 0 {
		return validationErr("expense quantity and rate must not be negative")
	}
	if err := s.editable(ctx, e.TicketID, isAdmin); err != nil {
		return err
	}
	return s.ExpenseRepo.Update(ctx, e)
}

// Delete removes an expense line
func (s *ExpenseService) Delete(ctx context.Context, ticketID, expenseID int, isAdmin bool) error {
	if err := s.editable(ctx, ticketID, isAdmin); err != nil {
		return err
	}
	return s.ExpenseRepo.Delete(ctx, expenseID)
}
