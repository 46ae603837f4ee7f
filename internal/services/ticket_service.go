package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"ticket-backend/internal/cache"
	"ticket-backend/internal/metrics"
	"ticket-backend/internal/models"
	"ticket-backend/internal/repositories"
	"ticket-backend/internal/tickets"
	"ticket-backend/internal/timeutil"
)

// allocation collisions are rare; one concurrent approver at most in
// practice, so a handful of retries is plenty
const maxAllocateRetries = 3

// ValidationError marks a client-caused failure so handlers can return
// 400 instead of 500.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErr(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Notifier pushes ticket lifecycle events to connected clients. The
// websocket hub implements it; a nil notifier is a no-op.
type Notifier interface {
	NotifyTicket(event string, ticketID int)
}

// TicketService owns the persisted ticket lifecycle: lazy record
// creation, editor saves, workflow transitions and number allocation.
type TicketService struct {
	TicketRepo     *repositories.TicketRepository
	ExpenseRepo    *repositories.ExpenseRepository
	TechnicianRepo *repositories.TechnicianRepository
	AuditRepo      *repositories.AuditLogRepository
	Reconcile      *ReconcileService
	Notify         Notifier
}

func NewTicketService(ticketRepo *repositories.TicketRepository, expenseRepo *repositories.ExpenseRepository, techRepo *repositories.TechnicianRepository, auditRepo *repositories.AuditLogRepository, reconcile *ReconcileService) *TicketService {
	return &TicketService{
		TicketRepo:     ticketRepo,
		ExpenseRepo:    expenseRepo,
		TechnicianRepo: techRepo,
		AuditRepo:      auditRepo,
		Reconcile:      reconcile,
	}
}

// SetNotifier wires the live event hub after construction
func (s *TicketService) SetNotifier(n Notifier) {
	s.Notify = n
}

func (s *TicketService) notify(event string, ticketID int) {
	if s.Notify != nil {
		s.Notify.NotifyTicket(event, ticketID)
	}
}

func (s *TicketService) audit(ctx context.Context, ticketID int, action string, actorID int, notes string) {
	if s.AuditRepo == nil {
		return
	}
	entry := &models.TicketAuditLog{
		TicketID: ticketID,
		Action:   action,
		ActorID:  actorID,
		Notes:    notes,
	}
	if err := s.AuditRepo.Create(ctx, entry); err != nil {
		// Audit failure never blocks the workflow action itself
		log.Printf("[TicketService] audit log write failed for ticket %d: %v", ticketID, err)
	}
}

// Get fetches a persisted record by id
func (s *TicketService) Get(ctx context.Context, id int) (*models.Ticket, error) {
	return s.TicketRepo.Get(ctx, id)
}

// findOrCreate locates the live record for the request's identity key,
// creating a draft when none exists yet. A concurrent create loses the
// unique-index race and recovers by re-fetching the winner.
func (s *TicketService) findOrCreate(ctx context.Context, req *models.SaveTicketRequest) (*models.Ticket, error) {
	date, err := timeutil.ParseDate(req.Date)
	if err != nil {
		return nil, validationErr("invalid date %q: expected YYYY-MM-DD", req.Date)
	}
	if req.TechnicianID == 0 {
		return nil, validationErr("user_id is required")
	}

	rec, err := s.TicketRepo.FindByIdentity(ctx, date, req.TechnicianID, req.CustomerID, req.ProjectID, req.Location, req.POAFE)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	if req.CustomerID == 0 {
		return nil, validationErr("no customer selected; pick a customer before saving")
	}

	rec = &models.Ticket{
		Date:           date,
		TechnicianID:   req.TechnicianID,
		CustomerID:     req.CustomerID,
		ProjectID:      req.ProjectID,
		Location:       req.Location,
		Approver:       req.Approver,
		POAFE:          req.POAFE,
		CostCenter:     req.CostCenter,
		WorkflowStatus: models.StatusDraft,
		IsDemo:         req.IsDemo,
	}
	if err := s.TicketRepo.Create(ctx, rec); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return s.TicketRepo.FindByIdentity(ctx, date, req.TechnicianID, req.CustomerID, req.ProjectID, req.Location, req.POAFE)
		}
		return nil, err
	}
	return rec, nil
}

// liveRows renders the record's claiming aggregate with no saved
// overrides applied
func (s *TicketService) liveRows(ctx context.Context, rec *models.Ticket) ([]tickets.DisplayRow, error) {
	agg, _, err := s.Reconcile.aggregateFor(ctx, rec)
	if err != nil {
		return nil, err
	}
	return tickets.Merge(agg, nil).Rows, nil
}

// Save persists an editor save: header overrides, the minimal row
// override set, and any pending expense adds/deletes, atomically per
// concern. Creates the record lazily on first save.
func (s *TicketService) Save(ctx context.Context, req *models.SaveTicketRequest, actorID int, isAdmin bool) (*models.Ticket, error) {
	rec, err := s.findOrCreate(ctx, req)
	if err != nil {
		return nil, err
	}

	if !tickets.EditableBy(rec, isAdmin) {
		return nil, validationErr("ticket %d is not editable in its current state", rec.ID)
	}

	rec.HeaderOverrides = req.HeaderOverrides
	if rec.IsLocked() {
		// Locked tickets carry the full row snapshot taken at submit;
		// persist the edited set as sent so the freeze stays complete.
		rec.EditedEntryOverrides = req.EditedEntryOverrides
	} else {
		// Clients round-trip the full row set; store only the rows that
		// differ from their live values so stale no-op overrides never
		// shadow future time-entry edits.
		live, err := s.liveRows(ctx, rec)
		if err != nil {
			return nil, err
		}
		rec.EditedEntryOverrides = tickets.MinimizeEntryOverrides(req.EditedEntryOverrides, live)
	}
	rec.IsEdited = !req.HeaderOverrides.IsEmpty() || len(rec.EditedEntryOverrides) > 0 ||
		len(rec.EditedDescriptions) > 0 || len(rec.EditedHours) > 0
	rec.Approver = req.Approver
	rec.POAFE = req.POAFE
	rec.CostCenter = req.CostCenter

	if err := s.TicketRepo.Update(ctx, rec); err != nil {
		return nil, err
	}

	if len(req.PendingExpenseAdds) > 0 || len(req.PendingExpenseDeletes) > 0 {
		if err := s.ExpenseRepo.ApplyPending(ctx, rec.ID, req.PendingExpenseAdds, req.PendingExpenseDeletes); err != nil {
			return nil, err
		}
	}

	cache.InvalidateTicketCaches(ctx)
	s.notify("ticket.saved", rec.ID)
	return rec, nil
}

// transition loads, validates, mutates and persists one workflow step
func (s *TicketService) transition(ctx context.Context, id int, action string, actorID int, notes string, apply func(*models.Ticket) error) (*models.Ticket, error) {
	rec, err := s.TicketRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := apply(rec); err != nil {
		if errors.Is(err, tickets.ErrIllegalTransition) {
			return nil, &ValidationError{Message: err.Error()}
		}
		return nil, err
	}

	if err := s.TicketRepo.Update(ctx, rec); err != nil {
		return nil, err
	}

	s.audit(ctx, rec.ID, action, actorID, notes)
	cache.InvalidateTicketCaches(ctx)
	s.notify("ticket."+action, rec.ID)
	return rec, nil
}

// Submit moves a draft or rejected ticket into the admin review queue,
// snapshotting its current display totals.
func (s *TicketService) Submit(ctx context.Context, id, actorID int) (*models.Ticket, error) {
	dt, err := s.Reconcile.Open(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, id, "submit", actorID, "", func(t *models.Ticket) error {
		return tickets.Submit(t, dt)
	})
}

// Withdraw returns an un-numbered submission to draft
func (s *TicketService) Withdraw(ctx context.Context, id, actorID int) (*models.Ticket, error) {
	return s.transition(ctx, id, "withdraw", actorID, "", tickets.Withdraw)
}

// Approve numbers a submitted ticket as INITIALS_YYnnn. The sequence is
// max+1 within the (initials, year, demo) partition; a concurrent
// duplicate trips the unique index and the allocation is retried.
func (s *TicketService) Approve(ctx context.Context, id, adminID int) (*models.Ticket, error) {
	rec, err := s.TicketRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tickets.CanTransition(rec, tickets.TransitionApprove, true); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	tech, err := s.TechnicianRepo.Get(ctx, rec.TechnicianID)
	if err != nil {
		return nil, validationErr("ticket %d has no technician record; cannot allocate a number", id)
	}
	if tech.Initials == "" {
		return nil, validationErr("technician %s has no initials configured", tech.Name)
	}

	dt, err := s.Reconcile.Open(ctx, id)
	if err != nil {
		return nil, err
	}

	year := timeutil.ToMountain(rec.Date).Year()

	for attempt := 0; attempt < maxAllocateRetries; attempt++ {
		seq, err := s.TicketRepo.AllocateTicketNumber(ctx, rec, tech.Initials, year)
		if err != nil {
			return nil, err
		}
		number := tickets.FormatTicketNumber(tech.Initials, year, seq)

		if err := tickets.Approve(rec, number, seq, year, adminID, dt); err != nil {
			return nil, &ValidationError{Message: err.Error()}
		}

		err = s.TicketRepo.Update(ctx, rec)
		if err == nil {
			s.audit(ctx, rec.ID, "approve", adminID, number)
			cache.InvalidateTicketCaches(ctx)
			s.notify("ticket.approve", rec.ID)
			return rec, nil
		}
		if !errors.Is(err, repositories.ErrConflict) {
			return nil, err
		}

		// Another approval took this number first; reset and re-read
		metrics.TicketNumberConflicts.Inc()
		log.Printf("[TicketService] ticket number %s already taken, retrying allocation", number)
		rec, err = s.TicketRepo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("could not allocate a ticket number for ticket %d after %d attempts", id, maxAllocateRetries)
}

// Unapprove strips the number from an approved ticket, returning it to
// the pending-submission queue.
func (s *TicketService) Unapprove(ctx context.Context, id, adminID int) (*models.Ticket, error) {
	return s.transition(ctx, id, "unapprove", adminID, "", tickets.Unapprove)
}

// Reject sends a submission back to the technician with review notes
func (s *TicketService) Reject(ctx context.Context, id, adminID int, notes string) (*models.Ticket, error) {
	return s.transition(ctx, id, "reject", adminID, notes, func(t *models.Ticket) error {
		return tickets.Reject(t, notes)
	})
}

// Trash discards a ticket from any live state
func (s *TicketService) Trash(ctx context.Context, id, actorID int) (*models.Ticket, error) {
	return s.transition(ctx, id, "trash", actorID, "", tickets.Trash)
}

// Restore pulls a ticket out of the trash as a fresh draft
func (s *TicketService) Restore(ctx context.Context, id, actorID int) (*models.Ticket, error) {
	return s.transition(ctx, id, "restore", actorID, "", tickets.Restore)
}

// PermanentDelete removes a trashed ticket and its expenses for good
func (s *TicketService) PermanentDelete(ctx context.Context, id, adminID int) error {
	rec, err := s.TicketRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := tickets.CanTransition(rec, tickets.TransitionPermanentDelete, true); err != nil {
		return &ValidationError{Message: err.Error()}
	}
	if err := s.TicketRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, id, "delete", adminID, "")
	cache.InvalidateTicketCaches(ctx)
	s.notify("ticket.delete", id)
	return nil
}

// PipelineForward advances a numbered ticket one invoicing step
func (s *TicketService) PipelineForward(ctx context.Context, id, adminID int) (*models.Ticket, error) {
	return s.transition(ctx, id, "pipeline_forward", adminID, "", tickets.PipelineForward)
}

// PipelineBack retreats a numbered ticket one invoicing step
func (s *TicketService) PipelineBack(ctx context.Context, id, adminID int) (*models.Ticket, error) {
	return s.transition(ctx, id, "pipeline_back", adminID, "", tickets.PipelineBack)
}
