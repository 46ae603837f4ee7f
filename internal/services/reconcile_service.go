package services

import (
	"context"
	"time"

	"ticket-backend/internal/metrics"
	"ticket-backend/internal/models"
	"ticket-backend/internal/repositories"
	"ticket-backend/internal/tickets"
)

// ReconcileService runs the aggregate-match-merge pass that turns live
// time entries and persisted records into the displayed ticket list.
type ReconcileService struct {
	EntryRepo  *repositories.TimeEntryRepository
	TicketRepo *repositories.TicketRepository
	Directory  *DirectoryService
}

func NewReconcileService(entryRepo *repositories.TimeEntryRepository, ticketRepo *repositories.TicketRepository, directory *DirectoryService) *ReconcileService {
	return &ReconcileService{
		EntryRepo:  entryRepo,
		TicketRepo: ticketRepo,
		Directory:  directory,
	}
}

// ReconcileResult is one pass over a date range: merged display tickets
// in deterministic order, standalone records appended after the matched
// aggregates.
type ReconcileResult struct {
	Tickets []*tickets.DisplayTicket `json:"tickets"`
}

// Reconcile lists display tickets for [from, to]. openTicketID is the
// record currently held open in an editor (0 = none); it is surfaced
// even when no aggregate claims it.
func (s *ReconcileService) Reconcile(ctx context.Context, from, to time.Time, filter models.TicketFilter, openTicketID int) (*ReconcileResult, error) {
	start := time.Now()
	defer func() {
		metrics.ReconcileDuration.Observe(time.Since(start).Seconds())
	}()

	dir, err := s.Directory.Load(ctx)
	if err != nil {
		return nil, err
	}

	entryFilter := models.TimeEntryFilter{
		TechnicianID: filter.TechnicianID,
		CustomerID:   filter.CustomerID,
		IsDemo:       filter.IsDemo,
	}
	entries, err := s.EntryRepo.List(ctx, from, to, entryFilter)
	if err != nil {
		return nil, err
	}

	records, err := s.TicketRepo.Query(ctx, from, to, filter)
	if err != nil {
		return nil, err
	}

	aggs := tickets.Aggregate(entries, dir)
	outcome := tickets.MatchRecords(aggs, records, openTicketID)

	byStatus := make(map[string]int)
	for _, rec := range records {
		byStatus[string(rec.WorkflowStatus)]++
	}
	for status, n := range byStatus {
		metrics.TicketsByStatus.WithLabelValues(status).Set(float64(n))
	}

	result := &ReconcileResult{}
	for _, m := range outcome.Matched {
		dt := tickets.Merge(m.Aggregate, m.Record)
		dt.Ambiguous = m.Ambiguous
		result.Tickets = append(result.Tickets, dt)
	}
	for _, rec := range outcome.Standalone {
		result.Tickets = append(result.Tickets, tickets.Merge(nil, rec))
	}

	return result, nil
}

// Open merges the display view for a single persisted record, pulling in
// its claiming aggregate when the live entries still produce one.
func (s *ReconcileService) Open(ctx context.Context, recordID int) (*tickets.DisplayTicket, error) {
	rec, err := s.TicketRepo.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}

	agg, ambiguous, err := s.aggregateFor(ctx, rec)
	if err != nil {
		return nil, err
	}

	dt := tickets.Merge(agg, rec)
	dt.Ambiguous = ambiguous
	return dt, nil
}

// aggregateFor re-runs matching over the record's date so the record
// claims its aggregate by the same rules as a full pass.
func (s *ReconcileService) aggregateFor(ctx context.Context, rec *models.Ticket) (*tickets.TicketAggregate, bool, error) {
	dir, err := s.Directory.Load(ctx)
	if err != nil {
		return nil, false, err
	}

	entries, err := s.EntryRepo.List(ctx, rec.Date, rec.Date, models.TimeEntryFilter{TechnicianID: rec.TechnicianID})
	if err != nil {
		return nil, false, err
	}

	records, err := s.TicketRepo.Query(ctx, rec.Date, rec.Date, models.TicketFilter{TechnicianID: rec.TechnicianID})
	if err != nil {
		return nil, false, err
	}

	aggs := tickets.Aggregate(entries, dir)
	outcome := tickets.MatchRecords(aggs, records, rec.ID)
	for _, m := range outcome.Matched {
		if m.Record != nil && m.Record.ID == rec.ID {
			return m.Aggregate, m.Ambiguous, nil
		}
	}
	return nil, false, nil
}
