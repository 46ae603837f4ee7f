package services

import (
	"context"
	"sync"

	"ticket-backend/internal/metrics"
	"ticket-backend/internal/models"
)

// BulkResult is the outcome for one ticket in a bulk operation
type BulkResult struct {
	TicketID int    `json:"ticket_id"`
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
}

// BulkRequest applies one workflow action to many tickets
type BulkRequest struct {
	Action    string `json:"action"`
	TicketIDs []int  `json:"ticket_ids"`
	Notes     string `json:"notes,omitempty"`
}

// BulkService fans a workflow action out over a bounded worker pool.
// Each ticket succeeds or fails independently; order of results matches
// the request.
type BulkService struct {
	Tickets *TicketService
	workers int
}

func NewBulkService(ticketService *TicketService, workers int) *BulkService {
	if workers < 1 {
		workers = 1
	}
	return &BulkService{
		Tickets: ticketService,
		workers: workers,
	}
}

// Apply runs the requested action over all ticket ids
func (s *BulkService) Apply(ctx context.Context, req *BulkRequest, actorID int, isAdmin bool) ([]BulkResult, error) {
	apply, err := s.actionFunc(req, actorID, isAdmin)
	if err != nil {
		return nil, err
	}
	if len(req.TicketIDs) == 0 {
		return nil, validationErr("ticket_ids is required")
	}

	results := make([]BulkResult, len(req.TicketIDs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				id := req.TicketIDs[i]
				results[i] = BulkResult{TicketID: id, OK: true}
				if err := apply(ctx, id); err != nil {
					results[i].OK = false
					results[i].Error = err.Error()
					metrics.BulkJobsProcessed.WithLabelValues("error").Inc()
				} else {
					metrics.BulkJobsProcessed.WithLabelValues("ok").Inc()
				}
			}
		}()
	}

	for i := range req.TicketIDs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results, nil
}

// actionFunc resolves the per-ticket operation for the request. Admin
// gating beyond the transition table itself happens here so a bulk call
// cannot reach further than the matching single-ticket endpoint.
func (s *BulkService) actionFunc(req *BulkRequest, actorID int, isAdmin bool) (func(context.Context, int) error, error) {
	wrap := func(f func(ctx context.Context, id, actor int) (*models.Ticket, error)) func(context.Context, int) error {
		return func(ctx context.Context, id int) error {
			_, err := f(ctx, id, actorID)
			return err
		}
	}

	switch req.Action {
	case "submit":
		return wrap(s.Tickets.Submit), nil
	case "withdraw":
		return wrap(s.Tickets.Withdraw), nil
	case "trash":
		return wrap(s.Tickets.Trash), nil
	case "restore":
		return wrap(s.Tickets.Restore), nil
	}

	if !isAdmin {
		return nil, validationErr("action %q requires admin", req.Action)
	}

	switch req.Action {
	case "approve":
		return wrap(s.Tickets.Approve), nil
	case "unapprove":
		return wrap(s.Tickets.Unapprove), nil
	case "reject":
		return func(ctx context.Context, id int) error {
			_, err := s.Tickets.Reject(ctx, id, actorID, req.Notes)
			return err
		}, nil
	case "delete":
		return func(ctx context.Context, id int) error {
			return s.Tickets.PermanentDelete(ctx, id, actorID)
		}, nil
	case "pipeline_forward":
		return wrap(s.Tickets.PipelineForward), nil
	case "pipeline_back":
		return wrap(s.Tickets.PipelineBack), nil
	default:
		return nil, validationErr("unknown bulk action %q", req.Action)
	}
}
