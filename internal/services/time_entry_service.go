package services

import (
	"context"
	"time"

	"ticket-backend/internal/cache"
	"ticket-backend/internal/models"
	"ticket-backend/internal/repositories"
	"ticket-backend/internal/timeutil"

	"github.com/google/uuid"
)

// TimeEntryService ingests entries from the time-tracking source.
// Entries are upserted by their source id so repeated syncs converge.
type TimeEntryService struct {
	EntryRepo   *repositories.TimeEntryRepository
	ProjectRepo *repositories.ProjectRepository
}

func NewTimeEntryService(entryRepo *repositories.TimeEntryRepository, projectRepo *repositories.ProjectRepository) *TimeEntryService {
	return &TimeEntryService{
		EntryRepo:   entryRepo,
		ProjectRepo: projectRepo,
	}
}

// Ingest validates and upserts one entry. Missing billing fields are
// defaulted from the entry's project when one is set. Entries synced
// from the tracker carry its id; manually keyed entries get a fresh one.
func (s *TimeEntryService) Ingest(ctx context.Context, req *models.IngestTimeEntryRequest) (*models.TimeEntry, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.TechnicianID == 0 {
		return nil, validationErr("user_id is required")
	}
	if req.Hours < 0 {
		return nil, validationErr("hours must not be negative")
	}

	rateType := models.RateType(req.RateType)
	if !rateType.IsValid() {
		return nil, validationErr("unknown rate type %q", req.RateType)
	}

	date, err := timeutil.ParseDate(req.Date)
	if err != nil {
		return nil, validationErr("invalid date %q: expected YYYY-MM-DD", req.Date)
	}

	entry := &models.TimeEntry{
		ID:           req.ID,
		Date:         date,
		TechnicianID: req.TechnicianID,
		CustomerID:   req.CustomerID,
		ProjectID:    req.ProjectID,
		Location:     req.Location,
		RateType:     rateType,
		Hours:        req.Hours,
		Description:  req.Description,
		Approver:     req.Approver,
		POAFE:        req.POAFE,
		CostCenter:   req.CostCenter,
		OtherRef:     req.OtherRef,
		IsDemo:       req.IsDemo,
	}

	// Project billing defaults fill gaps, never replace explicit values
	if entry.ProjectID != 0 && (entry.Approver == "" || entry.POAFE == "" || entry.CostCenter == "") {
		if project, err := s.ProjectRepo.Get(ctx, entry.ProjectID); err == nil {
			if entry.Approver == "" {
				entry.Approver = project.Approver
			}
			if entry.POAFE == "" {
				entry.POAFE = project.POAFE
			}
			if entry.CostCenter == "" {
				entry.CostCenter = project.CostCenter
			}
		}
	}

	if err := s.EntryRepo.Upsert(ctx, entry); err != nil {
		return nil, err
	}

	cache.InvalidateTicketCaches(ctx)
	return entry, nil
}

// List returns entries for a date range
func (s *TimeEntryService) List(ctx context.Context, from, to time.Time, filter models.TimeEntryFilter) ([]models.TimeEntry, error) {
	return s.EntryRepo.List(ctx, from, to, filter)
}

// Delete removes an entry deleted upstream
func (s *TimeEntryService) Delete(ctx context.Context, id string) error {
	if err := s.EntryRepo.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateTicketCaches(ctx)
	return nil
}
