package repositories

import (
	"context"
	"fmt"
	"time"

	"ticket-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type TimeEntryRepository struct {
	DB *pgxpool.Pool
}

func NewTimeEntryRepository(db *pgxpool.Pool) *TimeEntryRepository {
	return &TimeEntryRepository{DB: db}
}

const timeEntryColumns = `id, date, user_id, customer_id, COALESCE(project_id, 0),
	COALESCE(location, ''), rate_type, hours, description,
	COALESCE(approver, ''), COALESCE(po_afe, ''), COALESCE(cost_center, ''), COALESCE(other_ref, ''),
	is_demo, updated_at`

func scanTimeEntry(row interface{ Scan(...any) error }) (*models.TimeEntry, error) {
	var e models.TimeEntry
	err := row.Scan(&e.ID, &e.Date, &e.TechnicianID, &e.CustomerID, &e.ProjectID,
		&e.Location, &e.RateType, &e.Hours, &e.Description,
		&e.Approver, &e.POAFE, &e.CostCenter, &e.OtherRef,
		&e.IsDemo, &e.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &e, nil
}

// Upsert ingests an entry from the time-tracking source. Entries are
// keyed by the source's own id, so re-ingesting is an update.
func (r *TimeEntryRepository) Upsert(ctx context.Context, e *models.TimeEntry) error {
	_, err := r.DB.Exec(ctx,
		`INSERT INTO time_entries(id, date, user_id, customer_id, project_id, location,
			rate_type, hours, description, approver, po_afe, cost_center, other_ref, is_demo, updated_at)
         VALUES($1, $2, $3, $4, NULLIF($5, 0), $6, $7, $8, $9, $10, $11, $12, $13, $14, CURRENT_TIMESTAMP)
         ON CONFLICT (id) DO UPDATE SET
			date=EXCLUDED.date, user_id=EXCLUDED.user_id, customer_id=EXCLUDED.customer_id,
			project_id=EXCLUDED.project_id, location=EXCLUDED.location, rate_type=EXCLUDED.rate_type,
			hours=EXCLUDED.hours, description=EXCLUDED.description, approver=EXCLUDED.approver,
			po_afe=EXCLUDED.po_afe, cost_center=EXCLUDED.cost_center, other_ref=EXCLUDED.other_ref,
			is_demo=EXCLUDED.is_demo, updated_at=CURRENT_TIMESTAMP`,
		e.ID, e.Date, e.TechnicianID, e.CustomerID, e.ProjectID, e.Location,
		e.RateType, e.Hours, e.Description, e.Approver, e.POAFE, e.CostCenter, e.OtherRef, e.IsDemo)
	if err != nil {
		return fmt.Errorf("failed to upsert time entry %s: %w", e.ID, mapError(err))
	}
	return nil
}

func (r *TimeEntryRepository) Get(ctx context.Context, id string) (*models.TimeEntry, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+timeEntryColumns+` FROM time_entries WHERE id=$1`, id)
	return scanTimeEntry(row)
}

// List returns all entries in the date range, oldest first, optionally
// narrowed by technician/customer/demo partition.
func (r *TimeEntryRepository) List(ctx context.Context, from, to time.Time, f models.TimeEntryFilter) ([]models.TimeEntry, error) {
	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE date >= $1 AND date <= $2`
	args := []any{from, to}

	if f.TechnicianID != 0 {
		args = append(args, f.TechnicianID)
		query += fmt.Sprintf(" AND user_id=$%d", len(args))
	}
	if f.CustomerID != 0 {
		args = append(args, f.CustomerID)
		query += fmt.Sprintf(" AND customer_id=$%d", len(args))
	}
	if f.IsDemo != nil {
		args = append(args, *f.IsDemo)
		query += fmt.Sprintf(" AND is_demo=$%d", len(args))
	}
	query += " ORDER BY date, created_at, id"

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", mapError(err))
	}
	defer rows.Close()

	var entries []models.TimeEntry
	for rows.Next() {
		e, err := scanTimeEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (r *TimeEntryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM time_entries WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete time entry %s: %w", id, mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
