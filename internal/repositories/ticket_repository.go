package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ticket-backend/internal/models"
	"ticket-backend/internal/timeutil"

	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository struct {
	DB *pgxpool.Pool
}

func NewTicketRepository(db *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{DB: db}
}

const ticketColumns = `id, COALESCE(ticket_number, ''), sequence_number, year, date,
	user_id, customer_id, project_id, COALESCE(location, ''),
	COALESCE(approver, ''), COALESCE(po_afe, ''), COALESCE(cost_center, ''),
	workflow_status, is_edited, header_overrides, edited_entry_overrides,
	edited_descriptions, edited_hours, total_hours, total_amount,
	is_discarded, is_demo, restored_at, rejected_at, COALESCE(rejection_notes, ''),
	approved_by_admin_id, created_at, updated_at`

func scanTicket(row interface{ Scan(...any) error }) (*models.Ticket, error) {
	var t models.Ticket
	var headerJSON, overridesJSON, descJSON, hoursJSON []byte
	err := row.Scan(&t.ID, &t.TicketNumber, &t.SequenceNumber, &t.Year, &t.Date,
		&t.TechnicianID, &t.CustomerID, &t.ProjectID, &t.Location,
		&t.Approver, &t.POAFE, &t.CostCenter,
		&t.WorkflowStatus, &t.IsEdited, &headerJSON, &overridesJSON,
		&descJSON, &hoursJSON, &t.TotalHours, &t.TotalAmount,
		&t.IsDiscarded, &t.IsDemo, &t.RestoredAt, &t.RejectedAt, &t.RejectionNotes,
		&t.ApprovedByAdminID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	if len(headerJSON) > 0 {
		if err := json.Unmarshal(headerJSON, &t.HeaderOverrides); err != nil {
			return nil, fmt.Errorf("ticket %d: bad header_overrides: %w", t.ID, err)
		}
	}
	if len(overridesJSON) > 0 {
		if err := json.Unmarshal(overridesJSON, &t.EditedEntryOverrides); err != nil {
			return nil, fmt.Errorf("ticket %d: bad edited_entry_overrides: %w", t.ID, err)
		}
	}
	if len(descJSON) > 0 {
		if err := json.Unmarshal(descJSON, &t.EditedDescriptions); err != nil {
			return nil, fmt.Errorf("ticket %d: bad edited_descriptions: %w", t.ID, err)
		}
	}
	if len(hoursJSON) > 0 {
		if err := json.Unmarshal(hoursJSON, &t.EditedHours); err != nil {
			return nil, fmt.Errorf("ticket %d: bad edited_hours: %w", t.ID, err)
		}
	}
	return &t, nil
}

func marshalTicketJSON(t *models.Ticket) (header, overrides, descs, hours []byte, err error) {
	header, err = json.Marshal(t.HeaderOverrides)
	if err != nil {
		return
	}
	overrides, err = json.Marshal(t.EditedEntryOverrides)
	if err != nil {
		return
	}
	descs, err = json.Marshal(t.EditedDescriptions)
	if err != nil {
		return
	}
	hours, err = json.Marshal(t.EditedHours)
	return
}

func (r *TicketRepository) Get(ctx context.Context, id int) (*models.Ticket, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id)
	return scanTicket(row)
}

// Query returns tickets dated in the range, optionally filtered.
// Discarded tickets are excluded unless the filter asks for them.
func (r *TicketRepository) Query(ctx context.Context, from, to time.Time, f models.TicketFilter) ([]*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE date >= $1 AND date <= $2`
	args := []any{from, to}

	if f.Discarded != nil {
		args = append(args, *f.Discarded)
		query += fmt.Sprintf(" AND is_discarded=$%d", len(args))
	} else {
		query += " AND is_discarded=false"
	}
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
	query += " ORDER BY date, id"

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", mapError(err))
	}
	defer rows.Close()

	var out []*models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TicketRepository) Create(ctx context.Context, t *models.Ticket) error {
	if t.WorkflowStatus == "" {
		t.WorkflowStatus = models.StatusDraft
	}
	header, overrides, descs, hours, err := marshalTicketJSON(t)
	if err != nil {
		return fmt.Errorf("failed to encode ticket overrides: %w", err)
	}
	err = r.DB.QueryRow(ctx,
		`INSERT INTO tickets(ticket_number, sequence_number, year, date, user_id, customer_id,
			project_id, location, approver, po_afe, cost_center, workflow_status, is_edited,
			header_overrides, edited_entry_overrides, edited_descriptions, edited_hours,
			total_hours, total_amount, is_discarded, is_demo, restored_at, rejected_at,
			rejection_notes, approved_by_admin_id)
         VALUES(NULLIF($1, ''), $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, NULLIF($24, ''), $25)
         RETURNING id, created_at, updated_at`,
		t.TicketNumber, t.SequenceNumber, t.Year, t.Date, t.TechnicianID, t.CustomerID,
		t.ProjectID, t.Location, t.Approver, t.POAFE, t.CostCenter, t.WorkflowStatus, t.IsEdited,
		header, overrides, descs, hours,
		t.TotalHours, t.TotalAmount, t.IsDiscarded, t.IsDemo, t.RestoredAt, t.RejectedAt,
		t.RejectionNotes, t.ApprovedByAdminID,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", mapError(err))
	}
	return nil
}

func (r *TicketRepository) Update(ctx context.Context, t *models.Ticket) error {
	header, overrides, descs, hours, err := marshalTicketJSON(t)
	if err != nil {
		return fmt.Errorf("failed to encode ticket overrides: %w", err)
	}
	tag, err := r.DB.Exec(ctx,
		`UPDATE tickets SET ticket_number=NULLIF($1, ''), sequence_number=$2, year=$3, date=$4,
			user_id=$5, customer_id=$6, project_id=$7, location=$8, approver=$9, po_afe=$10,
			cost_center=$11, workflow_status=$12, is_edited=$13, header_overrides=$14,
			edited_entry_overrides=$15, edited_descriptions=$16, edited_hours=$17,
			total_hours=$18, total_amount=$19, is_discarded=$20, is_demo=$21,
			restored_at=$22, rejected_at=$23, rejection_notes=NULLIF($24, ''),
			approved_by_admin_id=$25, updated_at=CURRENT_TIMESTAMP
         WHERE id=$26`,
		t.TicketNumber, t.SequenceNumber, t.Year, t.Date,
		t.TechnicianID, t.CustomerID, t.ProjectID, t.Location, t.Approver, t.POAFE,
		t.CostCenter, t.WorkflowStatus, t.IsEdited, header,
		overrides, descs, hours,
		t.TotalHours, t.TotalAmount, t.IsDiscarded, t.IsDemo,
		t.RestoredAt, t.RejectedAt, t.RejectionNotes,
		t.ApprovedByAdminID, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update ticket %d: %w", t.ID, mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete is the admin permanent delete from trash. Hard delete; expense
// lines go with the ticket via FK cascade.
func (r *TicketRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ticket %d: %w", id, mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AllocateTicketNumber reads the current maximum sequence for the
// (initials, year, demo/real) partition and returns max+1. The caller
// formats the number and persists immediately; the unique index on
// (ticket_number, year, is_demo) turns a concurrent duplicate into
// ErrConflict on that write, and the caller re-fetches the winning
// record instead of failing.
func (r *TicketRepository) AllocateTicketNumber(ctx context.Context, t *models.Ticket, initials string, year int) (int, error) {
	var seq int
	err := r.DB.QueryRow(ctx,
		`SELECT COALESCE(MAX(sequence_number), 0) + 1
         FROM tickets
         WHERE ticket_number LIKE $1 || '\_%' AND year = $2 AND is_demo = $3`,
		initials, year, t.IsDemo).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to read max ticket sequence: %w", mapError(err))
	}
	return seq, nil
}

// FindConflicting fetches the live record holding a ticket number after
// an allocation collision.
func (r *TicketRepository) FindConflicting(ctx context.Context, ticketNumber string) (*models.Ticket, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE ticket_number=$1 AND is_discarded=false`, ticketNumber)
	return scanTicket(row)
}

// FindByIdentity locates the single live record for a composite
// identity key, used for the lazy-create path and the concurrent-create
// conflict recovery. The predicate mirrors idx_tickets_identity exactly;
// two tickets for the same day/tech/customer that differ only in PO/AFE
// are distinct records.
func (r *TicketRepository) FindByIdentity(ctx context.Context, date time.Time, technicianID, customerID int, projectID *int, location, poAFE string) (*models.Ticket, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM tickets
         WHERE date=$1 AND user_id=$2 AND customer_id=$3
           AND COALESCE(project_id, 0)=COALESCE($4, 0)
           AND COALESCE(location, '')=$5
           AND COALESCE(po_afe, '')=$6
           AND is_discarded=false
         LIMIT 1`,
		timeutil.DateOnly(date), technicianID, customerID, projectID, location, poAFE)
	return scanTicket(row)
}
