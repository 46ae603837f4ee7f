package repositories

import (
	"context"
	"fmt"

	"ticket-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AuditLogRepository struct {
	DB *pgxpool.Pool
}

func NewAuditLogRepository(db *pgxpool.Pool) *AuditLogRepository {
	return &AuditLogRepository{DB: db}
}

func (r *AuditLogRepository) Create(ctx context.Context, l *models.TicketAuditLog) error {
	// Denormalize the actor name so the log survives user deletion
	var actorName string
	if err := r.DB.QueryRow(ctx, `SELECT name FROM users WHERE id=$1`, l.ActorID).Scan(&actorName); err != nil {
		actorName = "Unknown"
	}
	l.ActorName = actorName

	err := r.DB.QueryRow(ctx,
		`INSERT INTO ticket_audit_log(ticket_id, action, actor_id, actor_name, notes)
         VALUES($1, $2, $3, $4, NULLIF($5, ''))
         RETURNING id, created_at`,
		l.TicketID, l.Action, l.ActorID, l.ActorName, l.Notes,
	).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", mapError(err))
	}
	return nil
}

func (r *AuditLogRepository) ListByTicket(ctx context.Context, ticketID int) ([]*models.TicketAuditLog, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, ticket_id, action, actor_id, COALESCE(actor_name, ''), COALESCE(notes, ''), created_at
         FROM ticket_audit_log WHERE ticket_id=$1 ORDER BY created_at DESC`, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit log for ticket %d: %w", ticketID, mapError(err))
	}
	defer rows.Close()

	var out []*models.TicketAuditLog
	for rows.Next() {
		var l models.TicketAuditLog
		if err := rows.Scan(&l.ID, &l.TicketID, &l.Action, &l.ActorID, &l.ActorName, &l.Notes, &l.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

func (r *AuditLogRepository) ListRecent(ctx context.Context, limit int) ([]*models.TicketAuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.Query(ctx,
		`SELECT id, ticket_id, action, actor_id, COALESCE(actor_name, ''), COALESCE(notes, ''), created_at
         FROM ticket_audit_log ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit log: %w", mapError(err))
	}
	defer rows.Close()

	var out []*models.TicketAuditLog
	for rows.Next() {
		var l models.TicketAuditLog
		if err := rows.Scan(&l.ID, &l.TicketID, &l.Action, &l.ActorID, &l.ActorName, &l.Notes, &l.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}
