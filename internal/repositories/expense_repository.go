package repositories

import (
	"context"
	"fmt"

	"ticket-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ExpenseRepository struct {
	DB *pgxpool.Pool
}

func NewExpenseRepository(db *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{DB: db}
}

const expenseColumns = `id, ticket_id, type, description, quantity, rate, COALESCE(unit, ''), created_at, updated_at`

func scanExpense(row interface{ Scan(...any) error }) (*models.Expense, error) {
	var e models.Expense
	err := row.Scan(&e.ID, &e.TicketID, &e.Type, &e.Description, &e.Quantity, &e.Rate, &e.Unit, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &e, nil
}

func (r *ExpenseRepository) ListByTicket(ctx context.Context, ticketID int) ([]*models.Expense, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE ticket_id=$1 ORDER BY id`, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses for ticket %d: %w", ticketID, mapError(err))
	}
	defer rows.Close()

	var out []*models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *ExpenseRepository) Create(ctx context.Context, e *models.Expense) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO expenses(ticket_id, type, description, quantity, rate, unit)
         VALUES($1, $2, $3, $4, $5, NULLIF($6, ''))
         RETURNING id, created_at, updated_at`,
		e.TicketID, e.Type, e.Description, e.Quantity, e.Rate, e.Unit,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", mapError(err))
	}
	return nil
}

func (r *ExpenseRepository) Update(ctx context.Context, e *models.Expense) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE expenses SET type=$1, description=$2, quantity=$3, rate=$4, unit=NULLIF($5, ''),
			updated_at=CURRENT_TIMESTAMP
         WHERE id=$6`,
		e.Type, e.Description, e.Quantity, e.Rate, e.Unit, e.ID)
	if err != nil {
		return fmt.Errorf("failed to update expense %d: %w", e.ID, mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM expenses WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense %d: %w", id, mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyPending applies a save's pending expense adds and deletes in one
// transaction so a half-applied batch never persists.
func (r *ExpenseRepository) ApplyPending(ctx context.Context, ticketID int, adds []models.Expense, deletes []int) error {
	return pgx.BeginFunc(ctx, r.DB, func(tx pgx.Tx) error {
		for _, id := range deletes {
			if _, err := tx.Exec(ctx, `DELETE FROM expenses WHERE id=$1 AND ticket_id=$2`, id, ticketID); err != nil {
				return fmt.Errorf("failed to delete expense %d: %w", id, mapError(err))
			}
		}
		for _, e := range adds {
			if _, err := tx.Exec(ctx,
				`INSERT INTO expenses(ticket_id, type, description, quantity, rate, unit)
                 VALUES($1, $2, $3, $4, $5, NULLIF($6, ''))`,
				ticketID, e.Type, e.Description, e.Quantity, e.Rate, e.Unit); err != nil {
				return fmt.Errorf("failed to add expense: %w", mapError(err))
			}
		}
		return nil
	})
}
