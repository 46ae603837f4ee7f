package models

import "time"

// ExpenseType classifies an expense line on a ticket
type ExpenseType string

const (
	ExpenseTravel      ExpenseType = "Travel"
	ExpenseSubsistence ExpenseType = "Subsistence"
	ExpenseExpenses    ExpenseType = "Expenses"
	ExpenseEquipment   ExpenseType = "Equipment"
)

// IsValid reports whether et is one of the known expense types
func (et ExpenseType) IsValid() bool {
	switch et {
	case ExpenseTravel, ExpenseSubsistence, ExpenseExpenses, ExpenseEquipment:
		return true
	}
	return false
}

// Expense is one expense line owned by a ticket. Pending adds and
// deletes are held client-side and applied atomically at save time.
type Expense struct {
	ID          int         `json:"id,omitempty"`
	TicketID    int         `json:"ticket_id"`
	Type        ExpenseType `json:"type"`
	Description string      `json:"description"`
	Quantity    float64     `json:"quantity"`
	Rate        float64     `json:"rate"`
	Unit        string      `json:"unit,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Amount returns quantity * rate for the line
func (e *Expense) Amount() float64 {
	return e.Quantity * e.Rate
}
