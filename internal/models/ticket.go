package models

import "time"

// Status is the workflow state of a ticket. The set is closed; every
// transition between statuses goes through the workflow transition table.
type Status string

const (
	// Pre-numbering lifecycle
	StatusDraft    Status = "draft"
	StatusRejected Status = "rejected"
	StatusApproved Status = "approved" // user-submitted; numbered once an admin approves

	// Invoicing pipeline, only reachable once a ticket number exists.
	// Strictly ordered; each step requires all predecessors.
	StatusPDFExported     Status = "pdf_exported"
	StatusQBOCreated      Status = "qbo_created"
	StatusSentToCNRL      Status = "sent_to_cnrl"
	StatusCNRLApproved    Status = "cnrl_approved"
	StatusSubmittedToCNRL Status = "submitted_to_cnrl"
)

// IsValid reports whether s is one of the known workflow statuses
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusRejected, StatusApproved,
		StatusPDFExported, StatusQBOCreated, StatusSentToCNRL,
		StatusCNRLApproved, StatusSubmittedToCNRL:
		return true
	}
	return false
}

// HeaderOverrides is the closed set of ticket header fields a user or
// admin can pin over the live aggregate values. Rate fields are snapshots
// taken at approval so historical tickets keep their amounts when pay
// rates later change.
type HeaderOverrides struct {
	CustomerName    string   `json:"customer_name,omitempty"`
	CustomerAddress string   `json:"customer_address,omitempty"`
	Contact         string   `json:"contact,omitempty"`
	Location        string   `json:"location,omitempty"`
	ProjectName     string   `json:"project_name,omitempty"`
	Approver        string   `json:"approver,omitempty"`
	POAFE           string   `json:"po_afe,omitempty"`
	CostCenter      string   `json:"cost_center,omitempty"`
	OtherRef        string   `json:"other_ref,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	RateShop        *float64 `json:"rt,omitempty"`
	RateTravel      *float64 `json:"tt,omitempty"`
	RateField       *float64 `json:"ft,omitempty"`
	RateShopOT      *float64 `json:"shop_ot,omitempty"`
	RateFieldOT     *float64 `json:"field_ot,omitempty"`
}

// IsEmpty reports whether no header field is overridden
func (h HeaderOverrides) IsEmpty() bool {
	return h.CustomerName == "" && h.CustomerAddress == "" && h.Contact == "" &&
		h.Location == "" && h.ProjectName == "" && h.Approver == "" &&
		h.POAFE == "" && h.CostCenter == "" && h.OtherRef == "" && h.Notes == "" &&
		h.RateShop == nil && h.RateTravel == nil && h.RateField == nil &&
		h.RateShopOT == nil && h.RateFieldOT == nil
}

// RowOverride is a saved replacement for one service line's description
// and hours, keyed by the originating time entry id (or a synthetic id
// for manually added rows with no backing entry).
type RowOverride struct {
	Description   string  `json:"description"`
	ShopTime      float64 `json:"st"`
	TravelTime    float64 `json:"tt"`
	FieldTime     float64 `json:"ft"`
	ShopOvertime  float64 `json:"shop_ot"`
	FieldOvertime float64 `json:"field_ot"`
}

// Ticket is the persisted service-ticket record. Created lazily on first
// open/submit/approve; at most one non-discarded record exists per
// composite identity key (date, technician, customer, project, location,
// billing key components).
type Ticket struct {
	ID             int        `json:"id"`
	TicketNumber   string     `json:"ticket_number,omitempty"` // present iff admin-approved
	SequenceNumber *int       `json:"sequence_number,omitempty"`
	Year           *int       `json:"year,omitempty"`
	Date           time.Time  `json:"date"`
	TechnicianID   int        `json:"user_id"`
	CustomerID     int        `json:"customer_id"` // 0 = unassigned
	ProjectID      *int       `json:"project_id,omitempty"`
	Location       string     `json:"location,omitempty"`
	Approver       string     `json:"approver,omitempty"`
	POAFE          string     `json:"po_afe,omitempty"`
	CostCenter     string     `json:"cost_center,omitempty"`
	WorkflowStatus Status     `json:"workflow_status"`
	IsEdited       bool       `json:"is_edited"`

	HeaderOverrides      HeaderOverrides        `json:"header_overrides"`
	EditedEntryOverrides map[string]RowOverride `json:"edited_entry_overrides,omitempty"`

	// Legacy per-entry edit maps from before row overrides carried hours
	// per rate type. Read-only; still honored by matching and display.
	EditedDescriptions map[string]string  `json:"edited_descriptions,omitempty"`
	EditedHours        map[string]float64 `json:"edited_hours,omitempty"`

	// Snapshot totals taken at submit/approve; authoritative over live
	// recomputation once the ticket is locked.
	TotalHours  float64 `json:"total_hours"`
	TotalAmount float64 `json:"total_amount"`

	IsDiscarded       bool       `json:"is_discarded"`
	IsDemo            bool       `json:"is_demo"`
	RestoredAt        *time.Time `json:"restored_at,omitempty"`
	RejectedAt        *time.Time `json:"rejected_at,omitempty"`
	RejectionNotes    string     `json:"rejection_notes,omitempty"`
	ApprovedByAdminID *int       `json:"approved_by_admin_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasTicketNumber reports whether an admin has numbered this ticket
func (t *Ticket) HasTicketNumber() bool {
	return t.TicketNumber != ""
}

// IsLocked reports whether the ticket is read-only for non-admins:
// workflow status past draft/rejected or a ticket number assigned,
// and not sitting in the trash.
func (t *Ticket) IsLocked() bool {
	if t.IsDiscarded {
		return false
	}
	return (t.WorkflowStatus != StatusDraft && t.WorkflowStatus != StatusRejected) || t.HasTicketNumber()
}

// TicketFilter narrows a ticket query
type TicketFilter struct {
	TechnicianID int
	CustomerID   int
	Discarded    *bool
	IsDemo       *bool
}

// SaveTicketRequest carries a save from the ticket editor: the full
// header override set plus the minimal row override set computed
// against the live aggregate.
type SaveTicketRequest struct {
	Date         string `json:"date"` // YYYY-MM-DD, required when creating
	TechnicianID int    `json:"user_id"`
	CustomerID   int    `json:"customer_id"`
	ProjectID    *int   `json:"project_id,omitempty"`
	Location     string `json:"location"`
	Approver     string `json:"approver"`
	POAFE        string `json:"po_afe"`
	CostCenter   string `json:"cost_center"`
	IsDemo       bool   `json:"is_demo"`

	HeaderOverrides      HeaderOverrides        `json:"header_overrides"`
	EditedEntryOverrides map[string]RowOverride `json:"edited_entry_overrides"`

	PendingExpenseAdds    []Expense `json:"pending_expense_adds,omitempty"`
	PendingExpenseDeletes []int     `json:"pending_expense_deletes,omitempty"`
}

// RejectTicketRequest carries an admin rejection
type RejectTicketRequest struct {
	Notes string `json:"notes"`
}

// TicketAuditLog records an admin workflow action on a ticket
type TicketAuditLog struct {
	ID        int       `json:"id"`
	TicketID  int       `json:"ticket_id"`
	Action    string    `json:"action"` // submit, withdraw, approve, unapprove, reject, trash, restore, delete
	ActorID   int       `json:"actor_id"`
	ActorName string    `json:"actor_name,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
