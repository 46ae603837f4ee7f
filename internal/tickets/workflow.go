package tickets

import (
	"errors"
	"fmt"

	"ticket-backend/internal/models"
	"ticket-backend/internal/timeutil"
)

// Bucket classifies a ticket into a lifecycle view
type Bucket string

const (
	BucketDraft     Bucket = "draft"     // editable by the technician
	BucketRejected  Bucket = "rejected"  // back with the technician after admin rejection
	BucketSubmitted Bucket = "submitted" // awaiting admin decision
	BucketNumbered  Bucket = "numbered"  // admin-approved, ticket number assigned
	BucketTrash     Bucket = "trash"
)

// Transition is a workflow action on a ticket
type Transition string

const (
	TransitionSubmit          Transition = "submit"
	TransitionWithdraw        Transition = "withdraw"
	TransitionApprove         Transition = "approve"
	TransitionUnapprove       Transition = "unapprove"
	TransitionReject          Transition = "reject"
	TransitionTrash           Transition = "trash"
	TransitionRestore         Transition = "restore"
	TransitionPermanentDelete Transition = "delete"
	TransitionPipelineForward Transition = "pipeline_forward"
	TransitionPipelineBack    Transition = "pipeline_back"
)

// ErrIllegalTransition is returned when a transition is not legal from
// the ticket's current state
var ErrIllegalTransition = errors.New("illegal workflow transition")

// pipelineOrder is the strict invoicing progression once a ticket
// number exists; movement is one neighbor at a time in either direction.
var pipelineOrder = []models.Status{
	models.StatusApproved,
	models.StatusPDFExported,
	models.StatusQBOCreated,
	models.StatusSentToCNRL,
	models.StatusCNRLApproved,
	models.StatusSubmittedToCNRL,
}

func pipelineIndex(s models.Status) int {
	for i, p := range pipelineOrder {
		if p == s {
			return i
		}
	}
	return -1
}

// Classify buckets a ticket for listing. The trash flag layers over
// every other state.
func Classify(t *models.Ticket) Bucket {
	switch {
	case t.IsDiscarded:
		return BucketTrash
	case t.HasTicketNumber():
		return BucketNumbered
	case t.WorkflowStatus == models.StatusRejected:
		return BucketRejected
	case t.WorkflowStatus == models.StatusApproved:
		return BucketSubmitted
	default:
		return BucketDraft
	}
}

// LegalTransitions lists the transitions allowed from the ticket's
// current state for the given role.
func LegalTransitions(t *models.Ticket, isAdmin bool) []Transition {
	var out []Transition
	for _, tr := range []Transition{
		TransitionSubmit, TransitionWithdraw, TransitionApprove,
		TransitionUnapprove, TransitionReject, TransitionTrash,
		TransitionRestore, TransitionPermanentDelete,
		TransitionPipelineForward, TransitionPipelineBack,
	} {
		if CanTransition(t, tr, isAdmin) == nil {
			out = append(out, tr)
		}
	}
	return out
}

// CanTransition validates a transition against the central table
// without applying it.
func CanTransition(t *models.Ticket, tr Transition, isAdmin bool) error {
	illegal := func(why string) error {
		return fmt.Errorf("%w: cannot %s from %s: %s", ErrIllegalTransition, tr, describeState(t), why)
	}

	if t.IsDiscarded {
		switch tr {
		case TransitionRestore:
			return nil
		case TransitionPermanentDelete:
			if !isAdmin {
				return illegal("admin only")
			}
			return nil
		default:
			return illegal("ticket is in trash")
		}
	}

	switch tr {
	case TransitionSubmit:
		if t.WorkflowStatus != models.StatusDraft && t.WorkflowStatus != models.StatusRejected {
			return illegal("only drafts can be submitted")
		}
	case TransitionWithdraw:
		if t.WorkflowStatus != models.StatusApproved || t.HasTicketNumber() {
			return illegal("only un-numbered submissions can be withdrawn")
		}
	case TransitionApprove:
		if !isAdmin {
			return illegal("admin only")
		}
		if t.WorkflowStatus != models.StatusApproved || t.HasTicketNumber() {
			return illegal("only pending submissions can be approved")
		}
	case TransitionUnapprove:
		if !isAdmin {
			return illegal("admin only")
		}
		if t.WorkflowStatus != models.StatusApproved || !t.HasTicketNumber() {
			return illegal("only numbered tickets can be unapproved")
		}
	case TransitionReject:
		if !isAdmin {
			return illegal("admin only")
		}
		if t.WorkflowStatus != models.StatusApproved {
			return illegal("only submitted tickets can be rejected")
		}
	case TransitionTrash:
		// Any live state can be trashed
	case TransitionRestore, TransitionPermanentDelete:
		return illegal("ticket is not in trash")
	case TransitionPipelineForward, TransitionPipelineBack:
		if !isAdmin {
			return illegal("admin only")
		}
		if !t.HasTicketNumber() {
			return illegal("pipeline requires a ticket number")
		}
		idx := pipelineIndex(t.WorkflowStatus)
		if idx < 0 {
			return illegal("not in the invoicing pipeline")
		}
		if tr == TransitionPipelineForward && idx == len(pipelineOrder)-1 {
			return illegal("already at the final pipeline step")
		}
		if tr == TransitionPipelineBack && idx == 0 {
			return illegal("already at the first pipeline step")
		}
	default:
		return illegal("unknown transition")
	}
	return nil
}

func describeState(t *models.Ticket) string {
	if t.IsDiscarded {
		return "trash"
	}
	if t.HasTicketNumber() {
		return string(t.WorkflowStatus) + "+numbered"
	}
	return string(t.WorkflowStatus)
}

// Submit moves a draft or rejected ticket to approved (user-submitted),
// snapshotting the display's totals, header and rows into the record so
// later upstream time-entry edits cannot change what the reviewer sees.
// A resubmit after rejection keeps rejected_at set so reviewers see
// "resubmitted".
func Submit(t *models.Ticket, dt *DisplayTicket) error {
	if err := CanTransition(t, TransitionSubmit, false); err != nil {
		return err
	}
	t.WorkflowStatus = models.StatusApproved
	if dt != nil {
		t.TotalHours = dt.TotalHours
		t.TotalAmount = dt.TotalAmount
		snapshotHeader(t, dt)
		snapshotRows(t, dt.Rows)
	}
	return nil
}

// Withdraw returns an un-numbered submission to draft
func Withdraw(t *models.Ticket) error {
	if err := CanTransition(t, TransitionWithdraw, false); err != nil {
		return err
	}
	t.WorkflowStatus = models.StatusDraft
	return nil
}

// Reject sends a submission back to the technician with optional notes.
// Any ticket number is cleared.
func Reject(t *models.Ticket, notes string) error {
	if err := CanTransition(t, TransitionReject, true); err != nil {
		return err
	}
	clearNumber(t)
	now := timeutil.Now()
	t.WorkflowStatus = models.StatusRejected
	t.RejectedAt = &now
	t.RejectionNotes = notes
	t.ApprovedByAdminID = nil
	return nil
}

// Approve numbers a submitted ticket. The sequence is allocated by the
// caller (repository) immediately before persisting; this applies the
// state change and snapshot.
func Approve(t *models.Ticket, ticketNumber string, sequence, year, adminID int, dt *DisplayTicket) error {
	if err := CanTransition(t, TransitionApprove, true); err != nil {
		return err
	}
	t.TicketNumber = ticketNumber
	t.SequenceNumber = &sequence
	t.Year = &year
	t.ApprovedByAdminID = &adminID
	if dt != nil {
		t.TotalHours = dt.TotalHours
		t.TotalAmount = dt.TotalAmount
		snapshotHeader(t, dt)
		snapshotRates(t, dt.Rates)
	}
	return nil
}

// Unapprove clears the number from an approved ticket, returning it to
// the pending-submission state.
func Unapprove(t *models.Ticket) error {
	if err := CanTransition(t, TransitionUnapprove, true); err != nil {
		return err
	}
	clearNumber(t)
	t.ApprovedByAdminID = nil
	return nil
}

// Trash discards a ticket from any live state, clearing its number so
// the sequence can be reused.
func Trash(t *models.Ticket) error {
	if err := CanTransition(t, TransitionTrash, false); err != nil {
		return err
	}
	clearNumber(t)
	t.ApprovedByAdminID = nil
	t.IsDiscarded = true
	return nil
}

// Restore pulls a ticket out of the trash as a fresh draft: a full
// provenance reset, not merely un-hiding.
func Restore(t *models.Ticket) error {
	if err := CanTransition(t, TransitionRestore, false); err != nil {
		return err
	}
	now := timeutil.Now()
	t.IsDiscarded = false
	t.WorkflowStatus = models.StatusDraft
	t.RestoredAt = &now
	t.RejectedAt = nil
	t.RejectionNotes = ""
	t.ApprovedByAdminID = nil
	clearNumber(t)
	return nil
}

// PipelineForward advances a numbered ticket one invoicing step
func PipelineForward(t *models.Ticket) error {
	if err := CanTransition(t, TransitionPipelineForward, true); err != nil {
		return err
	}
	t.WorkflowStatus = pipelineOrder[pipelineIndex(t.WorkflowStatus)+1]
	return nil
}

// PipelineBack retreats a numbered ticket one invoicing step
func PipelineBack(t *models.Ticket) error {
	if err := CanTransition(t, TransitionPipelineBack, true); err != nil {
		return err
	}
	t.WorkflowStatus = pipelineOrder[pipelineIndex(t.WorkflowStatus)-1]
	return nil
}

// EditableBy reports whether the ticket accepts edits from the given
// role: drafts and rejected tickets for technicians, pending
// submissions for admins, and header-only corrections on numbered
// tickets for admins.
func EditableBy(t *models.Ticket, isAdmin bool) bool {
	if t.IsDiscarded {
		return false
	}
	if isAdmin {
		return true
	}
	return t.WorkflowStatus == models.StatusDraft || t.WorkflowStatus == models.StatusRejected
}

func clearNumber(t *models.Ticket) {
	t.TicketNumber = ""
	t.SequenceNumber = nil
	t.Year = nil
}

// snapshotHeader freezes the display's header fields into the record's
// overrides, so the locked ticket keeps rendering the customer/project
// details as they were when it left the technician's hands, even after
// a master-data edit.
func snapshotHeader(t *models.Ticket, dt *DisplayTicket) {
	ov := &t.HeaderOverrides
	ov.CustomerName = dt.CustomerName
	ov.CustomerAddress = dt.CustomerAddress
	ov.Contact = dt.Contact
	ov.Location = dt.Location
	ov.ProjectName = dt.ProjectName
	ov.Approver = dt.Approver
	ov.POAFE = dt.POAFE
	ov.CostCenter = dt.CostCenter
	ov.OtherRef = dt.OtherRef
	ov.Notes = dt.Notes
}

// snapshotRows freezes every display row into the record's entry
// overrides, so a locked ticket's service lines stop tracking live
// time-entry edits.
func snapshotRows(t *models.Ticket, rows []DisplayRow) {
	if t.EditedEntryOverrides == nil {
		t.EditedEntryOverrides = make(map[string]models.RowOverride, len(rows))
	}
	for _, row := range rows {
		t.EditedEntryOverrides[row.EntryID] = models.RowOverride{
			Description:   row.Description,
			ShopTime:      row.ShopTime,
			TravelTime:    row.TravelTime,
			FieldTime:     row.FieldTime,
			ShopOvertime:  row.ShopOvertime,
			FieldOvertime: row.FieldOvertime,
		}
	}
}

func snapshotRates(t *models.Ticket, r Rates) {
	shop, travel, field, shopOT, fieldOT := r.Shop, r.Travel, r.Field, r.ShopOT, r.FieldOT
	t.HeaderOverrides.RateShop = &shop
	t.HeaderOverrides.RateTravel = &travel
	t.HeaderOverrides.RateField = &field
	t.HeaderOverrides.RateShopOT = &shopOT
	t.HeaderOverrides.RateFieldOT = &fieldOT
}
