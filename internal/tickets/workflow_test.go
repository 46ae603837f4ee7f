package tickets_test

import (
	"errors"
	"testing"

	"ticket-backend/internal/models"
	"ticket-backend/internal/tickets"
)

func numbered() *models.Ticket {
	seq, year, admin := 1, 24, 99
	return &models.Ticket{
		ID:                1,
		Date:              day("2024-03-01"),
		TechnicianID:      1,
		CustomerID:        10,
		WorkflowStatus:    models.StatusApproved,
		TicketNumber:      "AB_24001",
		SequenceNumber:    &seq,
		Year:              &year,
		ApprovedByAdminID: &admin,
		TotalHours:        6,
	}
}

func TestSubmitSnapshotsTotals(t *testing.T) {
	tk := record(1, "2024-03-01", 1, 10, models.StatusDraft)
	dt := &tickets.DisplayTicket{TotalHours: 6, TotalAmount: 560}

	if err := tickets.Submit(tk, dt); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if tk.WorkflowStatus != models.StatusApproved {
		t.Errorf("status = %s, want approved", tk.WorkflowStatus)
	}
	if tk.TotalHours != 6 || tk.TotalAmount != 560 {
		t.Errorf("totals not snapshotted: %v/%v", tk.TotalHours, tk.TotalAmount)
	}
}

func TestResubmitKeepsRejectedAt(t *testing.T) {
	tk := record(1, "2024-03-01", 1, 10, models.StatusApproved)
	if err := tickets.Reject(tk, "missing PO"); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if tk.RejectedAt == nil || tk.RejectionNotes != "missing PO" {
		t.Fatalf("rejection metadata not set: %+v", tk)
	}

	if err := tickets.Submit(tk, nil); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if tk.WorkflowStatus != models.StatusApproved {
		t.Errorf("status = %s after resubmit", tk.WorkflowStatus)
	}
	if tk.RejectedAt == nil {
		t.Error("rejected_at cleared on resubmit; it marks the ticket as resubmitted")
	}
}

func TestApproveAssignsNumberAndSnapshotsRates(t *testing.T) {
	tk := record(1, "2024-03-01", 1, 10, models.StatusApproved)
	dt := &tickets.DisplayTicket{
		TotalHours:  6,
		TotalAmount: 560,
		Rates:       tickets.Rates{Shop: 100, Travel: 80},
	}

	if err := tickets.Approve(tk, "AB_24001", 1, 24, 99, dt); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if tk.TicketNumber != "AB_24001" || tk.SequenceNumber == nil || *tk.SequenceNumber != 1 {
		t.Errorf("number not assigned: %+v", tk)
	}
	if tk.ApprovedByAdminID == nil || *tk.ApprovedByAdminID != 99 {
		t.Errorf("approver not recorded")
	}
	if tk.HeaderOverrides.RateShop == nil || *tk.HeaderOverrides.RateShop != 100 {
		t.Errorf("rates not snapshotted into overrides")
	}
}

func TestNumberedTicketLegalTransitions(t *testing.T) {
	// From approved+numbered the only legal moves are unapprove, trash,
	// reject, or stepping into the invoicing pipeline.
	tests := []struct {
		tr      tickets.Transition
		isAdmin bool
		legal   bool
	}{
		{tickets.TransitionUnapprove, true, true},
		{tickets.TransitionTrash, true, true},
		{tickets.TransitionReject, true, true},
		{tickets.TransitionPipelineForward, true, true},
		{tickets.TransitionSubmit, false, false},
		{tickets.TransitionWithdraw, false, false},
		{tickets.TransitionApprove, true, false},
		{tickets.TransitionRestore, false, false},
		{tickets.TransitionPipelineBack, true, false}, // already at the first step
		{tickets.TransitionUnapprove, false, false},   // admin only
	}
	for _, tt := range tests {
		err := tickets.CanTransition(numbered(), tt.tr, tt.isAdmin)
		if tt.legal && err != nil {
			t.Errorf("%s (admin=%v): unexpectedly illegal: %v", tt.tr, tt.isAdmin, err)
		}
		if !tt.legal {
			if err == nil {
				t.Errorf("%s (admin=%v): unexpectedly legal", tt.tr, tt.isAdmin)
			} else if !errors.Is(err, tickets.ErrIllegalTransition) {
				t.Errorf("%s: error not ErrIllegalTransition: %v", tt.tr, err)
			}
		}
	}
}

func TestUnapproveClearsNumber(t *testing.T) {
	tk := numbered()
	if err := tickets.Unapprove(tk); err != nil {
		t.Fatalf("Unapprove: %v", err)
	}
	if tk.TicketNumber != "" || tk.SequenceNumber != nil || tk.Year != nil || tk.ApprovedByAdminID != nil {
		t.Errorf("number metadata not cleared: %+v", tk)
	}
	if tk.WorkflowStatus != models.StatusApproved {
		t.Errorf("status = %s, want approved (pending)", tk.WorkflowStatus)
	}
}

func TestTrashAndRestoreResetProvenance(t *testing.T) {
	tk := numbered()
	if err := tickets.Trash(tk); err != nil {
		t.Fatalf("Trash: %v", err)
	}
	if !tk.IsDiscarded || tk.TicketNumber != "" {
		t.Fatalf("trash did not clear number: %+v", tk)
	}

	if err := tickets.Restore(tk); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if tk.IsDiscarded {
		t.Error("still discarded after restore")
	}
	if tk.WorkflowStatus != models.StatusDraft {
		t.Errorf("status = %s, want draft", tk.WorkflowStatus)
	}
	if tk.TicketNumber != "" || tk.RejectedAt != nil || tk.ApprovedByAdminID != nil {
		t.Errorf("restore did not reset provenance: %+v", tk)
	}
	if tk.RestoredAt == nil {
		t.Error("restored_at not set")
	}
}

func TestTrashedTicketRejectsOtherTransitions(t *testing.T) {
	tk := numbered()
	if err := tickets.Trash(tk); err != nil {
		t.Fatalf("Trash: %v", err)
	}
	for _, tr := range []tickets.Transition{
		tickets.TransitionSubmit, tickets.TransitionApprove,
		tickets.TransitionReject, tickets.TransitionTrash,
		tickets.TransitionPipelineForward,
	} {
		if err := tickets.CanTransition(tk, tr, true); err == nil {
			t.Errorf("%s legal on a trashed ticket", tr)
		}
	}
	if err := tickets.CanTransition(tk, tickets.TransitionPermanentDelete, false); err == nil {
		t.Error("permanent delete must be admin only")
	}
	if err := tickets.CanTransition(tk, tickets.TransitionPermanentDelete, true); err != nil {
		t.Errorf("admin permanent delete illegal: %v", err)
	}
}

func TestPipelineStrictOrdering(t *testing.T) {
	tk := numbered()

	want := []models.Status{
		models.StatusPDFExported,
		models.StatusQBOCreated,
		models.StatusSentToCNRL,
		models.StatusCNRLApproved,
		models.StatusSubmittedToCNRL,
	}
	for _, s := range want {
		if err := tickets.PipelineForward(tk); err != nil {
			t.Fatalf("PipelineForward to %s: %v", s, err)
		}
		if tk.WorkflowStatus != s {
			t.Fatalf("status = %s, want %s", tk.WorkflowStatus, s)
		}
	}
	if err := tickets.PipelineForward(tk); err == nil {
		t.Error("advanced past the final pipeline step")
	}

	if err := tickets.PipelineBack(tk); err != nil {
		t.Fatalf("PipelineBack: %v", err)
	}
	if tk.WorkflowStatus != models.StatusCNRLApproved {
		t.Errorf("status = %s after one step back", tk.WorkflowStatus)
	}
}

func TestPipelineRequiresTicketNumber(t *testing.T) {
	tk := record(1, "2024-03-01", 1, 10, models.StatusApproved)
	if err := tickets.PipelineForward(tk); err == nil {
		t.Error("pipeline advanced without a ticket number")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		tk   *models.Ticket
		want tickets.Bucket
	}{
		{"draft", record(1, "2024-03-01", 1, 10, models.StatusDraft), tickets.BucketDraft},
		{"rejected", record(1, "2024-03-01", 1, 10, models.StatusRejected), tickets.BucketRejected},
		{"submitted", record(1, "2024-03-01", 1, 10, models.StatusApproved), tickets.BucketSubmitted},
		{"numbered", numbered(), tickets.BucketNumbered},
	}
	for _, tt := range tests {
		if got := tickets.Classify(tt.tk); got != tt.want {
			t.Errorf("%s: Classify = %s, want %s", tt.name, got, tt.want)
		}
	}

	trashed := numbered()
	trashed.IsDiscarded = true
	if got := tickets.Classify(trashed); got != tickets.BucketTrash {
		t.Errorf("trash flag should win: got %s", got)
	}
}

func TestFormatAndParseTicketNumber(t *testing.T) {
	n := tickets.FormatTicketNumber("ab", 2024, 1)
	if n != "AB_24001" {
		t.Fatalf("FormatTicketNumber = %q, want AB_24001", n)
	}
	initials, year, seq, ok := tickets.ParseTicketNumber(n)
	if !ok || initials != "AB" || year != 24 || seq != 1 {
		t.Errorf("ParseTicketNumber(%q) = %q %d %d %v", n, initials, year, seq, ok)
	}
	if _, _, _, ok := tickets.ParseTicketNumber("nonsense"); ok {
		t.Error("parsed an invalid ticket number")
	}
}

func TestSubmitSnapshotsRowsAndHeader(t *testing.T) {
	aggs := tickets.Aggregate([]models.TimeEntry{
		entry("e1", "2024-03-01", 1, 10, models.RateShopTime, 4),
		entry("e2", "2024-03-01", 1, 10, models.RateTravelTime, 2),
	}, fakeDirectory{})
	rec := record(1, "2024-03-01", 1, 10, models.StatusDraft)

	if err := tickets.Submit(rec, tickets.Merge(aggs[0], rec)); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	ov, ok := rec.EditedEntryOverrides["e1"]
	if !ok || ov.ShopTime != 4 {
		t.Fatalf("row snapshot missing or wrong: %+v", rec.EditedEntryOverrides)
	}
	if rec.HeaderOverrides.CustomerAddress != "Box 100, Fort McMurray" {
		t.Errorf("header not snapshotted: %+v", rec.HeaderOverrides)
	}

	// Upstream edit after submit: e1 grows from 4h to 5h
	edited := tickets.Aggregate([]models.TimeEntry{
		entry("e1", "2024-03-01", 1, 10, models.RateShopTime, 5),
		entry("e2", "2024-03-01", 1, 10, models.RateTravelTime, 2),
	}, fakeDirectory{})
	dt := tickets.Merge(edited[0], rec)
	for _, row := range dt.Rows {
		if row.EntryID == "e1" && row.ShopTime != 4 {
			t.Errorf("locked row tracks live edit: st = %v, want 4", row.ShopTime)
		}
	}
	if dt.TotalHours != 6 {
		t.Errorf("TotalHours = %v, want snapshot 6", dt.TotalHours)
	}
}

// movedDirectory simulates a master-data edit after approval
type movedDirectory struct{ fakeDirectory }

func (movedDirectory) CustomerAddress(id int) string { return "Box 999, Calgary" }

func TestApproveSnapshotsHeader(t *testing.T) {
	aggs := tickets.Aggregate([]models.TimeEntry{
		entry("e1", "2024-03-01", 1, 10, models.RateShopTime, 4),
	}, fakeDirectory{})
	rec := record(1, "2024-03-01", 1, 10, models.StatusApproved)

	dt := tickets.Merge(aggs[0], rec)
	if err := tickets.Approve(rec, "AB_24001", 1, 24, 99, dt); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if rec.HeaderOverrides.CustomerAddress != "Box 100, Fort McMurray" {
		t.Fatalf("address not snapshotted: %+v", rec.HeaderOverrides)
	}

	moved := tickets.Aggregate([]models.TimeEntry{
		entry("e1", "2024-03-01", 1, 10, models.RateShopTime, 4),
	}, movedDirectory{})
	after := tickets.Merge(moved[0], rec)
	if after.CustomerAddress != "Box 100, Fort McMurray" {
		t.Errorf("numbered ticket address drifted to %q", after.CustomerAddress)
	}
}
