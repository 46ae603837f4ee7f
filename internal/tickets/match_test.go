package tickets_test

import (
	"testing"

	"ticket-backend/internal/models"
	"ticket-backend/internal/tickets"
)

func record(id int, date string, tech, cust int, status models.Status) *models.Ticket {
	return &models.Ticket{
		ID:             id,
		Date:           day(date),
		TechnicianID:   tech,
		CustomerID:     cust,
		WorkflowStatus: status,
	}
}

func TestMatchFullKey(t *testing.T) {
	aggs := tickets.Aggregate([]models.TimeEntry{
		entry("e1", "2024-03-01", 1, 10, models.RateShopTime, 4),
	}, nil)
	rec := record(7, "2024-03-01", 1, 10, models.StatusDraft)

	out := tickets.MatchRecords(aggs, []*models.Ticket{rec}, 0)
	if len(out.Matched) != 1 {
		t.Fatalf("got %d results, want 1", len(out.Matched))
	}
	if out.Matched[0].Record == nil || out.Matched[0].Record.ID != 7 {
		t.Fatalf("aggregate did not claim record 7: %+v", out.Matched[0])
	}
	if len(out.Standalone) != 0 {
		t.Errorf("claimed record also surfaced standalone")
	}
}

func TestMatchAtMostOneClaim(t *testing.T) {
	// Two aggregates with the same key shape except billing detail;
	// a single record may satisfy only one of them.
	e1 := entry("e1", "2024-03-01", 1, 10, models.RateShopTime, 4)
	e2 := entry("e2", "2024-03-01", 1, 10, models.RateShopTime, 2)
	e2.POAFE = "PO-77"
	aggs := tickets.Aggregate([]models.TimeEntry{e1, e2}, nil)
	if len(aggs) != 2 {
		t.Fatalf("setup: want 2 aggregates, got %d", len(aggs))
	}

	rec := record(3, "2024-03-01", 1, 10, models.StatusDraft)
	out := tickets.MatchRecords(aggs, []*models.Ticket{rec}, 0)

	claims := 0
	for _, m := range out.Matched {
		if m.Record != nil {
			claims++
		}
	}
	if claims != 1 {
		t.Fatalf("record claimed %d times, want exactly 1", claims)
	}
}

func TestMatchLockedRecordWinsOverDraft(t *testing.T) {
	aggs := tickets.Aggregate([]models.TimeEntry{
		entry("e1", "2024-03-01", 1, 10, models.RateShopTime, 4),
	}, nil)

	draft := record(1, "2024-03-01", 1, 10, models.StatusDraft)
	locked := record(2, "2024-03-01", 1, 10, models.StatusApproved)
	locked.TicketNumber = "AB_24001"

	// Draft listed first: ordering must not matter
	out := tickets.MatchRecords(aggs, []*models.Ticket{draft, locked}, 0)
	if out.Matched[0].Record == nil || out.Matched[0].Record.ID != 2 {
		t.Fatalf("aggregate claimed record %+v, want the locked record", out.Matched[0].Record)
	}
}

func TestMatchExplicitLinkPreferred(t *testing.T) {
	aggs := tickets.Aggregate([]models.TimeEntry{
		entry("e1", "2024-03-01", 1, 10, models.RateShopTime, 4),
	}, nil)
	aggs[0].MatchedRecordID = 9

	younger := record(1, "2024-03-01", 1, 10, models.StatusDraft)
	linked := record(9, "2024-03-01", 1, 10, models.StatusDraft)

	out := tickets.MatchRecords(aggs, []*models.Ticket{younger, linked}, 0)
	if out.Matched[0].Record == nil || out.Matched[0].Record.ID != 9 {
		t.Fatalf("explicit link ignored, claimed %+v", out.Matched[0].Record)
	}
}

func TestMatchLocationlessFallbackFlagsAmbiguity(t *testing.T) {
	e := entry("e1", "2024-03-01", 1, 10, models.RateShopTime, 4)
	e.Location = "Plant 4"
	aggs := tickets.Aggregate([]models.TimeEntry{e}, nil)

	rec := record(5, "2024-03-01", 1, 10, models.StatusDraft) // no location
	out := tickets.MatchRecords(aggs, []*models.Ticket{rec}, 0)

	m := out.Matched[0]
	if m.Record == nil {
		t.Fatal("location-less fallback should still match")
	}
	if !m.Ambiguous {
		t.Error("fallback match not flagged as ambiguous")
	}
}

func TestMatchPOAFEMismatchFallsToCore(t *testing.T) {
	e := entry("e1", "2024-03-01", 1, 10, models.RateShopTime, 4)
	e.POAFE = "PO-1"
	aggs := tickets.Aggregate([]models.TimeEntry{e}, nil)

	rec := record(5, "2024-03-01", 1, 10, models.StatusDraft)
	rec.POAFE = "PO-2"

	// Full match fails on PO/AFE but the core match (no PO/AFE
	// comparison) still claims the record.
	out := tickets.MatchRecords(aggs, []*models.Ticket{rec}, 0)
	if out.Matched[0].Record == nil {
		t.Fatal("core match should have claimed the record")
	}
}

func TestStandaloneSurfacing(t *testing.T) {
	withOverride := record(1, "2024-03-01", 1, 10, models.StatusDraft)
	withOverride.EditedEntryOverrides = map[string]models.RowOverride{"x": {ShopTime: 2}}

	withSnapshot := record(2, "2024-03-02", 1, 10, models.StatusApproved)
	withSnapshot.TotalHours = 6

	bare := record(3, "2024-03-03", 1, 10, models.StatusDraft)

	open := record(4, "2024-03-04", 1, 10, models.StatusDraft)

	noCustomer := record(5, "2024-03-05", 1, 0, models.StatusDraft)
	noCustomer.EditedEntryOverrides = map[string]models.RowOverride{"y": {}}

	discarded := record(6, "2024-03-06", 1, 10, models.StatusDraft)
	discarded.TotalHours = 3
	discarded.IsDiscarded = true

	out := tickets.MatchRecords(nil, []*models.Ticket{
		withOverride, withSnapshot, bare, open, noCustomer, discarded,
	}, 4)

	got := make(map[int]bool)
	for _, r := range out.Standalone {
		got[r.ID] = true
	}
	want := map[int]bool{1: true, 2: true, 4: true}
	for id := 1; id <= 6; id++ {
		if got[id] != want[id] {
			t.Errorf("record %d surfaced=%v, want %v", id, got[id], want[id])
		}
	}
}
