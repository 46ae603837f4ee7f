package tickets_test

import (
	"testing"

	"ticket-backend/internal/models"
	"ticket-backend/internal/tickets"
)

func displayWithRows() *tickets.DisplayTicket {
	return &tickets.DisplayTicket{
		CustomerName: "C2 Pipeline",
		Location:     "Site 9",
		Rows: []tickets.DisplayRow{
			{EntryID: "e1", Description: "valve swap", ShopTime: 3},
			{EntryID: "e2", Description: "drive out", TravelTime: 1.5},
		},
	}
}

func TestSessionStartsClean(t *testing.T) {
	dt := displayWithRows()
	s := tickets.NewEditorSession(0, dt)
	if s.HasPendingChanges(tickets.HeaderStateFromDisplay(dt), dt.Rows) {
		t.Error("fresh session reports pending changes")
	}
}

func TestHeaderDirtyTrimsWhitespace(t *testing.T) {
	dt := displayWithRows()
	s := tickets.NewEditorSession(0, dt)

	h := tickets.HeaderStateFromDisplay(dt)
	h.Location = "  Site 9  "
	if s.HeaderDirty(h) {
		t.Error("whitespace-only change reported dirty")
	}

	h.Location = "Site 10"
	if !s.HeaderDirty(h) {
		t.Error("real header change not detected")
	}
}

func TestRowsDirtyToleranceAndCount(t *testing.T) {
	dt := displayWithRows()
	s := tickets.NewEditorSession(0, dt)

	rows := append([]tickets.DisplayRow(nil), dt.Rows...)
	rows[0].ShopTime = 3.0004 // within tolerance
	if s.RowsDirty(rows) {
		t.Error("sub-tolerance hour change reported dirty")
	}

	rows[0].ShopTime = 4.5
	if !s.RowsDirty(rows) {
		t.Error("hour edit not detected")
	}

	rows[0].ShopTime = 3
	rows = append(rows, tickets.DisplayRow{EntryID: "manual-1", FieldTime: 2})
	if !s.RowsDirty(rows) {
		t.Error("added row not detected")
	}
}

func TestPendingExpensesMakeSessionDirty(t *testing.T) {
	dt := displayWithRows()
	s := tickets.NewEditorSession(0, dt)

	s.PendingExpenseAdds = append(s.PendingExpenseAdds, models.Expense{
		Type: models.ExpenseTravel, Description: "mileage", Quantity: 120, Rate: 0.68,
	})
	if !s.HasPendingChanges(tickets.HeaderStateFromDisplay(dt), dt.Rows) {
		t.Error("pending expense add not reported")
	}

	s.ResetSnapshot(dt)
	if s.HasPendingChanges(tickets.HeaderStateFromDisplay(dt), dt.Rows) {
		t.Error("reset did not clear pending state")
	}
}

func TestComputeEntryOverridesMinimality(t *testing.T) {
	original := displayWithRows().Rows

	edited := append([]tickets.DisplayRow(nil), original...)
	edited[0].ShopTime = 4.5 // real edit
	// edited[1] untouched

	ov := tickets.ComputeEntryOverrides(edited, original)
	if len(ov) != 1 {
		t.Fatalf("override set size = %d, want 1", len(ov))
	}
	got, ok := ov["e1"]
	if !ok || got.ShopTime != 4.5 {
		t.Errorf("override for e1 wrong: %+v", ov)
	}
}

func TestComputeEntryOverridesToleranceExcludesNoops(t *testing.T) {
	original := displayWithRows().Rows
	edited := append([]tickets.DisplayRow(nil), original...)
	edited[0].ShopTime = 3.0009 // round-trip noise, not an edit

	if ov := tickets.ComputeEntryOverrides(edited, original); len(ov) != 0 {
		t.Errorf("no-op row included in overrides: %+v", ov)
	}
}

func TestComputeEntryOverridesIncludesSyntheticRows(t *testing.T) {
	original := displayWithRows().Rows
	edited := append([]tickets.DisplayRow(nil), original...)
	edited = append(edited, tickets.DisplayRow{
		EntryID: "manual-1", Description: "standby", FieldTime: 2, Synthetic: true,
	})

	ov := tickets.ComputeEntryOverrides(edited, original)
	if len(ov) != 1 {
		t.Fatalf("override set size = %d, want 1", len(ov))
	}
	if got := ov["manual-1"]; got.FieldTime != 2 || got.Description != "standby" {
		t.Errorf("synthetic override wrong: %+v", got)
	}
}

// The draft-save scenario: user edits row 1 hours from 3 to 4.5 and
// saves; the persisted override set holds exactly that row, and a later
// merge reproduces the edited value even though the live entry still
// says 3.
func TestDraftEditRoundTrip(t *testing.T) {
	aggs := tickets.Aggregate([]models.TimeEntry{
		entry("e1", "2024-03-02", 2, 20, models.RateShopTime, 3),
	}, nil)
	opened := tickets.Merge(aggs[0], nil)

	edited := append([]tickets.DisplayRow(nil), opened.Rows...)
	edited[0].ShopTime = 4.5

	ov := tickets.ComputeEntryOverrides(edited, opened.Rows)
	if len(ov) != 1 || ov["e1"].ShopTime != 4.5 {
		t.Fatalf("override set wrong: %+v", ov)
	}

	rec := record(1, "2024-03-02", 2, 20, models.StatusDraft)
	rec.EditedEntryOverrides = ov
	rec.UpdatedAt = day("2024-03-03")

	reopened := tickets.Merge(aggs[0], rec)
	if reopened.Rows[0].ShopTime != 4.5 {
		t.Errorf("reopened ticket lost the edit: %+v", reopened.Rows[0])
	}
	if reopened.TotalHours != 4.5 {
		t.Errorf("TotalHours = %v, want 4.5", reopened.TotalHours)
	}
}

func TestMinimizeEntryOverridesDropsNoOps(t *testing.T) {
	live := []tickets.DisplayRow{
		{EntryID: "e1", Description: "valve swap", ShopTime: 3},
		{EntryID: "e2", Description: "drive out", TravelTime: 1.5},
	}
	requested := map[string]models.RowOverride{
		"e1":  {Description: "valve swap", ShopTime: 3.0004}, // within tolerance
		"e2":  {Description: "drive out", TravelTime: 2},
		"man": {Description: "manual line", FieldTime: 1},
	}

	got := tickets.MinimizeEntryOverrides(requested, live)
	if _, ok := got["e1"]; ok {
		t.Error("value-equal row kept as an override")
	}
	if ov, ok := got["e2"]; !ok || ov.TravelTime != 2 {
		t.Errorf("edited row dropped: %+v", got)
	}
	if _, ok := got["man"]; !ok {
		t.Error("synthetic row dropped")
	}
}
