package tickets_test

import (
	"reflect"
	"testing"

	"ticket-backend/internal/models"
	"ticket-backend/internal/tickets"
	"ticket-backend/internal/timeutil"
)

type fakeDirectory struct{}

func (fakeDirectory) CustomerName(id int) string {
	if id == 10 {
		return "C1 Oilfield Ltd"
	}
	return ""
}
func (fakeDirectory) CustomerAddress(id int) string { return "Box 100, Fort McMurray" }
func (fakeDirectory) CustomerContact(id int) string { return "" }
func (fakeDirectory) ProjectName(id int) string     { return "" }
func (fakeDirectory) TechnicianName(id int) string  { return "Alex Byrne" }
func (fakeDirectory) TechnicianInitials(id int) string {
	return "AB"
}
func (fakeDirectory) TechnicianRates(id int) tickets.Rates {
	return tickets.Rates{Shop: 100, Travel: 80, Field: 120, ShopOT: 150, FieldOT: 180}
}

func TestMergeLiveDraft(t *testing.T) {
	aggs := tickets.Aggregate([]models.TimeEntry{
		entry("e1", "2024-03-01", 1, 10, models.RateShopTime, 4),
		entry("e2", "2024-03-01", 1, 10, models.RateTravelTime, 2),
	}, fakeDirectory{})

	dt := tickets.Merge(aggs[0], nil)
	if dt.TotalHours != 6 {
		t.Errorf("TotalHours = %v, want 6", dt.TotalHours)
	}
	if want := 4*100.0 + 2*80.0; dt.TotalAmount != want {
		t.Errorf("TotalAmount = %v, want %v", dt.TotalAmount, want)
	}
	if dt.CustomerName != "C1 Oilfield Ltd" {
		t.Errorf("CustomerName = %q", dt.CustomerName)
	}
	if len(dt.Rows) != 2 || dt.Rows[0].ShopTime != 4 || dt.Rows[1].TravelTime != 2 {
		t.Errorf("rows not bucketed: %+v", dt.Rows)
	}
}

func TestMergeIdempotent(t *testing.T) {
	aggs := tickets.Aggregate([]models.TimeEntry{
		entry("e1", "2024-03-01", 1, 10, models.RateShopTime, 4),
	}, fakeDirectory{})
	rec := record(1, "2024-03-01", 1, 10, models.StatusDraft)
	rec.HeaderOverrides.Location = "Plant 4"
	rec.EditedEntryOverrides = map[string]models.RowOverride{
		"e1": {Description: "edited", ShopTime: 5},
	}
	rec.UpdatedAt = timeutil.Now()

	first := tickets.Merge(aggs[0], rec)
	second := tickets.Merge(aggs[0], rec)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("merging twice differs:\n%+v\n%+v", first, second)
	}
}

func TestMergeLockedSnapshotAuthoritative(t *testing.T) {
	// Technician logged 4h shop + 2h travel; admin approved with a 6h
	// snapshot. The entry later grows to 5h shop, but the locked ticket
	// keeps showing 6.
	e1 := entry("e1", "2024-03-01", 1, 10, models.RateShopTime, 5)
	e1.UpdatedAt = day("2024-03-05")
	aggs := tickets.Aggregate([]models.TimeEntry{
		e1,
		entry("e2", "2024-03-01", 1, 10, models.RateTravelTime, 2),
	}, fakeDirectory{})

	rec := record(1, "2024-03-01", 1, 10, models.StatusApproved)
	rec.TicketNumber = "AB_24001"
	rec.TotalHours = 6
	rec.TotalAmount = 560
	rec.HeaderOverrides.CustomerAddress = "Snapshot address"

	dt := tickets.Merge(aggs[0], rec)
	if dt.TotalHours != 6 {
		t.Errorf("locked ticket recomputed hours: got %v, want snapshot 6", dt.TotalHours)
	}
	if dt.TotalAmount != 560 {
		t.Errorf("locked ticket recomputed amount: got %v", dt.TotalAmount)
	}
	if dt.CustomerAddress != "Snapshot address" {
		t.Errorf("header override not preferred on locked ticket: %q", dt.CustomerAddress)
	}
	if !dt.Locked {
		t.Error("display not marked locked")
	}
}

func TestMergeFreshnessPrefersLiveOnStaleDraft(t *testing.T) {
	e := entry("e1", "2024-03-01", 1, 10, models.RateShopTime, 4)
	e.Location = "Live location"
	e.UpdatedAt = day("2024-03-10")
	aggs := tickets.Aggregate([]models.TimeEntry{e}, fakeDirectory{})

	rec := record(1, "2024-03-01", 1, 10, models.StatusDraft)
	rec.HeaderOverrides.Location = "Stale override"
	rec.UpdatedAt = day("2024-03-02") // older than the entry edit

	dt := tickets.Merge(aggs[0], rec)
	if dt.Location != "Live location" {
		t.Errorf("freshness rule ignored: Location = %q", dt.Location)
	}

	// Same record saved after the entry edit wins again
	rec.UpdatedAt = day("2024-03-11")
	dt = tickets.Merge(aggs[0], rec)
	if dt.Location != "Stale override" {
		t.Errorf("recent override lost: Location = %q", dt.Location)
	}
}

func TestMergeRateSnapshotOverridesCurrentRates(t *testing.T) {
	aggs := tickets.Aggregate([]models.TimeEntry{
		entry("e1", "2024-03-01", 1, 10, models.RateShopTime, 4),
	}, fakeDirectory{})

	frozen := 55.0
	rec := record(1, "2024-03-01", 1, 10, models.StatusApproved)
	rec.TicketNumber = "AB_24001"
	rec.HeaderOverrides.RateShop = &frozen

	dt := tickets.Merge(aggs[0], rec)
	if dt.Rates.Shop != 55 {
		t.Errorf("snapshot rate not applied: %v", dt.Rates.Shop)
	}
}

func TestMergeSyntheticRowsAppended(t *testing.T) {
	aggs := tickets.Aggregate([]models.TimeEntry{
		entry("e1", "2024-03-01", 1, 10, models.RateShopTime, 4),
	}, fakeDirectory{})

	rec := record(1, "2024-03-01", 1, 10, models.StatusDraft)
	rec.UpdatedAt = timeutil.Now()
	rec.EditedEntryOverrides = map[string]models.RowOverride{
		"manual-1": {Description: "extra line", FieldTime: 3},
	}

	dt := tickets.Merge(aggs[0], rec)
	if len(dt.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(dt.Rows))
	}
	last := dt.Rows[1]
	if !last.Synthetic || last.EntryID != "manual-1" || last.FieldTime != 3 {
		t.Errorf("synthetic row wrong: %+v", last)
	}
}

func TestMergeStandaloneRecordOnly(t *testing.T) {
	rec := record(1, "2024-03-01", 1, 10, models.StatusApproved)
	rec.TotalHours = 8
	rec.EditedEntryOverrides = map[string]models.RowOverride{
		"gone-1": {Description: "source entry deleted", ShopTime: 8},
	}

	dt := tickets.Merge(nil, rec)
	if !dt.Standalone {
		t.Error("record-only merge not marked standalone")
	}
	if len(dt.Rows) != 1 || dt.Rows[0].ShopTime != 8 {
		t.Errorf("override rows lost on standalone ticket: %+v", dt.Rows)
	}
}
