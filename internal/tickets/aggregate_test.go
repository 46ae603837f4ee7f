package tickets_test

import (
	"reflect"
	"testing"
	"time"

	"ticket-backend/internal/models"
	"ticket-backend/internal/tickets"
	"ticket-backend/internal/timeutil"
)

func day(s string) time.Time {
	t, err := timeutil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func entry(id string, date string, tech, cust int, rt models.RateType, hours float64) models.TimeEntry {
	return models.TimeEntry{
		ID:           id,
		Date:         day(date),
		TechnicianID: tech,
		CustomerID:   cust,
		RateType:     rt,
		Hours:        hours,
		Description:  "work " + id,
	}
}

func TestAggregateGroupsByCompositeKey(t *testing.T) {
	entries := []models.TimeEntry{
		entry("e1", "2024-03-01", 1, 10, models.RateShopTime, 4),
		entry("e2", "2024-03-01", 1, 10, models.RateTravelTime, 2),
		entry("e3", "2024-03-01", 1, 20, models.RateFieldTime, 3),
		entry("e4", "2024-03-02", 1, 10, models.RateShopTime, 1),
	}

	aggs := tickets.Aggregate(entries, nil)
	if len(aggs) != 3 {
		t.Fatalf("got %d aggregates, want 3", len(aggs))
	}

	first := aggs[0]
	if first.Key.CustomerID != 10 || first.Key.Date != "2024-03-01" {
		t.Fatalf("unexpected first aggregate key: %+v", first.Key)
	}
	if first.TotalHours != 6 {
		t.Errorf("TotalHours = %v, want 6", first.TotalHours)
	}
	if first.HoursByRateType[models.RateShopTime] != 4 {
		t.Errorf("shop hours = %v, want 4", first.HoursByRateType[models.RateShopTime])
	}
	if first.HoursByRateType[models.RateTravelTime] != 2 {
		t.Errorf("travel hours = %v, want 2", first.HoursByRateType[models.RateTravelTime])
	}
	if len(first.Entries) != 2 || first.Entries[0].ID != "e1" || first.Entries[1].ID != "e2" {
		t.Errorf("entry order not preserved: %+v", first.Entries)
	}
}

func TestAggregateSplitsOnBillingKey(t *testing.T) {
	a := entry("e1", "2024-03-01", 1, 10, models.RateShopTime, 4)
	a.CostCenter = "CC-100"
	b := entry("e2", "2024-03-01", 1, 10, models.RateShopTime, 2)
	b.CostCenter = "CC-200"

	aggs := tickets.Aggregate([]models.TimeEntry{a, b}, nil)
	if len(aggs) != 2 {
		t.Fatalf("got %d aggregates, want 2 (distinct cost centers)", len(aggs))
	}
}

func TestAggregateDeterminism(t *testing.T) {
	entries := []models.TimeEntry{
		entry("e1", "2024-03-03", 2, 30, models.RateFieldTime, 8),
		entry("e2", "2024-03-01", 1, 10, models.RateShopTime, 4),
		entry("e3", "2024-03-01", 1, 10, models.RateShopOvertime, 1.5),
		entry("e4", "2024-03-02", 1, 20, models.RateTravelTime, 2),
	}

	first := tickets.Aggregate(entries, nil)
	second := tickets.Aggregate(entries, nil)

	if len(first) != len(second) {
		t.Fatalf("aggregate counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Key != second[i].Key {
			t.Errorf("aggregate %d key differs: %+v vs %+v", i, first[i].Key, second[i].Key)
		}
		if first[i].TotalHours != second[i].TotalHours {
			t.Errorf("aggregate %d totals differ", i)
		}
		if !reflect.DeepEqual(first[i].HoursByRateType, second[i].HoursByRateType) {
			t.Errorf("aggregate %d hour buckets differ", i)
		}
	}
}

func TestBillingKeyRoundTrip(t *testing.T) {
	k := tickets.BillingKey{Approver: "J. Smith", POAFE: "PO-1234", CostCenter: "CC-9"}
	s := k.String()
	if s != "J. Smith::PO-1234::CC-9" {
		t.Fatalf("String() = %q", s)
	}
	if got := tickets.ParseBillingKey(s); got != k {
		t.Errorf("ParseBillingKey(%q) = %+v, want %+v", s, got, k)
	}
	if (tickets.BillingKey{}).String() != "" {
		t.Errorf("empty billing key should collapse to empty string")
	}
}
