package tickets

import (
	"sort"
	"time"

	"ticket-backend/internal/models"
	"ticket-backend/internal/timeutil"
)

// Rates are the per-hour pay rates for the five rate types
type Rates struct {
	Shop    float64 `json:"rt"`
	Travel  float64 `json:"tt"`
	Field   float64 `json:"ft"`
	ShopOT  float64 `json:"shop_ot"`
	FieldOT float64 `json:"field_ot"`
}

// Directory resolves display names and pay rates for aggregates.
// Implementations sit over the cached master-data lookups; the zero
// resolution (empty strings, zero rates) is always acceptable.
type Directory interface {
	CustomerName(id int) string
	CustomerAddress(id int) string
	CustomerContact(id int) string
	ProjectName(id int) string
	TechnicianName(id int) string
	TechnicianInitials(id int) string
	TechnicianRates(id int) Rates
}

// AggregateKey is the composite identity of a derived ticket
type AggregateKey struct {
	Date         string // YYYY-MM-DD in the company timezone
	TechnicianID int
	CustomerID   int
	ProjectID    int
	Location     string
	BillingKey   string
}

// TicketAggregate is the derived, non-persisted ticket view built from
// live time entries. Recomputed whenever the underlying entries change.
type TicketAggregate struct {
	Key  AggregateKey
	Date time.Time

	Entries         []models.TimeEntry
	HoursByRateType map[models.RateType]float64
	TotalHours      float64

	CustomerName    string
	CustomerAddress string
	CustomerContact string
	ProjectName     string
	TechnicianName  string
	Billing         BillingKey
	Rates           Rates
	IsDemo          bool

	// MatchedRecordID pins the aggregate to a record claimed during a
	// prior reconciliation pass in the same session. 0 = unbound.
	MatchedRecordID int
}

// Aggregate groups time entries into ticket aggregates by composite key.
// Within a group entries keep their input order (oldest first as
// delivered by the source) for stable row ordering; groups are ordered
// by key so the output is deterministic for a given input set.
func Aggregate(entries []models.TimeEntry, dir Directory) []*TicketAggregate {
	byKey := make(map[AggregateKey]*TicketAggregate)
	var order []AggregateKey

	for _, e := range entries {
		bk := BillingKeyFromEntry(e)
		key := AggregateKey{
			Date:         timeutil.DateOnly(e.Date).Format(timeutil.DateLayout),
			TechnicianID: e.TechnicianID,
			CustomerID:   e.CustomerID,
			ProjectID:    e.ProjectID,
			Location:     e.Location,
			BillingKey:   bk.String(),
		}

		agg, ok := byKey[key]
		if !ok {
			agg = &TicketAggregate{
				Key:             key,
				Date:            timeutil.DateOnly(e.Date),
				HoursByRateType: make(map[models.RateType]float64),
				Billing:         bk,
				IsDemo:          e.IsDemo,
			}
			if dir != nil {
				agg.CustomerName = dir.CustomerName(e.CustomerID)
				agg.CustomerAddress = dir.CustomerAddress(e.CustomerID)
				agg.CustomerContact = dir.CustomerContact(e.CustomerID)
				agg.ProjectName = dir.ProjectName(e.ProjectID)
				agg.TechnicianName = dir.TechnicianName(e.TechnicianID)
				agg.Rates = dir.TechnicianRates(e.TechnicianID)
			}
			byKey[key] = agg
			order = append(order, key)
		}

		agg.Entries = append(agg.Entries, e)
		agg.HoursByRateType[e.RateType] += e.Hours
		agg.TotalHours += e.Hours
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.TechnicianID != b.TechnicianID {
			return a.TechnicianID < b.TechnicianID
		}
		if a.CustomerID != b.CustomerID {
			return a.CustomerID < b.CustomerID
		}
		if a.ProjectID != b.ProjectID {
			return a.ProjectID < b.ProjectID
		}
		if a.Location != b.Location {
			return a.Location < b.Location
		}
		return a.BillingKey < b.BillingKey
	})

	out := make([]*TicketAggregate, 0, len(order))
	for _, key := range order {
		out = append(out, byKey[key])
	}
	return out
}

// LatestEntryUpdate returns the most recent UpdatedAt across the
// aggregate's entries; the zero time when there are none.
func (a *TicketAggregate) LatestEntryUpdate() time.Time {
	var latest time.Time
	for _, e := range a.Entries {
		if e.UpdatedAt.After(latest) {
			latest = e.UpdatedAt
		}
	}
	return latest
}
